// Package pgcache stores rendered attribute fragments in Postgres
package pgcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "diwise"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// Store is a cache.Store backed by a fragments table
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

func New(ctx context.Context, pool *pgxpool.Pool, ttl time.Duration) (*Store, error) {
	s := &Store{pool: pool, ttl: ttl, now: time.Now}

	if err := s.initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize fragment table: %w", err)
	}

	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fragments (
			key        TEXT PRIMARY KEY,
			fragment   JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ NULL
		);
		CREATE INDEX IF NOT EXISTS fragments_expires_at_idx ON fragments (expires_at);`)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (cache.Fragment, bool, error) {
	var data []byte

	err := s.pool.QueryRow(ctx,
		`SELECT fragment FROM fragments WHERE key=$1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, s.now().UTC(),
	).Scan(&data)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	fragment, err := decode(data)
	if err != nil {
		return nil, false, err
	}

	return fragment, true, nil
}

func (s *Store) Set(ctx context.Context, key string, fragment cache.Fragment) error {
	data, err := encode(fragment)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO fragments (key, fragment, created_at, expires_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET fragment=EXCLUDED.fragment, created_at=EXCLUDED.created_at, expires_at=EXCLUDED.expires_at`,
		key, data, s.now().UTC(), expiresAt(s.now(), s.ttl),
	)

	return err
}

// PurgeExpired deletes expired fragments and returns the number of removed rows
func PurgeExpired(ctx context.Context, pool *pgxpool.Pool, now time.Time) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM fragments WHERE expires_at IS NOT NULL AND expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// PurgeMatching deletes fragments whose key starts with prefix, e.g. every
// fragment of a cache policy
func PurgeMatching(ctx context.Context, pool *pgxpool.Pool, prefix string) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM fragments WHERE starts_with(key, $1)`, prefix)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func Vacuum(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "VACUUM ANALYZE fragments;")
	return err
}

func expiresAt(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}

	t := now.Add(ttl).UTC()
	return &t
}

func encode(fragment cache.Fragment) ([]byte, error) {
	return json.Marshal(fragment)
}

// decode keeps numbers as json.Number so that they encode exactly as they
// were stored
func decode(data []byte) (cache.Fragment, error) {
	fragment := cache.Fragment{}

	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	if err := d.Decode(&fragment); err != nil {
		return nil, fmt.Errorf("failed to decode cached fragment: %w", err)
	}

	return fragment, nil
}

var _ cache.Store = (*Store)(nil)
