package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/diwise/resource-serializer/internal/pkg/infrastructure/pgcache"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const (
	appName string = "cache-purger"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	log.Debug("begin purging fragments")

	p, err := pgcache.Connect(ctx, pgcache.LoadConfiguration(ctx))
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		os.Exit(1)
	}
	defer p.Close()

	var total int64

	// an optional key prefix drops every fragment of a cache policy, e.g. "author/"
	if prefix := env.GetVariableOrDefault(ctx, "PURGE_KEY_PREFIX", ""); prefix != "" {
		count, err := pgcache.PurgeMatching(ctx, p, prefix)
		if err != nil {
			log.Error("failed to purge fragments by prefix", "prefix", prefix, "err", err.Error())
			os.Exit(1)
		}

		log.Debug("purged fragments by prefix", slog.String("prefix", prefix), slog.Int64("count", count))
		total += count
	}

	count, err := pgcache.PurgeExpired(ctx, p, time.Now())
	if err != nil {
		log.Error("failed to purge expired fragments", "err", err.Error())
		os.Exit(1)
	}

	log.Debug("purged expired fragments", slog.Int64("count", count), slog.Time("end_time", time.Now()))
	total += count

	log.Debug("vacuum")

	err = pgcache.Vacuum(ctx, p)
	if err != nil {
		log.Error("failed to vacuum table", "err", err.Error())
		os.Exit(1)
	}

	log.Info("done purging", slog.Int64("total", total))
}
