package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/diwise/resource-serializer/pkg/serialization/adapters"
	yaml "gopkg.in/yaml.v2"
)

type JSONAPIConfig struct {
	ResourceType string `yaml:"resourceType"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	TTL     string `yaml:"ttl"`
	Backend string `yaml:"backend"`
}

const (
	MemoryBackend   string = "memory"
	PostgresBackend string = "postgres"
)

// Duration returns the configured time to live, or zero if entries never expire
func (c CacheConfig) Duration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}

type ResourceConfig struct {
	Type           string `yaml:"type"`
	DefaultInclude string `yaml:"defaultInclude"`
}

type Config struct {
	Adapter   string           `yaml:"adapter"`
	JSONAPI   JSONAPIConfig    `yaml:"jsonapi"`
	Cache     CacheConfig      `yaml:"cache"`
	Resources []ResourceConfig `yaml:"resources"`
}

// DefaultInclude returns the inclusion used for resourceType when a request
// does not ask for anything
func (c *Config) DefaultInclude(resourceType string) string {
	for _, r := range c.Resources {
		if r.Type == resourceType {
			return r.DefaultInclude
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Adapter == "" {
		c.Adapter = adapters.AttributesAdapter
	}

	switch adapters.Inflection(c.JSONAPI.ResourceType) {
	case "":
		c.JSONAPI.ResourceType = string(adapters.Plural)
	case adapters.Singular, adapters.Plural:
	default:
		return fmt.Errorf("unsupported jsonapi resource type inflection %q", c.JSONAPI.ResourceType)
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = MemoryBackend
	}

	if c.Cache.Backend != MemoryBackend && c.Cache.Backend != PostgresBackend {
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}

	if _, err := c.Cache.Duration(); err != nil {
		return fmt.Errorf("invalid cache ttl: %w", err)
	}

	return nil
}

func DefaultConfiguration() *Config {
	cfg := &Config{}
	cfg.validate()
	return cfg
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}
