package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/diwise/resource-serializer/internal/pkg/application/renderer"
	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	"github.com/matryer/is"
)

func TestParseFlagsUsesDefaults(t *testing.T) {
	is := is.New(t)
	t.Setenv("RENDERER_CONFIG_PATH", "/etc/renderer.yaml")

	flags := parseFlags(context.Background())

	is.Equal(flags[servicePort], "8080")
	is.Equal(flags[configPath], "/etc/renderer.yaml")
	is.Equal(flags[policyPath], "")
}

func TestLoadConfigurationFromFile(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "renderer.yaml")
	is.NoErr(os.WriteFile(path, []byte("adapter: json\ncache:\n  enabled: true\n  ttl: 1m\n"), 0o600))

	cfg, err := loadConfiguration(path)
	is.NoErr(err)
	is.Equal(cfg.Adapter, "json")
	is.True(cfg.Cache.Enabled)

	cfg, err = loadConfiguration("")
	is.NoErr(err)
	is.Equal(cfg.Adapter, "attributes")

	_, err = loadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	is.True(err != nil)
}

func TestLoadPolicies(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "visibility.rego")
	is.NoErr(os.WriteFile(path, []byte("package serializer.visibility\n\ndefault allow = true\n"), 0o600))

	evaluator, err := loadPolicies(context.Background(), path)
	is.NoErr(err)
	is.True(evaluator != nil)
}

func TestMemoryCacheStoreIsDefault(t *testing.T) {
	is := is.New(t)

	store, err := newCacheStore(context.Background(), renderer.CacheConfig{Enabled: true, TTL: "5m", Backend: renderer.MemoryBackend})
	is.NoErr(err)

	_, ok := store.(*cache.MemoryStore)
	is.True(ok) // memory backend should give a memory store
}
