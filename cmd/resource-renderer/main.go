package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/diwise/resource-serializer/internal/pkg/application/blog"
	"github.com/diwise/resource-serializer/internal/pkg/application/policy"
	"github.com/diwise/resource-serializer/internal/pkg/application/renderer"
	"github.com/diwise/resource-serializer/internal/pkg/infrastructure/pgcache"
	"github.com/diwise/resource-serializer/internal/pkg/infrastructure/router"
	"github.com/diwise/resource-serializer/internal/pkg/presentation/api"
	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const serviceName string = "resource-renderer"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseFlags(ctx)

	cfg, err := loadConfiguration(flags[configPath])
	if err != nil {
		fatal(ctx, "failed to load configuration", err)
	}

	options := []blog.DescriptorOption{}

	if flags[policyPath] != "" {
		evaluator, err := loadPolicies(ctx, flags[policyPath])
		if err != nil {
			fatal(ctx, "failed to load visibility policies", err)
		}
		options = append(options, blog.WithVisibility(evaluator))
	}

	rendererOptions := []renderer.Option{}

	if cfg.Cache.Enabled {
		store, err := newCacheStore(ctx, cfg.Cache)
		if err != nil {
			fatal(ctx, "failed to create fragment cache", err)
		}
		options = append(options, blog.WithFragmentCache())
		rendererOptions = append(rendererOptions, renderer.WithCacheStore(store))
	}

	descriptors, err := blog.Descriptors(options...)
	if err != nil {
		fatal(ctx, "failed to describe blog resources", err)
	}

	app, err := renderer.New(cfg, blog.NewRepository(blog.SampleData()), descriptors, rendererOptions...)
	if err != nil {
		fatal(ctx, "failed to create renderer", err)
	}

	r := router.New(serviceName, logger)

	err = api.RegisterHandlers(ctx, r, app)
	if err != nil {
		fatal(ctx, "failed to register api handlers", err)
	}

	logger.Info("starting to listen for connections", "port", flags[servicePort])

	err = http.ListenAndServe(":"+flags[servicePort], r)
	if err != nil {
		fatal(ctx, "failed to listen for connections", err)
	}
}

func parseFlags(ctx context.Context) FlagMap {
	return FlagMap{
		servicePort: env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080"),
		configPath:  env.GetVariableOrDefault(ctx, "RENDERER_CONFIG_PATH", ""),
		policyPath:  env.GetVariableOrDefault(ctx, "POLICY_PATH", ""),
	}
}

func loadConfiguration(path string) (*renderer.Config, error) {
	if path == "" {
		return renderer.DefaultConfiguration(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer f.Close()

	return renderer.LoadConfiguration(f)
}

func loadPolicies(ctx context.Context, path string) (policy.Evaluator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	return policy.NewEvaluator(ctx, f)
}

func newCacheStore(ctx context.Context, cfg renderer.CacheConfig) (cache.Store, error) {
	ttl, err := cfg.Duration()
	if err != nil {
		return nil, err
	}

	if cfg.Backend == renderer.PostgresBackend {
		pool, err := pgcache.Connect(ctx, pgcache.LoadConfiguration(ctx))
		if err != nil {
			return nil, err
		}
		return pgcache.New(ctx, pool, ttl)
	}

	return cache.NewMemoryStore(cache.WithTTL(ttl)), nil
}

func fatal(ctx context.Context, msg string, err error) {
	logging.GetFromContext(ctx).Error(msg, slog.String("err", err.Error()))
	os.Exit(1)
}
