package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lumenchat/canopy/pkg/api"
	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/config"
	"github.com/lumenchat/canopy/pkg/observability"
	"github.com/lumenchat/canopy/pkg/sso"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
	"github.com/lumenchat/canopy/pkg/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "canopy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}
	defer closeStore()
	logger.Infof("Store ready (%s)", cfg.Database.Type)

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	resolverOpts := []tenantconf.Option{
		tenantconf.WithLogger(logger),
		tenantconf.WithCacheSize(cfg.Cache.Size),
		tenantconf.WithCacheTTL(cfg.Cache.TTL),
	}
	if metrics != nil {
		resolverOpts = append(resolverOpts, tenantconf.WithMetrics(metrics))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		bus := tenantconf.NewInvalidationBusFromClient(redisClient)
		resolverOpts = append(resolverOpts, tenantconf.WithInvalidationBus(bus))
	}

	resolver := tenantconf.NewResolver(store, resolverOpts...)
	if redisClient != nil {
		go resolver.SubscribeInvalidations(ctx)
		logger.Infof("Invalidation bus connected (%s)", cfg.Redis.Addr)
	}

	if cfg.Legacy.Dir != "" && cfg.Legacy.Watch {
		watcher, err := tenantconf.NewLegacyWatcher(cfg.Legacy.Dir, resolver, logrus.New())
		if err != nil {
			return fmt.Errorf("failed to watch legacy config dir: %w", err)
		}
		go watcher.Start()
		defer watcher.Stop()
	}

	manager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	notifier := webhook.NewNotifier(resolver,
		webhook.WithSigningSecret(cfg.Webhook.SigningSecret),
		webhook.WithLogger(logger))
	defer notifier.Flush()

	serverOpts := []api.ServerOption{api.WithLogger(logger), api.WithNotifier(notifier)}
	ssoHandlers, err := buildSSOHandlers(cfg, store, resolver, manager, notifier, logger)
	if err != nil {
		return err
	}
	if ssoHandlers != nil {
		serverOpts = append(serverOpts, api.WithSSOHandlers(ssoHandlers))
	}
	server := api.NewServer(store, resolver, manager, serverOpts...)

	var handler http.Handler = server
	if metrics != nil {
		handler = observability.HTTPMetricsMiddleware(metrics)(handler)
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	checker := observability.NewHealthChecker(db, redisClient)
	healthServer := observability.NewHealthServer(
		net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort), checker, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := apiServer.Shutdown(shutdownCtx)
		if herr := healthServer.Shutdown(shutdownCtx); err == nil {
			err = herr
		}
		return err
	})

	return g.Wait()
}

// openStore opens the configured store backend. The returned *sql.DB is nil
// for the memory backend and feeds the readiness probe otherwise.
func openStore(ctx context.Context, cfg *config.Config) (tenant.Store, *sql.DB, func() error, error) {
	switch cfg.Database.Type {
	case "postgres":
		store, err := tenant.OpenPostgres(ctx, cfg.Database.PostgresURL, cfg.Database.PostgresMaxConns)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		return store, store.DB(), store.Close, nil

	case "sqlite":
		store, err := tenant.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store.DB(), store.Close, nil

	default:
		return tenant.NewMemoryStore(), nil, func() error { return nil }, nil
	}
}

// buildSSOHandlers registers every identity provider that has credentials
// configured. Returns nil when none do.
func buildSSOHandlers(cfg *config.Config, store tenant.Store, resolver *tenantconf.Resolver, manager *auth.Manager, notifier *webhook.Notifier, logger *observability.Logger) (*sso.Handlers, error) {
	credentials := []struct {
		name         sso.ProviderName
		clientID     string
		clientSecret string
		fill         func(*sso.ProviderConfig, string, string)
	}{
		{
			name:         sso.ProviderGoogle,
			clientID:     cfg.SSO.GoogleClientID,
			clientSecret: cfg.SSO.GoogleClientSecret,
			fill: func(pc *sso.ProviderConfig, id, secret string) {
				pc.OIDCConfig.ClientID = id
				pc.OIDCConfig.ClientSecret = secret
			},
		},
		{
			name:         sso.ProviderGitHub,
			clientID:     cfg.SSO.GitHubClientID,
			clientSecret: cfg.SSO.GitHubClientSecret,
			fill: func(pc *sso.ProviderConfig, id, secret string) {
				pc.OAuth2Config.ClientID = id
				pc.OAuth2Config.ClientSecret = secret
			},
		},
	}

	factory := sso.NewFactory(cfg.SSO.BaseURL)
	registry := sso.NewRegistry()
	registered := 0
	for _, cred := range credentials {
		if cred.clientID == "" {
			continue
		}
		providerConfig, err := sso.PresetConfig(cred.name)
		if err != nil {
			return nil, err
		}
		providerConfig.Enabled = true
		cred.fill(providerConfig, cred.clientID, cred.clientSecret)

		provider, err := factory.Create(providerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s sso: %w", cred.name, err)
		}
		registry.Register(provider)
		registered++
		logger.Infof("Registered SSO provider %s", cred.name)
	}
	if registered == 0 {
		return nil, nil
	}

	provisioner := sso.NewProvisioner(store, cfg.SSO.AutoProvision, sso.WithNotifier(notifier))
	return sso.NewHandlers(store, resolver, registry, provisioner, manager, logger), nil
}
