package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "bgv/internal/jwt_token"
	"bgv/internal/platform/config"
	httpmetrics "bgv/internal/platform/metrics"
	"bgv/internal/platform/postgres"
	platformredis "bgv/internal/platform/redis"
	"bgv/internal/verification/events"
	"bgv/internal/verification/handler"
	"bgv/internal/verification/inflight"
	vmetrics "bgv/internal/verification/metrics"
	"bgv/internal/verification/models"
	"bgv/internal/verification/providers"
	"bgv/internal/verification/service"
	"bgv/internal/verification/store"
	"bgv/pkg/platform/circuit"
	"bgv/pkg/platform/httputil"
	"bgv/pkg/platform/middleware/auth"
	"bgv/pkg/platform/middleware/metadata"
	"bgv/pkg/platform/middleware/request"
	"bgv/pkg/platform/middleware/requesttime"
)

type app struct {
	router  http.Handler
	closers []func() error
}

func (a *app) close(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("failed to close resource", "error", err)
		}
	}
}

// build selects adapters from configuration: Postgres or memory for storage,
// Redis or process-local for caching and leases, Kafka or noop for events.
func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	var (
		db       *sql.DB
		attempts service.AttemptStore
		settings store.OrgSettings
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, postgres.Config{
			URL:             cfg.Postgres.URL,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			a.close(log)
			return nil, err
		}
		attempts = store.NewPostgresAttemptStore(db)
		settings = store.NewPostgresOrgSettings(db)
		log.Info("using postgres stores")
	} else {
		attempts = store.NewInMemoryAttemptStore()
		settings = store.NewInMemoryOrgSettings()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		a.close(log)
		return nil, err
	}
	var lease inflight.Lease = inflight.NewLocalLease()
	if rc != nil {
		a.closers = append(a.closers, rc.Close)
		settings = store.NewCachedOrgSettings(rc.Client, settings, cfg.OrgSettingsCacheTTL, store.WithCacheLogger(log))
		lease = inflight.NewRedisLease(rc.Client, cfg.Guard.LeaseTTL)
		log.Info("using redis for org settings cache and in-flight leases")
	}

	var publisher service.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := events.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.AttemptsTopic)
		if err != nil {
			a.close(log)
			return nil, err
		}
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		publisher = events.NewKafkaPublisher(client, cfg.Kafka.AttemptsTopic, events.WithLogger(log))
	}

	invokers, err := buildInvokers(cfg.Providers, log)
	if err != nil {
		a.close(log)
		return nil, err
	}

	svc := service.New(attempts, settings, invokers,
		service.WithLogger(log),
		service.WithMetrics(vmetrics.New()),
		service.WithPublisher(publisher),
		service.WithGuard(inflight.New(inflight.WithLease(lease), inflight.WithLogger(log))),
		service.WithDefaultProvider(models.ParseProvider(cfg.DefaultProvider)),
	)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Recover(log))
	r.Use(request.Logger(log))
	r.Use(requesttime.Middleware)
	r.Use(httpmetrics.New().Middleware)

	r.Get("/health", healthHandler(db, rc))
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log))
		handler.New(svc, log).Register(r)
	})

	a.router = r
	return a, nil
}

func buildInvokers(cfg config.ProvidersConfig, log *slog.Logger) (*providers.Registry, error) {
	registry := providers.NewRegistry()
	switch cfg.Mode {
	case config.ProviderModeMock:
		for _, p := range []models.Provider{models.ProviderStandard, models.ProviderGL} {
			if err := registry.Register(p, providers.NewMockInvoker(string(p))); err != nil {
				return nil, err
			}
		}
		log.Warn("provider mode is mock, responses are synthetic")
	case config.ProviderModeHTTP:
		endpoints := map[models.Provider]config.Endpoint{
			models.ProviderStandard: cfg.Standard,
			models.ProviderGL:       cfg.GL,
		}
		for p, ep := range endpoints {
			if ep.BaseURL == "" {
				log.Warn("provider has no base URL, calls will be unavailable", "provider", string(p))
				continue
			}
			inv := providers.NewHTTPInvoker(string(p), ep.BaseURL, ep.APIKey, cfg.Timeout,
				providers.WithBreaker(circuit.New(string(p))),
				providers.WithLogger(log),
			)
			if err := registry.Register(p, inv); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown PROVIDER_MODE %q", cfg.Mode)
	}
	return registry, nil
}

func healthHandler(db *sql.DB, rc *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK
		if db != nil {
			checks["postgres"] = "ok"
			if err := db.PingContext(r.Context()); err != nil {
				checks["postgres"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		if rc != nil {
			checks["redis"] = "ok"
			if err := rc.Health(r.Context()); err != nil {
				checks["redis"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		body := map[string]any{"status": "ok", "checks": checks}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		httputil.WriteJSON(w, status, body)
	}
}
