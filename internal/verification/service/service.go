package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bgv/internal/verification/classifier"
	"bgv/internal/verification/events"
	"bgv/internal/verification/inflight"
	"bgv/internal/verification/menu"
	"bgv/internal/verification/metrics"
	"bgv/internal/verification/models"
	"bgv/internal/verification/providers"
	id "bgv/pkg/domain"
	dErrors "bgv/pkg/domain-errors"
	"bgv/pkg/platform/sentinel"
)

const tracerName = "bgv/internal/verification/service"

type AttemptStore interface {
	Append(ctx context.Context, rec models.AttemptRecord) error
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]models.AttemptRecord, error)
}

type SettingsStore interface {
	ActiveProvider(ctx context.Context, orgID id.OrgID) (models.Provider, error)
	SetActiveProvider(ctx context.Context, orgID id.OrgID, p models.Provider) error
}

type InvokerRegistry interface {
	For(p models.Provider) (providers.Invoker, bool)
}

type Guard interface {
	Do(ctx context.Context, key inflight.Key, fn func(context.Context) (models.Attempt, error)) (models.Attempt, bool, error)
}

type Publisher interface {
	PublishAttemptRecorded(ctx context.Context, e events.AttemptRecorded) error
}

// Service orchestrates provider calls, attempt history, and the menu,
// badge and navigation views built from that history.
type Service struct {
	attempts        AttemptStore
	settings        SettingsStore
	invokers        InvokerRegistry
	guard           Guard
	publisher       Publisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	defaultProvider models.Provider
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithGuard(g Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithDefaultProvider sets the provider used for organizations without
// settings.
func WithDefaultProvider(p models.Provider) Option {
	return func(s *Service) {
		s.defaultProvider = models.ParseProvider(string(p))
	}
}

// New constructs a Service.
func New(attempts AttemptStore, settings SettingsStore, invokers InvokerRegistry, opts ...Option) *Service {
	s := &Service{
		attempts:        attempts,
		settings:        settings,
		invokers:        invokers,
		publisher:       events.NoopPublisher{},
		logger:          slog.Default(),
		tracer:          otel.Tracer(tracerName),
		defaultProvider: models.ProviderStandard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = inflight.New(inflight.WithLogger(s.logger))
	}
	return s
}

// ActiveProvider returns the organization's provider, falling back to the
// default when the organization has no settings or an unknown value.
func (s *Service) ActiveProvider(ctx context.Context, orgID id.OrgID) (models.Provider, error) {
	if orgID.IsNil() {
		return s.defaultProvider, nil
	}
	p, err := s.settings.ActiveProvider(ctx, orgID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.defaultProvider, nil
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization settings")
	}
	if p == "" {
		return s.defaultProvider, nil
	}
	return models.ParseProvider(string(p)), nil
}

// SetActiveProvider changes which vendor an organization uses.
func (s *Service) SetActiveProvider(ctx context.Context, orgID id.OrgID, raw string) (models.Provider, error) {
	if orgID.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "organization is required")
	}
	p := models.Provider(raw)
	if p != models.ProviderStandard && p != models.ProviderGL {
		return "", dErrors.New(dErrors.CodeValidation, "unknown provider: "+raw)
	}
	if err := s.settings.SetActiveProvider(ctx, orgID, p); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save organization settings")
	}
	s.logger.InfoContext(ctx, "active provider changed", "org_id", orgID.String(), "provider", string(p))
	return p, nil
}

// MenuConfig builds the menu for the organization's active provider.
func (s *Service) MenuConfig(ctx context.Context, orgID id.OrgID) (menu.Config, error) {
	p, err := s.ActiveProvider(ctx, orgID)
	if err != nil {
		return menu.Config{}, err
	}
	return menu.Build(p), nil
}

// History returns the candidate's classified attempts, newest first.
func (s *Service) History(ctx context.Context, candidateID id.CandidateID) (models.History, error) {
	records, err := s.attempts.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification attempts")
	}
	return classifier.History(records), nil
}

// load fetches the menu and history concurrently.
func (s *Service) load(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (menu.Config, models.History, error) {
	var (
		cfg     menu.Config
		history models.History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = s.MenuConfig(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.History(gctx, candidateID)
		return err
	})
	if err := g.Wait(); err != nil {
		return menu.Config{}, nil, err
	}
	return cfg, history, nil
}

func failurePayload(err error) json.RawMessage {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"category": string(providers.GetCategory(err)),
			"message":  err.Error(),
		},
	})
	return body
}
