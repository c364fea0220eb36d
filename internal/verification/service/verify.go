package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bgv/internal/verification/classifier"
	"bgv/internal/verification/events"
	"bgv/internal/verification/inflight"
	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
	"bgv/internal/verification/providers"
	id "bgv/pkg/domain"
	dErrors "bgv/pkg/domain-errors"
	"bgv/pkg/platform/sentinel"
	"bgv/pkg/requestcontext"
)

// Verify runs method for the candidate against the organization's provider
// and records whatever came back.
//
// Rules:
//  1. The method must be offered by the organization's menu.
//  2. Inputs are normalized and validated before any provider call.
//  3. One call per (candidate, method) runs at a time; in-process duplicates
//     share its result, duplicates on other instances get a conflict.
//  4. Every call that reached the provider is recorded, including failures and
//     responses that arrive after the caller gave up.
func (s *Service) Verify(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, method models.Method, inputs map[string]string) (models.Attempt, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Verify", trace.WithAttributes(
		attribute.String("candidate_id", candidateID.String()),
		attribute.String("method", string(method)),
	))
	defer span.End()

	attempt, err := s.verify(ctx, orgID, candidateID, method, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return models.Attempt{}, err
	}
	span.SetAttributes(
		attribute.String("outcome", string(attempt.Outcome)),
		attribute.Int("status_code", attempt.StatusCode),
	)
	return attempt, nil
}

func (s *Service) verify(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, method models.Method, inputs map[string]string) (models.Attempt, error) {
	provider, err := s.ActiveProvider(ctx, orgID)
	if err != nil {
		return models.Attempt{}, err
	}
	mc, ok := menu.Build(provider).MethodConfig(method)
	if !ok {
		return models.Attempt{}, dErrors.New(dErrors.CodeValidation, "method "+string(method)+" is not offered by provider "+string(provider))
	}
	normalized, err := menu.NormalizeInputs(mc, inputs)
	if err != nil {
		return models.Attempt{}, err
	}
	invoker, ok := s.invokers.For(provider)
	if !ok {
		return models.Attempt{}, dErrors.New(dErrors.CodeUnavailable, "no provider configured")
	}

	key := inflight.Key{CandidateID: candidateID, Method: method}
	attempt, shared, err := s.guard.Do(ctx, key, func(ctx context.Context) (models.Attempt, error) {
		// Leaving the form does not abort the provider call; the invoker's
		// own timeout bounds it.
		return s.invoke(context.WithoutCancel(ctx), orgID, candidateID, provider, invoker, method, normalized)
	})
	if shared {
		s.metrics.IncDuplicate("coalesced")
	}
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			s.metrics.IncDuplicate("rejected")
			return models.Attempt{}, dErrors.Wrap(err, dErrors.CodeConflict, "verification already in progress")
		case errors.Is(err, sentinel.ErrUnavailable):
			return models.Attempt{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification temporarily unavailable")
		}
		return models.Attempt{}, err
	}
	return attempt, nil
}

func (s *Service) invoke(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, provider models.Provider, invoker providers.Invoker, method models.Method, inputs map[string]string) (models.Attempt, error) {
	start := time.Now()
	raw, err := invoker.Invoke(ctx, method, inputs)
	s.metrics.ObserveProviderLatency(invoker.ID(), string(method), time.Since(start))

	if err != nil {
		category := providers.GetCategory(err)
		s.metrics.IncProviderFailure(invoker.ID(), string(category))
		s.logger.WarnContext(ctx, "provider call failed",
			"request_id", requestcontext.RequestID(ctx),
			"candidate_id", candidateID.String(),
			"method", string(method),
			"provider", invoker.ID(),
			"category", string(category),
			"error", err,
		)
		if errors.Is(err, providers.ErrCircuitOpen) {
			return models.Attempt{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "provider temporarily unavailable")
		}
		raw = failurePayload(err)
	}

	return s.record(ctx, orgID, candidateID, provider, method, raw)
}

// RecordAttempt stores a raw provider response obtained outside this service.
func (s *Service) RecordAttempt(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, method models.Method, raw json.RawMessage) (models.Attempt, error) {
	ctx, span := s.tracer.Start(ctx, "verification.RecordAttempt", trace.WithAttributes(
		attribute.String("candidate_id", candidateID.String()),
		attribute.String("method", string(method)),
	))
	defer span.End()

	if !method.IsKnown() {
		return models.Attempt{}, dErrors.New(dErrors.CodeValidation, "unknown method: "+string(method))
	}
	if len(raw) == 0 || !json.Valid(raw) {
		return models.Attempt{}, dErrors.New(dErrors.CodeValidation, "raw_response must be a JSON document")
	}
	provider, err := s.ActiveProvider(ctx, orgID)
	if err != nil {
		return models.Attempt{}, err
	}
	attempt, err := s.record(ctx, orgID, candidateID, provider, method, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return models.Attempt{}, err
	}
	return attempt, nil
}

func (s *Service) record(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, provider models.Provider, method models.Method, raw json.RawMessage) (models.Attempt, error) {
	rec := models.AttemptRecord{
		ID:          id.NewAttemptID(),
		CandidateID: candidateID,
		Method:      method,
		RawResponse: raw,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.attempts.Append(ctx, rec); err != nil {
		return models.Attempt{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification attempt")
	}

	attempt := classifier.Attempt(rec)
	s.metrics.IncOutcome(string(method), string(attempt.Outcome))
	s.logger.InfoContext(ctx, "verification attempt recorded",
		"request_id", requestcontext.RequestID(ctx),
		"candidate_id", candidateID.String(),
		"attempt_id", rec.ID.String(),
		"method", string(method),
		"outcome", string(attempt.Outcome),
		"status_code", attempt.StatusCode,
	)

	err := s.publisher.PublishAttemptRecorded(ctx, events.AttemptRecorded{
		AttemptID:   rec.ID.String(),
		CandidateID: candidateID.String(),
		OrgID:       orgIDString(orgID),
		Method:      string(method),
		Provider:    string(provider),
		Outcome:     string(attempt.Outcome),
		StatusCode:  attempt.StatusCode,
		Reason:      attempt.Reason,
		RequestID:   requestcontext.RequestID(ctx),
		OccurredAt:  rec.CreatedAt,
	})
	if err != nil {
		s.metrics.IncPublishFailure()
		s.logger.ErrorContext(ctx, "failed to publish attempt event",
			"attempt_id", rec.ID.String(),
			"error", err,
		)
	}
	return attempt, nil
}

func orgIDString(orgID id.OrgID) string {
	if orgID.IsNil() {
		return ""
	}
	return orgID.String()
}
