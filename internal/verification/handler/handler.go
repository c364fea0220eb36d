package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bgv/internal/verification/badge"
	"bgv/internal/verification/models"
	"bgv/internal/verification/navigation"
	"bgv/internal/verification/service"
	id "bgv/pkg/domain"
	dErrors "bgv/pkg/domain-errors"
	"bgv/pkg/platform/httputil"
	"bgv/pkg/requestcontext"
)

// Service defines the verification operations the HTTP layer exposes.
type Service interface {
	Verify(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, method models.Method, inputs map[string]string) (models.Attempt, error)
	RecordAttempt(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, method models.Method, raw json.RawMessage) (models.Attempt, error)
	History(ctx context.Context, candidateID id.CandidateID) (models.History, error)
	Badge(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (badge.Badge, error)
	Menu(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (service.MenuView, error)
	Results(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (service.ResultsView, error)
	Navigate(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, state navigation.State, event navigation.Event) (service.NavigationView, error)
	SetActiveProvider(ctx context.Context, orgID id.OrgID, provider string) (models.Provider, error)
}

// Handler serves the candidate verification endpoints. Routes expect the
// auth middleware to have put the caller's organization on the context.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/candidates/{candidateID}", func(r chi.Router) {
		r.Post("/verifications/{method}", h.handleVerify)
		r.Post("/attempts", h.handleRecordAttempt)
		r.Get("/attempts", h.handleListAttempts)
		r.Get("/badge", h.handleBadge)
		r.Get("/menu", h.handleMenu)
		r.Get("/results", h.handleResults)
		r.Post("/navigation", h.handleNavigate)
	})
	r.Put("/settings/provider", h.handleSetProvider)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	method, err := models.ParseMethod(chi.URLParam(r, "method"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	attempt, err := h.service.Verify(ctx, orgID, candidateID, method, req.Inputs)
	if err != nil {
		h.logFailure(ctx, "verify", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAttemptResponse(attempt))
}

func (h *Handler) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordAttemptRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	attempt, err := h.service.RecordAttempt(ctx, orgID, candidateID, req.method, req.RawResponse)
	if err != nil {
		h.logFailure(ctx, "record attempt", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAttemptResponse(attempt))
}

func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(ctx, candidateID)
	if err != nil {
		h.logFailure(ctx, "list attempts", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(history))
}

func (h *Handler) handleBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	b, err := h.service.Badge(ctx, orgID, candidateID)
	if err != nil {
		h.logFailure(ctx, "badge", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBadgeResponse(b))
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	view, err := h.service.Menu(ctx, orgID, candidateID)
	if err != nil {
		h.logFailure(ctx, "menu", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMenuResponse(view))
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	view, err := h.service.Results(ctx, orgID, candidateID)
	if err != nil {
		h.logFailure(ctx, "results", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResultsResponse(view))
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, candidateID, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[NavigationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Navigate(ctx, orgID, candidateID, req.State, req.Event)
	if err != nil {
		h.logFailure(ctx, "navigate", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toNavigationResponse(view))
}

func (h *Handler) handleSetProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "organization context required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetProviderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.SetActiveProvider(ctx, orgID, req.Provider)
	if err != nil {
		h.logFailure(ctx, "set provider", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProviderResponse{Provider: string(p)})
}

// scope reads the caller's organization and the candidate path parameter,
// writing the error response when either is missing.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (id.OrgID, id.CandidateID, bool) {
	orgID := requestcontext.OrgID(r.Context())
	if orgID.IsNil() {
		h.logger.ErrorContext(r.Context(), "organization missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "organization context required"))
		return id.OrgID{}, id.CandidateID{}, false
	}
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.OrgID{}, id.CandidateID{}, false
	}
	return orgID, candidateID, true
}

func (h *Handler) logFailure(ctx context.Context, op string, err error) {
	code := dErrors.CodeOf(err)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, "verification request failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, "verification request rejected", attrs...)
}
