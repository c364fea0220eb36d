package handler

import (
	"encoding/json"
	"time"

	"bgv/internal/verification/badge"
	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
	"bgv/internal/verification/navigation"
	"bgv/internal/verification/service"
)

type AttemptResponse struct {
	ID          string          `json:"id"`
	CandidateID string          `json:"candidate_id"`
	Method      string          `json:"method"`
	Label       string          `json:"label"`
	Outcome     string          `json:"outcome"`
	StatusCode  int             `json:"status_code"`
	Reason      string          `json:"reason"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type HistoryResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

type BadgeResponse struct {
	Status  string   `json:"status"`
	Color   string   `json:"color"`
	Label   string   `json:"label"`
	Missing []string `json:"missing"`
}

type MethodStatusResponse struct {
	menu.MethodConfig
	Verified   bool             `json:"verified"`
	VerifiedBy *AttemptResponse `json:"verified_by,omitempty"`
}

type CategoryResponse struct {
	Key      string                 `json:"key"`
	Label    string                 `json:"label"`
	Direct   bool                   `json:"direct"`
	Verified bool                   `json:"verified"`
	Methods  []MethodStatusResponse `json:"methods"`
}

type MenuResponse struct {
	Provider   string             `json:"provider"`
	Categories []CategoryResponse `json:"categories"`
}

type ResultResponse struct {
	Category   string            `json:"category"`
	Method     menu.MethodConfig `json:"method"`
	Latest     *AttemptResponse  `json:"latest,omitempty"`
	VerifiedBy *AttemptResponse  `json:"verified_by,omitempty"`
}

type ResultsResponse struct {
	Badge   BadgeResponse    `json:"badge"`
	Results []ResultResponse `json:"results"`
}

type NavigationResponse struct {
	State  navigation.State   `json:"state"`
	Method *menu.MethodConfig `json:"method,omitempty"`
}

type ProviderResponse struct {
	Provider string `json:"provider"`
}

func toAttemptResponse(a models.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:          a.ID.String(),
		CandidateID: a.CandidateID.String(),
		Method:      string(a.Method),
		Label:       a.Method.Label(),
		Outcome:     string(a.Outcome),
		StatusCode:  a.StatusCode,
		Reason:      a.Reason,
		RawResponse: a.RawResponse,
		CreatedAt:   a.CreatedAt,
	}
}

func toAttemptPtr(a *models.Attempt) *AttemptResponse {
	if a == nil {
		return nil
	}
	resp := toAttemptResponse(*a)
	return &resp
}

func toHistoryResponse(h models.History) HistoryResponse {
	resp := HistoryResponse{Attempts: make([]AttemptResponse, 0, len(h))}
	for _, a := range h {
		resp.Attempts = append(resp.Attempts, toAttemptResponse(a))
	}
	return resp
}

func toBadgeResponse(b badge.Badge) BadgeResponse {
	missing := b.Missing
	if missing == nil {
		missing = []string{}
	}
	return BadgeResponse{
		Status:  string(b.Status),
		Color:   string(b.Color),
		Label:   b.Label,
		Missing: missing,
	}
}

func toMenuResponse(v service.MenuView) MenuResponse {
	resp := MenuResponse{
		Provider:   string(v.Provider),
		Categories: make([]CategoryResponse, 0, len(v.Categories)),
	}
	for _, cat := range v.Categories {
		cr := CategoryResponse{
			Key:      string(cat.Key),
			Label:    cat.Label,
			Direct:   cat.Direct,
			Verified: cat.Verified,
			Methods:  make([]MethodStatusResponse, 0, len(cat.Methods)),
		}
		for _, m := range cat.Methods {
			cr.Methods = append(cr.Methods, MethodStatusResponse{
				MethodConfig: m.MethodConfig,
				Verified:     m.Verified,
				VerifiedBy:   toAttemptPtr(m.VerifiedBy),
			})
		}
		resp.Categories = append(resp.Categories, cr)
	}
	return resp
}

func toResultsResponse(v service.ResultsView) ResultsResponse {
	resp := ResultsResponse{
		Badge:   toBadgeResponse(v.Badge),
		Results: make([]ResultResponse, 0, len(v.Results)),
	}
	for _, r := range v.Results {
		resp.Results = append(resp.Results, ResultResponse{
			Category:   string(r.Category),
			Method:     r.Method,
			Latest:     toAttemptPtr(r.Latest),
			VerifiedBy: toAttemptPtr(r.VerifiedBy),
		})
	}
	return resp
}

func toNavigationResponse(v service.NavigationView) NavigationResponse {
	return NavigationResponse{State: v.State, Method: v.Method}
}
