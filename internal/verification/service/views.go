package service

import (
	"context"
	"errors"

	"bgv/internal/verification/badge"
	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
	"bgv/internal/verification/navigation"
	"bgv/internal/verification/resolver"
	id "bgv/pkg/domain"
	dErrors "bgv/pkg/domain-errors"
)

// MenuView is the category list with verified markers.
type MenuView struct {
	Provider   models.Provider
	Categories []menu.CategoryStatus
}

func (s *Service) Menu(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (MenuView, error) {
	cfg, history, err := s.load(ctx, orgID, candidateID)
	if err != nil {
		return MenuView{}, err
	}
	return MenuView{Provider: cfg.Provider, Categories: menu.Annotate(cfg, history)}, nil
}

func (s *Service) Badge(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (badge.Badge, error) {
	_, history, err := s.load(ctx, orgID, candidateID)
	if err != nil {
		return badge.Badge{}, err
	}
	b := badge.Compute(history, badge.DefaultClassification())
	s.metrics.IncBadge(string(b.Status))
	return b, nil
}

// MethodResult is one row of the all-results panel.
type MethodResult struct {
	Category menu.CategoryKey
	Method   menu.MethodConfig
	// Latest is the newest attempt under the current or legacy key.
	Latest     *models.Attempt
	VerifiedBy *models.Attempt
}

type ResultsView struct {
	Badge   badge.Badge
	Results []MethodResult
}

// Results lists every menu method with its latest attempt and the attempt that
// verified it, if any.
func (s *Service) Results(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID) (ResultsView, error) {
	cfg, history, err := s.load(ctx, orgID, candidateID)
	if err != nil {
		return ResultsView{}, err
	}
	view := ResultsView{Badge: badge.Compute(history, badge.DefaultClassification())}
	for _, cat := range cfg.Categories {
		for _, mc := range cat.AllMethods() {
			row := MethodResult{Category: cat.Key, Method: mc}
			if a, ok := latestFor(history, mc); ok {
				row.Latest = &a
			}
			if a, ok := resolver.FindSuccessfulAttempt(history, mc.ResolverKey()); ok {
				row.VerifiedBy = &a
			}
			view.Results = append(view.Results, row)
		}
	}
	return view, nil
}

func latestFor(history models.History, mc menu.MethodConfig) (models.Attempt, bool) {
	for _, a := range history {
		if a.Method == mc.Method || (mc.Legacy != "" && a.Method == mc.Legacy) {
			return a, true
		}
	}
	return models.Attempt{}, false
}

// NavigationView is the state after a transition and, on the form panel, the
// method the form invokes.
type NavigationView struct {
	State  navigation.State
	Method *menu.MethodConfig
}

// Navigate applies event to state for the candidate. Client-supplied states
// and keys that do not fit the organization's menu are validation errors.
func (s *Service) Navigate(ctx context.Context, orgID id.OrgID, candidateID id.CandidateID, state navigation.State, event navigation.Event) (NavigationView, error) {
	cfg, history, err := s.load(ctx, orgID, candidateID)
	if err != nil {
		return NavigationView{}, err
	}
	m := navigation.New(cfg)
	if err := m.Validate(state); err != nil {
		return NavigationView{}, navigationError(err)
	}
	next, err := m.Apply(state, event, history)
	if err != nil {
		return NavigationView{}, navigationError(err)
	}
	view := NavigationView{State: next}
	if mc, ok := m.ActiveMethod(next); ok {
		view.Method = &mc
	}
	return view, nil
}

func navigationError(err error) error {
	switch {
	case errors.Is(err, navigation.ErrUnknownCategory),
		errors.Is(err, navigation.ErrUnknownMethod),
		errors.Is(err, navigation.ErrInvalidTransition):
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "navigation failed")
	}
}
