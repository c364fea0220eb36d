// Package navigation drives the guided verification flow:
// category list -> method list -> input form / result.
//
// State is a plain value and every transition is a pure function of
// (state, event, history). Nothing here renders or persists anything.
package navigation

import (
	"errors"
	"fmt"

	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
	"bgv/internal/verification/resolver"
)

type Panel string

const (
	PanelMain       Panel = "main"
	PanelSubmenu    Panel = "submenu"
	PanelForm       Panel = "form"
	PanelAllResults Panel = "all_results"
)

// State is the whole navigation state. Category is set on Submenu and Form;
// MethodKey only on Form.
type State struct {
	Panel     Panel            `json:"panel"`
	Category  menu.CategoryKey `json:"category,omitempty"`
	MethodKey string           `json:"method,omitempty"`
}

// Initial is the state every flow starts in.
func Initial() State {
	return State{Panel: PanelMain}
}

type EventKind string

const (
	EventSelectCategory EventKind = "select_category"
	EventSelectMethod   EventKind = "select_method"
	EventBack           EventKind = "back"
)

type Event struct {
	Kind EventKind `json:"type"`
	Key  string    `json:"key,omitempty"`
}

// Keys that are not in the menu indicate a caller built against a different
// menu; they are rejected immediately rather than treated as user input.
var (
	ErrUnknownCategory   = errors.New("unknown verification category")
	ErrUnknownMethod     = errors.New("unknown verification method")
	ErrInvalidTransition = errors.New("invalid navigation transition")
)

// Machine evaluates transitions against one organization's menu.
type Machine struct {
	cfg menu.Config
}

func New(cfg menu.Config) *Machine {
	return &Machine{cfg: cfg}
}

// Apply dispatches e to the matching transition.
func (m *Machine) Apply(s State, e Event, history models.History) (State, error) {
	switch e.Kind {
	case EventSelectCategory:
		return m.SelectCategory(s, menu.CategoryKey(e.Key), history)
	case EventSelectMethod:
		return m.SelectMethod(s, e.Key)
	case EventBack:
		return m.Back(s, history)
	default:
		return s, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, e.Kind)
	}
}

// SelectCategory leaves Main. Direct categories open their form; categories
// with sub-methods skip straight to the form of the first sub-method that is
// already verified, and otherwise open the submenu.
func (m *Machine) SelectCategory(s State, key menu.CategoryKey, history models.History) (State, error) {
	if s.Panel != PanelMain {
		return s, fmt.Errorf("%w: select category from %s", ErrInvalidTransition, s.Panel)
	}
	if key == menu.CategoryViewAll {
		return State{Panel: PanelAllResults}, nil
	}
	cat, ok := m.cfg.Category(key)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	if cat.Direct {
		return State{Panel: PanelForm, Category: cat.Key, MethodKey: cat.Method.Key}, nil
	}
	for _, mc := range cat.Methods {
		if resolver.HasSuccessfulAttempt(history, mc.ResolverKey()) {
			return State{Panel: PanelForm, Category: cat.Key, MethodKey: mc.Key}, nil
		}
	}
	return State{Panel: PanelSubmenu, Category: cat.Key}, nil
}

// SelectMethod opens the form of a sub-method.
func (m *Machine) SelectMethod(s State, key string) (State, error) {
	if s.Panel != PanelSubmenu {
		return s, fmt.Errorf("%w: select method from %s", ErrInvalidTransition, s.Panel)
	}
	cat, ok := m.cfg.Category(s.Category)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
	}
	mc, ok := cat.MethodByKey(key)
	if !ok {
		return s, fmt.Errorf("%w: %q in %q", ErrUnknownMethod, key, cat.Key)
	}
	return State{Panel: PanelForm, Category: cat.Key, MethodKey: mc.Key}, nil
}

// Back returns one level. From a form it goes to Main when the category is
// direct or the method is already verified, and to the submenu otherwise.
func (m *Machine) Back(s State, history models.History) (State, error) {
	switch s.Panel {
	case PanelSubmenu, PanelAllResults:
		return Initial(), nil
	case PanelForm:
		cat, ok := m.cfg.Category(s.Category)
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
		}
		if cat.Direct {
			return Initial(), nil
		}
		mc, ok := cat.MethodByKey(s.MethodKey)
		if !ok {
			return s, fmt.Errorf("%w: %q in %q", ErrUnknownMethod, s.MethodKey, cat.Key)
		}
		if resolver.HasSuccessfulAttempt(history, mc.ResolverKey()) {
			return Initial(), nil
		}
		return State{Panel: PanelSubmenu, Category: cat.Key}, nil
	default:
		return s, fmt.Errorf("%w: back from %s", ErrInvalidTransition, s.Panel)
	}
}

// ActiveMethod returns the method a Form state points at.
func (m *Machine) ActiveMethod(s State) (menu.MethodConfig, bool) {
	if s.Panel != PanelForm {
		return menu.MethodConfig{}, false
	}
	cat, ok := m.cfg.Category(s.Category)
	if !ok {
		return menu.MethodConfig{}, false
	}
	return cat.MethodByKey(s.MethodKey)
}

// Validate checks that s could have been produced by this machine.
func (m *Machine) Validate(s State) error {
	switch s.Panel {
	case PanelMain, PanelAllResults:
		if s.Category != "" || s.MethodKey != "" {
			return fmt.Errorf("%w: %s carries a selection", ErrInvalidTransition, s.Panel)
		}
		return nil
	case PanelSubmenu:
		cat, ok := m.cfg.Category(s.Category)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
		}
		if cat.Direct || s.MethodKey != "" {
			return fmt.Errorf("%w: submenu of %q", ErrInvalidTransition, s.Category)
		}
		return nil
	case PanelForm:
		if _, ok := m.cfg.Category(s.Category); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
		}
		if _, ok := m.ActiveMethod(s); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMethod, s.MethodKey)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown panel %q", ErrInvalidTransition, s.Panel)
	}
}
