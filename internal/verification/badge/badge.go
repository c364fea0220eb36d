// Package badge reduces a candidate's attempt history to one trust badge.
//
// This is pure domain logic: no I/O, no clock, no hidden state. The same
// history and classification always produce the same badge.
package badge

import (
	"bgv/internal/verification/models"
	"bgv/internal/verification/resolver"
	pstrings "bgv/pkg/platform/strings"
)

type Status string

const (
	StatusVerified          Status = "verified"
	StatusPartiallyVerified Status = "partially_verified"
	StatusUnverified        Status = "unverified"
)

type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Badge is derived on every read and never stored.
type Badge struct {
	Status  Status
	Color   Color
	Label   string
	Missing []string
}

// Classification splits methods into core methods, whose success alone marks
// a candidate Verified, and supplementary ones.
type Classification struct {
	Core          []resolver.Key
	Supplementary []models.Method
}

// DefaultClassification classifies every known method. It does not depend on
// which provider an organization uses.
func DefaultClassification() Classification {
	return ClassificationFor(models.AllMethods)
}

// ClassificationFor splits methods by models.Method.IsCore, keeping order.
func ClassificationFor(methods []models.Method) Classification {
	var cls Classification
	for _, m := range methods {
		if m.IsCore() {
			cls.Core = append(cls.Core, resolver.Key{Method: m})
		} else {
			cls.Supplementary = append(cls.Supplementary, m)
		}
	}
	return cls
}

// Declared returns the labels of every declared verification type, core first.
func (c Classification) Declared() []string {
	labels := make([]string, 0, len(c.Core)+len(c.Supplementary))
	for _, k := range c.Core {
		labels = append(labels, k.Method.Label())
	}
	for _, m := range c.Supplementary {
		labels = append(labels, m.Label())
	}
	return pstrings.DedupeAndTrim(labels)
}

// Compute applies the badge rules in priority order; the first match wins.
//  1. No attempts: Unverified, everything declared is missing.
//  2. Any core Success anywhere in history (current or legacy key): Verified.
//  3. Otherwise the most recent attempt decides:
//     Success  -> PartiallyVerified, missing the core methods not yet verified
//     NotFound -> PartiallyVerified, missing the provider's not-found reason
//     Error    -> Unverified, missing the error reason
func Compute(history models.History, cls Classification) Badge {
	// Rule 1: nothing attempted yet
	latest, ok := history.Latest()
	if !ok {
		return unverified(cls.Declared())
	}

	// Rule 2: one core success dominates whatever happened later
	for _, key := range cls.Core {
		if resolver.HasSuccessfulAttempt(history, key) {
			return Badge{Status: StatusVerified, Color: ColorGreen, Label: "Verified", Missing: []string{}}
		}
	}

	// Rule 3: the latest attempt decides
	switch latest.Outcome {
	case models.OutcomeSuccess:
		return partial(missingCore(history, cls))
	case models.OutcomeNotFound:
		return partial([]string{latest.Reason})
	default:
		return unverified([]string{latest.Reason})
	}
}

func missingCore(history models.History, cls Classification) []string {
	var missing []string
	for _, key := range cls.Core {
		if !resolver.HasSuccessfulAttempt(history, key) {
			missing = append(missing, key.Method.Label())
		}
	}
	return pstrings.DedupeAndTrim(missing)
}

func partial(missing []string) Badge {
	return Badge{Status: StatusPartiallyVerified, Color: ColorYellow, Label: "Partially Verified", Missing: missing}
}

func unverified(missing []string) Badge {
	return Badge{Status: StatusUnverified, Color: ColorRed, Label: "Unverified", Missing: missing}
}
