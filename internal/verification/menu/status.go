package menu

import (
	"bgv/internal/verification/models"
	"bgv/internal/verification/resolver"
)

// MethodStatus is a method entry annotated with its verified state.
type MethodStatus struct {
	MethodConfig
	Verified   bool
	VerifiedBy *models.Attempt
}

// CategoryStatus is a category annotated for the menu list. A category is
// verified once any of its methods is.
type CategoryStatus struct {
	Key      CategoryKey
	Label    string
	Direct   bool
	Verified bool
	Methods  []MethodStatus
}

// Annotate marks every entry of cfg verified or not from history, using the
// same resolver navigation uses for skip-ahead.
func Annotate(cfg Config, history models.History) []CategoryStatus {
	out := make([]CategoryStatus, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		cs := CategoryStatus{Key: cat.Key, Label: cat.Label, Direct: cat.Direct}
		for _, mc := range cat.AllMethods() {
			ms := MethodStatus{MethodConfig: mc}
			if a, ok := resolver.FindSuccessfulAttempt(history, mc.ResolverKey()); ok {
				ms.Verified = true
				ms.VerifiedBy = &a
				cs.Verified = true
			}
			cs.Methods = append(cs.Methods, ms)
		}
		out = append(out, cs)
	}
	return out
}
