// Package menu builds the tree of verification categories an organization
// sees, selecting the current method key from the active provider.
//
// A Config is built once per organization-configuration load and is not
// mutated afterwards.
package menu

import (
	"regexp"
	"strings"

	"bgv/internal/verification/models"
	"bgv/internal/verification/resolver"
	dErrors "bgv/pkg/domain-errors"
)

// CategoryKey identifies a top-level menu entry.
type CategoryKey string

const (
	CategoryFetchUAN          CategoryKey = "fetchUan"
	CategoryEmploymentHistory CategoryKey = "employmentHistory"
	CategoryPassbook          CategoryKey = "passbook"
	CategoryLatestEmployment  CategoryKey = "latestEmployment"

	// CategoryViewAll is not a verification category; navigation routes it to
	// the all-results panel.
	CategoryViewAll CategoryKey = "viewAll"
)

// Sub-method keys inside CategoryFetchUAN.
const (
	MethodKeyMobile = "mobile"
	MethodKeyPAN    = "pan"
)

// InputField describes one value the form collects before invoking a method.
type InputField struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Pattern string `json:"pattern"`
}

// MethodConfig is one invocable verification method as shown in the menu.
type MethodConfig struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Method models.Method `json:"method"`
	Legacy models.Method `json:"legacy_method,omitempty"`
	Inputs []InputField  `json:"inputs"`
}

// ResolverKey is the lookup key for "already verified" checks.
func (m MethodConfig) ResolverKey() resolver.Key {
	return resolver.Key{Method: m.Method, Legacy: m.Legacy}
}

// Category is either direct (exactly one Method) or holds sub-methods.
type Category struct {
	Key     CategoryKey
	Label   string
	Direct  bool
	Method  MethodConfig
	Methods []MethodConfig
}

// MethodByKey looks up a sub-method. Direct categories answer for their single
// method's key.
func (c Category) MethodByKey(key string) (MethodConfig, bool) {
	if c.Direct {
		return c.Method, c.Method.Key == key
	}
	for _, m := range c.Methods {
		if m.Key == key {
			return m, true
		}
	}
	return MethodConfig{}, false
}

// AllMethods returns the category's methods in display order.
func (c Category) AllMethods() []MethodConfig {
	if c.Direct {
		return []MethodConfig{c.Method}
	}
	return c.Methods
}

// Config is the full menu for one organization.
type Config struct {
	Provider   models.Provider
	Categories []Category
}

// Category looks up a category by key.
func (c Config) Category(key CategoryKey) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// MethodConfig finds the menu entry that invokes m under this provider.
func (c Config) MethodConfig(m models.Method) (MethodConfig, bool) {
	for _, cat := range c.Categories {
		for _, mc := range cat.AllMethods() {
			if mc.Method == m {
				return mc, true
			}
		}
	}
	return MethodConfig{}, false
}

// Build returns the menu for provider.
func Build(provider models.Provider) Config {
	return Config{
		Provider: provider,
		Categories: []Category{
			{
				Key:   CategoryFetchUAN,
				Label: "Fetch UAN",
				Methods: []MethodConfig{
					methodConfig(MethodKeyMobile, models.MethodMobileToUAN, ""),
					methodConfig(MethodKeyPAN, models.MethodPANToUAN, ""),
				},
			},
			direct(CategoryEmploymentHistory, "Employment History", historyMethod(provider)),
			direct(CategoryPassbook, "EPF Passbook", methodConfig(string(CategoryPassbook), models.MethodUANPassbook, "")),
			direct(CategoryLatestEmployment, "Latest Employment", methodConfig(string(CategoryLatestEmployment), models.MethodUANLatestEmployment, "")),
		},
	}
}

func direct(key CategoryKey, label string, m MethodConfig) Category {
	return Category{Key: key, Label: label, Direct: true, Method: m}
}

// historyMethod picks the full-history key for provider. The GL method
// replaced the standard one, so GL organizations keep credit for results
// recorded before they migrated.
func historyMethod(provider models.Provider) MethodConfig {
	key := string(CategoryEmploymentHistory)
	switch provider {
	case models.ProviderGL:
		return methodConfig(key, models.MethodUANFullHistoryGL, models.MethodUANFullHistory)
	case models.ProviderStandard:
		return methodConfig(key, models.MethodUANFullHistory, "")
	default:
		return methodConfig(key, models.MethodUANFullHistory, "")
	}
}

func methodConfig(key string, m, legacy models.Method) MethodConfig {
	return MethodConfig{Key: key, Label: m.Label(), Method: m, Legacy: legacy, Inputs: inputsFor(m)}
}

var (
	mobileField = InputField{Name: "mobile_number", Label: "Mobile number", Pattern: `^[0-9]{10}$`}
	panField    = InputField{Name: "pan", Label: "PAN", Pattern: `^[A-Z]{5}[0-9]{4}[A-Z]$`}
	uanField    = InputField{Name: "uan", Label: "UAN", Pattern: `^[0-9]{12}$`}
)

var compiledPatterns = map[string]*regexp.Regexp{
	mobileField.Name: regexp.MustCompile(mobileField.Pattern),
	panField.Name:    regexp.MustCompile(panField.Pattern),
	uanField.Name:    regexp.MustCompile(uanField.Pattern),
}

func inputsFor(m models.Method) []InputField {
	switch m {
	case models.MethodMobileToUAN:
		return []InputField{mobileField}
	case models.MethodPANToUAN:
		return []InputField{panField}
	case models.MethodUANFullHistory, models.MethodUANFullHistoryGL,
		models.MethodUANPassbook, models.MethodUANLatestEmployment:
		return []InputField{uanField}
	default:
		return nil
	}
}

// NormalizeInputs trims and upper-cases the declared inputs of mc, drops
// undeclared keys, and validates each value against its pattern.
func NormalizeInputs(mc MethodConfig, inputs map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(mc.Inputs))
	for _, f := range mc.Inputs {
		v := strings.ToUpper(strings.TrimSpace(inputs[f.Name]))
		if v == "" {
			return nil, dErrors.New(dErrors.CodeValidation, f.Name+" is required")
		}
		if re, ok := compiledPatterns[f.Name]; ok && !re.MatchString(v) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid "+f.Label)
		}
		out[f.Name] = v
	}
	return out, nil
}
