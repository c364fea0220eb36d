package models

import (
	"strings"

	dErrors "bgv/pkg/domain-errors"
)

// Method identifies a provider verification endpoint. The set is closed: every
// switch over Method in this module lists each constant explicitly.
type Method string

const (
	MethodMobileToUAN         Method = "mobile_to_uan"
	MethodPANToUAN            Method = "pan_to_uan"
	MethodUANFullHistory      Method = "uan_full_history"
	MethodUANFullHistoryGL    Method = "uan_full_history_gl"
	MethodUANPassbook         Method = "uan_passbook"
	MethodUANLatestEmployment Method = "uan_latest_employment"
)

// AllMethods lists every known method in declaration order.
var AllMethods = []Method{
	MethodMobileToUAN,
	MethodPANToUAN,
	MethodUANFullHistory,
	MethodUANFullHistoryGL,
	MethodUANPassbook,
	MethodUANLatestEmployment,
}

// ParseMethod validates an inbound method identifier.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.TrimSpace(s))
	if !m.IsKnown() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown verification method: "+s)
	}
	return m, nil
}

// IsKnown reports whether m is one of the declared methods.
func (m Method) IsKnown() bool {
	switch m {
	case MethodMobileToUAN, MethodPANToUAN, MethodUANFullHistory,
		MethodUANFullHistoryGL, MethodUANPassbook, MethodUANLatestEmployment:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}

// IsCore reports whether a Success for m alone marks a candidate Verified.
// Both full-history keys are core so results survive a provider change.
func (m Method) IsCore() bool {
	switch m {
	case MethodMobileToUAN, MethodPANToUAN, MethodUANFullHistory, MethodUANFullHistoryGL:
		return true
	case MethodUANPassbook, MethodUANLatestEmployment:
		return false
	default:
		return false
	}
}

// Label is the human-readable name shown in menus and badge missing lists.
func (m Method) Label() string {
	switch m {
	case MethodMobileToUAN:
		return "UAN lookup by mobile number"
	case MethodPANToUAN:
		return "UAN lookup by PAN"
	case MethodUANFullHistory, MethodUANFullHistoryGL:
		return "Full employment history"
	case MethodUANPassbook:
		return "EPF passbook"
	case MethodUANLatestEmployment:
		return "Latest employment"
	default:
		return string(m)
	}
}

// Provider identifies a verification vendor configured for an organization.
type Provider string

const (
	ProviderStandard Provider = "standard"
	ProviderGL       Provider = "gl"
)

// ParseProvider normalizes a stored provider identifier. Unknown or empty values
// fall back to ProviderStandard.
func ParseProvider(s string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGL:
		return ProviderGL
	default:
		return ProviderStandard
	}
}

func (p Provider) String() string {
	return string(p)
}
