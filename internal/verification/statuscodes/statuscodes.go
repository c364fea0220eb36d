// Package statuscodes holds the static table of provider status codes per
// verification method.
//
// Adding a provider method means adding a models.Method constant and one case
// to entryFor. The classifier, badge aggregator, and navigation never change.
package statuscodes

import (
	"fmt"

	"bgv/internal/verification/models"
)

// TableVersion is bumped whenever codes or descriptions change. Stored attempts
// keep their raw payload, so a bump reclassifies history on the next read.
const TableVersion = 3

// Entry lists the codes a method treats as Success and NotFound. Any other code
// is an Error.
type Entry struct {
	Method        models.Method
	SuccessCodes  []int
	NotFoundCodes []int
}

// Kind is the class a code falls into for one method.
func (e Entry) Kind(code int) models.Outcome {
	for _, c := range e.SuccessCodes {
		if c == code {
			return models.OutcomeSuccess
		}
	}
	for _, c := range e.NotFoundCodes {
		if c == code {
			return models.OutcomeNotFound
		}
	}
	return models.OutcomeError
}

// Lookup returns the entry for m. Unknown methods get an empty entry, so every
// code classifies as Error.
func Lookup(m models.Method) (Entry, bool) {
	return entryFor(m)
}

func entryFor(m models.Method) (Entry, bool) {
	switch m {
	case models.MethodMobileToUAN:
		return Entry{Method: m, SuccessCodes: []int{1, 1016}, NotFoundCodes: []int{9, 1007}}, true
	case models.MethodPANToUAN:
		return Entry{Method: m, SuccessCodes: []int{1, 1016}, NotFoundCodes: []int{9, 1008}}, true
	case models.MethodUANFullHistory:
		return Entry{Method: m, SuccessCodes: []int{1, 1018}, NotFoundCodes: []int{9, 1011}}, true
	case models.MethodUANFullHistoryGL:
		return Entry{Method: m, SuccessCodes: []int{1000, 1001}, NotFoundCodes: []int{1004, 1005}}, true
	case models.MethodUANPassbook:
		return Entry{Method: m, SuccessCodes: []int{1, 1019}, NotFoundCodes: []int{9, 1013}}, true
	case models.MethodUANLatestEmployment:
		return Entry{Method: m, SuccessCodes: []int{1, 1020}, NotFoundCodes: []int{9, 1012}}, true
	default:
		return Entry{Method: m}, false
	}
}

// descriptions is keyed by status code and shared by every method that uses
// the code.
var descriptions = map[int]string{
	1:    "Verification completed successfully.",
	9:    "No records found for the provided details.",
	1000: "Employment history fetched successfully.",
	1001: "Employment history fetched; some establishments returned partial data.",
	1002: "Invalid UAN format.",
	1003: "Provider request quota exhausted.",
	1004: "No employment history found for the provided UAN.",
	1005: "UAN is not registered with EPFO.",
	1007: "Provided mobile number doesn't have any UAN.",
	1008: "Provided PAN is not linked to any UAN.",
	1011: "Employment history is not available for the provided UAN.",
	1012: "No employment record found for the provided UAN.",
	1013: "Passbook is not available for the provided UAN.",
	1014: "Invalid UAN.",
	1016: "UAN found for the provided details.",
	1018: "Employment history fetched successfully.",
	1019: "Passbook fetched successfully.",
	1020: "Latest employment fetched successfully.",
	1022: "EPFO service is temporarily unavailable.",
	1030: "Input validation failed at the provider.",
}

// Describe returns the human-readable text for code, or the generic
// "Status code: {code}" fallback.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return fmt.Sprintf("Status code: %d", code)
}

// Entries returns the entry of every known method.
func Entries() []Entry {
	out := make([]Entry, 0, len(models.AllMethods))
	for _, m := range models.AllMethods {
		if e, ok := entryFor(m); ok {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks the table invariant that no code is both Success and
// NotFound for the same method.
func Validate() error {
	for _, e := range Entries() {
		success := make(map[int]struct{}, len(e.SuccessCodes))
		for _, c := range e.SuccessCodes {
			success[c] = struct{}{}
		}
		for _, c := range e.NotFoundCodes {
			if _, dup := success[c]; dup {
				return fmt.Errorf("status table v%d: method %s lists code %d as both success and not-found", TableVersion, e.Method, c)
			}
		}
	}
	return nil
}
