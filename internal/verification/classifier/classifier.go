// Package classifier turns raw provider payloads into Success, NotFound, or
// Error using the status code table.
//
// Classification is a pure function of (method, payload, table). It never
// panics on a payload that is present but malformed; such payloads classify as
// Error.
package classifier

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"bgv/internal/verification/models"
	"bgv/internal/verification/statuscodes"
)

// ReasonNoStatusCode is the reason given when no status code can be read.
const ReasonNoStatusCode = "Status code: unavailable"

// statusCodePaths lists where providers put the code, in lookup order.
// Successful calls carry it at the top level or under data; failed calls nest
// it under the error envelope the transport produced.
var statusCodePaths = [][]string{
	{"status_code"},
	{"statusCode"},
	{"data", "status_code"},
	{"error", "status_code"},
	{"error", "data", "status_code"},
	{"error", "response", "data", "status_code"},
}

// Classify returns the outcome, extracted status code, and reason for one raw
// response under method.
func Classify(method models.Method, raw json.RawMessage) models.Classification {
	code, ok := ExtractStatusCode(raw)
	if !ok {
		return models.Classification{
			Outcome: models.OutcomeError,
			Reason:  ReasonNoStatusCode,
		}
	}
	entry, _ := statuscodes.Lookup(method)
	return models.Classification{
		Outcome:    entry.Kind(code),
		StatusCode: code,
		Reason:     statuscodes.Describe(code),
	}
}

// ExtractStatusCode finds the numeric status code in raw. Codes may be JSON
// numbers or numeric strings.
func ExtractStatusCode(raw json.RawMessage) (int, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return 0, false
	}
	for _, path := range statusCodePaths {
		if v, ok := lookupPath(doc, path); ok {
			if code, ok := toInt(v); ok {
				return code, true
			}
		}
	}
	return 0, false
}

func lookupPath(doc map[string]any, path []string) (any, bool) {
	var cur any = doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Attempt classifies a stored record.
func Attempt(rec models.AttemptRecord) models.Attempt {
	c := Classify(rec.Method, rec.RawResponse)
	return models.Attempt{
		ID:          rec.ID,
		CandidateID: rec.CandidateID,
		Method:      rec.Method,
		RawResponse: rec.RawResponse,
		StatusCode:  c.StatusCode,
		Outcome:     c.Outcome,
		Reason:      c.Reason,
		CreatedAt:   rec.CreatedAt,
	}
}

// History classifies records and orders them most-recent-first. Records with
// equal timestamps keep their input order.
func History(records []models.AttemptRecord) models.History {
	out := make(models.History, 0, len(records))
	for _, rec := range records {
		out = append(out, Attempt(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
