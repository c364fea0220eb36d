package models

import (
	"encoding/json"
	"time"

	id "bgv/pkg/domain"
)

// AttemptRecord is what the store persists: the raw provider payload, never a
// pre-computed outcome, so classification can be re-derived after table updates.
type AttemptRecord struct {
	ID          id.AttemptID
	CandidateID id.CandidateID
	Method      Method
	RawResponse json.RawMessage
	CreatedAt   time.Time
}

// Attempt is an AttemptRecord with its classification applied. Attempts are
// immutable once built.
type Attempt struct {
	ID          id.AttemptID
	CandidateID id.CandidateID
	Method      Method
	RawResponse json.RawMessage
	StatusCode  int
	Outcome     Outcome
	Reason      string
	CreatedAt   time.Time
}

// IsSuccess reports whether the attempt classified as Success.
func (a Attempt) IsSuccess() bool {
	return a.Outcome == OutcomeSuccess
}

// History is a candidate's attempts ordered most-recent-first.
type History []Attempt

// Latest returns the most recent attempt, if any.
func (h History) Latest() (Attempt, bool) {
	if len(h) == 0 {
		return Attempt{}, false
	}
	return h[0], true
}

// ForMethod returns the attempts recorded under m, preserving order.
func (h History) ForMethod(m Method) History {
	var out History
	for _, a := range h {
		if a.Method == m {
			out = append(out, a)
		}
	}
	return out
}

// LatestPerMethod returns the newest attempt for each method that has one, in
// history order.
func (h History) LatestPerMethod() History {
	seen := make(map[Method]struct{}, len(AllMethods))
	var out History
	for _, a := range h {
		if _, ok := seen[a.Method]; ok {
			continue
		}
		seen[a.Method] = struct{}{}
		out = append(out, a)
	}
	return out
}
