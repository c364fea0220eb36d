// Package domain holds typed identifiers shared across modules.
//
// Each ID is a distinct named type over uuid.UUID so a CandidateID can never be
// passed where an OrgID is expected. Parse functions are the trust boundary:
// they reject empty, malformed, and nil UUIDs with CodeInvalidInput.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "bgv/pkg/domain-errors"
)

type (
	UserID      uuid.UUID
	OrgID       uuid.UUID
	CandidateID uuid.UUID
	AttemptID   uuid.UUID
)

// maxIDLength bounds input before uuid.Parse sees it.
const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user_id", s)
	return UserID(u), err
}

func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID("org_id", s)
	return OrgID(u), err
}

func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID("candidate_id", s)
	return CandidateID(u), err
}

func ParseAttemptID(s string) (AttemptID, error) {
	u, err := parseUUID("attempt_id", s)
	return AttemptID(u), err
}

// NewAttemptID returns a fresh random attempt identifier.
func NewAttemptID() AttemptID {
	return AttemptID(uuid.New())
}

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id OrgID) String() string       { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id AttemptID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id OrgID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AttemptID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id CandidateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id AttemptID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id OrgID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
