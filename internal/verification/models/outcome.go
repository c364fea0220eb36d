package models

// Outcome is the normalized result of a provider call.
type Outcome string

const (
	// OutcomeSuccess means the provider returned the requested record.
	OutcomeSuccess Outcome = "success"
	// OutcomeNotFound is a valid request with no matching record. It is an
	// expected answer, not a fault.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeError covers everything else: unmapped codes, malformed payloads,
	// transport failures surfaced as a response.
	OutcomeError Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}

// Classification is the classifier's verdict on a single raw response.
type Classification struct {
	Outcome    Outcome
	StatusCode int
	Reason     string
}
