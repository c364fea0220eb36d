package handler

import (
	"encoding/json"
	"strings"

	"bgv/internal/verification/models"
	"bgv/internal/verification/navigation"
	dErrors "bgv/pkg/domain-errors"
)

// VerifyRequest carries the form inputs for a provider call. Field names match
// the method's input field names (mobile_number, pan, uan).
type VerifyRequest struct {
	Inputs map[string]string `json:"inputs"`
}

func (r *VerifyRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "inputs are required")
	}
	for k, v := range r.Inputs {
		r.Inputs[k] = strings.TrimSpace(v)
	}
	return nil
}

// RecordAttemptRequest stores a raw response obtained outside this service.
type RecordAttemptRequest struct {
	Method      string          `json:"method"`
	RawResponse json.RawMessage `json:"raw_response"`

	method models.Method
}

func (r *RecordAttemptRequest) Validate() error {
	m, err := models.ParseMethod(r.Method)
	if err != nil {
		return err
	}
	if len(r.RawResponse) == 0 || string(r.RawResponse) == "null" {
		return dErrors.New(dErrors.CodeValidation, "raw_response is required")
	}
	r.method = m
	return nil
}

type NavigationRequest struct {
	State navigation.State `json:"state"`
	Event navigation.Event `json:"event"`
}

func (r *NavigationRequest) Validate() error {
	if r.State.Panel == "" {
		r.State = navigation.Initial()
	}
	switch r.Event.Kind {
	case navigation.EventSelectCategory, navigation.EventSelectMethod:
		if strings.TrimSpace(r.Event.Key) == "" {
			return dErrors.New(dErrors.CodeValidation, "event key is required")
		}
	case navigation.EventBack:
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown navigation event: "+string(r.Event.Kind))
	}
	return nil
}

type SetProviderRequest struct {
	Provider string `json:"provider"`
}

func (r *SetProviderRequest) Validate() error {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
	if r.Provider == "" {
		return dErrors.New(dErrors.CodeValidation, "provider is required")
	}
	return nil
}
