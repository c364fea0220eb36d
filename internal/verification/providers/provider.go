// Package providers calls the external verification vendors.
//
// An Invoker returns the vendor's raw JSON payload untouched; outcome
// classification happens elsewhere, on read. A call that never produced a
// payload fails with a *ProviderError.
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"bgv/internal/verification/models"
)

// Invoker runs one verification method against one vendor.
type Invoker interface {
	ID() string
	Invoke(ctx context.Context, method models.Method, inputs map[string]string) (json.RawMessage, error)
}

// Registry maps each provider to its Invoker.
type Registry struct {
	invokers map[models.Provider]Invoker
}

func NewRegistry() *Registry {
	return &Registry{invokers: make(map[models.Provider]Invoker)}
}

// Register adds inv for p. Registering a provider twice is an error.
func (r *Registry) Register(p models.Provider, inv Invoker) error {
	if _, exists := r.invokers[p]; exists {
		return fmt.Errorf("provider %s already registered", p)
	}
	r.invokers[p] = inv
	return nil
}

// For returns the Invoker for p, falling back to the standard provider.
func (r *Registry) For(p models.Provider) (Invoker, bool) {
	if inv, ok := r.invokers[p]; ok {
		return inv, true
	}
	inv, ok := r.invokers[models.ProviderStandard]
	return inv, ok
}
