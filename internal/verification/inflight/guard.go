// Package inflight prevents two provider calls for the same candidate and
// method from running at once.
//
// Within a process, duplicate calls share the first call's result. Across
// processes a Lease rejects the duplicate with sentinel.ErrConflict.
package inflight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"bgv/internal/verification/models"
	id "bgv/pkg/domain"
	"bgv/pkg/platform/sentinel"
)

type Key struct {
	CandidateID id.CandidateID
	Method      models.Method
}

func (k Key) String() string {
	return k.CandidateID.String() + ":" + string(k.Method)
}

// Lease is a mutual-exclusion claim on a Key. Acquire returns an error
// wrapping sentinel.ErrConflict when another holder has the key.
type Lease interface {
	Acquire(ctx context.Context, key Key) (release func(context.Context) error, err error)
}

// Guard coalesces in-process duplicates and holds a Lease while the call runs.
type Guard struct {
	group  singleflight.Group
	lease  Lease
	logger *slog.Logger
}

type Option func(*Guard)

func WithLease(l Lease) Option {
	return func(g *Guard) {
		g.lease = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New returns a Guard. Without WithLease it uses a process-local lease.
func New(opts ...Option) *Guard {
	g := &Guard{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.lease == nil {
		g.lease = NewLocalLease()
	}
	return g
}

// Do runs fn once per key at a time. Callers arriving while fn runs in this
// process receive the same result with shared set.
func (g *Guard) Do(ctx context.Context, key Key, fn func(context.Context) (models.Attempt, error)) (attempt models.Attempt, shared bool, err error) {
	v, err, shared := g.group.Do(key.String(), func() (any, error) {
		release, err := g.lease.Acquire(ctx, key)
		if err != nil {
			return models.Attempt{}, err
		}
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				g.logger.WarnContext(ctx, "failed to release in-flight lease", "key", key.String(), "error", rerr)
			}
		}()
		return fn(ctx)
	})
	a, _ := v.(models.Attempt)
	return a, shared, err
}

// LocalLease tracks held keys in memory.
type LocalLease struct {
	mu   sync.Mutex
	held map[Key]struct{}
}

func NewLocalLease() *LocalLease {
	return &LocalLease{held: make(map[Key]struct{})}
}

func (l *LocalLease) Acquire(_ context.Context, key Key) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, fmt.Errorf("verification %s in flight: %w", key, sentinel.ErrConflict)
	}
	l.held[key] = struct{}{}
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}
