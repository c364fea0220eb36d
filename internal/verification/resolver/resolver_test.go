package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgv/internal/verification/models"
)

func attempt(m models.Method, outcome models.Outcome, at time.Time) models.Attempt {
	return models.Attempt{Method: m, Outcome: outcome, CreatedAt: at}
}

func TestFindSuccessfulAttempt(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	glKey := Key{Method: models.MethodUANFullHistoryGL, Legacy: models.MethodUANFullHistory}

	t.Run("success under current key", func(t *testing.T) {
		h := models.History{attempt(models.MethodUANFullHistoryGL, models.OutcomeSuccess, now)}
		a, ok := FindSuccessfulAttempt(h, glKey)
		require.True(t, ok)
		assert.Equal(t, models.MethodUANFullHistoryGL, a.Method)
	})

	t.Run("success under legacy key only", func(t *testing.T) {
		h := models.History{
			attempt(models.MethodUANFullHistoryGL, models.OutcomeError, now),
			attempt(models.MethodUANFullHistory, models.OutcomeSuccess, now.Add(-48*time.Hour)),
		}
		a, ok := FindSuccessfulAttempt(h, glKey)
		require.True(t, ok)
		assert.Equal(t, models.MethodUANFullHistory, a.Method)
	})

	t.Run("current key preferred over legacy", func(t *testing.T) {
		h := models.History{
			attempt(models.MethodUANFullHistory, models.OutcomeSuccess, now),
			attempt(models.MethodUANFullHistoryGL, models.OutcomeSuccess, now.Add(-time.Hour)),
		}
		a, ok := FindSuccessfulAttempt(h, glKey)
		require.True(t, ok)
		assert.Equal(t, models.MethodUANFullHistoryGL, a.Method)
	})

	t.Run("not found and error do not count", func(t *testing.T) {
		h := models.History{
			attempt(models.MethodUANFullHistoryGL, models.OutcomeNotFound, now),
			attempt(models.MethodUANFullHistory, models.OutcomeError, now.Add(-time.Hour)),
		}
		assert.False(t, HasSuccessfulAttempt(h, glKey))
	})

	t.Run("legacy ignored when not declared", func(t *testing.T) {
		h := models.History{attempt(models.MethodUANFullHistory, models.OutcomeSuccess, now)}
		assert.False(t, HasSuccessfulAttempt(h, Key{Method: models.MethodUANFullHistoryGL}))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.False(t, HasSuccessfulAttempt(nil, glKey))
	})

	t.Run("returns most recent success", func(t *testing.T) {
		older := attempt(models.MethodPANToUAN, models.OutcomeSuccess, now.Add(-time.Hour))
		newer := attempt(models.MethodPANToUAN, models.OutcomeSuccess, now)
		a, ok := FindSuccessfulAttempt(models.History{newer, older}, Key{Method: models.MethodPANToUAN})
		require.True(t, ok)
		assert.Equal(t, now, a.CreatedAt)
	})
}
