// Package resolver answers "has this method already been verified?" for a
// candidate, honouring legacy keys left behind by provider migrations.
//
// The menu verified-check and the navigation skip-ahead both call this package
// so they cannot disagree.
package resolver

import "bgv/internal/verification/models"

// Key names a method together with the predecessor it replaced, if any.
type Key struct {
	Method models.Method
	Legacy models.Method
}

// FindSuccessfulAttempt returns the most recent Success attempt under
// key.Method, falling back to key.Legacy. It returns false when neither key has
// a Success attempt.
func FindSuccessfulAttempt(history models.History, key Key) (models.Attempt, bool) {
	if a, ok := findSuccess(history, key.Method); ok {
		return a, true
	}
	if key.Legacy == "" || key.Legacy == key.Method {
		return models.Attempt{}, false
	}
	return findSuccess(history, key.Legacy)
}

// HasSuccessfulAttempt reports whether FindSuccessfulAttempt finds anything.
func HasSuccessfulAttempt(history models.History, key Key) bool {
	_, ok := FindSuccessfulAttempt(history, key)
	return ok
}

func findSuccess(history models.History, m models.Method) (models.Attempt, bool) {
	for _, a := range history {
		if a.Method == m && a.IsSuccess() {
			return a, true
		}
	}
	return models.Attempt{}, false
}
