package testutil

import (
	"context"
	"net/http"
	"time"

	id "bgv/pkg/domain"
	"bgv/pkg/requestcontext"
)

// WithAuth puts a user and organization on the request the way the auth
// middleware does. Invalid IDs are skipped, leaving the request unauthenticated
// for that value.
func WithAuth(req *http.Request, userID, orgID string) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsed)
	}
	if parsed, err := id.ParseOrgID(orgID); err == nil {
		ctx = requestcontext.WithOrgID(ctx, parsed)
	}
	return req.WithContext(ctx)
}

// FixedTime returns ctx with the request clock pinned to t.
func FixedTime(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
