package utils

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CtxWithRqID(ctx context.Context, rqID string) context.Context {
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

// CreateCtxWithRqID attaches a request id to the request context: an id
// already set on the context wins, then the caller's X-Request-ID header,
// then a fresh UUID.
func CreateCtxWithRqID(r *http.Request) context.Context {
	if rqID := GetRequestIDFromCtx(r.Context()); rqID != "" {
		return r.Context()
	}
	if rqID := r.Header.Get("X-Request-ID"); rqID != "" {
		return CtxWithRqID(r.Context(), rqID)
	}
	return CtxWithRqID(r.Context(), uuid.NewString())
}
