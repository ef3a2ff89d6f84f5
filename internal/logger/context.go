package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// requestInfo is created once per request by RequestIDMiddleware and filled in
// by later middleware, so the access log written on the way out sees the
// authenticated caller too.
type requestInfo struct {
	id     string
	userID int64
	role   string
}

func info(ctx context.Context) *requestInfo {
	ri, _ := ctx.Value(ctxKey{}).(*requestInfo)
	return ri
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, &requestInfo{id: requestID})
}

func RequestIDFrom(ctx context.Context) string {
	if ri := info(ctx); ri != nil {
		return ri.id
	}
	return ""
}

// SetCaller records the authenticated user for the rest of the request. It
// does nothing on a context that did not pass through RequestIDMiddleware.
func SetCaller(ctx context.Context, userID int64, role string) {
	if ri := info(ctx); ri != nil {
		ri.userID, ri.role = userID, role
	}
}

func CallerFrom(ctx context.Context) (userID int64, role string) {
	if ri := info(ctx); ri != nil {
		return ri.userID, ri.role
	}
	return 0, ""
}

// FromCtx returns the global logger tagged with the request id and caller.
func FromCtx(ctx context.Context) *zap.Logger {
	ri := info(ctx)
	if ri == nil {
		return L()
	}

	fields := make([]zap.Field, 0, 3)
	if ri.id != "" {
		fields = append(fields, zap.String("request_id", ri.id))
	}
	if ri.userID != 0 {
		fields = append(fields, zap.Int64("user_id", ri.userID), zap.String("role", ri.role))
	}
	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}
