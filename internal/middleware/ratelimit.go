package middleware

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("too many requests")

// RateLimitInterceptor rejects calls beyond rps sustained (burst peak) with
// ResourceExhausted. The limit is shared by all callers.
func RateLimitInterceptor(rps float64, burst int) connect.UnaryInterceptorFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !limiter.Allow() {
				slog.Warn("Rate limit exceeded", "procedure", req.Spec().Procedure)
				return nil, connect.NewError(connect.CodeResourceExhausted, errRateLimited)
			}
			return next(ctx, req)
		}
	}
}
