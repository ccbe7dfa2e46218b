package api

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/metrics"
)

// rateLimited returns huma middleware that throttles an operation per client
// IP with the login limiter. Rejected requests get 429 and Retry-After.
func (s *Server) rateLimited(route string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.RemoteAddr())

		if !s.loginLimiter.Allow(key) {
			retry := int(math.Ceil(s.loginLimiter.RetryAfter(key).Seconds()))
			if retry < 1 {
				retry = 1
			}

			metrics.RateLimitHits.WithLabelValues(route).Inc()
			s.requestLogger(ctx.Context()).Warn("Rate limit exceeded",
				"ip", key,
				"route", route,
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(retry))
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests,
				"Too many attempts. Please try again later.", domainerrors.ErrRateLimited)
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from a remote address. middleware.RealIP has
// already replaced it with X-Forwarded-For or X-Real-IP when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
