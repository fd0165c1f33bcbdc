package middleware

import (
	"net/http"
	"time"

	apperrors "clinicbook/pkg/errors"
	httputil "clinicbook/pkg/http"
	"clinicbook/pkg/logger"

	"github.com/go-chi/httprate"
)

// RateLimit allows limit requests per window from each client IP.
func RateLimit(limit int, window time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("Rate limit exceeded",
				"request_id", requestID(r),
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
				"limit", limit,
				"window", window,
			)
			_ = httputil.WriteError(w, apperrors.New(apperrors.CodeRateLimited,
				"Too many requests. Please try again later", http.StatusTooManyRequests))
		}),
	)
}
