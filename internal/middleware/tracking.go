package middleware

import (
	"context"
	"net/http"
	"time"

	"stressbox/internal/metrics"
	"stressbox/internal/service"
	"stressbox/pkg/logger"
)

// Tracking records the visit before the page handler runs. A failed
// tracking step is logged and counted but the page is always served.
func Tracking(visitors service.VisitorService, logger *logger.Logger, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := service.ClientIP(r)
			userAgent := service.ClientUserAgent(r)
			fingerprint := service.ComputeFingerprint(ip, userAgent)
			location := service.GeoFromHeaders(r.Header).Label()

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := visitors.RecordVisit(ctx, ip, fingerprint, userAgent, location)
			cancel()

			if err != nil {
				metrics.TrackingFailures.Inc()
				logger.WithError(err).WithFields(map[string]interface{}{
					"request_id":  GetRequestID(r.Context()),
					"path":        r.URL.Path,
					"fingerprint": fingerprint,
				}).Error("Failed to track visit")
			}

			next.ServeHTTP(w, r)
		})
	}
}
