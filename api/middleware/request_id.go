package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

var upstreamRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{8,128}$`)

// RequestID keeps a well-formed upstream X-Request-Id and mints a UUID
// otherwise. The id is echoed on the response and attached to the logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !upstreamRequestID.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}
