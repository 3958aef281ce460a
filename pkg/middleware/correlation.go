package middleware

import (
	"net/http"

	"seat-reservation/pkg/utils"

	"github.com/lithammer/shortuuid/v3"
)

const CorrelationIDHeader = "Correlation-ID"

// CorrelationID reuses the caller's Correlation-ID or generates one, and
// echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = shortuuid.New()
			}
			w.Header().Set(CorrelationIDHeader, correlationID)

			ctx := utils.SetCorrelationIDContext(r.Context(), correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
