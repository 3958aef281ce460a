package middleware

import (
	"net/http"
	"strings"

	"seat-reservation/pkg/utils"
)

// UserIDHeader carries the caller's user id. Authentication happens upstream;
// the value is only used to attribute holds.
const UserIDHeader = "X-User-ID"

// Identity copies the X-User-ID header into the request context.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
				r = r.WithContext(utils.SetUserContext(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
