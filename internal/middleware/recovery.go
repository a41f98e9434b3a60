package middleware

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a 500 response.
func PanicRecovery() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("http: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())
					panicCounter.Inc()
					writeJSONError(w, http.StatusInternalServerError, "internal server error", "internal")
				}
			}()

			next.ServeHTTP(w, req)
		})
	}
}
