package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"shopstock-rest-api/pkg/apierror"
)

// Recovery converts handler panics into a 500 response so one bad
// request cannot take the listener down. The trace is logged with the
// request ID; the client only sees the generic error envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[http] panic request_id=%s: %v\n%s", GetRequestID(r.Context()), err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
