package middleware

import "net/http"

// RequestSizeLimit caps how much of a request body any handler will read.
// Profile submissions are the largest payloads this API accepts, so the cap
// is generous; reads past it fail with *http.MaxBytesError.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
