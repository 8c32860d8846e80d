// Package requestmeta stamps each request with a correlation ID and a
// request-scoped "now" so every store write within one request shares the
// same timestamp.
package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/polibase/polibase/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware honors an inbound X-Request-ID, generating one when absent, and
// echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
