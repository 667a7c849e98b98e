package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"staffleave/internal/requestctx"
)

const maxUserAgentLength = 255

// RequestID tags the request and captures the caller's IP address and user
// agent for the audit trail.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ua := strings.TrimSpace(r.UserAgent())
		if len(ua) > maxUserAgentLength {
			ua = ua[:maxUserAgentLength]
		}
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = requestctx.WithProvenance(ctx, requestctx.Provenance{IPAddress: clientIPKey(r), UserAgent: ua})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
