package requestctx

import "context"

type ctxKey string

const (
	requestIDKey  ctxKey = "request_id"
	provenanceKey ctxKey = "provenance"
)

// Unknown is reported for provenance fields that were not captured.
const Unknown = "unknown"

// Provenance describes where a request came from, for the audit trail.
type Provenance struct {
	IPAddress string
	UserAgent string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithProvenance(ctx context.Context, p Provenance) context.Context {
	return context.WithValue(ctx, provenanceKey, p)
}

// GetProvenance never returns empty fields; missing values read as Unknown.
func GetProvenance(ctx context.Context) Provenance {
	p, _ := ctx.Value(provenanceKey).(Provenance)
	if p.IPAddress == "" {
		p.IPAddress = Unknown
	}
	if p.UserAgent == "" {
		p.UserAgent = Unknown
	}
	return p
}
