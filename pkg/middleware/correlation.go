package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const correlationIDHeader = "X-Correlation-ID"

// CorrelationIDFromContext returns the correlation ID of the request.
func CorrelationIDFromContext(ctx context.Context) uuid.UUID {
	correlationID, _ := ctx.Value(contextKeyCorrelationID).(uuid.UUID)
	return correlationID
}

// CorrelationID tags every request with a correlation ID, reusing the one
// supplied by the caller when it parses as a UUID. The ID is echoed in the
// response so a failed lookup can be matched with the server logs.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID, err := uuid.Parse(r.Header.Get(correlationIDHeader))
		if err != nil {
			correlationID = uuid.New()
		}

		w.Header().Set(correlationIDHeader, correlationID.String())
		ctx := context.WithValue(r.Context(), contextKeyCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
