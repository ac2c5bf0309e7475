package middlewarex

import (
	"net/http"

	"github.com/rs/xid"

	"giftfolio/pkg/contextx"
)

const headerNameTraceID = "X-Trace-Id"

// TraceID keeps a caller-supplied xid trace id and mints one otherwise, so
// support ids in error replies always have the same shape.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := contextx.NewTraceID()

		if id, err := xid.FromString(r.Header.Get(headerNameTraceID)); err == nil {
			traceID = contextx.TraceID(id.String())
		}

		ctx := contextx.WithTraceID(r.Context(), traceID)

		w.Header().Set(headerNameTraceID, traceID.String())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
