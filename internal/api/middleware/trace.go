package middleware

import (
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/shared"
)

// Trace assigns a trace ID to every request context and echoes it in the
// X-Trace-Id response header so client reports can be correlated with logs.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		w.Header().Set("X-Trace-Id", shared.GetTraceID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
