package stub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Recovery returns middleware that recovers from handler panics and turns
// them into a 500 envelope instead of killing the connection.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic in handler",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
					)
					writeError(r.Context(), w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Logging returns request logging middleware in ECS schema. Panic recovery is
// left to the Recovery middleware.
func Logging(logger *slog.Logger) Middleware {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema:            httplog.SchemaECS.Concise(true),
		LogRequestHeaders: []string{"Content-Type", "X-Request-ID"},
		RecoverPanics:     false,
	})
}

// applyMiddlewares wraps handler so the first middleware in the list runs
// outermost.
func applyMiddlewares(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
