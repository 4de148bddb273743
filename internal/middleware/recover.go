package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/pkg/logger"
)

// Recover turns a handler panic into an INTERNAL_ERROR envelope.
// http.ErrAbortHandler is re-raised so the server aborts the connection.
func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("handler panicked",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				WriteError(w, r, model.NewError(model.ErrInternal, "internal error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
