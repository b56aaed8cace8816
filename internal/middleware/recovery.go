package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/sqlarena/sqlarena/internal/response"
)

// Recoverer turns a panic into a 500 envelope. The stack trace is always
// logged and is echoed to the client outside production.
func Recoverer(logger *slog.Logger, reporter *response.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				// Let net/http abort the connection as it would without us.
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				stack := debug.Stack()

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(stack)),
				)

				err, ok := rvr.(error)
				if !ok {
					err = fmt.Errorf("%v", rvr)
				}
				reporter.Panic(w, err, stack)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
