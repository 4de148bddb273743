package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/promptforge/generation-api/internal/model"
)

// IPRateLimit is a coarse per-IP guard that runs before authentication. The
// per-user generation limit is enforced separately from usage logs.
func IPRateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			ip, err := httprate.KeyByIP(r)
			if err != nil {
				return "", err
			}
			return "ip:" + ip, nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(windowLength.Seconds())))
			WriteError(w, r, model.NewError(model.ErrRateLimited, "too many requests from this address"))
		}),
	)
}
