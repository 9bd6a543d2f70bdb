package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/allocat-dev/allocat/pkg/configuration"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	// KeyFunc derives the limiter bucket key; defaults to the client IP.
	KeyFunc func(r *http.Request) string
	Store   limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

// EndpointKeyFunc scopes the limit to a named endpoint per client IP.
func EndpointKeyFunc(endpoint string) func(r *http.Request) string {
	conf := configuration.Use()
	return func(r *http.Request) string {
		return endpoint + ":" + getRealIP(r, conf)
	}
}

// RateLimit enforces a fixed-window limit backed by the given store.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	conf := configuration.Use()
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	period := cfg.Period
	if period == 0 {
		period = time.Minute
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(r *http.Request) string {
			return getRealIP(r, conf)
		}
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  int64(cfg.RequestsPerPeriod),
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterCtx, err := instance.Get(r.Context(), keyFunc(r))
			if err != nil {
				// Limiter store failure must not take the API down.
				next.ServeHTTP(w, r)
				return
			}
			if limiterCtx.Reached {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
