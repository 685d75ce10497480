package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	pkghttp "github.com/lanceraa/api/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// AuthRateLimit returns the limit applied to signup, login, verification
// and password recovery routes
func AuthRateLimit(requestsPerMinute int) RateLimitConfig {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	return RateLimitConfig{RequestsPerMinute: requestsPerMinute}
}

// ChatRateLimit returns the limit applied to the chatbot route
func ChatRateLimit(requestsPerMinute int) RateLimitConfig {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	return RateLimitConfig{RequestsPerMinute: requestsPerMinute}
}

// RateLimitByIP limits requests per client IP. The client IP honours
// forwarding headers only from trusted proxies.
func RateLimitByIP(config RateLimitConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, ipConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded. Please try again later.")
		}),
	)
}
