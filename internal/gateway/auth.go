package gateway

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/flemzord/tgbot/internal/security"
)

// authMiddleware guards the operational endpoints with a bearer token or
// basic credentials, compared in constant time. When limiter is non-nil
// each client address gets its own attempt budget.
func authMiddleware(cfg AuthConfig, logger *slog.Logger, limiter *security.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil {
				if err := limiter.Allow("auth:" + clientHost(r)); err != nil {
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
			}

			if authorized(cfg, r) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("auth failure",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
				"request_id", RequestID(r.Context()),
			)
			if cfg.BasicUser != "" {
				w.Header().Set("WWW-Authenticate", `Basic realm="tgbot"`)
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func authorized(cfg AuthConfig, r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if header == "" {
		return false
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && cfg.BearerToken != "" {
		return constantTimeEqual(token, cfg.BearerToken)
	}
	if cfg.BasicUser == "" || cfg.BasicPass == "" {
		return false
	}
	user, pass, ok := r.BasicAuth()
	// Evaluate both so a wrong user takes as long as a wrong password.
	userOK := constantTimeEqual(user, cfg.BasicUser)
	passOK := constantTimeEqual(pass, cfg.BasicPass)
	return ok && userOK && passOK
}

// clientHost is the address part of r.RemoteAddr.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
