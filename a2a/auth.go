package a2a

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// AuthMode selects how a credential mismatch is handled.
type AuthMode string

const (
	// AuthModeAdvisory logs the mismatch and lets the request proceed.
	AuthModeAdvisory AuthMode = "advisory"
	// AuthModeEnforcing rejects the request before the handler runs.
	AuthModeEnforcing AuthMode = "enforcing"
)

// AuthConfig configures the auth gate of one agent service. An empty Key
// disables the gate entirely.
type AuthConfig struct {
	Key  string
	Mode AuthMode
}

// RequireInternalKey screens every request against the shared internal key.
// The well-known discovery prefix is always allowed, unauthenticated, so
// proxies can resolve agent cards. The gate keeps no state; each request is
// evaluated on its own.
func RequireInternalKey(cfg AuthConfig, next http.Handler) http.Handler {
	if cfg.Key == "" {
		return next
	}
	mode := cfg.Mode
	if mode != AuthModeEnforcing {
		mode = AuthModeAdvisory
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/.well-known") {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get(InternalKeyHeader)
		if provided != cfg.Key {
			log.Warn().
				Str("path", r.URL.Path).
				Bool("key_present", provided != "").
				Str("mode", string(mode)).
				Msg("missing or invalid internal api key")
			if mode == AuthModeEnforcing {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
