package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// corsMaxAge is how long browsers may cache a preflight, in seconds
const corsMaxAge = 600

// CORS allows browser requests from the given origins. "*" allows any origin.
// Credentials are never allowed. With no origins the handler is unchanged.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With"}),
		handlers.MaxAge(corsMaxAge),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
}

// OriginPatterns converts allowed origins into host patterns for websocket origin checks
func OriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return []string{"*"}
		}
		origin = strings.TrimPrefix(origin, "https://")
		origin = strings.TrimPrefix(origin, "http://")
		patterns = append(patterns, origin)
	}
	return patterns
}
