package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the cross-origin policy for the API
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig builds the policy for a comma separated list of client origins
func DefaultCORSConfig(allowedOrigins string, maxAge int) CORSConfig {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	}
}

// CORSMiddleware applies config to every request and answers preflight requests.
// It panics when a wildcard origin is combined with credentials.
func CORSMiddleware(config CORSConfig) func(http.Handler) http.Handler {
	wildcard := false
	allowed := make(map[string]struct{}, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = struct{}{}
	}
	if wildcard && config.AllowCredentials {
		panic("cors: wildcard origin cannot be combined with credentials")
	}

	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
			}

			if origin != "" {
				_, ok := allowed[origin]
				switch {
				case wildcard:
					h.Set("Access-Control-Allow-Origin", "*")
				case ok:
					h.Set("Access-Control-Allow-Origin", origin)
				}

				if wildcard || ok {
					if methods != "" {
						h.Set("Access-Control-Allow-Methods", methods)
					}
					if headers != "" {
						h.Set("Access-Control-Allow-Headers", headers)
					}
					if config.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if config.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
					}
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewCORSMiddleware creates the CORS middleware for the given client origins
func NewCORSMiddleware(allowedOrigins string, maxAge int) func(http.Handler) http.Handler {
	return CORSMiddleware(DefaultCORSConfig(allowedOrigins, maxAge))
}
