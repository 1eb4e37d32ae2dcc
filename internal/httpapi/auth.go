package httpapi

import "net/http"

// exemptPaths bypass authentication (liveness and scrape endpoints).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyMiddleware validates the X-API-Key header on every protected route.
// A server with no key configured answers 500 so the operator is forced to
// set one rather than silently running an open instance; a missing or wrong
// key answers 403.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey == "" {
				writeError(w, http.StatusInternalServerError,
					"API key not configured on server; set POURSUITE_API_KEY")
				return
			}
			if r.Header.Get("X-API-Key") != apiKey {
				writeError(w, http.StatusForbidden, "invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
