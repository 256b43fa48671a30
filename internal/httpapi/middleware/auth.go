package middleware

import (
	"net/http"
	"strings"
)

// Keys splits the API's own access tokens into two roles. Readers may
// fetch the endpoint catalog and stored run reports; operators may also
// start validation runs, which spend quota against the probed providers.
type Keys struct {
	Readers   []string
	Operators []string
}

func readAuth(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	return ""
}

func hasKey(given string, set []string) bool {
	if given == "" {
		return false
	}
	for _, k := range set {
		if k == given {
			return true
		}
	}
	return false
}

// RequireReader guards the read-only routes: any reader or operator key
// passes. With no keys configured it allows everything (local dev).
func RequireReader(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Readers) > 0 || len(keys.Operators) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := readAuth(r)
			if hasKey(key, keys.Readers) || hasKey(key, keys.Operators) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
		})
	}
}

// RequireOperator guards the run-starting routes: only operator keys pass,
// a valid reader key still gets 403. With no operator keys configured it
// allows everything (local dev).
func RequireOperator(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Operators) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasKey(readAuth(r), keys.Operators) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
		})
	}
}
