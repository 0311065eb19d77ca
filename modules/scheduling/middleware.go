package scheduling

import (
	"net/http"

	"github.com/rosterly/rosterly/pkg/tenant"
)

// Middleware attaches the caller's cached tenant Store to the request
// context. It expects tenant identity to be established upstream by
// tenant.Middleware; a request reaching here without one is a wiring
// defect and is rejected with 401.
func Middleware(cache *HandleCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := tenant.IDFromContext(r.Context())
			if !ok {
				http.Error(w, "Tenant required", http.StatusUnauthorized)
				return
			}

			ctx := WithStore(r.Context(), cache.Get(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
