package middleware

import (
	"context"
	"net/http"
	"strings"

	"vet-clinic/internal/ports/auth"
)

type ctxKey string

const staffKey ctxKey = "staff"

// StaffContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea staff.
// - Si verifier == nil => modo dev: si viene header X-Staff-ID => setea staff.
// - Si no hay identidad, el request sigue igual; los handlers deciden si exigen auth.
func StaffContext(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev mode: permitir inyectar staff sin verifier
			if verifier == nil {
				if id := strings.TrimSpace(r.Header.Get("X-Staff-ID")); id != "" {
					staff := auth.Staff{
						ID:   id,
						Role: strings.TrimSpace(r.Header.Get("X-Staff-Role")),
					}
					ctx := context.WithValue(r.Context(), staffKey, staff)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			staff, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// No cortamos aquí para no acoplar. El handler decide 401/403.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), staffKey, staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetStaff(ctx context.Context) (auth.Staff, bool) {
	v := ctx.Value(staffKey)
	if v == nil {
		return auth.Staff{}, false
	}
	s, ok := v.(auth.Staff)
	return s, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
