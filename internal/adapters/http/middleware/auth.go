package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"ukccu/internal/adapters/iplookup"
)

// AdminRealm is the basic-auth realm of the organiser endpoints.
const AdminRealm = "UKCCU organisers"

// AdminAuth guards organiser endpoints with HTTP basic auth.
// The password is compared against a bcrypt hash; the username is not checked.
// An empty hash disables the endpoints entirely (404).
func AdminAuth(passwordHash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(passwordHash) == 0 {
				http.NotFound(w, r)
				return
			}
			_, password, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword(passwordHash, []byte(password)) != nil {
				if ok {
					slog.Warn("admin_auth_failed", "ip", iplookup.ClientIP(r, nil), "path", r.URL.Path)
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="`+AdminRealm+`", charset="UTF-8"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
