package middleware

import (
	"net/http"
	"strings"
)

const AuthCookie = "authenticated"

// AuthMiddleware sprawdza, czy użytkownik jest zalogowany (ma cookie 'authenticated=true').
// Bez ustawionego hasła wszystko jest dostępne.
func AuthMiddleware(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Strona logowania i zasoby statyczne bez uwierzytelnienia
			if r.URL.Path == "/login" ||
				r.URL.Path == "/auth/login" ||
				strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(AuthCookie)
			if err != nil || cookie.Value != "true" {
				// Zapytania API dostają 401
				if strings.HasPrefix(r.URL.Path, "/api/") ||
					strings.HasPrefix(r.URL.Path, "/logs/") ||
					r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
					r.Header.Get("Content-Type") == "application/json" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				// Dla zwykłych żądań przekieruj na login
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
