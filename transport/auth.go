package transport

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Auth holds the optional HTTP Basic auth and API-key credentials parsed
// from CLI flags. An empty Auth accepts every request.
type Auth struct {
	User         string
	PasswordHash []byte // bcrypt hash; takes precedence over Password
	Password     string
	APIKey       string
}

func (a Auth) enabled() bool {
	return a.User != "" || a.APIKey != ""
}

func (a Auth) checkBasic(user, pass string) bool {
	if a.User == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) != 1 {
		return false
	}
	if len(a.PasswordHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(a.Password)) == 1
}

func (a Auth) checkAPIKey(key string) bool {
	if a.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.APIKey)) == 1
}

// withAuth wraps a handler with Basic-auth / API-key verification. Missing
// or invalid credentials produce HTTP 401 without ever logging the
// submitted credentials.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Auth.enabled() {
			next(w, r)
			return
		}

		if key := apiKeyFromRequest(r); key != "" && s.cfg.Auth.checkAPIKey(key) {
			next(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if ok && s.cfg.Auth.checkBasic(user, pass) {
			next(w, r)
			return
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="parterm"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

// apiKeyFromRequest reads the api_key query parameter or an
// "Authorization: Bearer <token>" header.
func apiKeyFromRequest(r *http.Request) string {
	if key := r.URL.Query().Get("api_key"); key != "" {
		return key
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
