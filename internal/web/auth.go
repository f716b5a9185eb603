package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookieName = "coherence_session"
	sessionDuration   = 24 * time.Hour
)

// generateToken produces a cryptographically random 32-byte hex session token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns the bcrypt hash to put in web.admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkCredentials compares a login attempt with the configured admin account.
func (s *Server) checkCredentials(username, password string) bool {
	if username != s.auth.Username || s.auth.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.auth.PasswordHash), []byte(password)) == nil
}

// requireAuth wraps a handler and redirects to /login if no valid session is present.
// API calls (paths starting with /api/ or /ws) get a 401 instead of a redirect.
// API calls may also present the configured token as a bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth.Disabled || s.authorized(r) {
			next(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && s.validSession(cookie.Value) {
		return true
	}
	if s.auth.APIToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.auth.APIToken)) == 1
}

// validSession returns true if the token is an active, unexpired session.
func (s *Server) validSession(token string) bool {
	if token == "" {
		return false
	}
	v, ok := s.sessions.Load(token)
	if !ok {
		return false
	}
	if time.Since(v.(time.Time)) > sessionDuration {
		s.sessions.Delete(token)
		return false
	}
	return true
}

// handleLoginPage serves GET /login.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// Already authenticated, go home.
	if cookie, err := r.Cookie(sessionCookieName); err == nil && s.validSession(cookie.Value) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, loginHTML)
}

// handleLogin serves POST /login (credential check).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if s.checkCredentials(username, password) {
		token, err := generateToken()
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		s.sessions.Store(token, time.Now())
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(sessionDuration.Seconds()),
		})
		s.logger.Info("User logged in", "username", username, "remote", r.RemoteAddr, "component", "Auth")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// Bad credentials: redisplay login page with an error message.
	s.logger.Warn("Failed login attempt", "username", username, "remote", r.RemoteAddr, "component", "Auth")
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, strings.ReplaceAll(loginHTML, "<!--ERROR-->",
		`<div class="login-error">Invalid username or password</div>`))
}

// handleLogout clears the session cookie and redirects to /login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
		s.logger.Info("User logged out", "username", s.auth.Username, "remote", r.RemoteAddr, "component", "Auth")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}
