// Package auth implements the optional staff login: one configured admin
// account checked with bcrypt and an HMAC-signed session cookie.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/colegio/httpx"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userCtxKey        = ctxKey("user")

	sessionTTL = 14 * 24 * time.Hour
)

// Manager signs and verifies sessions for the configured admin.
// With an empty password hash it is disabled and every request is allowed.
type Manager struct {
	user         string
	passwordHash []byte
	secret       []byte
	now          func() time.Time
}

func NewManager(user, passwordHash, secret string) *Manager {
	if secret == "" {
		secret = "devsessionsecret"
	}
	return &Manager{
		user:         user,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		now:          time.Now,
	}
}

// Enabled reports whether login is required.
func (m *Manager) Enabled() bool { return len(m.passwordHash) > 0 }

// CheckCredentials compares the username and the bcrypt hash.
func (m *Manager) CheckCredentials(user, password string) bool {
	if !m.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(m.user)) == 1
	pwErr := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password))
	return userOK && pwErr == nil
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie carrying the user name and expiry.
func (m *Manager) CreateSession(w http.ResponseWriter, user string) {
	exp := m.now().Add(sessionTTL)
	payload := base64.RawURLEncoding.EncodeToString([]byte(user)) + "." + strconv.FormatInt(exp.Unix(), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + m.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the user name.
func (m *Manager) ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 3 {
		return "", false
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(payload))) {
		return "", false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m.now().Unix() > exp {
		return "", false
	}
	user, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || string(user) != m.user {
		return "", false
	}
	return string(user), true
}

func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext returns the logged-in user name, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userCtxKey).(string)
	return u, ok && u != ""
}

// Middleware attaches the session user to the request context if present.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := m.ParseSession(r); ok {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login (HTML) or answers 401 (JSON) when login is
// enabled and the request carries no valid session.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := UserFromContext(r.Context()); !ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", "", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
