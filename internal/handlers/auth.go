package handlers

import (
	"net/http"

	"github.com/diewo77/colegio/auth"
	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/i18n"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	responder
	auth *auth.Manager
}

func NewAuthHandler(m *auth.Manager, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{responder: responder{log: log}, auth: m}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Enabled() {
		http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		h.page(w, r, http.StatusOK, "login.html", nil)
		return
	}

	form, err := httpx.FormValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	user := form.Get("usuario")
	if !h.auth.CheckCredentials(user, form.Get("password")) {
		h.logger(r).WithField("user", user).Warn("login failed")
		msg := i18n.T(i18n.LangFrom(r.Context()), "invalid_credentials")
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", msg, nil)
			return
		}
		h.page(w, r, http.StatusUnauthorized, "login.html", map[string]any{"Error": msg, "User": user})
		return
	}

	h.auth.CreateSession(w, user)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}
	http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
