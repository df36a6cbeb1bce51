package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/i18n"
	"github.com/diewo77/colegio/internal/middleware"
	"github.com/diewo77/colegio/internal/services"
	"github.com/diewo77/colegio/view"
	"github.com/sirupsen/logrus"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	if _, ok := services.AsValidation(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_failed"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

type responder struct {
	log logrus.FieldLogger
}

func (rs responder) logger(r *http.Request) logrus.FieldLogger {
	return rs.log.WithField("request_id", middleware.RequestIDFrom(r.Context()))
}

// page renders an HTML template, falling back to a plain 500 if it fails.
func (rs responder) page(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		rs.logger(r).WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, i18n.T(i18n.LangFrom(r.Context()), "internal_error"), http.StatusInternalServerError)
	}
}

// fail answers err as JSON or with the error page.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := codeFor(status)
	lang := i18n.LangFrom(r.Context())
	violations, _ := services.AsValidation(err)
	if status == http.StatusInternalServerError {
		rs.logger(r).WithError(err).Error("request failed")
	}

	if httpx.WantsJSON(r) {
		var details any
		if violations != nil {
			details = violations
		}
		httpx.JSONError(w, status, code, i18n.T(lang, code), details)
		return
	}
	rs.page(w, r, status, "error.html", map[string]any{
		"Status":  status,
		"Message": i18n.T(lang, code),
		"Errors":  violations,
	})
}

// invalid answers a validation error: JSON 400, or the form template re-rendered with errors.
func (rs responder) invalid(w http.ResponseWriter, r *http.Request, err error, name string, data map[string]any) {
	violations, ok := services.AsValidation(err)
	if !ok || httpx.WantsJSON(r) {
		rs.fail(w, r, err)
		return
	}
	data["Errors"] = violations
	rs.page(w, r, http.StatusBadRequest, name, data)
}
