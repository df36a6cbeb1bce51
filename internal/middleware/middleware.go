// Package middleware holds the HTTP middleware chain: request ids, access
// logging, panic recovery and language preference.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/i18n"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// RequestIDHeader is read from the request and echoed on the response.
const RequestIDHeader = "X-Request-ID"

// RequestIDFrom returns the id assigned by Logging.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging assigns a request id and logs one line per request.
func Logging(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"request_id":  id,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Error("request")
			} else {
				entry.Info("request")
			}
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.WithFields(logrus.Fields{
						"request_id": RequestIDFrom(r.Context()),
						"panic":      v,
					}).Error("panic recovered")
					lang := i18n.LangFrom(r.Context())
					if httpx.WantsJSON(r) {
						httpx.JSONError(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"), nil)
						return
					}
					http.Error(w, i18n.T(lang, "internal_error"), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Prefs resolves the UI language from ?lang=, the lang cookie or
// Accept-Language, in that order. A ?lang= value is remembered in the cookie.
func Prefs(defaultLang string) func(http.Handler) http.Handler {
	if i18n.Normalize(defaultLang) == "" {
		defaultLang = i18n.DefaultLang
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if q := i18n.Normalize(r.URL.Query().Get("lang")); q != "" {
				lang = q
				http.SetCookie(w, &http.Cookie{
					Name:     "lang",
					Value:    lang,
					Path:     "/",
					MaxAge:   86400 * 365,
					HttpOnly: true,
				})
			} else if c, err := r.Cookie("lang"); err == nil {
				lang = i18n.Normalize(c.Value)
			}
			if lang == "" && r.Header.Get("Accept-Language") != "" {
				lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
			}
			if lang == "" {
				lang = defaultLang
			}
			next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
		})
	}
}

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
