// Package server wires the handlers into the HTTP route table.
package server

import (
	"net/http"

	"github.com/diewo77/colegio/auth"
	"github.com/diewo77/colegio/internal/handlers"
	"github.com/diewo77/colegio/internal/middleware"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/internal/services"
	"github.com/sirupsen/logrus"
)

// Deps are the long-lived objects the routes need.
type Deps struct {
	Repo        repository.Repository
	Log         logrus.FieldLogger
	Auth        *auth.Manager
	DefaultLang string
	StaticDir   string
}

// App is the application handler with all routes configured.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	auth    *auth.Manager
}

// New builds the services and handlers over d.Repo and registers the routes.
func New(d Deps) *App {
	if d.Auth == nil {
		d.Auth = auth.NewManager("", "", "")
	}
	if d.StaticDir == "" {
		d.StaticDir = "static"
	}
	a := &App{mux: http.NewServeMux(), auth: d.Auth}

	students := handlers.NewStudentHandler(services.NewStudentService(d.Repo, d.Log), d.Log)
	payments := handlers.NewPaymentHandler(services.NewPaymentService(d.Repo, d.Log), d.Log)
	reports := handlers.NewReportHandler(services.NewReportService(d.Repo), d.Log)
	login := handlers.NewAuthHandler(d.Auth, d.Log)
	health := handlers.NewHealthHandler(d.Repo, d.Log)

	// public
	a.mux.HandleFunc("GET /health", health.Live)
	a.mux.HandleFunc("GET /healthz", health.Ready)
	a.mux.HandleFunc("GET /login", login.Login)
	a.mux.HandleFunc("POST /login", login.Login)
	a.mux.HandleFunc("GET /logout", login.Logout)
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))

	// students
	a.protect("GET /{$}", http.RedirectHandler("/alumnos", http.StatusFound))
	a.protectFunc("GET /alumnos", students.List)
	a.protectFunc("GET /alumnos/nuevo", students.New)
	a.protectFunc("POST /alumnos/nuevo", students.Create)
	a.protectFunc("GET /alumnos/editar/{id}", students.Edit)
	a.protectFunc("POST /alumnos/editar/{id}", students.Update)
	a.protectFunc("GET /alumnos/eliminar/{id}", students.Delete)
	a.protectFunc("POST /alumnos/eliminar/{id}", students.Delete)
	a.protectFunc("GET /alumnos/detalles/{id}", students.Detail)
	a.protectFunc("POST /marcar-pago", students.MarkPaid)

	// payments
	a.protectFunc("GET /alumnos/pago/{id}", payments.New)
	a.protectFunc("POST /alumnos/pago/{id}", payments.Create)

	// reports
	a.protectFunc("GET /reportes", reports.Payments)
	a.protectFunc("GET /reporte-alumnos", reports.Students)
	a.protectFunc("GET /reporte-pendientes", reports.Pending)

	a.handler = middleware.Chain(a.mux,
		middleware.Logging(d.Log),
		middleware.Recover(d.Log),
		middleware.Prefs(d.DefaultLang),
		d.Auth.Middleware,
	)
	return a
}

func (a *App) protect(pattern string, h http.Handler) {
	a.mux.Handle(pattern, a.auth.RequireAuth(h))
}

func (a *App) protectFunc(pattern string, h http.HandlerFunc) {
	a.protect(pattern, h)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
