package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/colegio/auth"
	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/view"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	*App
	repo *repository.GormRepository
}

func newTestApp(t *testing.T, m *auth.Manager) *testApp {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Student{}, &models.Payment{}))
	repo := repository.NewGorm(conn)
	t.Cleanup(func() { _ = repo.Close(context.Background()) })

	view.ResetForTests()
	log, _ := test.NewNullLogger()
	return &testApp{App: New(Deps{Repo: repo, Log: log, Auth: m, DefaultLang: "es"}), repo: repo}
}

func (a *testApp) do(method, target string, form url.Values, jsonReq bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if jsonReq {
		r.Header.Set("Accept", "application/json")
	} else {
		r.Header.Set("Accept", "text/html")
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, r)
	return rec
}

func (a *testApp) createStudent(t *testing.T, name, level string) *models.Student {
	t.Helper()
	rec := a.do(http.MethodPost, "/alumnos/nuevo", url.Values{"nombre": {name}, "edad": {"10"}, "nivelEducativo": {level}}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var s models.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return &s
}

func TestRootRedirects(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/alumnos", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(http.MethodGet, "/health", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/healthz", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"up"}`, rec.Body.String())

	require.NoError(t, app.repo.Close(context.Background()))
	rec = app.do(http.MethodGet, "/healthz", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStudentPages_HTML(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodPost, "/alumnos/nuevo", url.Values{"nombre": {"Ana"}, "edad": {"9"}, "nivelEducativo": {"Basico"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alumnos", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/alumnos", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana")
	assert.Contains(t, rec.Body.String(), "2000.00")
	assert.Contains(t, rec.Body.String(), `class="num owed"`)

	rec = app.do(http.MethodGet, "/alumnos/nuevo", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/alumnos/nuevo", url.Values{"nombre": {""}, "nivelEducativo": {"Bachiller"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nivel educativo no válido")
}

func TestAnaFlow_JSON(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.createStudent(t, "Ana", "Basico")
	assert.Equal(t, 2000.0, ana.Charge)

	rec := app.do(http.MethodPost, "/alumnos/pago/"+ana.ID, url.Values{"metodoPago": {"efectivo"}, "abono": {"500"}, "monto": {"123"}, "meses": {"1"}}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 500.0, p.AmountPaid)
	assert.Equal(t, 1500.0, p.Balance)
	assert.Equal(t, 2000.0, p.Charge)

	rec = app.do(http.MethodPost, "/alumnos/pago/"+ana.ID, url.Values{"abono": {"2000"}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"abono":"amount_exceeds_balance"`)

	rec = app.do(http.MethodGet, "/alumnos/detalles/"+ana.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Student   models.Student   `json:"student"`
		Payments  []models.Payment `json:"payments"`
		TotalPaid float64          `json:"total_paid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 1500.0, detail.Student.Charge)
	assert.Len(t, detail.Payments, 1)
	assert.Equal(t, 500.0, detail.TotalPaid)
}

func TestPayment_HTML(t *testing.T) {
	app := newTestApp(t, nil)
	st := app.createStudent(t, "Ana", "Primaria")

	rec := app.do(http.MethodGet, "/alumnos/pago/"+st.ID+"?meses=3", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "300.00")

	rec = app.do(http.MethodPost, "/alumnos/pago/"+st.ID, url.Values{"abono": {"abc"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "El abono debe ser un número no negativo")

	rec = app.do(http.MethodPost, "/alumnos/pago/"+st.ID, url.Values{"abono": {"250"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alumnos/detalles/"+st.ID, rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/alumnos/detalles/"+st.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "750.00")
}

func TestEditMarkPaidDelete(t *testing.T) {
	app := newTestApp(t, nil)
	st := app.createStudent(t, "Ana", "Basico")

	rec := app.do(http.MethodGet, "/alumnos/editar/"+st.ID, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/alumnos/editar/"+st.ID, url.Values{"nombre": {"Ana M"}, "edad": {"12"}, "nivelEducativo": {"Bachillerato"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 3500.0, updated.Charge)

	rec = app.do(http.MethodPost, "/marcar-pago", url.Values{"alumnoId": {st.ID}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	got, err := app.repo.GetStudent(context.Background(), st.ID)
	require.NoError(t, err)
	assert.True(t, got.PaymentCompleted)
	assert.Equal(t, 3500.0, got.Charge)

	rec = app.do(http.MethodGet, "/alumnos/eliminar/"+st.ID, nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alumnos", rec.Header().Get("Location"))
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/alumnos/editar/missing"},
		{http.MethodGet, "/alumnos/detalles/missing"},
		{http.MethodGet, "/alumnos/pago/missing"},
		{http.MethodPost, "/alumnos/eliminar/missing"},
	} {
		rec := app.do(tc.method, tc.target, url.Values{}, true)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.target)
		assert.Contains(t, rec.Body.String(), `"error":"not_found"`)
	}

	rec := app.do(http.MethodPost, "/marcar-pago", url.Values{"alumnoId": {"missing"}}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No encontrado")

	rec = app.do(http.MethodPost, "/alumnos/editar/missing", url.Values{"nombre": {""}, "nivelEducativo": {"x"}}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.createStudent(t, "Ana", "Basico")
	beto := app.createStudent(t, "Beto", "Primaria")
	rec := app.do(http.MethodPost, "/alumnos/pago/"+ana.ID, url.Values{"abono": {"500"}}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = app.do(http.MethodPost, "/alumnos/eliminar/"+ana.ID, url.Values{}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/reportes?periodo=semana", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"student_name":"N/A"`)

	rec = app.do(http.MethodGet, "/reportes", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "N/A")

	rec = app.do(http.MethodGet, "/reportes?periodo=siglo", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_period")

	rec = app.do(http.MethodGet, "/reporte-alumnos?nivelEducativo=Primaria", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), beto.ID)

	rec = app.do(http.MethodGet, "/reporte-alumnos", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/reporte-alumnos?nivelEducativo=Kinder", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/reporte-pendientes", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Beto")
	assert.Contains(t, rec.Body.String(), "1000.00")
}

func TestLanguagePreference(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(http.MethodGet, "/alumnos?lang=en", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Students")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "lang=en")
}

func TestLoginRequiredWhenConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)
	app := newTestApp(t, auth.NewManager("admin", string(hash), "test"))

	rec := app.do(http.MethodGet, "/alumnos", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/health", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/login", url.Values{"usuario": {"admin"}, "password": {"mal"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/login", url.Values{"usuario": {"admin"}, "password": {"secreto"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	r := httptest.NewRequest(http.MethodGet, "/alumnos", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}
