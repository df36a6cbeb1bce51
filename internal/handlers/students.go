package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/services"
	"github.com/sirupsen/logrus"
)

type StudentHandler struct {
	responder
	students *services.StudentService
}

func NewStudentHandler(students *services.StudentService, log logrus.FieldLogger) *StudentHandler {
	return &StudentHandler{responder: responder{log: log}, students: students}
}

func studentInput(form url.Values) services.StudentInput {
	in := services.StudentInput{
		Name:           form.Get("nombre"),
		Age:            form.Get("edad"),
		EducationLevel: form.Get("nivelEducativo"),
	}
	if form.Has("pagoRealizado") {
		v := strings.ToLower(strings.TrimSpace(form.Get("pagoRealizado")))
		paid := v == "on" || v == "true" || v == "1" || v == "si" || v == "sí"
		in.PaymentCompleted = &paid
	}
	return in
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, students)
		return
	}
	h.page(w, r, http.StatusOK, "students/index.html", map[string]any{
		"Students": students,
	})
}

func (h *StudentHandler) New(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "students/new.html", map[string]any{
		"Form": map[string]string{},
	})
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := httpx.FormValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	student, err := h.students.Create(r.Context(), studentInput(form))
	if err != nil {
		h.invalid(w, r, err, "students/new.html", map[string]any{
			"Form": flatten(form),
		})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, student)
		return
	}
	http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
}

func (h *StudentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, student)
		return
	}
	h.page(w, r, http.StatusOK, "students/edit.html", map[string]any{
		"Student": student,
		"Form":    studentForm(student),
	})
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	form, err := httpx.FormValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	student, err := h.students.Update(r.Context(), id, studentInput(form))
	if err != nil {
		h.invalid(w, r, err, "students/edit.html", map[string]any{
			"Student": &models.Student{ID: id},
			"Form":    flatten(form),
		})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, student)
		return
	}
	http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
}

func (h *StudentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	form, err := httpx.FormValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	id := strings.TrimSpace(form.Get("alumnoId"))
	if err := h.students.MarkPaid(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "payment_completed": true})
		return
	}
	http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.students.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
		return
	}
	http.Redirect(w, r, "/alumnos", http.StatusSeeOther)
}

func (h *StudentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.students.Detail(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"student":    detail.Student,
			"payments":   detail.Payments,
			"total_paid": detail.TotalPaid,
		})
		return
	}
	h.page(w, r, http.StatusOK, "students/detail.html", map[string]any{
		"Student":   detail.Student,
		"Payments":  detail.Payments,
		"TotalPaid": detail.TotalPaid,
	})
}

func studentForm(s *models.Student) map[string]string {
	age := ""
	if s.Age > 0 {
		age = strconv.Itoa(s.Age)
	}
	paid := "false"
	if s.PaymentCompleted {
		paid = "true"
	}
	return map[string]string{
		"nombre":         s.Name,
		"edad":           age,
		"nivelEducativo": string(s.EducationLevel),
		"pagoRealizado":  paid,
	}
}

func flatten(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		out[k] = form.Get(k)
	}
	return out
}
