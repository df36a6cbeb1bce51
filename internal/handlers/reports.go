package handlers

import (
	"net/http"

	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/services"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	responder
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService, log logrus.FieldLogger) *ReportHandler {
	return &ReportHandler{responder: responder{log: log}, reports: reports}
}

// Payments lists recent payments for ?periodo= (dia, semana, mes, anio, todo).
func (h *ReportHandler) Payments(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.RecentPayments(r.Context(), r.URL.Query().Get("periodo"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	h.page(w, r, http.StatusOK, "reports/payments.html", map[string]any{
		"Report":  report,
		"Periods": services.Periods(),
	})
}

// Students lists students of ?nivelEducativo=, or all when empty.
func (h *ReportHandler) Students(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.StudentsByLevel(r.Context(), r.URL.Query().Get("nivelEducativo"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	h.page(w, r, http.StatusOK, "reports/students.html", map[string]any{
		"Report": report,
		"Levels": models.EducationLevels(),
	})
}

func (h *ReportHandler) Pending(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Pending(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	h.page(w, r, http.StatusOK, "reports/pending.html", map[string]any{
		"Report": report,
	})
}
