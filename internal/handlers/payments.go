package handlers

import (
	"net/http"

	"github.com/diewo77/colegio/httpx"
	"github.com/diewo77/colegio/internal/services"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	responder
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{responder: responder{log: log}, payments: payments}
}

func paymentPage(form *services.PaymentForm) map[string]any {
	return map[string]any{
		"Student":     form.Student,
		"Months":      form.Months,
		"Installment": form.Installment,
		"BaseCharge":  form.BaseCharge,
	}
}

// New shows the payment form with the suggested installment for ?meses=.
func (h *PaymentHandler) New(w http.ResponseWriter, r *http.Request) {
	form, err := h.payments.Form(r.Context(), r.PathValue("id"), r.URL.Query().Get("meses"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"student":     form.Student,
			"months":      form.Months,
			"installment": form.Installment,
			"base_charge": form.BaseCharge,
		})
		return
	}
	data := paymentPage(form)
	data["Form"] = map[string]string{}
	h.page(w, r, http.StatusOK, "payments/new.html", data)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	values, err := httpx.FormValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	// monto is sent by the form as a display hint and ignored; abono is applied.
	payment, err := h.payments.Record(r.Context(), services.PaymentInput{
		StudentID:     id,
		PaymentMethod: values.Get("metodoPago"),
		Amount:        values.Get("abono"),
		Months:        values.Get("meses"),
	})
	if err != nil {
		if _, ok := services.AsValidation(err); ok && !httpx.WantsJSON(r) {
			form, ferr := h.payments.Form(r.Context(), id, values.Get("meses"))
			if ferr != nil {
				h.fail(w, r, ferr)
				return
			}
			data := paymentPage(form)
			data["Form"] = flatten(values)
			h.invalid(w, r, err, "payments/new.html", data)
			return
		}
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, payment)
		return
	}
	http.Redirect(w, r, "/alumnos/detalles/"+id, http.StatusSeeOther)
}
