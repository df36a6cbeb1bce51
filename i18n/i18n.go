// Package i18n holds the UI and error-code translations (es, en).
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when no preference is known.
const DefaultLang = "es"

var supported = map[string]bool{"es": true, "en": true}

var messages = map[string]map[string]string{
	"es": {
		// errors
		"required":                "Obligatorio",
		"invalid":                 "Valor no válido",
		"invalid_number":          "Debe ser un número entero",
		"out_of_range":            "Fuera de rango",
		"invalid_amount":          "El abono debe ser un número no negativo",
		"amount_exceeds_balance":  "El abono supera el saldo pendiente",
		"invalid_period":          "Periodo no válido",
		"invalid_education_level": "Nivel educativo no válido",
		"validation_failed":       "Revise los datos del formulario",
		"not_found":               "No encontrado",
		"conflict":                "El saldo cambió mientras se registraba el pago, intente de nuevo",
		"internal_error":          "Error interno",
		"invalid_credentials":     "Usuario o contraseña incorrectos",
		"degraded":                "Servicio degradado",
		// levels
		"level_primary":     "Primaria",
		"level_basic":       "Básico",
		"level_high_school": "Bachillerato",
		"level_unknown":     "Sin nivel",
		// periods
		"period_dia":    "Último día",
		"period_semana": "Última semana",
		"period_mes":    "Último mes",
		"period_anio":   "Último año",
		"period_todo":   "Todo",
		// ui
		"app_title":         "Colegio",
		"students":          "Alumnos",
		"student":           "Alumno",
		"new_student":       "Nuevo alumno",
		"edit_student":      "Editar alumno",
		"student_detail":    "Detalles del alumno",
		"name":              "Nombre",
		"age":               "Edad",
		"education_level":   "Nivel educativo",
		"charge":            "Cargo",
		"status":            "Estado",
		"paid":              "Pagado",
		"pending":           "Pendiente",
		"actions":           "Acciones",
		"edit":              "Editar",
		"delete":            "Eliminar",
		"details":           "Detalles",
		"mark_paid":         "Marcar pago",
		"register_payment":  "Registrar pago",
		"payment":           "Pago",
		"payments":          "Pagos",
		"date":              "Fecha",
		"payment_method":    "Método de pago",
		"amount":            "Monto",
		"amount_paid":       "Abono",
		"balance":           "Saldo",
		"months":            "Meses",
		"installment":       "Cuota sugerida",
		"base_charge":       "Cuota del nivel",
		"total_paid":        "Total abonado",
		"total_outstanding": "Total pendiente",
		"save":              "Guardar",
		"cancel":            "Cancelar",
		"back":              "Volver",
		"select":            "Seleccione",
		"all":               "Todos",
		"filter":            "Filtrar",
		"reports":           "Reportes",
		"report_payments":   "Reporte de pagos",
		"report_students":   "Alumnos por nivel",
		"report_pending":    "Pagos pendientes",
		"period":            "Periodo",
		"count":             "Cantidad",
		"no_records":        "Sin registros",
		"confirm_delete":    "¿Eliminar este alumno? Sus pagos se conservan.",
		"login":             "Ingresar",
		"logout":            "Salir",
		"username":          "Usuario",
		"password":          "Contraseña",
		"error":             "Error",
	},
	"en": {
		"required":                "Required",
		"invalid":                 "Invalid value",
		"invalid_number":          "Must be a whole number",
		"out_of_range":            "Out of range",
		"invalid_amount":          "Amount must be a non-negative number",
		"amount_exceeds_balance":  "Amount exceeds the outstanding balance",
		"invalid_period":          "Invalid period",
		"invalid_education_level": "Invalid education level",
		"validation_failed":       "Please check the form",
		"not_found":               "Not found",
		"conflict":                "The balance changed while recording the payment, please retry",
		"internal_error":          "Internal error",
		"invalid_credentials":     "Invalid username or password",
		"degraded":                "Service degraded",
		"level_primary":           "Primary",
		"level_basic":             "Basic",
		"level_high_school":       "High school",
		"level_unknown":           "No level",
		"period_dia":              "Last day",
		"period_semana":           "Last week",
		"period_mes":              "Last month",
		"period_anio":             "Last year",
		"period_todo":             "All time",
		"app_title":               "School",
		"students":                "Students",
		"student":                 "Student",
		"new_student":             "New student",
		"edit_student":            "Edit student",
		"student_detail":          "Student details",
		"name":                    "Name",
		"age":                     "Age",
		"education_level":         "Education level",
		"charge":                  "Charge",
		"status":                  "Status",
		"paid":                    "Paid",
		"pending":                 "Pending",
		"actions":                 "Actions",
		"edit":                    "Edit",
		"delete":                  "Delete",
		"details":                 "Details",
		"mark_paid":               "Mark paid",
		"register_payment":        "Record payment",
		"payment":                 "Payment",
		"payments":                "Payments",
		"date":                    "Date",
		"payment_method":          "Payment method",
		"amount":                  "Amount",
		"amount_paid":             "Amount paid",
		"balance":                 "Balance",
		"months":                  "Months",
		"installment":             "Suggested installment",
		"base_charge":             "Level fee",
		"total_paid":              "Total paid",
		"total_outstanding":       "Total outstanding",
		"save":                    "Save",
		"cancel":                  "Cancel",
		"back":                    "Back",
		"select":                  "Select",
		"all":                     "All",
		"filter":                  "Filter",
		"reports":                 "Reports",
		"report_payments":         "Payments report",
		"report_students":         "Students by level",
		"report_pending":          "Pending payments",
		"period":                  "Period",
		"count":                   "Count",
		"no_records":              "No records",
		"confirm_delete":          "Delete this student? Their payments are kept.",
		"login":                   "Log in",
		"logout":                  "Log out",
		"username":                "Username",
		"password":                "Password",
		"error":                   "Error",
	},
}

// T translates code into lang, falling back to Spanish and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Normalize returns lang if supported, otherwise "".
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if len(lang) > 2 {
		lang = lang[:2]
	}
	if supported[lang] {
		return lang
	}
	return ""
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.SplitN(strings.TrimSpace(part), ";", 2)[0]
		if l := Normalize(tag); l != "" {
			return l
		}
	}
	return DefaultLang
}

type langKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFrom returns the language stored in ctx or DefaultLang.
func LangFrom(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
