// Package validation collects field-level form errors as code strings that the
// templates and JSON responses translate.
package validation

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/diewo77/colegio/internal/models"
	"github.com/go-playground/validator/v10"
)

// Violations maps a form field name to an error code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has one.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// RangeFloat rejects values outside [minVal, maxVal].
func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, "out_of_range")
	}
}

// Amount rejects NaN, infinities and negative values.
func Amount(field string, val float64, v Violations) {
	if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
		v.Add(field, "invalid_amount")
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("education_level", func(fl validator.FieldLevel) bool {
			return models.EducationLevel(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Struct runs the `validate` tags of s and merges failures into v, keyed by
// the `form` tag of each field.
func Struct(s any, v Violations) {
	err := instance().Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.Add("_", "invalid")
		return
	}
	for _, fe := range verrs {
		v.Add(fe.Field(), codeFor(fe.Tag()))
	}
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min", "max", "gte", "lte", "gt", "lt":
		return "out_of_range"
	case "education_level":
		return "invalid_education_level"
	default:
		return "invalid"
	}
}
