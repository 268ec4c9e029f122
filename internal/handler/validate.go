package handler

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

// Validator plugs go-playground/validator into Echo.  Field names in error
// messages are the JSON names clients send.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// FieldError is one entry of a validation error's details.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(err, apperr.Validation, "invalid request")
	}
	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace includes the struct name; drop it.
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		fields = append(fields, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
		names = append(names, field)
	}
	return apperr.WithDetails(apperr.Validation, "invalid fields: "+strings.Join(names, ", "), fields)
}

// bind decodes the request into in and validates it.
func bind(c echo.Context, in interface{}) error {
	if err := c.Bind(in); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if s, ok := he.Message.(string); ok {
				return apperr.Wrap(err, apperr.Validation, "invalid request body: "+s)
			}
		}
		return apperr.Wrap(err, apperr.Validation, "invalid request body")
	}
	return c.Validate(in)
}
