package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator.  Field
// names in errors use the JSON tag so clients see the names they sent.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator for request DTOs.
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

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// validationDetails renders validator errors as "field: rule" strings.
func validationDetails(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			out = append(out, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return out
}

// bindValid binds the body into req and validates it, writing a 400 on
// failure.  It reports whether the handler should continue.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return false, badRequest(c, "invalid data", validationDetails(err)...)
	}
	return true, nil
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
