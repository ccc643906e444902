package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"churchflow-backend/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

// emailRe matches /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// Struct validates dest against its `validate` tags. On failure it returns a
// validation error carrying message and one detail per offending json field.
func Struct(dest interface{}, message string) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindValidation, err, message)
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apperr.Validation(message).WithDetails(details)
}

// Var validates a single value, e.g. Var(reason, "oneof=transfer relocation").
func Var(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid", "uuid4":
		return "must be a valid id"
	case "gtefield":
		return "must not be before " + fe.Param()
	}
	return "is invalid"
}

// ErrInvalidBody is returned for request bodies that are not a JSON object.
var ErrInvalidBody = apperr.Validation("Invalid request body")

// DecodeJSON unmarshals body into dest. An empty body leaves dest untouched so
// required-field checks report the missing fields instead.
func DecodeJSON(body []byte, dest interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return ErrInvalidBody
	}
	return nil
}
