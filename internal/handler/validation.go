package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"interview-platform/internal/apperr"
)

const maxBodyBytes = 1 << 20

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// decodeAndValidate читает JSON тело и проверяет теги validate.
func decodeAndValidate(validate *validator.Validate, writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return apperr.Validation("Request body is not valid JSON", nil).WithCause(err)
	}

	if err := validate.Struct(target); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperr.Internal(err)
		}

		details := make(map[string]string, len(validationErrors))
		for _, fieldError := range validationErrors {
			details[fieldError.Field()] = describe(fieldError)
		}
		return apperr.Validation("Request validation failed", details)
	}

	return nil
}

func describe(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldError.Param() + " characters"
	case "max":
		return "must be at most " + fieldError.Param() + " characters"
	case "datetime":
		return "must be a date in format YYYY-MM-DD"
	default:
		return "is invalid"
	}
}
