package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Validator wraps go-playground validator with the API's message rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports JSON field names and treats
// an AnswerValue as its text or list.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if a, ok := field.Interface().(model.AnswerValue); ok {
			if a.IsList {
				return a.List
			}
			return a.Text
		}
		return nil
	}, model.AnswerValue{})
	return &Validator{validate: v}
}

// Check validates req. A missing required field yields requiredMsg so each
// endpoint keeps its documented message.
func (v *Validator) Check(req interface{}, requiredMsg string) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperr.Validation(requiredMsg)
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(requiredMsg)
	case "email":
		return apperr.Validation(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "url":
		return apperr.Validation(fmt.Sprintf("%s must be a valid URL", fe.Field()))
	case "min":
		return apperr.Validation(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return apperr.Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return apperr.Validation(fmt.Sprintf("%s is out of range", fe.Field()))
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
