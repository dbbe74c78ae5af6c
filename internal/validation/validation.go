package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/snnyvrz/courselibrary/internal/apperror"
	"github.com/snnyvrz/courselibrary/internal/model"
)

type FieldError = apperror.FieldError

type ErrorResponse struct {
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterTypes(v)
	}
}

// RegisterTypes teaches v to see a zero model.Date as missing, so
// `required` rejects "dateOfBirth": "".
func RegisterTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(dateValue, model.Date{})
}

func dateValue(field reflect.Value) any {
	d, ok := field.Interface().(model.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}

// BindAndValidateJSON binds the request body into dst. On failure it attaches
// a 400 apperror to the context, aborts, and returns false.
func BindAndValidateJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithBindError(c, err, "invalid request body")
		return false
	}

	return true
}

// BindAndValidateQuery is the query-string counterpart of BindAndValidateJSON.
func BindAndValidateQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abortWithBindError(c, err, "invalid query parameters")
		return false
	}

	return true
}

func abortWithBindError(c *gin.Context, err error, message string) {
	_ = c.Error(bindError(err, message))
	c.Abort()
}

func bindError(err error, message string) *apperror.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.Invalid("VALIDATION_FAILED", "validation failed", formatValidationErrors(verrs), err)
	}

	return apperror.Invalid("INVALID_REQUEST", message, []FieldError{
		{
			Field:   "",
			Rule:    "syntax",
			Message: err.Error(),
		},
	}, err)
}

func formatValidationErrors(verrs validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, 0, len(verrs))

	for _, fe := range verrs {
		jsonField := toJSONFieldName(fe.Field())
		fields = append(fields, FieldError{
			Field:   jsonField,
			Rule:    fe.Tag(),
			Message: buildMessage(jsonField, fe),
		})
	}

	return fields
}

func toJSONFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func buildMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	}

	return field + " is invalid (" + fe.Tag() + ")"
}
