package middleware

import (
	"context"
	"errors"
	"reflect"
	"strings"

	appalert "github.com/bizdesk/backend/internal/application/alert"
	"github.com/bizdesk/backend/internal/domain/alert"
	"github.com/bizdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const validationFailureKey = "validation_failure"

// SetupValidator reports fields by their JSON or form names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// ValidationDetails converts binding errors into field details. Malformed
// JSON yields a single detail on the body.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ValidationDetail{{Field: "body", Message: "Malformed request body"}}
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required", "required_without":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if isString {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if isString {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	default:
		return "Invalid value"
	}
}

// MarkValidationFailure flags the request as a rejected form submission
func MarkValidationFailure(c *gin.Context, details []dto.ValidationDetail) {
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	c.Set(validationFailureKey, fields)
}

// FailureRecorder is fed every rejected submission
type FailureRecorder interface {
	RecordFailure(ctx context.Context, tenantID, userID uuid.UUID, req appalert.ValidationFailureRequest) *alert.Alert
}

// FailureCounter counts rejected submissions per route
type FailureCounter interface {
	ValidationFailed(route string)
}

// TrackValidationFailures reports authenticated requests marked by
// MarkValidationFailure to the alert heuristic. counter may be nil.
func TrackValidationFailures(recorder FailureRecorder, counter FailureCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		v, ok := c.Get(validationFailureKey)
		if !ok {
			return
		}
		fields, _ := v.([]string)
		route := c.FullPath()
		if counter != nil {
			counter.ValidationFailed(route)
		}
		tenantID, userID, ok := Identity(c)
		if !ok {
			return
		}
		recorder.RecordFailure(c.Request.Context(), tenantID, userID, appalert.ValidationFailureRequest{
			Form:   c.Request.Method + " " + route,
			Fields: fields,
		})
	}
}
