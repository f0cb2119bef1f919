package validator

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/nextstep/nextstep/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRequest validates a request struct against its `validate` tags and
// converts failures into a single validation-marked error with per-field
// details.
func ValidateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ierr.WithError(err).
			WithHint("Request validation failed").
			Mark(ierr.ErrValidation)
	}

	details := make(map[string]any, len(validationErrors))
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		fields = append(fields, field)
		details[field] = fe.Tag()
	}

	return ierr.NewErrorf("invalid request: %s", strings.Join(fields, ", ")).
		WithHint("One or more request fields failed validation").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
