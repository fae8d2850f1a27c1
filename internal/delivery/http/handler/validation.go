package handler

import (
	"github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/pkg/validator"

	playground "github.com/go-playground/validator/v10"
)

// validationError maps validator failures to API errors. A failed
// poi_category rule is reported as an unknown category.
func validationError(err error) *errors.AppError {
	details := validator.FieldErrors(err)
	if fieldErrs, ok := err.(playground.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			if fe.Tag() == "poi_category" {
				return errors.ErrUnknownCategory.WithDetails(details)
			}
		}
	}
	return errors.ErrInvalidRequest.WithDetails(details)
}
