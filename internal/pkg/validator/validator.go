package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/mapahead-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("poi_category", validatePOICategory)
}

// Validate - validates a struct
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// Var validates a single value against tag.
func Var(v interface{}, tag string) error {
	return validate.Var(v, tag)
}

// GetValidator - returns the validator for custom configuration
func GetValidator() *validator.Validate {
	return validate
}

// validatePOICategory accepts known category codes only.
func validatePOICategory(fl validator.FieldLevel) bool {
	return domain.IsKnownCategory(fl.Field().String())
}

// FieldErrors flattens validation errors into field -> failed tag.
func FieldErrors(err error) map[string]interface{} {
	out := make(map[string]interface{})
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range errs {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}
