package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"recruitsync_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("candidate_status", validateCandidateStatus)
	mustRegister("platform_type", validatePlatformType)
}

// Empty values pass; pair with 'required' where needed.

func validateCandidateStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.CandidateStatus(value).IsValid()
}

func validatePlatformType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.PlatformType(value).IsValid()
}
