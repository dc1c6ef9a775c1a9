package validator

import (
	"log"
	"regexp"

	"mediamatrixhub/internal/models"

	"github.com/go-playground/validator/v10"
)

var matricolaPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// registerCustomRules installs the project tags on v.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-event-log-type", validateEventLogType)
	mustRegister("matricola", validateMatricola)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).Valid()
}

func validateEventLogType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.EventLogType(value).Valid()
}

// Badge ids are alphanumeric; surrounding blanks are trimmed by the caller.
func validateMatricola(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return matricolaPattern.MatchString(value)
}
