package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"quipus-system/pkg/constants"
)

// RegisterCustomValidations registers every domain rule on the given
// validator instance. Called once from main before the server starts.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("numeric_ci", isNumericNationalID); err != nil {
		return err
	}
	if err := v.RegisterValidation("device_state", isDeviceState); err != nil {
		return err
	}
	if err := v.RegisterValidation("admin_role", isAdminRole); err != nil {
		return err
	}
	return nil
}

var nationalIDRegex = regexp.MustCompile(`^\d+$`)

// isNumericNationalID accepts digit-only national identity numbers (CI).
func isNumericNationalID(fl validator.FieldLevel) bool {
	return nationalIDRegex.MatchString(fl.Field().String())
}

func isDeviceState(fl validator.FieldLevel) bool {
	return constants.IsValidDeviceState(fl.Field().String())
}

func isAdminRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == constants.RoleAdministrator || role == constants.RoleViewer
}
