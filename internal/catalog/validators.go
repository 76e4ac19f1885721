package catalog

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidators wires catalog validation tags into gin's binding
// validator. Called once at router setup.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("itemkind", validateItemKind)
}

func validateItemKind(fl validator.FieldLevel) bool {
	switch ItemKind(fl.Field().String()) {
	case KindSeat, KindTierUnit:
		return true
	}
	return false
}
