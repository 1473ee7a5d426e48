package helpers

import (
	"github.com/gookit/validate"
	"github.com/zsmartex/powermatch/types"
)

type Errors struct {
	Errors []string `json:"errors"`
}

func (e Errors) Size() int {
	return len(e.Errors)
}

func Validate(payload interface{}, err_src *Errors) {
	v := validate.Struct(payload)
	if !v.Validate() {
		for _, errs := range v.Errors.All() {
			for _, err := range errs {
				err_src.Errors = append(err_src.Errors, err)
			}
		}
	}
}

// ValidateMessage maps every rule to a "<prefix>.invalid_{field}" code.
func ValidateMessage(prefix string) validate.MS {
	invalid_message := prefix + ".invalid_{field}"

	return validate.MS{
		"required":           prefix + ".missing_{field}",
		"uint":               invalid_message,
		"min":                invalid_message,
		"ValidateTier":       invalid_message,
		"ValidateSide":       invalid_message,
		"ValidatePowerType":  invalid_message,
		"ValidateOrderBy":    invalid_message,
		"ValidateOrder":      invalid_message,
		"ValidatePowerCount": invalid_message,
	}
}

func ValidateTier(val types.Tier) bool {
	return val.Matchable()
}

func ValidateSide(val types.Position) bool {
	return val.Side()
}

func ValidatePowerType(val types.PowerType) bool {
	return val == types.PowerSelf || val == types.PowerRoot
}
