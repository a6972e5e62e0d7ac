package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/session"
)

// NewValidator returns the validator and english translator of the apps, with every domain validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	session.InitValidators(validate, translator)
	feedbacktype.InitValidators(validate, translator)
	return validate, translator
}
