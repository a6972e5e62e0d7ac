package session

import (
	"fmt"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mrejesho/core"
)

var (
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("Password must be at least %d characters!", pwdMinLen)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= pwdMinLen
}
