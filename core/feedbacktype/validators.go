package feedbacktype

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mrejesho/core"
)

var (
	questionTypeTag  = "questiontype"
	questionTypeText = "question type must be one of mcq, rating or descriptive"

	groupModeTag  = "groupmode"
	groupModeText = "group must be Single or Multiple"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(questionTypeTag, questionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, questionTypeTag, questionTypeText)

	_ = validate.RegisterValidation(groupModeTag, groupModeValidation)
	core.RegisterCustomTranslation(validate, translator, groupModeTag, groupModeText)
}

func questionTypeValidation(fl validator.FieldLevel) bool {
	_, err := ParseQuestionType(fl.Field().String())
	return err == nil
}

func groupModeValidation(fl validator.FieldLevel) bool {
	_, err := ParseGroupMode(fl.Field().String())
	return err == nil
}
