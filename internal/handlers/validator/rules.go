package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewPersonValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("person_name", personNameValidator),
		},
		{
			Rule: registerFn("crp", crpValidator),
		},
		{
			Rule: registerFn("past_date", pastDateValidator),
		},
	}
}

func NewPtiValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("node_name", nodeNameValidator),
		},
	}
}

// NewDefaultValidationRules returns every rule used by the api forms.
func NewDefaultValidationRules() []ValidationRule {
	return append(NewPersonValidationRules(), NewPtiValidationRules()...)
}
