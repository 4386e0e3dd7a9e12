package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator checks api forms. Api dates are validated as time.Time and failures come back as
// ErrInvalidForm naming every failing field.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(rules ...ValidationRule) *Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(dateValue, v1alpha1.Date{})
	for _, r := range rules {
		r.Rule(v)
	}
	return &Validator{validate: v}
}

func (v *Validator) Validate(form any) error {
	if err := v.validate.Struct(form); err != nil {
		return Describe(err)
	}
	return nil
}
