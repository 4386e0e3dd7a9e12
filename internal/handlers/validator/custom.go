package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
)

const maxNodeName = 255

var (
	personNameRegex = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)
	crpRegex        = regexp.MustCompile(`^\d{2}/\d{1,6}$`)
)

func personNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return personNameRegex.MatchString(strings.TrimSpace(val))
}

// crpValidator accepts the council registration as region/number, e.g. 06/123456.
func crpValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return crpRegex.MatchString(val)
}

func nodeNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	trimmed := strings.TrimSpace(val)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxNodeName
}

func pastDateValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}

	return !val.IsZero() && !val.After(time.Now())
}

// dateValue exposes api dates to the validator as time.Time.
func dateValue(field reflect.Value) any {
	if d, ok := field.Interface().(v1alpha1.Date); ok {
		return d.Time
	}
	return nil
}
