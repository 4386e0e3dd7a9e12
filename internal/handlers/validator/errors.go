package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrInvalidForm struct {
	error
}

func NewErrInvalidForm(format string, args ...any) *ErrInvalidForm {
	return &ErrInvalidForm{fmt.Errorf(format, args...)}
}

// Describe turns validation errors into a single readable message naming every failing field.
func Describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return NewErrInvalidForm("invalid form: %s", strings.Join(msgs, "; "))
}
