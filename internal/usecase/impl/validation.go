package impl

import (
	"strings"

	domainerrors "medtrack/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct-tag validation and reports failures as ErrValidationFailed.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(fields, "; "))
}

// requireNonBlank rejects a patch field that would blank out a required value.
func requireNonBlank(field string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return domainerrors.ErrValidationFailed.WithDetails(field + " must not be empty")
	}

	return nil
}

// trimmed returns a copy of value without surrounding whitespace.
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)

	return &out
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return domainerrors.ErrInvalidQuantity
	}

	return nil
}
