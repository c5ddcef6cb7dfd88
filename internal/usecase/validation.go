package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func joinValidationErrors(errs []ValidationError) *Error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Field+" ("+e.Message+")")
	}
	return NewValidationError("validation failed: " + strings.Join(msgs, ", "))
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.StudentName) == "" {
		errors = append(errors, ValidationError{"student_name", "is required"})
	} else if len(input.StudentName) > 200 {
		errors = append(errors, ValidationError{"student_name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if strings.TrimSpace(input.ContactNum) != "" && !isValidPhoneNumber(input.ContactNum) {
		errors = append(errors, ValidationError{"contact_number", "must be a valid phone number"})
	}

	return errors
}

func ValidateSubmitPaymentInput(input SubmitPaymentInput) []ValidationError {
	var errors []ValidationError

	if input.Amount <= 0 {
		errors = append(errors, ValidationError{"amount", "must be greater than zero"})
	}

	return errors
}

func isValidPhoneNumber(phone string) bool {
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(phone, "")

	return len(cleaned) >= 10 && len(cleaned) <= 13
}
