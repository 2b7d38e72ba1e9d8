package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	nameMin     = 2
	nameMax     = 50
	passwordMin = 8
	passwordMax = 100
)

// ValidateCreate checks the full create payload. All violations are
// collected into a single validation error; nothing is accepted
// partially.
func ValidateCreate(in domain.CreateUserInput) error {
	var violations []string
	violations = appendNameViolation(violations, "firstName", in.FirstName)
	violations = appendNameViolation(violations, "lastName", in.LastName)
	if !emailPattern.MatchString(in.Email) {
		violations = append(violations, "email must be a valid email address")
	}
	if l := len(in.Password); l < passwordMin || l > passwordMax {
		violations = append(violations, fmt.Sprintf("password must be between %d and %d characters", passwordMin, passwordMax))
	}
	if !in.Application.Valid() {
		violations = append(violations, "application must be one of StoreManagement, ClinicManagement, PropertyManagement")
	}
	return toError(violations)
}

// ValidateUpdate checks a partial update payload. A present password
// field is rejected outright.
func ValidateUpdate(in domain.UpdateUserInput) error {
	var violations []string
	if in.Password != nil {
		violations = append(violations, "password cannot be updated through this operation")
	}
	if in.FirstName != nil {
		violations = appendNameViolation(violations, "firstName", *in.FirstName)
	}
	if in.LastName != nil {
		violations = appendNameViolation(violations, "lastName", *in.LastName)
	}
	if in.Email != nil && !emailPattern.MatchString(*in.Email) {
		violations = append(violations, "email must be a valid email address")
	}
	if in.Application != nil && !in.Application.Valid() {
		violations = append(violations, "application must be one of StoreManagement, ClinicManagement, PropertyManagement")
	}
	return toError(violations)
}

// ValidatePassword checks a bare password, used by the dedicated
// password-change operation.
func ValidatePassword(password string) error {
	if l := len(password); l < passwordMin || l > passwordMax {
		return errorutil.NewValidation(fmt.Sprintf("password must be between %d and %d characters", passwordMin, passwordMax))
	}
	return nil
}

func appendNameViolation(violations []string, field, value string) []string {
	if l := len(strings.TrimSpace(value)); l < nameMin || l > nameMax {
		return append(violations, fmt.Sprintf("%s must be between %d and %d characters", field, nameMin, nameMax))
	}
	return violations
}

func toError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return errorutil.NewValidation(strings.Join(violations, "; "))
}
