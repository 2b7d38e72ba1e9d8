package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

func validCreate() domain.CreateUserInput {
	return domain.CreateUserInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Password:    "longenough1",
		Application: domain.ApplicationStoreManagement,
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CreateUserInput)
		wantErr string
	}{
		{name: "valid", mutate: func(in *domain.CreateUserInput) {}},
		{
			name:    "first name too short",
			mutate:  func(in *domain.CreateUserInput) { in.FirstName = "A" },
			wantErr: "firstName",
		},
		{
			name:    "last name too long",
			mutate:  func(in *domain.CreateUserInput) { in.LastName = strings.Repeat("x", 51) },
			wantErr: "lastName",
		},
		{
			name:    "bad email",
			mutate:  func(in *domain.CreateUserInput) { in.Email = "not-an-email" },
			wantErr: "email",
		},
		{
			name:    "email missing tld",
			mutate:  func(in *domain.CreateUserInput) { in.Email = "user@host" },
			wantErr: "email",
		},
		{
			name:    "password too short",
			mutate:  func(in *domain.CreateUserInput) { in.Password = "short" },
			wantErr: "password",
		},
		{
			name:    "password too long",
			mutate:  func(in *domain.CreateUserInput) { in.Password = strings.Repeat("p", 101) },
			wantErr: "password",
		},
		{
			name:    "unknown application",
			mutate:  func(in *domain.CreateUserInput) { in.Application = "FleetManagement" },
			wantErr: "application",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreate()
			tt.mutate(&in)
			err := ValidateCreate(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errorutil.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreateAggregatesViolations(t *testing.T) {
	in := validCreate()
	in.FirstName = "A"
	in.Email = "nope"
	in.Password = "short"

	err := ValidateCreate(in)
	require.Error(t, err)
	require.True(t, errorutil.IsValidation(err))

	// all-or-nothing: one error carrying every violation
	assert.Contains(t, err.Error(), "firstName")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestValidateUpdate(t *testing.T) {
	str := func(s string) *string { return &s }
	app := domain.ApplicationClinicManagement
	badApp := domain.Application("Nope")

	tests := []struct {
		name    string
		in      domain.UpdateUserInput
		wantErr string
	}{
		{name: "empty payload passes shape check", in: domain.UpdateUserInput{}},
		{name: "valid partial", in: domain.UpdateUserInput{FirstName: str("Grace"), Application: &app}},
		{
			name:    "password rejected",
			in:      domain.UpdateUserInput{Password: str("newpassword1")},
			wantErr: "password cannot be updated",
		},
		{
			name:    "short first name",
			in:      domain.UpdateUserInput{FirstName: str("G")},
			wantErr: "firstName",
		},
		{
			name:    "bad email",
			in:      domain.UpdateUserInput{Email: str("broken@")},
			wantErr: "email",
		},
		{
			name:    "bad application",
			in:      domain.UpdateUserInput{Application: &badApp},
			wantErr: "application",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errorutil.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.Error(t, ValidatePassword("1234567"))
	assert.Error(t, ValidatePassword(strings.Repeat("p", 101)))
	assert.True(t, errorutil.IsValidation(ValidatePassword("short")))
}
