package domain

// CreateUserInput is the payload for creating a user. Flags are
// optional and default server-side (active=true, verified=false).
type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Application Application
	Active      *bool
	Verified    *bool
}

// UpdateUserInput is a partial profile update. Every field is
// optional; a password is never accepted here — password changes go
// through their own operation.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	Application *Application
	Active      *bool
	Verified    *bool
}

// Empty reports whether the update carries no fields at all.
func (in UpdateUserInput) Empty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Email == nil &&
		in.Application == nil && in.Active == nil && in.Verified == nil
}
