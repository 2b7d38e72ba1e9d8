package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/validation"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

const invalidCredentials = "Invalid credentials"

// UserService owns the account lifecycle: creation, profile updates,
// soft deletion, session flows and scoped listing. It composes the
// validator, the credential manager, the token manager and the store;
// every error leaving it carries one of the three kinds.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// Dependencies encapsulates collaborator requirements for the service.
type Dependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Cache        *persistence.Redis
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps Dependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		tokens:     deps.TokenManager,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateUser validates the payload, checks email uniqueness across all
// users (deleted included — an email is never released for reuse),
// hashes the password and persists the record. The in-service
// uniqueness check is a fast path; the store's unique index is the
// real guarantee when concurrent creates race.
func (s *UserService) CreateUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if err := validation.ValidateCreate(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(ctx, email, true); err == nil {
		return nil, errorutil.NewValidation("Email already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errorutil.Classify(err, "Email already exists")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	verified := false
	if in.Verified != nil {
		verified = *in.Verified
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Application:  in.Application,
		Active:       active,
		Verified:     verified,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, errorutil.Classify(err, "Email already exists")
	}

	s.publish(ctx, events.EventUserCreated, user.ID.Hex(), user.Application, events.UserCreatedPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	return user, nil
}

// UpdateUser applies a partial profile update in one conditional round
// trip. Payloads carrying a password are rejected; password changes go
// through ChangePassword. An empty payload is a validation error.
func (s *UserService) UpdateUser(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	if err := validation.ValidateUpdate(in); err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, errorutil.NewValidation("update payload is empty")
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}

	user, err := s.users.UpdateProfile(ctx, id, in)
	if err != nil {
		return nil, errorutil.Classify(err, "User not found")
	}

	s.cache.InvalidateUser(ctx, id)
	s.publish(ctx, events.EventUserUpdated, id, user.Application, events.UserUpdatedPayload{
		Fields: updatedFields(in),
	})
	return user, nil
}

// DeleteUser soft-deletes: the document stays for audit and email
// uniqueness, but every read path behaves as if the user were gone.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return errorutil.Classify(err, "User not found")
	}
	s.cache.InvalidateUser(ctx, id)
	s.publish(ctx, events.EventUserDeleted, id, "", nil)
	return nil
}

// GetUserByID returns a non-deleted user, serving repeated reads from
// the cache.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := s.cache.GetUser(ctx, id); ok {
		return user, nil
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, errorutil.Classify(err, "User not found")
	}
	s.cache.SetUser(ctx, user)
	return user, nil
}

// Login authenticates by email and password. Unknown email, wrong
// password and inactive account all fail identically, leaking nothing.
// Success issues a token and persists it on the user, overwriting (and
// thereby invalidating) any previous session.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email), false)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", time.Time{}, errorutil.NewAuth(invalidCredentials)
		}
		return nil, "", time.Time{}, errorutil.Classify(err, invalidCredentials)
	}
	if !user.Active || !auth.ComparePassword(user.PasswordHash, password) {
		return nil, "", time.Time{}, errorutil.NewAuth(invalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.users.SetToken(ctx, user.ID.Hex(), token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// account deleted or deactivated between lookup and write
			return nil, "", time.Time{}, errorutil.NewAuth(invalidCredentials)
		}
		return nil, "", time.Time{}, errorutil.Classify(err, invalidCredentials)
	}
	user.Token = token

	s.cache.InvalidateUser(ctx, user.ID.Hex())
	s.publish(ctx, events.EventUserLoggedIn, user.ID.Hex(), user.Application, nil)
	return user, token, expiresAt, nil
}

// Logout clears the stored session token. Logging out twice is safe;
// only an unknown or deleted user is an error.
func (s *UserService) Logout(ctx context.Context, id string) error {
	if err := s.users.ClearToken(ctx, id); err != nil {
		return errorutil.Classify(err, "User not found")
	}
	s.cache.InvalidateUser(ctx, id)
	s.publish(ctx, events.EventUserLoggedOut, id, "", nil)
	return nil
}

// ChangePassword verifies the current password before swapping in the
// new hash. The write is conditional on the current hash, so a
// concurrent change loses cleanly, and it clears the token to force
// re-authentication everywhere.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return errorutil.Classify(err, "User not found")
	}
	if !user.Active {
		return errorutil.NewValidation("User is not active")
	}
	if !auth.ComparePassword(user.PasswordHash, currentPassword) {
		return errorutil.NewAuth(invalidCredentials)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.ReplacePassword(ctx, id, user.PasswordHash, hash); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorutil.NewAuth(invalidCredentials)
		}
		return errorutil.Classify(err, "User not found")
	}

	s.cache.InvalidateUser(ctx, id)
	s.publish(ctx, events.EventUserPasswordChanged, id, user.Application, nil)
	return nil
}

// ListByApplication returns one page of non-deleted users scoped to a
// single application tag. Page and limit default to 1 and 50; no upper
// bound is enforced on limit.
func (s *UserService) ListByApplication(ctx context.Context, app domain.Application, page, limit int, sortField, sortOrder string) (*domain.UserPage, error) {
	if !app.Valid() {
		return nil, errorutil.NewValidation("application must be one of StoreManagement, ClinicManagement, PropertyManagement")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	order := repository.SortDesc
	if strings.EqualFold(sortOrder, "asc") {
		order = repository.SortAsc
	}

	users, total, err := s.users.ListByApplication(ctx, app, repository.ListOptions{
		Page:      page,
		Limit:     limit,
		SortField: sortField,
		SortOrder: order,
	})
	if err != nil {
		return nil, errorutil.Classify(err, "User not found")
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &domain.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID string, app domain.Application, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		UserID:      userID,
		Application: app,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func updatedFields(in domain.UpdateUserInput) []string {
	var fields []string
	if in.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if in.LastName != nil {
		fields = append(fields, "lastName")
	}
	if in.Email != nil {
		fields = append(fields, "email")
	}
	if in.Application != nil {
		fields = append(fields, "application")
	}
	if in.Active != nil {
		fields = append(fields, "active")
	}
	if in.Verified != nil {
		fields = append(fields, "verified")
	}
	return fields
}
