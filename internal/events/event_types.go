package events

import (
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated         EventType = "user_created"
	EventUserUpdated         EventType = "user_updated"
	EventUserDeleted         EventType = "user_deleted"
	EventUserLoggedIn        EventType = "user_logged_in"
	EventUserLoggedOut       EventType = "user_logged_out"
	EventUserPasswordChanged EventType = "user_password_changed"
)

// Event represents an identity lifecycle event emitted by the user
// service. Payloads never carry password material or tokens.
type Event struct {
	ID          string             `json:"id"`
	Type        EventType          `json:"type"`
	UserID      string             `json:"user_id"`
	Application domain.Application `json:"application"`
	Timestamp   time.Time          `json:"timestamp"`
	Payload     interface{}        `json:"payload,omitempty"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserUpdatedPayload lists the profile fields touched by an update.
type UserUpdatedPayload struct {
	Fields []string `json:"fields"`
}
