package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Application partitions users by the consuming application that owns
// them. Every query is scoped to exactly one tag.
type Application string

const (
	ApplicationStoreManagement    Application = "StoreManagement"
	ApplicationClinicManagement   Application = "ClinicManagement"
	ApplicationPropertyManagement Application = "PropertyManagement"
)

// Valid reports whether the tag belongs to the closed enum.
func (a Application) Valid() bool {
	switch a {
	case ApplicationStoreManagement, ApplicationClinicManagement, ApplicationPropertyManagement:
		return true
	}
	return false
}

// User is the sole persisted entity of the identity core.
//
// Token holds the current session token; empty means no active
// session, and a second login overwrites (invalidates) the first.
// Deleted users keep their document for audit and email-uniqueness
// purposes but are excluded from every read path.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string        `bson:"first_name" json:"firstName"`
	LastName     string        `bson:"last_name" json:"lastName"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	Application  Application   `bson:"application" json:"application"`
	Active       bool          `bson:"active" json:"active"`
	Verified     bool          `bson:"verified" json:"verified"`
	Deleted      bool          `bson:"deleted" json:"-"`
	Token        string        `bson:"token" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time    `bson:"deleted_at,omitempty" json:"-"`
}

// UserPage is one page of a scoped user listing.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}
