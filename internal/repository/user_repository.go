package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/persistence"
)

// SortOrder for listings.
const (
	SortAsc  = 1
	SortDesc = -1
)

// ListOptions control a scoped, paginated listing.
type ListOptions struct {
	Page      int
	Limit     int
	SortField string
	SortOrder int
}

// UserRepository defines document-store access for user records. Find
// operations exclude soft-deleted users unless stated otherwise;
// lookup misses surface as mongo.ErrNoDocuments and are classified at
// the service boundary.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error)
	SoftDelete(ctx context.Context, id string) error
	SetToken(ctx context.Context, id, token string) error
	ClearToken(ctx context.Context, id string) error
	ReplacePassword(ctx context.Context, id, currentHash, newHash string) error
	ListByApplication(ctx context.Context, app domain.Application, opts ListOptions) ([]domain.User, int64, error)
}

// sortFields whitelists caller-supplied sort keys against document
// field names.
var sortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
}

type userRepository struct {
	store *persistence.Mongo
}

// NewUserRepository returns a document-store-backed implementation.
func NewUserRepository(store *persistence.Mongo) UserRepository {
	return &userRepository{store: store}
}

// collection resolves the handle per call so the connection manager's
// readiness check applies to every operation.
func (r *userRepository) collection() (*mongo.Collection, error) {
	return r.store.Collection(persistence.UsersCollection)
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var user domain.User
	if err := coll.FindOne(ctx, bson.M{"_id": oid, "deleted": false}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.User, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	filter := bson.M{"email": email}
	if !includeDeleted {
		filter["deleted"] = false
	}

	var user domain.User
	if err := coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the partial update in a single conditional
// round trip and returns the post-update document, closing the
// read-mutate-save race.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.FirstName != nil {
		set["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		set["last_name"] = *in.LastName
	}
	if in.Email != nil {
		set["email"] = *in.Email
	}
	if in.Application != nil {
		set["application"] = *in.Application
	}
	if in.Active != nil {
		set["active"] = *in.Active
	}
	if in.Verified != nil {
		set["verified"] = *in.Verified
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user domain.User
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "deleted": false},
		bson.M{"$set": set},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	now := time.Now().UTC()
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false},
		bson.M{"$set": bson.M{
			"deleted":    true,
			"active":     false,
			"deleted_at": now,
			"updated_at": now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetToken stores the session token, overwriting any previous one.
// Only active, non-deleted users can hold a session.
func (r *userRepository) SetToken(ctx context.Context, id, token string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false, "active": true},
		bson.M{"$set": bson.M{"token": token, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearToken drops the session token. Clearing an already-empty token
// matches and succeeds, so repeated logouts are safe.
func (r *userRepository) ClearToken(ctx context.Context, id string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false},
		bson.M{"$set": bson.M{"token": "", "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReplacePassword swaps the hash and clears the token in one
// conditional write. The filter pins the current hash, so a concurrent
// change loses cleanly instead of clobbering.
func (r *userRepository) ReplacePassword(ctx context.Context, id, currentHash, newHash string) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false, "active": true, "password_hash": currentHash},
		bson.M{"$set": bson.M{
			"password_hash": newHash,
			"token":         "",
			"updated_at":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *userRepository) ListByApplication(ctx context.Context, app domain.Application, opts ListOptions) ([]domain.User, int64, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{"application": app, "deleted": false}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField, ok := sortFields[opts.SortField]
	if !ok {
		sortField = "created_at"
	}
	order := opts.SortOrder
	if order != SortAsc {
		order = SortDesc
	}

	skip := int64(opts.Page-1) * int64(opts.Limit)
	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(skip).
		SetLimit(int64(opts.Limit))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
