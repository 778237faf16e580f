package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "iasrentals/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_verified", Value: 1}}},
	})
	return err
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || u.ID == "" {
		return domainuser.ErrIDRequired
	}
	doc := newUserDocument(u)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) Count(ctx context.Context, filter domainuser.CountFilter) (int, error) {
	n, err := r.col.CountDocuments(ctx, userCountFilter(filter))
	return int(n), err
}

func userCountFilter(f domainuser.CountFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.VerifiedOnly {
		filter["is_verified"] = true
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	return filter
}

type userDocument struct {
	ID                 string    `bson:"_id"`
	Email              string    `bson:"email"`
	Name               string    `bson:"name"`
	PasswordHash       string    `bson:"password_hash"`
	Role               string    `bson:"role"`
	IsVerified         bool      `bson:"is_verified"`
	IsActive           bool      `bson:"is_active"`
	AccountCreatedYear int       `bson:"account_created_year"`
	Description        string    `bson:"profile_description,omitempty"`
	ProfileImage       string    `bson:"profile_image,omitempty"`
	Phone              string    `bson:"phone,omitempty"`
	DateOfBirth        string    `bson:"date_of_birth,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:                 string(u.ID),
		Email:              u.Email,
		Name:               u.Name,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		IsVerified:         u.IsVerified,
		IsActive:           u.IsActive,
		AccountCreatedYear: u.AccountCreatedYear,
		Description:        u.Description,
		ProfileImage:       u.ProfileImage,
		Phone:              u.Phone,
		DateOfBirth:        u.DateOfBirth,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domainuser.User {
	return &domainuser.User{
		ID:                 domainuser.ID(d.ID),
		Email:              d.Email,
		Name:               d.Name,
		PasswordHash:       d.PasswordHash,
		Role:               domainuser.Role(d.Role),
		IsVerified:         d.IsVerified,
		IsActive:           d.IsActive,
		AccountCreatedYear: d.AccountCreatedYear,
		Description:        d.Description,
		ProfileImage:       d.ProfileImage,
		Phone:              d.Phone,
		DateOfBirth:        d.DateOfBirth,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

var _ domainuser.Repository = (*UserRepository)(nil)
