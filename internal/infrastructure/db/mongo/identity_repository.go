package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

const collectionUsers = "users"

type identityDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	GitHubID     string             `bson:"github_id,omitempty"`
	AuthProvider string             `bson:"auth_provider"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	DisplayName  string             `bson:"display_name,omitempty"`
	ProfileURL   string             `bson:"profile_url,omitempty"`
	AvatarURL    string             `bson:"avatar_url,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Role         string             `bson:"role"`
	Active       bool               `bson:"active"`
	LastLogin    time.Time          `bson:"last_login"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toIdentityDoc(u *domain.Identity) identityDoc {
	return identityDoc{
		GitHubID:     u.GitHubID,
		AuthProvider: string(u.AuthProvider),
		Username:     u.Username,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		ProfileURL:   u.ProfileURL,
		AvatarURL:    u.AvatarURL,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d identityDoc) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           d.ID.Hex(),
		GitHubID:     d.GitHubID,
		AuthProvider: domain.AuthProvider(d.AuthProvider),
		Username:     d.Username,
		Email:        d.Email,
		DisplayName:  d.DisplayName,
		ProfileURL:   d.ProfileURL,
		AvatarURL:    d.AvatarURL,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Active:       d.Active,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "github_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
}

type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionUsers)}
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByGitHubIDOrEmail prefers the GitHub link over an email match.
func (r *IdentityRepository) FindByGitHubIDOrEmail(ctx context.Context, githubID, email string) (*domain.Identity, error) {
	if githubID != "" {
		u, err := r.findOne(ctx, bson.M{"github_id": githubID})
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return u, err
		}
	}
	if email == "" {
		return nil, domain.ErrIdentityNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityRepository) Create(ctx context.Context, u *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toIdentityDoc(u)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, "user")
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) Update(ctx context.Context, u *domain.Identity) error {
	oid, err := objectID(u.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toIdentityDoc(u)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return translate(err, "user")
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, translate(err, "user")
	}
	return doc.toDomain(), nil
}
