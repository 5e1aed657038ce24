package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

const profileCollection = "users"

// ProfileRepository persists user profiles in the users collection. The
// document key is the session subject id (a string, not an ObjectID): the
// same id the session store reports for an authenticated session, so a
// profile lookup is a single point read.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profileCollection)}
}

// Field names match the original users/{id} record shape.
type profileDoc struct {
	SubjectID string `bson:"_id"`
	Email     string `bson:"email"`
	Role      string `bson:"role"`
	FullName  string `bson:"fullName"`
}

func (r *ProfileRepository) FindBySubject(ctx context.Context, subjectID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	return &domain.Profile{
		SubjectID: doc.SubjectID,
		Email:     doc.Email,
		Role:      domain.Role(doc.Role),
		FullName:  doc.FullName,
	}, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := profileDoc{
		SubjectID: p.SubjectID,
		Email:     p.Email,
		Role:      string(p.Role),
		FullName:  p.FullName,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}
