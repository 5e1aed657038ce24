package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

const phaseCollection = "phases"

// PhaseRepository persists accreditation phases. Updates are unconditional
// single-field overwrites; the collection carries no concurrency control.
type PhaseRepository struct {
	coll *mongo.Collection
}

func NewPhaseRepository(db *mongo.Database) *PhaseRepository {
	return &PhaseRepository{coll: db.Collection(phaseCollection)}
}

// Field names match the original phases/{id} record shape.
type phaseDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Status       string             `bson:"status"`
	LinkResponse string             `bson:"linkResponse"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d phaseDoc) toDomain() domain.Phase {
	return domain.Phase{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Status:       domain.PhaseStatus(d.Status),
		LinkResponse: d.LinkResponse,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Insert stores a new phase and fills in the store-assigned id.
func (r *PhaseRepository) Insert(ctx context.Context, p *domain.Phase) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := phaseDoc{
		Title:        p.Title,
		Description:  p.Description,
		Status:       string(p.Status),
		LinkResponse: p.LinkResponse,
		CreatedAt:    p.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert phase: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

// List reads the entire collection. No pagination; callers must not assume
// stable ordering across calls.
func (r *PhaseRepository) List(ctx context.Context) ([]domain.Phase, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer cur.Close(ctx)

	var phases []domain.Phase
	for cur.Next(ctx) {
		var doc phaseDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode phase: %w", err)
		}
		phases = append(phases, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	return phases, nil
}

func (r *PhaseRepository) FindByID(ctx context.Context, id string) (*domain.Phase, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPhaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc phaseDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPhaseNotFound
		}
		return nil, fmt.Errorf("find phase: %w", err)
	}
	phase := doc.toDomain()
	return &phase, nil
}

// UpdateStatus overwrites the status field, last-write-wins.
func (r *PhaseRepository) UpdateStatus(ctx context.Context, id string, status domain.PhaseStatus) error {
	return r.setField(ctx, id, "status", string(status))
}

// UpdateLink overwrites the linkResponse field, last-write-wins.
func (r *PhaseRepository) UpdateLink(ctx context.Context, id, link string) error {
	return r.setField(ctx, id, "linkResponse", link)
}

func (r *PhaseRepository) setField(ctx context.Context, id, field, value string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPhaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("update phase %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPhaseNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the phase queries rely on.
func (r *PhaseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	})
	return err
}
