package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

const auditCollection = "audit_log"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	PhaseID    string    `bson:"phaseId"`
	Action     string    `bson:"action"`
	SubjectID  string    `bson:"subjectId"`
	Role       string    `bson:"role"`
	Detail     string    `bson:"detail,omitempty"`
	OccurredAt time.Time `bson:"occurredAt"`
}

// Insert appends an entry to the audit log collection.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		PhaseID:    entry.PhaseID,
		Action:     string(entry.Action),
		SubjectID:  entry.SubjectID,
		Role:       string(entry.Role),
		Detail:     entry.Detail,
		OccurredAt: entry.OccurredAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByPhase returns the newest entries for one phase, most recent first.
func (r *AuditRepository) ListByPhase(ctx context.Context, phaseID string, limit int64) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "occurredAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"phaseId": phaseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []auditDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.AuditEntry{
			PhaseID:    d.PhaseID,
			Action:     domain.AuditAction(d.Action),
			SubjectID:  d.SubjectID,
			Role:       domain.Role(d.Role),
			Detail:     d.Detail,
			OccurredAt: d.OccurredAt,
		})
	}
	return entries, nil
}

// EnsureIndexes creates the phase/time index the audit reads rely on.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "phaseId", Value: 1}, {Key: "occurredAt", Value: -1}},
	})
	return err
}
