package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// AuditRepo appends booking and payment transitions to the audit_logs
// collection.
type AuditRepo struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditRepo(db *mongo.Database, logger observability.Logger) *AuditRepo {
	return &AuditRepo{coll: db.Collection("audit_logs"), logger: logger}
}

// Record stores e, assigning an id and timestamp when missing.
func (a *AuditRepo) Record(ctx context.Context, e model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Data == nil {
		e.Data = map[string]interface{}{}
	}
	if _, err := a.coll.InsertOne(ctx, e); err != nil {
		a.logger.WithError(err).WithField("action", e.Action).Error("failed to insert audit log")
		return err
	}
	return nil
}

// ListByEntity returns the trail of one entity, oldest first.
func (a *AuditRepo) ListByEntity(ctx context.Context, entityID string) ([]model.AuditEntry, error) {
	cur, err := a.coll.Find(ctx, bson.M{"entity_id": entityID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []model.AuditEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
