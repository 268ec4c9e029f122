package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// NotificationRepo keeps the admin inbox in the notifications collection.
type NotificationRepo struct {
	coll *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{coll: db.Collection("notifications")}
}

func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, n)
	return errors.WithStack(err)
}

// List returns notifications newest first.
func (r *NotificationRepo) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["is_read"] = false
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out := []model.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// MarkRead flags a notification as read and returns it.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFoundf("notification not found")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &n, nil
}
