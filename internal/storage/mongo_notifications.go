package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func (m *Mongo) notificationsCol() *mongo.Collection { return m.db.Collection(colNotifications) }

func (m *Mongo) CreateNotification(ctx context.Context, n *entities.Notification) error {
	_, err := m.notificationsCol().InsertOne(ctx, n)
	return mapErr(err)
}

func (m *Mongo) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]entities.Notification, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}
	cur, err := m.notificationsCol().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]entities.Notification, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (m *Mongo) MarkRead(ctx context.Context, id, userID string) (*entities.Notification, error) {
	var n entities.Notification
	err := m.notificationsCol().FindOneAndUpdate(ctx, userScope(id, userID),
		bson.M{"$set": bson.M{"isRead": true}}, afterUpdate).Decode(&n)
	if err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

func (m *Mongo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := m.notificationsCol().UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	return mapErr(err)
}

func (m *Mongo) DeleteNotification(ctx context.Context, id, userID string) error {
	res, err := m.notificationsCol().DeleteOne(ctx, userScope(id, userID))
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteAllNotifications(ctx context.Context, userID string) error {
	_, err := m.notificationsCol().DeleteMany(ctx, bson.M{"userId": userID})
	return mapErr(err)
}
