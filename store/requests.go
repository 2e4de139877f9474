package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"amity/models"
)

// Requests is the mongo-backed friend-request store.
type Requests struct {
	coll *mongo.Collection
}

func NewRequests(coll *mongo.Collection) *Requests {
	return &Requests{coll: coll}
}

func (s *Requests) FindByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &req, nil
}

// FindByPair looks up the pending request for an ordered (author, receiver)
// pair. The direction matters: a request from B to A does not match.
func (s *Requests) FindByPair(ctx context.Context, author, receiver primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.coll.FindOne(ctx, bson.M{"author": author, "receiver": receiver}).Decode(&req)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &req, nil
}

func (s *Requests) Insert(ctx context.Context, req *models.FriendRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, req)
	return wrapErr(err)
}

func (s *Requests) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Requests) ListAll(ctx context.Context) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{})
}

func (s *Requests) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{"author": author})
}

func (s *Requests) ListByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{"receiver": receiver})
}

// ListInvolving returns the pending requests the user participates in, in
// either direction.
func (s *Requests) ListInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{"$or": bson.A{
		bson.M{"author": userID},
		bson.M{"receiver": userID},
	}})
}

func (s *Requests) list(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, wrapErr(err)
	}
	return requests, nil
}
