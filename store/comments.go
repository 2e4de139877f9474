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

// Comments is the mongo-backed comment store.
type Comments struct {
	coll *mongo.Collection
}

func NewComments(coll *mongo.Collection) *Comments {
	return &Comments{coll: coll}
}

func (s *Comments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &comment, nil
}

func (s *Comments) Insert(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, comment)
	return wrapErr(err)
}

func (s *Comments) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().Unix()
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return wrapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Comments) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Comments) ListAll(ctx context.Context) ([]models.Comment, error) {
	return s.list(ctx, bson.M{})
}

// ListByDocument returns a post's comments, oldest first.
func (s *Comments) ListByDocument(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return s.list(ctx, bson.M{"document": postID})
}

func (s *Comments) list(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, wrapErr(err)
	}
	return comments, nil
}
