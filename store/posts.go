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

// Posts is the mongo-backed post store.
type Posts struct {
	coll *mongo.Collection
}

func NewPosts(coll *mongo.Collection) *Posts {
	return &Posts{coll: coll}
}

func (s *Posts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &post, nil
}

func (s *Posts) Insert(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, post)
	return wrapErr(err)
}

func (s *Posts) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
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

func (s *Posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Posts) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, bson.M{})
}

func (s *Posts) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return s.list(ctx, bson.M{"author": author})
}

// SetLike adds or removes userID in the post's like set. Both directions are
// idempotent single-document updates.
func (s *Posts) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) error {
	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	if !liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return wrapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Posts) list(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, wrapErr(err)
	}
	return posts, nil
}
