package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/friends"
	"amity/models"
	"amity/ws"
)

// The handler layer talks to storage through these interfaces. main wires the
// mongo implementations from store/, tests wire in-memory fakes.

type UserStore interface {
	friends.UserStore
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type RequestStore interface {
	friends.RequestStore
	ListAll(ctx context.Context) ([]models.FriendRequest, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.FriendRequest, error)
	ListByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.FriendRequest, error)
}

type PostStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error)
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) error
}

type CommentStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	Insert(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListAll(ctx context.Context) ([]models.Comment, error)
	ListByDocument(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
}

var (
	users    UserStore
	requests RequestStore
	posts    PostStore
	comments CommentStore
	engine   *friends.Engine
	hub      *ws.Hub
)

// Use wires the storage backends into the handler package.
func Use(u UserStore, r RequestStore, p PostStore, c CommentStore) {
	users = u
	requests = r
	posts = p
	comments = c
	engine = friends.NewEngine(u, r)
}

// SetHub sets the websocket hub used for event delivery. Optional.
func SetHub(h *ws.Hub) {
	hub = h
}
