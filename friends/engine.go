// Package friends implements the friend-request state machine: a pending
// request either resolves into a symmetric friendship edge across both user
// documents, or is discarded.
package friends

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/authz"
	"amity/models"
	"amity/store"
)

var (
	// ErrInvalidTarget means the receiver does not exist or is the requester.
	ErrInvalidTarget = errors.New("invalid friend request target")
	// ErrDuplicateRequest means a pending request for the same ordered
	// (author, receiver) pair already exists.
	ErrDuplicateRequest = errors.New("friend request already exists")
	// ErrPartialUpdate means only one side of a friendship change committed.
	// The caller can retry: every friend-set write is idempotent.
	ErrPartialUpdate = errors.New("friendship only partially updated")
)

// UserStore is the slice of the user store the engine needs.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
}

// RequestStore is the slice of the friend-request store the engine needs.
type RequestStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	FindByPair(ctx context.Context, author, receiver primitive.ObjectID) (*models.FriendRequest, error)
	Insert(ctx context.Context, req *models.FriendRequest) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error)
}

type Engine struct {
	users    UserStore
	requests RequestStore
}

func NewEngine(users UserStore, requests RequestStore) *Engine {
	return &Engine{users: users, requests: requests}
}

// Send creates a pending request from author to receiver. Requests in the
// opposite direction may coexist; only the exact (author, receiver) pair is
// deduplicated.
func (e *Engine) Send(ctx context.Context, author, receiver primitive.ObjectID) (*models.FriendRequest, error) {
	if author == receiver {
		return nil, ErrInvalidTarget
	}
	if _, err := e.users.FindByID(ctx, receiver); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidTarget
		}
		return nil, err
	}

	_, err := e.requests.FindByPair(ctx, author, receiver)
	if err == nil {
		return nil, ErrDuplicateRequest
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	req := &models.FriendRequest{Author: author, Receiver: receiver}
	if err := e.requests.Insert(ctx, req); err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			// Lost the race against an identical request.
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}
	return req, nil
}

// Accept resolves the request into a friendship. Only the receiver or an
// admin may accept. The two friend-set writes are sequential; if the second
// one fails even after a retry the request is kept so the whole operation can
// be replayed.
func (e *Engine) Accept(ctx context.Context, requestID primitive.ObjectID, actor *models.User) error {
	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if actor == nil || (actor.ID != req.Receiver && !actor.IsAdmin()) {
		return authz.ErrForbidden
	}

	if err := e.users.AddFriend(ctx, req.Receiver, req.Author); err != nil {
		// Nothing committed yet, plain failure.
		return err
	}
	if err := e.users.AddFriend(ctx, req.Author, req.Receiver); err != nil {
		if err = e.users.AddFriend(ctx, req.Author, req.Receiver); err != nil {
			return fmt.Errorf("%w: %v", ErrPartialUpdate, err)
		}
	}

	if err := e.requests.Delete(ctx, req.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		// Both sides are friends; a replayed Accept is a no-op apart from
		// retrying this delete.
		return err
	}
	return nil
}

// Reject discards the request without touching any friend set. It also serves
// as cancel: the author, the receiver, and admins may all discard.
func (e *Engine) Reject(ctx context.Context, requestID primitive.ObjectID, actor *models.User) error {
	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if actor == nil || (!req.Involves(actor.ID) && !actor.IsAdmin()) {
		return authz.ErrForbidden
	}
	return e.requests.Delete(ctx, req.ID)
}

// Remove tears down a friendship from both sides. The first removal may end
// up committed alone if the second keeps failing; that window is reported as
// a partial update and closed by retrying.
func (e *Engine) Remove(ctx context.Context, userID, friendID primitive.ObjectID) error {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasFriend(friendID) {
		return store.ErrNotFound
	}

	if err := e.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := e.users.RemoveFriend(ctx, friendID, userID); err != nil {
		if err = e.users.RemoveFriend(ctx, friendID, userID); err != nil {
			return fmt.Errorf("%w: %v", ErrPartialUpdate, err)
		}
	}
	return nil
}

// RelationshipOf computes the viewer's relationship to subject.
func (e *Engine) RelationshipOf(ctx context.Context, viewerID primitive.ObjectID, subject *models.User) (models.Relationship, error) {
	if viewerID == subject.ID {
		return models.RelationSelf, nil
	}
	if subject.HasFriend(viewerID) {
		return models.RelationFriends, nil
	}
	pending, err := e.requests.ListInvolving(ctx, subject.ID)
	if err != nil {
		return models.RelationNone, err
	}
	return models.Relate(viewerID, subject, pending), nil
}
