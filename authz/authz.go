// Package authz is the single place that decides whether an authenticated
// user may act on a resource. Handlers call it instead of re-deriving admin
// checks per entity.
package authz

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/models"
)

var ErrForbidden = errors.New("not allowed to act on this resource")

// CanModify allows the resource owner and admins. Used for post and comment
// update/delete and for user profile updates.
func CanModify(actor *models.User, ownerID primitive.ObjectID) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.ID == ownerID || actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// CanChangePassword allows only the account owner. There is deliberately no
// admin bypass here.
func CanChangePassword(actor *models.User, ownerID primitive.ObjectID) error {
	if actor == nil || actor.ID != ownerID {
		return ErrForbidden
	}
	return nil
}

// CanViewFull reports whether the actor gets the full projection of a
// resource owned by ownerID. Read paths degrade instead of failing, so this
// returns a bool rather than an error.
func CanViewFull(actor *models.User, ownerID primitive.ObjectID) bool {
	return actor != nil && (actor.ID == ownerID || actor.IsAdmin())
}
