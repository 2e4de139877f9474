package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/store"
	"amity/ws"
)

// AddFriend handles PUT /users/:id/add-friend: the caller accepts the pending
// request authored by :id and addressed to them.
func AddFriend(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	author, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	req, err := requests.FindByPair(ctx, author, actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Friendship request not found"})
			return
		}
		fail(c, err)
		return
	}

	if err := engine.Accept(ctx, req.ID, actor); err != nil {
		fail(c, err)
		return
	}

	hub.Notify(author.Hex(), ws.EventRequestAccepted, gin.H{
		"by": actor.Username,
	})
	SendRequestAcceptedPush(author, actor.Username)

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RemoveFriend handles PUT /users/:id/remove-friend.
func RemoveFriend(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	friendID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	if err := engine.Remove(ctx, actor.ID, friendID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}
