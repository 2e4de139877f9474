package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/models"
	"amity/ws"
)

// CreateFriendRequest handles POST /friend-requests/:receiver.
func CreateFriendRequest(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	receiver, err := primitive.ObjectIDFromHex(c.Param("receiver"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	req, err := engine.Send(ctx, actor.ID, receiver)
	if err != nil {
		fail(c, err)
		return
	}

	hub.Notify(receiver.Hex(), ws.EventFriendRequest, gin.H{
		"requestId": req.ID.Hex(),
		"from":      actor.Username,
	})
	SendFriendRequestPush(receiver, actor.Username)

	c.JSON(http.StatusCreated, requestView(ctx, req, actor, true))
}

// ListFriendRequests handles GET /friend-requests.
func ListFriendRequests(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	all, err := requests.ListAll(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	respondRequestList(c, ctx, all, actor)
}

// ListMadeRequests handles GET /friend-requests/made/:author.
func ListMadeRequests(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	author, err := primitive.ObjectIDFromHex(c.Param("author"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	made, err := requests.ListByAuthor(ctx, author)
	if err != nil {
		fail(c, err)
		return
	}
	respondRequestList(c, ctx, made, actor)
}

// ListReceivedRequests handles GET /friend-requests/received/:receiver.
func ListReceivedRequests(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	receiver, err := primitive.ObjectIDFromHex(c.Param("receiver"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	received, err := requests.ListByReceiver(ctx, receiver)
	if err != nil {
		fail(c, err)
		return
	}
	respondRequestList(c, ctx, received, actor)
}

// ShowFriendRequest handles GET /friend-requests/:id.
func ShowFriendRequest(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	req, err := requests.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	full := actor.IsAdmin() || req.Involves(actor.ID)
	c.JSON(http.StatusOK, requestView(ctx, req, actor, full))
}

// DestroyFriendRequest handles DELETE /friend-requests/:id: reject when the
// receiver calls it, cancel when the author does. Admins may discard any.
func DestroyFriendRequest(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	if err := engine.Reject(ctx, id, actor); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requestView renders a request with its participants populated. Lookup
// failures leave the participant out rather than failing the response.
func requestView(ctx context.Context, req *models.FriendRequest, viewer *models.User, full bool) models.FriendRequestView {
	author, _ := users.FindByID(ctx, req.Author)
	receiver, _ := users.FindByID(ctx, req.Receiver)
	return req.View(viewer, author, receiver, full)
}

func respondRequestList(c *gin.Context, ctx context.Context, reqs []models.FriendRequest, actor *models.User) {
	rows := make([]models.FriendRequestView, len(reqs))
	for i := range reqs {
		full := actor.IsAdmin() || reqs[i].Involves(actor.ID)
		rows[i] = requestView(ctx, &reqs[i], actor, full)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}
