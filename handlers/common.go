package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/authz"
	"amity/friends"
	"amity/models"
	"amity/store"
)

const storeTimeout = 10 * time.Second

func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// currentUser resolves the authenticated identity placed in the context by
// the auth middleware into a full user document.
func currentUser(c *gin.Context) (*models.User, error) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := reqCtx()
	defer cancel()

	return users.FindByID(ctx, userID)
}

// fail maps the error taxonomy onto HTTP responses. Field-level failures name
// the offending param the way the API clients expect.
func fail(c *gin.Context, err error) {
	var validation *models.ValidationError
	var conflict *store.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"valid":   false,
			"param":   validation.Param,
			"message": validation.Message,
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"valid":   false,
			"param":   conflict.Param,
			"message": conflict.Error(),
		})
	case errors.Is(err, friends.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, friends.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "Such friend request already exists"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid":   false,
			"message": "You can't act on another user's data",
		})
	case errors.Is(err, friends.ErrPartialUpdate), errors.Is(err, store.ErrUnavailable):
		log.Printf("retryable storage failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     err.Error(),
			"retryable": true,
		})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
