package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/authz"
	"amity/models"
	"amity/store"
	"amity/ws"
)

type CreateCommentRequest struct {
	Text     string `json:"text" binding:"required"`
	Document string `json:"document" binding:"required"`
}

// CreateComment handles POST /comments.
func CreateComment(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docID, err := primitive.ObjectIDFromHex(req.Document)
	if err != nil {
		fail(c, &models.ValidationError{Param: "document", Message: "invalid post id"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	post, err := posts.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, &models.ValidationError{Param: "document", Message: "post does not exist"})
			return
		}
		fail(c, err)
		return
	}

	comment := models.Comment{
		Author:   actor.ID,
		Text:     req.Text,
		Document: docID,
	}
	if err := comment.Validate(); err != nil {
		fail(c, err)
		return
	}

	if err := comments.Insert(ctx, &comment); err != nil {
		fail(c, err)
		return
	}

	hub.Notify(post.Author.Hex(), ws.EventNewComment, gin.H{
		"postId":    post.ID.Hex(),
		"commentId": comment.ID.Hex(),
		"by":        actor.Username,
	})

	c.JSON(http.StatusCreated, comment.View(actor, actor, true))
}

// ListComments handles GET /comments, optionally filtered by ?document=.
func ListComments(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	var list []models.Comment
	if doc := c.Query("document"); doc != "" {
		docID, err := primitive.ObjectIDFromHex(doc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
			return
		}
		list, err = comments.ListByDocument(ctx, docID)
		if err != nil {
			fail(c, err)
			return
		}
	} else {
		list, err = comments.ListAll(ctx)
		if err != nil {
			fail(c, err)
			return
		}
	}

	rows := make([]models.CommentView, len(list))
	for i := range list {
		author, _ := users.FindByID(ctx, list[i].Author)
		rows[i] = list[i].View(actor, author, false)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}

// ShowComment handles GET /comments/:id.
func ShowComment(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	author, _ := users.FindByID(ctx, comment.Author)
	c.JSON(http.StatusOK, comment.View(actor, author, false))
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateComment handles PUT /comments/:id. Author or admin only.
func UpdateComment(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := authz.CanModify(actor, comment.Author); err != nil {
		fail(c, err)
		return
	}

	comment.Text = req.Text
	if err := comments.Update(ctx, id, bson.M{"text": comment.Text}); err != nil {
		fail(c, err)
		return
	}

	author, _ := users.FindByID(ctx, comment.Author)
	c.JSON(http.StatusOK, comment.View(actor, author, true))
}

// DestroyComment handles DELETE /comments/:id. Author or admin only.
func DestroyComment(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := authz.CanModify(actor, comment.Author); err != nil {
		fail(c, err)
		return
	}

	if err := comments.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
