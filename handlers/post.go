package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"amity/authz"
	"amity/models"
	"amity/ws"
)

type CreatePostRequest struct {
	Title string   `json:"title" binding:"required"`
	Text  string   `json:"text" binding:"required"`
	Media []string `json:"media"`
}

// CreatePost handles POST /posts.
func CreatePost(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		Author: actor.ID,
		Title:  req.Title,
		Text:   req.Text,
		Media:  req.Media,
		Likes:  []primitive.ObjectID{},
	}
	if err := post.Validate(); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	if err := posts.Insert(ctx, &post); err != nil {
		fail(c, err)
		return
	}

	view, err := postView(ctx, &post, actor, true)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListPosts handles GET /posts.
func ListPosts(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	all, err := posts.ListAll(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	respondPostList(c, ctx, all, actor)
}

// ListPostsByAuthor handles GET /posts/author/:username, newest first.
// "me" is an alias for the viewer.
func ListPostsByAuthor(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	authorID := actor.ID
	if username := c.Param("username"); username != "me" {
		author, err := users.FindByUsername(ctx, username)
		if err != nil {
			fail(c, err)
			return
		}
		authorID = author.ID
	}

	byAuthor, err := posts.ListByAuthor(ctx, authorID)
	if err != nil {
		fail(c, err)
		return
	}
	respondPostList(c, ctx, byAuthor, actor)
}

// ShowPost handles GET /posts/:id.
func ShowPost(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	post, err := posts.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := postView(ctx, post, actor, false)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type UpdatePostRequest struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Media []string `json:"media"`
}

// UpdatePost handles PUT /posts/:id. Author or admin only.
func UpdatePost(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	post, err := posts.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := authz.CanModify(actor, post.Author); err != nil {
		fail(c, err)
		return
	}

	fields := bson.M{}
	if req.Title != "" {
		post.Title = req.Title
		fields["title"] = post.Title
	}
	if req.Text != "" {
		post.Text = req.Text
		fields["text"] = post.Text
	}
	if req.Media != nil {
		post.Media = req.Media
		fields["media"] = post.Media
	}
	if err := post.Validate(); err != nil {
		fail(c, err)
		return
	}

	if len(fields) > 0 {
		if err := posts.Update(ctx, id, fields); err != nil {
			fail(c, err)
			return
		}
	}

	view, err := postView(ctx, post, actor, true)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LikePost handles PUT /posts/:id/like: toggles the viewer's membership in
// the like set and returns the updated projection.
func LikePost(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	post, err := posts.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	liked := !post.LikedBy(actor.ID)
	if err := posts.SetLike(ctx, id, actor.ID, liked); err != nil {
		fail(c, err)
		return
	}

	// Mirror the persisted change in the copy we project
	if liked {
		post.Likes = append(post.Likes, actor.ID)
		hub.Notify(post.Author.Hex(), ws.EventPostLiked, gin.H{
			"postId": post.ID.Hex(),
			"by":     actor.Username,
		})
	} else {
		kept := post.Likes[:0]
		for _, l := range post.Likes {
			if l != actor.ID {
				kept = append(kept, l)
			}
		}
		post.Likes = kept
	}

	view, err := postView(ctx, post, actor, true)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DestroyPost handles DELETE /posts/:id. Author or admin only.
func DestroyPost(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	post, err := posts.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := authz.CanModify(actor, post.Author); err != nil {
		fail(c, err)
		return
	}

	if err := posts.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// postView assembles the projection of a post: author and comments resolved
// from their ids, comment authors batched in one lookup. A failed comment
// read fails the projection; a dangling author renders as absent.
func postView(ctx context.Context, post *models.Post, viewer *models.User, full bool) (models.PostView, error) {
	author, _ := users.FindByID(ctx, post.Author)

	postComments, err := comments.ListByDocument(ctx, post.ID)
	if err != nil {
		return models.PostView{}, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(postComments))
	for _, cm := range postComments {
		authorIDs = append(authorIDs, cm.Author)
	}
	commentAuthors := map[primitive.ObjectID]*models.User{}
	if docs, err := users.FindMany(ctx, authorIDs); err == nil {
		for i := range docs {
			commentAuthors[docs[i].ID] = &docs[i]
		}
	}

	views := make([]models.CommentView, len(postComments))
	for i := range postComments {
		views[i] = postComments[i].View(viewer, commentAuthors[postComments[i].Author], false)
	}

	return post.View(viewer, author, views, full), nil
}

func respondPostList(c *gin.Context, ctx context.Context, list []models.Post, actor *models.User) {
	rows := make([]models.PostView, len(list))
	for i := range list {
		view, err := postView(ctx, &list[i], actor, false)
		if err != nil {
			fail(c, err)
			return
		}
		rows[i] = view
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}
