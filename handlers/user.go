package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"amity/authz"
	"amity/models"
)

// ListUsers handles GET /users.
func ListUsers(c *gin.Context) {
	viewer, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	all, err := users.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	rows := make([]models.UserView, len(all))
	for i := range all {
		rows[i] = all[i].View(viewer, false, "")
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}

// ShowUser handles GET /users/:username. "me" is an alias for the viewer.
// Self and admins get the full view, everyone else the public one with a
// relationship annotation.
func ShowUser(c *gin.Context) {
	viewer, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	username := c.Param("username")
	if username == "me" {
		username = viewer.Username
	}

	ctx, cancel := reqCtx()
	defer cancel()

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		fail(c, err)
		return
	}

	rel, err := engine.RelationshipOf(ctx, viewer.ID, user)
	if err != nil {
		fail(c, err)
		return
	}

	full := authz.CanViewFull(viewer, user.ID)
	c.JSON(http.StatusOK, user.View(viewer, full, rel))
}

// ShowFriends handles GET /users/:username/friends.
func ShowFriends(c *gin.Context) {
	viewer, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	username := c.Param("username")
	if username == "me" {
		username = viewer.Username
	}

	ctx, cancel := reqCtx()
	defer cancel()

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		fail(c, err)
		return
	}

	friendDocs, err := users.FindMany(ctx, user.Friends)
	if err != nil {
		fail(c, err)
		return
	}

	ids := make([]string, len(user.Friends))
	for i, id := range user.Friends {
		ids[i] = id.Hex()
	}
	rows := make([]gin.H, len(friendDocs))
	for i, f := range friendDocs {
		rows[i] = gin.H{"id": f.ID.Hex(), "username": f.Username, "picture": f.Picture}
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids, "rows": rows})
}

type UpdateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
	Wallpaper string `json:"wallpaper"`
}

// UpdateUser handles PUT /users/:id. Owner or admin only.
func UpdateUser(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	target, err := targetUserID(c, actor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := authz.CanModify(actor, target); err != nil {
		fail(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	user, err := users.FindByID(ctx, target)
	if err != nil {
		fail(c, err)
		return
	}

	fields := bson.M{}
	if req.Username != "" {
		user.Username = req.Username
		fields["username"] = user.Username
	}
	if req.Picture != "" {
		user.Picture = req.Picture
		fields["picture"] = user.Picture
	}
	if req.Wallpaper != "" {
		user.Wallpaper = req.Wallpaper
		fields["wallpaper"] = user.Wallpaper
	}
	if req.Email != "" {
		user.SetEmail(req.Email)
		if err := models.ValidateEmail(user.Email); err != nil {
			fail(c, err)
			return
		}
		fields["email"] = user.Email
		fields["picture"] = user.Picture
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, user.View(actor, true, ""))
		return
	}

	if err := users.Update(ctx, target, fields); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user.View(actor, true, ""))
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// UpdatePassword handles PUT /users/:id/password. Strictly self-service:
// admins acting on another account are refused too.
func UpdatePassword(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	target, err := targetUserID(c, actor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := authz.CanChangePassword(actor, target); err != nil {
		fail(c, err)
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Password) < 6 {
		fail(c, &models.ValidationError{Param: "password", Message: "password must be at least 6 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	if err := users.Update(ctx, target, bson.M{"password": string(hashed)}); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, actor.View(actor, true, models.RelationSelf))
}

// DeleteUser handles DELETE /users/:id. Admin only. Posts, comments and
// requests referencing the user are left in place.
func DeleteUser(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	if !actor.IsAdmin() {
		fail(c, authz.ErrForbidden)
		return
	}

	target, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()

	if err := users.Delete(ctx, target); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// targetUserID resolves the :id route param, honoring the "me" alias.
func targetUserID(c *gin.Context, actor *models.User) (primitive.ObjectID, error) {
	param := c.Param("id")
	if param == "me" {
		return actor.ID, nil
	}
	return primitive.ObjectIDFromHex(param)
}
