package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment belongs to a post through Document. The reference is weak: deleting
// the post does not remove its comments.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	Document  primitive.ObjectID `bson:"document" json:"document"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64              `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return &ValidationError{Param: "text", Message: "text is required"}
	}
	if c.Document.IsZero() {
		return &ValidationError{Param: "document", Message: "document is required"}
	}
	return nil
}

type CommentView struct {
	ID        string    `json:"id"`
	Author    *UserView `json:"author"`
	Text      string    `json:"text"`
	Document  string    `json:"document"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt,omitempty"`
}

func (c *Comment) View(viewer, author *User, full bool) CommentView {
	view := CommentView{
		ID:        c.ID.Hex(),
		Text:      c.Text,
		Document:  c.Document.Hex(),
		CreatedAt: c.CreatedAt,
	}
	if author != nil {
		av := author.View(viewer, false, "")
		view.Author = &av
	}
	if full && viewer != nil && (viewer.ID == c.Author || viewer.IsAdmin()) {
		view.UpdatedAt = c.UpdatedAt
	}
	return view
}
