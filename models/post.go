package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMediaItems caps the media list on a post. Inserting a fifth item is a
// validation error.
const MaxMediaItems = 4

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Title     string               `bson:"title" json:"title"`
	Text      string               `bson:"text" json:"text"`
	Media     []string             `bson:"media" json:"media"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64                `bson:"updatedAt" json:"updatedAt"`
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Param: "title", Message: "title is required"}
	}
	if strings.TrimSpace(p.Text) == "" {
		return &ValidationError{Param: "text", Message: "text is required"}
	}
	if len(p.Media) > MaxMediaItems {
		return &ValidationError{Param: "media", Message: "one post can contain no more than 4 media items"}
	}
	return nil
}

func (p *Post) LikedBy(id primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l == id {
			return true
		}
	}
	return false
}

type PostView struct {
	ID            string        `json:"id"`
	Author        *UserView     `json:"author"`
	Title         string        `json:"title"`
	Text          string        `json:"text"`
	Media         []string      `json:"media"`
	Comments      []CommentView `json:"comments"`
	CommentsCount int           `json:"commentsCount"`
	LikesCount    int           `json:"likesCount"`
	CreatedAt     int64         `json:"createdAt"`
	UpdatedAt     int64         `json:"updatedAt"`
	Likes         []string      `json:"likes,omitempty"`
}

// View projects the post. The raw liker id list is only rendered for the
// author or an admin; everyone else gets the count.
func (p *Post) View(viewer, author *User, comments []CommentView, full bool) PostView {
	if comments == nil {
		comments = []CommentView{}
	}
	view := PostView{
		ID:            p.ID.Hex(),
		Title:         p.Title,
		Text:          p.Text,
		Media:         p.Media,
		Comments:      comments,
		CommentsCount: len(comments),
		LikesCount:    len(p.Likes),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if view.Media == nil {
		view.Media = []string{}
	}
	if author != nil {
		av := author.View(viewer, false, "")
		view.Author = &av
	}
	if full && viewer != nil && (viewer.ID == p.Author || viewer.IsAdmin()) {
		view.Likes = hexIDs(p.Likes)
	}
	return view
}
