package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPostValidate(t *testing.T) {
	author := primitive.NewObjectID()

	post := &Post{Author: author, Title: "hello", Text: "world"}
	if err := post.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	post.Media = []string{"a", "b", "c", "d"}
	if err := post.Validate(); err != nil {
		t.Fatalf("four media items must pass: %v", err)
	}

	post.Media = append(post.Media, "e")
	verr, ok := post.Validate().(*ValidationError)
	if !ok || verr.Param != "media" {
		t.Fatalf("five media items: expected ValidationError{media}, got %v", verr)
	}

	empty := &Post{Author: author, Text: "world"}
	verr, ok = empty.Validate().(*ValidationError)
	if !ok || verr.Param != "title" {
		t.Fatalf("expected ValidationError{title}, got %v", verr)
	}
}

func TestPostLikedBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	post := &Post{Likes: []primitive.ObjectID{alice}}
	if !post.LikedBy(alice) {
		t.Fatalf("alice should count as a liker")
	}
	if post.LikedBy(bob) {
		t.Fatalf("bob should not count as a liker")
	}
}

func TestPostViewLikesVisibility(t *testing.T) {
	author := &User{ID: primitive.NewObjectID(), Username: "alice"}
	stranger := &User{ID: primitive.NewObjectID(), Role: RoleUser}
	admin := &User{ID: primitive.NewObjectID(), Role: RoleAdmin}

	post := &Post{
		ID:     primitive.NewObjectID(),
		Author: author.ID,
		Title:  "hello",
		Text:   "world",
		Likes:  []primitive.ObjectID{stranger.ID},
	}

	view := post.View(stranger, author, nil, true)
	if view.Likes != nil {
		t.Fatalf("stranger must not see the liker list")
	}
	if view.LikesCount != 1 {
		t.Fatalf("expected likesCount 1, got %d", view.LikesCount)
	}

	if view := post.View(author, author, nil, true); len(view.Likes) != 1 {
		t.Fatalf("author full view must carry the liker list")
	}
	if view := post.View(admin, author, nil, true); len(view.Likes) != 1 {
		t.Fatalf("admin full view must carry the liker list")
	}

	// Public view never carries the list even for the author.
	if view := post.View(author, author, nil, false); view.Likes != nil {
		t.Fatalf("public view must not carry the liker list")
	}
}

func TestPostViewEmptySlices(t *testing.T) {
	author := &User{ID: primitive.NewObjectID(), Username: "alice"}
	post := &Post{ID: primitive.NewObjectID(), Author: author.ID, Title: "t", Text: "x"}

	view := post.View(nil, author, nil, false)
	if view.Media == nil || view.Comments == nil {
		t.Fatalf("projection should render empty arrays, not null")
	}
}
