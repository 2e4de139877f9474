package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// FriendRequest is a pending request from Author to Receiver. Resolved
// requests (accepted or rejected) are deleted, not kept around.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64              `bson:"updatedAt" json:"updatedAt"`
}

// Involves reports whether the user is one of the two participants.
func (r *FriendRequest) Involves(id primitive.ObjectID) bool {
	return r.Author == id || r.Receiver == id
}

type FriendRequestView struct {
	ID        string    `json:"id"`
	Author    *UserView `json:"author"`
	Receiver  *UserView `json:"receiver"`
	CreatedAt int64     `json:"createdAt,omitempty"`
	UpdatedAt int64     `json:"updatedAt,omitempty"`
}

// View projects the request with both participants rendered through their own
// public projections. Timestamps are only included for a participant or an
// admin.
func (r *FriendRequest) View(viewer, author, receiver *User, full bool) FriendRequestView {
	view := FriendRequestView{ID: r.ID.Hex()}
	if author != nil {
		av := author.View(viewer, false, "")
		view.Author = &av
	}
	if receiver != nil {
		rv := receiver.View(viewer, false, "")
		view.Receiver = &rv
	}
	if full && viewer != nil && (r.Involves(viewer.ID) || viewer.IsAdmin()) {
		view.CreatedAt = r.CreatedAt
		view.UpdatedAt = r.UpdatedAt
	}
	return view
}
