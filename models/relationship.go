package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Relationship describes the social status between a viewer and the user they
// are looking at.
type Relationship string

const (
	RelationSelf      Relationship = "self"
	RelationFriends   Relationship = "friends"
	RelationRequested Relationship = "requested" // viewer sent subject a pending request
	RelationReceived  Relationship = "received"  // subject sent viewer a pending request
	RelationNone      Relationship = "none"
)

// Relate computes the viewer's relationship to subject from the subject's
// friend set and the pending requests involving the subject. An established
// friendship wins over a stale pending request for the same pair.
func Relate(viewerID primitive.ObjectID, subject *User, pending []FriendRequest) Relationship {
	if viewerID == subject.ID {
		return RelationSelf
	}
	if subject.HasFriend(viewerID) {
		return RelationFriends
	}
	for _, req := range pending {
		if req.Author == viewerID && req.Receiver == subject.ID {
			return RelationRequested
		}
	}
	for _, req := range pending {
		if req.Author == subject.ID && req.Receiver == viewerID {
			return RelationReceived
		}
	}
	return RelationNone
}
