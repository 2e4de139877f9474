package models

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	gravatarPrefix   = "https://gravatar.com/avatar/"
	DefaultWallpaper = "https://images.unsplash.com/photo-1528722828814-77b9b83aafb2?auto=format&fit=crop&w=1500&q=80"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"` // bcrypt digest, never rendered
	Username  string               `bson:"username" json:"username"`
	Role      string               `bson:"role" json:"role"`
	Picture   string               `bson:"picture" json:"picture"`
	Wallpaper string               `bson:"wallpaper" json:"wallpaper"`
	Friends   []primitive.ObjectID `bson:"friends" json:"friends"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64                `bson:"updatedAt" json:"updatedAt"`
}

// SetEmail normalizes the address and refreshes the avatar when the current
// picture is unset or still the generated one, so custom pictures survive
// email changes.
func (u *User) SetEmail(email string) {
	u.Email = strings.ToLower(strings.TrimSpace(email))
	if u.Picture == "" || strings.HasPrefix(u.Picture, gravatarPrefix) {
		sum := md5.Sum([]byte(u.Email))
		u.Picture = gravatarPrefix + hex.EncodeToString(sum[:]) + "?d=identicon"
	}
}

// ValidateEmail checks the address format. Signup and profile updates enforce
// the same rule.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Param: "email", Message: "invalid email address"}
	}
	return nil
}

// Validate checks the field constraints enforced at signup. Password here is
// the plaintext candidate, hashing happens after validation.
func (u *User) Validate(password string) error {
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if len(password) < 6 {
		return &ValidationError{Param: "password", Message: "password must be at least 6 characters"}
	}
	if strings.TrimSpace(u.Username) == "" {
		return &ValidationError{Param: "username", Message: "username is required"}
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

type UserView struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Picture      string       `json:"picture"`
	Wallpaper    string       `json:"wallpaper"`
	CreatedAt    int64        `json:"createdAt"`
	Friends      []string     `json:"friends"`
	Relationship Relationship `json:"relationship,omitempty"`
	Email        string       `json:"email,omitempty"`
}

// View projects the user for the given viewer. The full view adds the email
// and is only honored when the viewer is the user itself or an admin;
// otherwise it silently falls back to the public field set.
func (u *User) View(viewer *User, full bool, rel Relationship) UserView {
	view := UserView{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		Picture:      u.Picture,
		Wallpaper:    u.Wallpaper,
		CreatedAt:    u.CreatedAt,
		Friends:      hexIDs(u.Friends),
		Relationship: rel,
	}
	if full && viewer != nil && (viewer.ID == u.ID || viewer.IsAdmin()) {
		view.Email = u.Email
	}
	return view
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
