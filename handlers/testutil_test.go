package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"amity/middleware"
	"amity/models"
	"amity/store"
)

// In-memory stores backing the handlers under test. They mirror the mongo
// implementations including unique-index conflicts.

type memUsers struct {
	docs map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{docs: make(map[primitive.ObjectID]*models.User)}
}

// copyUser decouples callers from the stored document, the way a driver
// decode does. Handlers may mutate the result before deciding to persist.
func copyUser(user *models.User) *models.User {
	copied := *user
	copied.Friends = append([]primitive.ObjectID(nil), user.Friends...)
	return &copied
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range m.docs {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.docs {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) FindMany(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := m.docs[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.docs))
	for _, user := range m.docs {
		out = append(out, *user)
	}
	return out, nil
}

func (m *memUsers) Insert(_ context.Context, user *models.User) error {
	for _, existing := range m.docs {
		if existing.Email == user.Email {
			return &store.ConflictError{Param: "email"}
		}
		if existing.Username == user.Username {
			return &store.ConflictError{Param: "username"}
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	user.CreatedAt, user.UpdatedAt = now, now
	m.docs[user.ID] = user
	return nil
}

func (m *memUsers) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	user, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "username":
			user.Username = value.(string)
		case "email":
			user.Email = value.(string)
		case "picture":
			user.Picture = value.(string)
		case "wallpaper":
			user.Wallpaper = value.(string)
		case "password":
			user.Password = value.(string)
		}
	}
	user.UpdatedAt = time.Now().Unix()
	return nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memUsers) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	user, ok := m.docs[userID]
	if !ok {
		return store.ErrNotFound
	}
	if !user.HasFriend(friendID) {
		user.Friends = append(user.Friends, friendID)
	}
	return nil
}

func (m *memUsers) RemoveFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	user, ok := m.docs[userID]
	if !ok {
		return store.ErrNotFound
	}
	kept := user.Friends[:0]
	for _, id := range user.Friends {
		if id != friendID {
			kept = append(kept, id)
		}
	}
	user.Friends = kept
	return nil
}

type memRequests struct {
	docs map[primitive.ObjectID]*models.FriendRequest
}

func newMemRequests() *memRequests {
	return &memRequests{docs: make(map[primitive.ObjectID]*models.FriendRequest)}
}

func (m *memRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	req, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return req, nil
}

func (m *memRequests) FindByPair(_ context.Context, author, receiver primitive.ObjectID) (*models.FriendRequest, error) {
	for _, req := range m.docs {
		if req.Author == author && req.Receiver == receiver {
			return req, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memRequests) Insert(_ context.Context, req *models.FriendRequest) error {
	for _, existing := range m.docs {
		if existing.Author == req.Author && existing.Receiver == req.Receiver {
			return &store.ConflictError{Param: "receiver"}
		}
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	req.CreatedAt, req.UpdatedAt = now, now
	m.docs[req.ID] = req
	return nil
}

func (m *memRequests) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memRequests) ListAll(_ context.Context) ([]models.FriendRequest, error) {
	out := make([]models.FriendRequest, 0, len(m.docs))
	for _, req := range m.docs {
		out = append(out, *req)
	}
	return out, nil
}

func (m *memRequests) ListByAuthor(_ context.Context, author primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, req := range m.docs {
		if req.Author == author {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memRequests) ListByReceiver(_ context.Context, receiver primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, req := range m.docs {
		if req.Receiver == receiver {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memRequests) ListInvolving(_ context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, req := range m.docs {
		if req.Involves(userID) {
			out = append(out, *req)
		}
	}
	return out, nil
}

type memPosts struct {
	docs map[primitive.ObjectID]*models.Post
}

func newMemPosts() *memPosts {
	return &memPosts{docs: make(map[primitive.ObjectID]*models.Post)}
}

func (m *memPosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *post
	copied.Likes = append([]primitive.ObjectID(nil), post.Likes...)
	return &copied, nil
}

func (m *memPosts) Insert(_ context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	post.CreatedAt, post.UpdatedAt = now, now
	stored := *post
	m.docs[post.ID] = &stored
	return nil
}

func (m *memPosts) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	post, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			post.Title = value.(string)
		case "text":
			post.Text = value.(string)
		case "media":
			post.Media = value.([]string)
		}
	}
	post.UpdatedAt = time.Now().Unix()
	return nil
}

func (m *memPosts) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memPosts) ListAll(_ context.Context) ([]models.Post, error) {
	out := make([]models.Post, 0, len(m.docs))
	for _, post := range m.docs {
		out = append(out, *post)
	}
	return out, nil
}

func (m *memPosts) ListByAuthor(_ context.Context, author primitive.ObjectID) ([]models.Post, error) {
	var out []models.Post
	for _, post := range m.docs {
		if post.Author == author {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (m *memPosts) SetLike(_ context.Context, postID, userID primitive.ObjectID, liked bool) error {
	post, ok := m.docs[postID]
	if !ok {
		return store.ErrNotFound
	}
	if liked {
		if !post.LikedBy(userID) {
			post.Likes = append(post.Likes, userID)
		}
		return nil
	}
	kept := post.Likes[:0]
	for _, id := range post.Likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	post.Likes = kept
	return nil
}

type memComments struct {
	docs map[primitive.ObjectID]*models.Comment
	// listErr, when set, fails every list call to simulate an outage.
	listErr error
}

func newMemComments() *memComments {
	return &memComments{docs: make(map[primitive.ObjectID]*models.Comment)}
}

func (m *memComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return comment, nil
}

func (m *memComments) Insert(_ context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now().Unix()
	comment.CreatedAt, comment.UpdatedAt = now, now
	m.docs[comment.ID] = comment
	return nil
}

func (m *memComments) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	comment, ok := m.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	if text, ok := fields["text"].(string); ok {
		comment.Text = text
	}
	comment.UpdatedAt = time.Now().Unix()
	return nil
}

func (m *memComments) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memComments) ListAll(_ context.Context) ([]models.Comment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Comment, 0, len(m.docs))
	for _, comment := range m.docs {
		out = append(out, *comment)
	}
	return out, nil
}

func (m *memComments) ListByDocument(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Comment
	for _, comment := range m.docs {
		if comment.Document == postID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

type testEnv struct {
	router   *gin.Engine
	users    *memUsers
	requests *memRequests
	posts    *memPosts
	comments *memComments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BCRYPT_COST", "4")

	env := &testEnv{
		users:    newMemUsers(),
		requests: newMemRequests(),
		posts:    newMemPosts(),
		comments: newMemComments(),
	}
	Use(env.users, env.requests, env.posts, env.comments)
	SetHub(nil)
	env.router = testRouter()
	return env
}

// testRouter mirrors the production route table. The routes package imports
// this one, so the table is rebuilt here instead of imported.
func testRouter() *gin.Engine {
	router := gin.New()

	credentials := router.Group("/")
	credentials.Use(middleware.RateLimit(20, time.Minute))
	credentials.POST("/users", Signup)
	credentials.POST("/login", Login)

	router.GET("/push/public-key", GetVapidPublicKey)

	protected := router.Group("/")
	protected.Use(middleware.RequireAuth())

	protected.GET("/users", ListUsers)
	protected.GET("/users/:username", ShowUser)
	protected.GET("/users/:username/friends", ShowFriends)
	protected.PUT("/users/:id", UpdateUser)
	protected.PUT("/users/:id/password", UpdatePassword)
	protected.DELETE("/users/:id", DeleteUser)

	protected.PUT("/users/:id/add-friend", AddFriend)
	protected.PUT("/users/:id/remove-friend", RemoveFriend)
	protected.POST("/friend-requests/:receiver", CreateFriendRequest)
	protected.GET("/friend-requests", ListFriendRequests)
	protected.GET("/friend-requests/:id", ShowFriendRequest)
	protected.GET("/friend-requests/made/:author", ListMadeRequests)
	protected.GET("/friend-requests/received/:receiver", ListReceivedRequests)
	protected.DELETE("/friend-requests/:id", DestroyFriendRequest)

	protected.POST("/posts", CreatePost)
	protected.GET("/posts", ListPosts)
	protected.GET("/posts/:id", ShowPost)
	protected.GET("/posts/author/:username", ListPostsByAuthor)
	protected.PUT("/posts/:id", UpdatePost)
	protected.PUT("/posts/:id/like", LikePost)
	protected.DELETE("/posts/:id", DestroyPost)

	protected.POST("/comments", CreateComment)
	protected.GET("/comments", ListComments)
	protected.GET("/comments/:id", ShowComment)
	protected.PUT("/comments/:id", UpdateComment)
	protected.DELETE("/comments/:id", DestroyComment)

	protected.POST("/media", UploadMedia)
	protected.POST("/push/subscribe", SubscribePush)

	return router
}

// seedUser inserts a user directly and returns it with a valid token.
func (e *testEnv) seedUser(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{
		Username: username,
		Role:     role,
		Password: string(hashed),
		Friends:  []primitive.ObjectID{},
	}
	user.SetEmail(username + "@example.com")
	if err := e.users.Insert(context.Background(), user); err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	token, err := signToken(user.ID.Hex())
	if err != nil {
		t.Fatalf("token for %s: %v", username, err)
	}
	return user, token
}

func (e *testEnv) seedPost(t *testing.T, author primitive.ObjectID, title string) *models.Post {
	t.Helper()
	post := &models.Post{Author: author, Title: title, Text: "body", Likes: []primitive.ObjectID{}}
	if err := e.posts.Insert(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

// do performs a request against the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d got %d: %s", want, rec.Code, rec.Body.String())
	}
}
