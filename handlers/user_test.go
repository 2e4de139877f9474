package handlers

import (
	"context"
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"amity/models"
)

func TestShowUserVisibility(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	_, bobToken := env.seedUser(t, "bob", models.RoleUser)
	_, adminToken := env.seedUser(t, "root", models.RoleAdmin)

	// Stranger view: public fields plus a relationship annotation.
	rec := env.do(t, http.MethodGet, "/users/alice", bobToken, nil)
	requireStatus(t, rec, http.StatusOK)
	body := decodeJSON(t, rec)
	if _, present := body["email"]; present {
		t.Fatalf("stranger view must not carry the email: %s", rec.Body.String())
	}
	if body["relationship"] != "none" {
		t.Fatalf("expected relationship none, got %v", body["relationship"])
	}

	// "me" resolves to the viewer and yields the full self view.
	rec = env.do(t, http.MethodGet, "/users/me", aliceToken, nil)
	requireStatus(t, rec, http.StatusOK)
	body = decodeJSON(t, rec)
	if body["email"] != alice.Email {
		t.Fatalf("self view must carry the email: %s", rec.Body.String())
	}
	if body["relationship"] != "self" {
		t.Fatalf("expected relationship self, got %v", body["relationship"])
	}

	rec = env.do(t, http.MethodGet, "/users/alice", adminToken, nil)
	requireStatus(t, rec, http.StatusOK)
	if body = decodeJSON(t, rec); body["email"] != alice.Email {
		t.Fatalf("admin view must carry the email: %s", rec.Body.String())
	}

	requireStatus(t, env.do(t, http.MethodGet, "/users/nobody", aliceToken, nil), http.StatusNotFound)
}

func TestUpdateUserAuthorization(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	_, bobToken := env.seedUser(t, "bob", models.RoleUser)

	rec := env.do(t, http.MethodPut, "/users/"+alice.ID.Hex(), bobToken, map[string]string{
		"wallpaper": "https://cdn.example.com/wall.png",
	})
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodPut, "/users/me", aliceToken, map[string]string{
		"wallpaper": "https://cdn.example.com/wall.png",
	})
	requireStatus(t, rec, http.StatusOK)

	stored, err := env.users.FindByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.Wallpaper != "https://cdn.example.com/wall.png" {
		t.Fatalf("wallpaper not persisted: %q", stored.Wallpaper)
	}
}

func TestUpdateEmailRefreshesGeneratedAvatar(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	before := alice.Picture

	rec := env.do(t, http.MethodPut, "/users/me", aliceToken, map[string]string{
		"email": "new-alice@example.com",
	})
	requireStatus(t, rec, http.StatusOK)

	stored, _ := env.users.FindByID(context.Background(), alice.ID)
	if stored.Email != "new-alice@example.com" {
		t.Fatalf("email not persisted: %q", stored.Email)
	}
	if stored.Picture == before {
		t.Fatalf("generated avatar should track the email")
	}
}

func TestUpdateEmailRejectsMalformedAddress(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)

	rec := env.do(t, http.MethodPut, "/users/me", aliceToken, map[string]string{
		"email": "not-an-email",
	})
	requireStatus(t, rec, http.StatusBadRequest)
	if body := decodeJSON(t, rec); body["param"] != "email" {
		t.Fatalf("expected email param: %s", rec.Body.String())
	}

	stored, _ := env.users.FindByID(context.Background(), alice.ID)
	if stored.Email != "alice@example.com" {
		t.Fatalf("malformed email must not be persisted, got %q", stored.Email)
	}
}

func TestUpdatePasswordIsStrictlySelfService(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	_, adminToken := env.seedUser(t, "root", models.RoleAdmin)

	// Even admins are refused on another account.
	rec := env.do(t, http.MethodPut, "/users/"+alice.ID.Hex()+"/password", adminToken, map[string]string{
		"password": "brand-new",
	})
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodPut, "/users/me/password", aliceToken, map[string]string{
		"password": "short",
	})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodPut, "/users/me/password", aliceToken, map[string]string{
		"password": "brand-new",
	})
	requireStatus(t, rec, http.StatusOK)

	stored, _ := env.users.FindByID(context.Background(), alice.ID)
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("brand-new")) != nil {
		t.Fatalf("new password was not persisted")
	}
}

func TestDeleteUserAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	_, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	bob, _ := env.seedUser(t, "bob", models.RoleUser)
	_, adminToken := env.seedUser(t, "root", models.RoleAdmin)

	requireStatus(t, env.do(t, http.MethodDelete, "/users/"+bob.ID.Hex(), aliceToken, nil), http.StatusUnauthorized)
	requireStatus(t, env.do(t, http.MethodDelete, "/users/"+bob.ID.Hex(), adminToken, nil), http.StatusNoContent)

	if _, err := env.users.FindByID(context.Background(), bob.ID); err == nil {
		t.Fatalf("bob should be gone")
	}
}

func TestShowFriends(t *testing.T) {
	env := newTestEnv(t)

	alice, aliceToken := env.seedUser(t, "alice", models.RoleUser)
	bob, _ := env.seedUser(t, "bob", models.RoleUser)
	env.users.AddFriend(context.Background(), alice.ID, bob.ID)

	rec := env.do(t, http.MethodGet, "/users/alice/friends", aliceToken, nil)
	requireStatus(t, rec, http.StatusOK)

	body := decodeJSON(t, rec)
	ids, _ := body["ids"].([]interface{})
	if len(ids) != 1 || ids[0] != bob.ID.Hex() {
		t.Fatalf("expected bob in ids: %s", rec.Body.String())
	}
	rows, _ := body["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected one friend row: %s", rec.Body.String())
	}
	row := rows[0].(map[string]interface{})
	if row["username"] != "bob" {
		t.Fatalf("expected bob's row: %v", row)
	}
}
