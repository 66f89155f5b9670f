package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-crud/backend-go/internal/models"
)

func TestUserMe(t *testing.T) {
	env := newTestEnv()
	user := env.seedUser(t, "alice", "hunter22", models.RoleUser)

	rec := doRequest(t, env.user.Me, http.MethodGet, "/api/users/me", nil, nil, principalFor(user))
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeEnvelope(t, rec))
	got := data["user"].(map[string]any)
	assert.Equal(t, "alice", got["username"])
}

func TestUserGetAccessControl(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", "hunter22", models.RoleUser)
	bob := env.seedUser(t, "bob", "hunter22", models.RoleUser)
	admin := env.seedUser(t, "root", "hunter22", models.RoleAdmin)

	t.Run("own profile", func(t *testing.T) {
		rec := doRequest(t, env.user.Get, http.MethodGet, "/api/users/1", nil,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(alice))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("someone else's profile", func(t *testing.T) {
		rec := doRequest(t, env.user.Get, http.MethodGet, "/api/users/2", nil,
			map[string]string{"id": fmt.Sprint(bob.ID)}, principalFor(alice))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied: You can only view your own profile", decodeEnvelope(t, rec).Message)
	})

	t.Run("admin reads anyone", func(t *testing.T) {
		rec := doRequest(t, env.user.Get, http.MethodGet, "/api/users/2", nil,
			map[string]string{"id": fmt.Sprint(bob.ID)}, principalFor(admin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserUpdate(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", "hunter22", models.RoleUser)
	env.seedUser(t, "bob", "hunter22", models.RoleUser)
	admin := env.seedUser(t, "root", "hunter22", models.RoleAdmin)

	t.Run("profile fields", func(t *testing.T) {
		body := map[string]any{"first_name": "Alice", "last_name": "Smith"}
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/1", body,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(alice))

		require.Equal(t, http.StatusOK, rec.Code)
		data := dataMap(t, decodeEnvelope(t, rec))
		got := data["user"].(map[string]any)
		assert.Equal(t, "Alice", got["first_name"])
	})

	t.Run("non-admin cannot set role", func(t *testing.T) {
		body := map[string]any{"role": "admin"}
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/1", body,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(alice))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied: You cannot change your own role", decodeEnvelope(t, rec).Message)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		body := map[string]any{"role": "user"}
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/3", body,
			map[string]string{"id": fmt.Sprint(admin.ID)}, principalFor(admin))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied: Admins cannot change their own role", decodeEnvelope(t, rec).Message)
	})

	t.Run("admin promotes another user", func(t *testing.T) {
		body := map[string]any{"role": "admin"}
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/1", body,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(admin))

		require.Equal(t, http.StatusOK, rec.Code)
		data := dataMap(t, decodeEnvelope(t, rec))
		got := data["user"].(map[string]any)
		assert.Equal(t, "admin", got["role"])
	})

	t.Run("username collision", func(t *testing.T) {
		body := map[string]any{"username": "bob"}
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/1", body,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(alice))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Username already exists", decodeEnvelope(t, rec).Message)
	})

	t.Run("no fields", func(t *testing.T) {
		rec := doRequest(t, env.user.Update, http.MethodPut, "/api/users/1", map[string]any{},
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(alice))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", "hunter22", models.RoleUser)
	admin := env.seedUser(t, "root", "hunter22", models.RoleAdmin)
	vars := map[string]string{"id": fmt.Sprint(alice.ID)}

	t.Run("wrong current password", func(t *testing.T) {
		body := map[string]any{"current_password": "nope", "new_password": "newpass1", "confirm_password": "newpass1"}
		rec := doRequest(t, env.user.ChangePassword, http.MethodPost, "/api/users/1/change-password", body, vars, principalFor(alice))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Current password is incorrect", decodeEnvelope(t, rec).Message)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		body := map[string]any{"current_password": "hunter22", "new_password": "newpass1", "confirm_password": "other"}
		rec := doRequest(t, env.user.ChangePassword, http.MethodPost, "/api/users/1/change-password", body, vars, principalFor(alice))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		body := map[string]any{"current_password": "hunter22", "new_password": "newpass1", "confirm_password": "newpass1"}
		rec := doRequest(t, env.user.ChangePassword, http.MethodPost, "/api/users/1/change-password", body, vars, principalFor(alice))
		require.Equal(t, http.StatusOK, rec.Code)

		// The old password no longer works.
		login := map[string]any{"username": "alice", "password": "hunter22"}
		rec = doRequest(t, env.auth.Login, http.MethodPost, "/api/auth/login", login, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		login["password"] = "newpass1"
		rec = doRequest(t, env.auth.Login, http.MethodPost, "/api/auth/login", login, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin resets without current password", func(t *testing.T) {
		body := map[string]any{"new_password": "resetpw1", "confirm_password": "resetpw1"}
		rec := doRequest(t, env.user.ChangePassword, http.MethodPost, "/api/users/1/change-password", body, vars, principalFor(admin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin changing own password still verifies", func(t *testing.T) {
		body := map[string]any{"new_password": "resetpw1", "confirm_password": "resetpw1"}
		rec := doRequest(t, env.user.ChangePassword, http.MethodPost, "/api/users/2/change-password", body,
			map[string]string{"id": fmt.Sprint(admin.ID)}, principalFor(admin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserList(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "alice", "hunter22", models.RoleUser)
	env.seedUser(t, "bob", "hunter22", models.RoleUser)
	admin := env.seedUser(t, "root", "hunter22", models.RoleAdmin)

	t.Run("all users", func(t *testing.T) {
		rec := doRequest(t, env.user.List, http.MethodGet, "/api/users", nil, nil, principalFor(admin))
		require.Equal(t, http.StatusOK, rec.Code)

		data := dataMap(t, decodeEnvelope(t, rec))
		users := data["users"].([]any)
		assert.Len(t, users, 3)
	})

	t.Run("role filter", func(t *testing.T) {
		rec := doRequest(t, env.user.List, http.MethodGet, "/api/users?role=admin", nil, nil, principalFor(admin))
		require.Equal(t, http.StatusOK, rec.Code)

		data := dataMap(t, decodeEnvelope(t, rec))
		users := data["users"].([]any)
		assert.Len(t, users, 1)
	})

	t.Run("invalid role filter", func(t *testing.T) {
		rec := doRequest(t, env.user.List, http.MethodGet, "/api/users?role=superuser", nil, nil, principalFor(admin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserDelete(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", "hunter22", models.RoleUser)
	admin := env.seedUser(t, "root", "hunter22", models.RoleAdmin)

	t.Run("self delete blocked", func(t *testing.T) {
		rec := doRequest(t, env.user.Delete, http.MethodDelete, "/api/users/2", nil,
			map[string]string{"id": fmt.Sprint(admin.ID)}, principalFor(admin))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "You cannot delete your own account", decodeEnvelope(t, rec).Message)
	})

	t.Run("admin deletes another user", func(t *testing.T) {
		rec := doRequest(t, env.user.Delete, http.MethodDelete, "/api/users/1", nil,
			map[string]string{"id": fmt.Sprint(alice.ID)}, principalFor(admin))

		require.Equal(t, http.StatusOK, rec.Code)
		data := dataMap(t, decodeEnvelope(t, rec))
		deleted := data["deleted_user"].(map[string]any)
		assert.Equal(t, "alice", deleted["username"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, env.user.Delete, http.MethodDelete, "/api/users/99", nil,
			map[string]string{"id": "99"}, principalFor(admin))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
