package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/shared"
	"github.com/bankdesk/bankdesk/internal/users"
)

type stubRepo struct {
	list []users.User
}

func (s stubRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	return s.list, nil
}

type stubPerms map[int64][]string

func (s stubPerms) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return rbac.Role{}, shared.ErrNotFound
}

func (s stubPerms) ListRoles(ctx context.Context) ([]rbac.Role, error) { return nil, nil }

func (s stubPerms) UserPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s[userID], nil
}

func usersRouter(repo users.RepositoryPort, perms stubPerms) chi.Router {
	mw := rbac.Middleware{Service: rbac.NewService(perms, nil, nil)}
	handler := users.NewHandler(nil, users.NewService(repo))
	r := chi.NewRouter()
	r.Route("/v1/users", func(r chi.Router) {
		handler.MountRoutes(r, mw)
	})
	return r
}

func listAs(t *testing.T, router chi.Router, principal *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestListUsers(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := stubRepo{list: []users.User{
		{ID: 1, Username: "admin", Email: "admin@example.com", Name: "Admin", RoleID: 1, CreatedAt: now},
		{ID: 2, Username: "user", Email: "user@example.com", Name: "User", RoleID: 2, CreatedAt: now},
	}}
	router := usersRouter(repo, stubPerms{1: {shared.PermUsersView}})

	res := listAs(t, router, &shared.Principal{ID: 1, Username: "admin"})
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, float64(1), body.Data[0]["_id"])
	assert.Equal(t, "admin", body.Data[0]["username"])
	assert.Equal(t, "user@example.com", body.Data[1]["email"])
	assert.Equal(t, float64(2), body.Data[1]["role_id"])
}

func TestListUsersRequiresCapability(t *testing.T) {
	router := usersRouter(stubRepo{}, stubPerms{2: {}})

	res := listAs(t, router, &shared.Principal{ID: 2, Username: "user"})
	require.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "Don't have necessary permissions for this resource.")
}
