package banks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankdesk/bankdesk/internal/auth"
	"github.com/bankdesk/bankdesk/internal/banks"
	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// The canonical fixture: an admin role holding every bank capability and a
// user role holding none; the approver shares the admin role.
var fixtureUsers = map[string]*auth.User{
	"admin":    {ID: 1, Username: "admin", Email: "admin@example.com", Name: "Admin", RoleID: 1},
	"user":     {ID: 2, Username: "user", Email: "user@example.com", Name: "User", RoleID: 2},
	"approver": {ID: 3, Username: "approver", Email: "approver@example.com", Name: "Approver", RoleID: 1},
}

type fixtureAuthRepo struct{}

func (fixtureAuthRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if user, ok := fixtureUsers[username]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (fixtureAuthRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	for _, user := range fixtureUsers {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

type fixtureRBACRepo struct{}

func (fixtureRBACRepo) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return rbac.Role{}, shared.ErrNotFound
}

func (fixtureRBACRepo) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	return nil, nil
}

func (fixtureRBACRepo) UserPermissions(ctx context.Context, userID int64) ([]string, error) {
	for _, user := range fixtureUsers {
		if user.ID == userID {
			if user.RoleID == 1 {
				return []string{shared.PermBankView, shared.PermBankCreate, shared.PermBankUpdate, shared.PermBankDelete}, nil
			}
			return []string{}, nil
		}
	}
	return nil, shared.ErrNotFound
}

type api struct {
	router chi.Router
	tokens auth.TokenService
	repo   banks.Repository
}

func newAPI(t *testing.T) *api {
	t.Helper()
	return newAPIWithRepo(t, newMemRepo())
}

func newAPIWithRepo(t *testing.T, repo banks.Repository) *api {
	t.Helper()
	tokens := auth.NewJWTService("bankdesk", "thisIsSecret", time.Hour)
	authService := auth.NewService(fixtureAuthRepo{}, auth.NewHasher(), tokens)
	gate := rbac.Middleware{Service: rbac.NewService(fixtureRBACRepo{}, nil, nil)}
	handler := banks.NewHandler(nil, banks.NewService(repo, nil))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware{Tokens: tokens, Service: authService}.RequireToken)
		r.Route("/v1/banks", func(r chi.Router) {
			handler.MountRoutes(r, gate)
		})
	})
	return &api{router: r, tokens: tokens, repo: repo}
}

func (a *api) tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, err := a.tokens.Sign(fixtureUsers[username].ID)
	require.NoError(t, err)
	return token
}

func (a *api) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	a.router.ServeHTTP(res, req)
	return res
}

func (a *api) createBank(t *testing.T, token string) string {
	t.Helper()
	res := a.do(t, http.MethodPost, "/v1/banks", token,
		`{"code":"BCA","name":"Bank Central Asia","address":"Jakarta","phone":"021","fax":"022","notes":"main",
		  "accounts":[{"branch":"Jakarta","number":"1111","name":"Operational","notes":"primary"},
		              {"branch":"Bandung","number":"2222","name":"Payroll","notes":"secondary"}]}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body["_id"])
	return body["_id"]
}

func (a *api) requestDelete(t *testing.T, id string) {
	t.Helper()
	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete", a.tokenFor(t, "admin"),
		`{"approvalTo":3,"reasonDelete":"this is reason"}`)
	require.Equal(t, http.StatusNoContent, res.Code, res.Body.String())
}

func (a *api) readBank(t *testing.T, id string) map[string]any {
	t.Helper()
	res := a.do(t, http.MethodGet, "/v1/banks/"+id, a.tokenFor(t, "admin"), "")
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body
}

func assertUnauthorizedBody(t *testing.T, res *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["code"])
	assert.Equal(t, "Unauthorized", body["status"])
	assert.Equal(t, "Authentication credentials is invalid.", body["message"])
}

func assertForbiddenBody(t *testing.T, res *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusForbidden, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, float64(403), body["code"])
	assert.Equal(t, "Forbidden", body["status"])
	assert.Equal(t, "Don't have necessary permissions for this resource.", body["message"])
}

func assertNotFoundBody(t *testing.T, res *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusNotFound, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, float64(404), body["code"])
	assert.Equal(t, "Not Found", body["status"])
	assert.Equal(t, "The URL is not recognized or endpoint is valid but the resource itself does not exist.", body["message"])
}

func TestBanksRequireToken(t *testing.T) {
	a := newAPI(t)

	for _, call := range []struct{ method, path string }{
		{http.MethodPost, "/v1/banks"},
		{http.MethodGet, "/v1/banks"},
		{http.MethodPost, "/v1/banks/" + uuidString() + "/request-delete"},
		{http.MethodPost, "/v1/banks/" + uuidString() + "/request-delete/approve"},
		{http.MethodPost, "/v1/banks/" + uuidString() + "/request-delete/reject"},
	} {
		res := a.do(t, call.method, call.path, "", "")
		assertUnauthorizedBody(t, res)
	}
}

func TestBanksRequireCapability(t *testing.T) {
	a := newAPI(t)
	userToken := a.tokenFor(t, "user")

	res := a.do(t, http.MethodPost, "/v1/banks", userToken, `{}`)
	assertForbiddenBody(t, res)

	res = a.do(t, http.MethodPost, "/v1/banks/"+uuidString()+"/request-delete", userToken, `{}`)
	assertForbiddenBody(t, res)
}

func TestCreateBankPersistsFields(t *testing.T) {
	a := newAPI(t)
	id := a.createBank(t, a.tokenFor(t, "admin"))

	body := a.readBank(t, id)
	assert.Equal(t, "BCA", body["code"])
	assert.Equal(t, "Bank Central Asia", body["name"])
	assert.Equal(t, "Jakarta", body["address"])
	assert.Equal(t, float64(1), body["createdBy_id"])
	assert.Equal(t, "none", body["requestApprovalDeleteStatus"])

	accounts := body["accounts"].([]any)
	require.Len(t, accounts, 2)
	first := accounts[0].(map[string]any)
	assert.Equal(t, "Jakarta", first["branch"])
	assert.Equal(t, "1111", first["number"])
	assert.Equal(t, "Operational", first["name"])
}

func TestCreateBankValidation(t *testing.T) {
	a := newAPI(t)

	res := a.do(t, http.MethodPost, "/v1/banks", a.tokenFor(t, "admin"), `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	var body struct {
		Code    int                 `json:"code"`
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, 422, body.Code)
	assert.Equal(t, "Unprocessable Entity", body.Status)
	assert.Equal(t, "The request was well-formed but was unable to be followed due to semantic errors.", body.Message)
	assert.Equal(t, []string{"code is required"}, body.Errors["code"])
	assert.Equal(t, []string{"name is required"}, body.Errors["name"])
}

func TestCreateBankDuplicate(t *testing.T) {
	a := newAPI(t)
	admin := a.tokenFor(t, "admin")
	a.createBank(t, admin)

	res := a.do(t, http.MethodPost, "/v1/banks", admin, `{"code":"BCA","name":"Bank Central Asia"}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, []string{"code is exists"}, body.Errors["code"])
}

func TestRequestDeleteValidation(t *testing.T) {
	a := newAPI(t)
	id := a.createBank(t, a.tokenFor(t, "admin"))

	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete", a.tokenFor(t, "admin"), `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, []string{"approvalTo is required"}, body.Errors["approvalTo"])
	assert.Equal(t, []string{"reasonDelete is required"}, body.Errors["reasonDelete"])
}

func TestRequestDeleteRecordsRequest(t *testing.T) {
	a := newAPI(t)
	id := a.createBank(t, a.tokenFor(t, "admin"))
	a.requestDelete(t, id)

	body := a.readBank(t, id)
	assert.Equal(t, "pending", body["requestApprovalDeleteStatus"])
	assert.Equal(t, float64(3), body["requestApprovalDeleteTo_id"])
	assert.Equal(t, "this is reason", body["requestApprovalDeleteReason"])
	assert.NotEmpty(t, body["requestApprovalDeleteAt"])
	assert.Nil(t, body["requestApprovalDeleteReasonReject"])
}

func TestApproveDeleteContract(t *testing.T) {
	a := newAPI(t)
	id := a.createBank(t, a.tokenFor(t, "admin"))
	a.requestDelete(t, id)

	// Admin holds bank.delete but is not the assigned approver.
	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/approve", a.tokenFor(t, "admin"), "")
	assertForbiddenBody(t, res)

	// Unknown resource id.
	res = a.do(t, http.MethodPost, "/v1/banks/"+uuidString()+"/request-delete/approve", a.tokenFor(t, "approver"), "")
	assertNotFoundBody(t, res)

	// Unparseable id names no resource either.
	res = a.do(t, http.MethodPost, "/v1/banks/randomid/request-delete/approve", a.tokenFor(t, "approver"), "")
	assertNotFoundBody(t, res)

	// The assigned approver resolves the request.
	res = a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/approve", a.tokenFor(t, "approver"), "")
	require.Equal(t, http.StatusNoContent, res.Code)

	body := a.readBank(t, id)
	assert.Equal(t, "approved", body["requestApprovalDeleteStatus"])
	assert.Nil(t, body["requestApprovalDeleteReasonReject"])

	// The request is no longer actionable.
	res = a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/approve", a.tokenFor(t, "approver"), "")
	assertNotFoundBody(t, res)
}

func TestApproveLostRowRaceAnswersNotFound(t *testing.T) {
	repo := &racingRepo{memRepo: newMemRepo()}
	a := newAPIWithRepo(t, repo)
	id := a.createBank(t, a.tokenFor(t, "admin"))

	bankID, err := uuid.Parse(id)
	require.NoError(t, err)
	seed := banks.NewService(repo.memRepo, nil)
	require.NoError(t, seed.RequestDeletion(context.Background(), bankID, 1, 3, "this is reason"))

	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/approve", a.tokenFor(t, "approver"), "")
	assertNotFoundBody(t, res)
}

func TestRejectDeleteContract(t *testing.T) {
	a := newAPI(t)
	id := a.createBank(t, a.tokenFor(t, "admin"))
	a.requestDelete(t, id)
	approver := a.tokenFor(t, "approver")

	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/reject", approver, `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, []string{"reasonReject is required"}, body.Errors["reasonReject"])

	res = a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/reject", approver, `{"reasonReject":"this is reason"}`)
	require.Equal(t, http.StatusNoContent, res.Code)

	read := a.readBank(t, id)
	assert.Equal(t, "rejected", read["requestApprovalDeleteStatus"])
	assert.Equal(t, "this is reason", read["requestApprovalDeleteReasonReject"])

	// A resolved request cannot be approved afterwards.
	res = a.do(t, http.MethodPost, "/v1/banks/"+id+"/request-delete/approve", approver, "")
	assertNotFoundBody(t, res)
}

func TestDeleteBank(t *testing.T) {
	a := newAPI(t)
	admin := a.tokenFor(t, "admin")
	id := a.createBank(t, admin)

	res := a.do(t, http.MethodDelete, "/v1/banks/"+id, a.tokenFor(t, "user"), "")
	assertForbiddenBody(t, res)

	res = a.do(t, http.MethodDelete, "/v1/banks/"+id, admin, "")
	require.Equal(t, http.StatusNoContent, res.Code)

	list := a.do(t, http.MethodGet, "/v1/banks", admin, "")
	require.Equal(t, http.StatusOK, list.Code)
	var listBody struct {
		Data       []any             `json:"data"`
		Pagination shared.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listBody))
	assert.Len(t, listBody.Data, 0)
	assert.Equal(t, 1, listBody.Pagination.Page)
	assert.Equal(t, 10, listBody.Pagination.PageSize)
	assert.Equal(t, 0, listBody.Pagination.PageCount)
	assert.Equal(t, 0, listBody.Pagination.TotalDocument)
}

func TestArchiveRestore(t *testing.T) {
	a := newAPI(t)
	admin := a.tokenFor(t, "admin")
	id := a.createBank(t, admin)

	res := a.do(t, http.MethodPost, "/v1/banks/"+id+"/archive", admin, "")
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, true, a.readBank(t, id)["archived"])

	res = a.do(t, http.MethodPost, "/v1/banks/"+id+"/restore", admin, "")
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, false, a.readBank(t, id)["archived"])
}

func uuidString() string {
	return "00000000-0000-0000-0000-00000000beef"
}
