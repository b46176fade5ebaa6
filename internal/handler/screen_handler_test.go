package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/roles"
)

type screenBody struct {
	State   string           `json:"state"`
	Tab     string           `json:"tab"`
	Records []models.Account `json:"records"`
	Actions []string         `json:"actions"`
	Error   string           `json:"error"`
	Notice  *struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notice"`
}

func decodeScreen(t *testing.T, env responseEnvelope) screenBody {
	t.Helper()
	var body screenBody
	require.NoError(t, json.Unmarshal(env.Data, &body))
	return body
}

const usersPath = "/console/api/admin/users"

func TestScreenHandlerListAndNavigate(t *testing.T) {
	f := newScreenFixture(seedAccounts(23))

	w := performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	body := decodeScreen(t, env)
	assert.Equal(t, "loaded", body.State)
	assert.Equal(t, "all", body.Tab)
	assert.Len(t, body.Records, 10)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.CurrentPage)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.False(t, env.Pagination.HasPrevious)

	w = performRequest(f.router, http.MethodPut, usersPath+"/page", payload{"page": 3}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	assert.Len(t, decodeScreen(t, env).Records, 3)
	assert.False(t, env.Pagination.HasNext)

	w = performRequest(f.router, http.MethodPut, usersPath+"/page", payload{"page": 4}, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.router, http.MethodPost, usersPath+"/previous", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeEnvelope(t, w).Pagination.CurrentPage)

	w = performRequest(f.router, http.MethodPut, usersPath+"/page-size", payload{"pageSize": 7}, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.router, http.MethodPut, usersPath+"/page-size", payload{"pageSize": 20}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	assert.Equal(t, 1, env.Pagination.CurrentPage)
	assert.Equal(t, 2, env.Pagination.TotalPages)

	w = performRequest(f.router, http.MethodPut, usersPath+"/keyword", payload{"keyword": "ali"}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	last := f.accounts.queries[len(f.accounts.queries)-1]
	assert.Equal(t, "ali", last.Keyword)
	assert.Equal(t, 0, last.PageNumber)
	assert.Equal(t, 20, last.PageSize)
}

func TestScreenHandlerTabsGateActions(t *testing.T) {
	f := newScreenFixture(seedAccounts(4))

	w := performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(f.router, http.MethodDelete, usersPath+"/2", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeScreen(t, decodeEnvelope(t, w))
	assert.Len(t, body.Records, 3)
	require.NotNil(t, body.Notice)
	assert.Equal(t, "User soft deleted", body.Notice.Message)

	w = performRequest(f.router, http.MethodPut, usersPath+"/tab", payload{"tab": "deleted"}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeScreen(t, decodeEnvelope(t, w))
	require.Len(t, body.Records, 1)
	assert.Equal(t, int64(2), body.Records[0].ID)
	assert.Equal(t, []string{"restore", "permanent-delete"}, body.Actions)
	assert.True(t, f.accounts.queries[len(f.accounts.queries)-1].IsDeleted)

	w = performRequest(f.router, http.MethodPatch, usersPath+"/2/status", nil, models.RoleAdmin)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ACTION_NOT_AVAILABLE", decodeEnvelope(t, w).Error.Code)

	w = performRequest(f.router, http.MethodPost, usersPath+"/2/roles", nil, models.RoleAdmin)
	require.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(f.router, http.MethodPatch, usersPath+"/2/restore", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeScreen(t, decodeEnvelope(t, w)).Records)

	w = performRequest(f.router, http.MethodPut, usersPath+"/tab", payload{"tab": "bogus"}, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.router, http.MethodDelete, usersPath+"/abc", nil, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScreenHandlerToggleStatus(t *testing.T) {
	f := newScreenFixture(seedAccounts(2))

	performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	w := performRequest(f.router, http.MethodPatch, usersPath+"/1/status", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeScreen(t, decodeEnvelope(t, w))
	assert.Equal(t, "User deactivated", body.Notice.Message)
	assert.False(t, body.Records[0].Active())

	w = performRequest(f.router, http.MethodPatch, usersPath+"/99/status", nil, models.RoleAdmin)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreenHandlerBackendRejectionTearsDownSession(t *testing.T) {
	f := newScreenFixture(nil)
	f.accounts.listErr = &backend.ResponseError{StatusCode: http.StatusUnauthorized, Message: "token expired"}

	w := performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeEnvelope(t, w).Meta["redirect"])
	assert.Equal(t, []string{"sid-1"}, f.sessions.torn)
}

func TestScreenHandlerFetchErrorKeepsView(t *testing.T) {
	f := newScreenFixture(nil)
	f.accounts.listErr = &backend.ResponseError{StatusCode: http.StatusInternalServerError}

	w := performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	body := decodeScreen(t, env)
	assert.Equal(t, "errored", body.State)
	assert.Equal(t, "Failed to fetch users", body.Error)
	assert.Empty(t, f.sessions.torn)
}

func TestScreenHandlerRoleEditor(t *testing.T) {
	records := seedAccounts(3)
	records[2].Roles = []models.Role{{ID: 1, Name: models.RoleNormal}, {ID: 5, Name: models.RoleWorker}}
	f := newScreenFixture(records)

	performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)

	w := performRequest(f.router, http.MethodPost, usersPath+"/42/roles", nil, models.RoleAdmin)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(f.router, http.MethodPost, usersPath+"/3/roles", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	var state roles.State
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &state))
	assert.True(t, state.Open)
	assert.Equal(t, []int64{1, 5}, state.Selected)
	assert.Len(t, state.Catalog, 3)

	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/toggle", payload{"roleId": 1}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/toggle", payload{"roleId": 2}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/toggle", payload{"roleId": 9}, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/submit", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.roles.requests, 1)
	assert.Equal(t, models.RoleChangeRequest{UserID: 3, RoleIDs: []int64{2, 5}, Action: models.RoleChangeReplace}, f.roles.requests[0])

	var submitted struct {
		Editor roles.State `json:"editor"`
		Screen screenBody  `json:"screen"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &submitted))
	assert.False(t, submitted.Editor.Open)
	require.NotNil(t, submitted.Screen.Notice)
	assert.Equal(t, "Roles updated", submitted.Screen.Notice.Message)

	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/submit", nil, models.RoleAdmin)
	require.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(f.router, http.MethodGet, usersPath+"/roles", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestScreenHandlerAuditsAppliedMutations(t *testing.T) {
	f := newScreenFixture(seedAccounts(3))
	performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)

	w := performRequest(f.router, http.MethodPatch, usersPath+"/1/restore", nil, models.RoleAdmin)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, f.logs.FilterMessage("account mutation").Len())

	f.accounts.listErr = &backend.ResponseError{StatusCode: http.StatusInternalServerError}
	w = performRequest(f.router, http.MethodDelete, usersPath+"/2", nil, models.RoleAdmin)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, f.accounts.records[1].IsDeleted)

	body := decodeScreen(t, decodeEnvelope(t, w))
	assert.Equal(t, "errored", body.State)
	assert.Len(t, body.Records, 3)
	require.NotNil(t, body.Notice)
	assert.Equal(t, "success", body.Notice.Level)
	assert.Equal(t, "User soft deleted", body.Notice.Message)

	entries := f.logs.FilterMessage("account mutation").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "soft-delete", fields["action"])
	assert.Equal(t, "2", fields["resource_id"])
	assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
	assert.Equal(t, int64(42), fields["actor_id"])
}

func TestScreenHandlerAuditsRoleReplaceWhenRefreshFails(t *testing.T) {
	f := newScreenFixture(seedAccounts(2))
	performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)

	w := performRequest(f.router, http.MethodPost, usersPath+"/1/roles", nil, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/toggle", payload{"roleId": 2}, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)

	f.accounts.listErr = &backend.ResponseError{StatusCode: http.StatusInternalServerError}
	w = performRequest(f.router, http.MethodPost, usersPath+"/roles/submit", nil, models.RoleAdmin)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, f.roles.requests, 1)

	var submitted struct {
		Editor roles.State `json:"editor"`
		Screen screenBody  `json:"screen"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &submitted))
	assert.False(t, submitted.Editor.Open)
	assert.Equal(t, "errored", submitted.Screen.State)
	require.NotNil(t, submitted.Screen.Notice)
	assert.Equal(t, "Roles updated", submitted.Screen.Notice.Message)

	entries := f.logs.FilterMessage("account mutation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "replace-roles", entries[0].ContextMap()["action"])
}

func TestScreenHandlerLogsTeardownFailure(t *testing.T) {
	f := newScreenFixture(nil)
	f.sessions.err = errors.New("redis: connection refused")
	f.accounts.listErr = &backend.ResponseError{StatusCode: http.StatusUnauthorized, Message: "token expired"}

	w := performRequest(f.router, http.MethodGet, usersPath, nil, models.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeEnvelope(t, w).Meta["redirect"])

	entries := f.logs.FilterMessage("session teardown failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "sid-1", entries[0].ContextMap()["session_id"])
	assert.Equal(t, "redis: connection refused", entries[0].ContextMap()["error"])
}

type payload map[string]interface{}
