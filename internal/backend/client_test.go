package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/middleware/requestid"
)

type recordedCall struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   []byte
}

type fakeBackend struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone(), body: body})
	f.mu.Unlock()
	if f.handler != nil {
		f.handler(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type observedCall struct {
	method, endpoint string
	status           int
}

type fakeObserver struct {
	calls []observedCall
}

func (o *fakeObserver) ObserveBackendCall(method, endpoint string, status int, _ time.Duration) {
	o.calls = append(o.calls, observedCall{method: method, endpoint: endpoint, status: status})
}

func newTestClient(t *testing.T, fb *fakeBackend) (*Client, *fakeObserver) {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	obs := &fakeObserver{}
	return NewClient(srv.URL+"/api/", time.Second, zap.NewNop(), obs), obs
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestUsersListEncodesDeletedTabQuery(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"content":       []map[string]interface{}{{"id": 7, "name": "Ana", "accountStatus": map[string]bool{"isActive": true}}},
				"pageable":      map[string]int{"pageNumber": 0},
				"totalPages":    3,
				"totalElements": 23,
			},
		})
	}}
	client, obs := newTestClient(t, fb)

	page, err := client.Users("tok").List(context.Background(), models.ListQuery{
		Filter:     models.Filter{Keyword: "", IsDeleted: true},
		PageNumber: 0,
		PageSize:   10,
		SortBy:     "name",
		SortDir:    "asc",
	})
	require.NoError(t, err)

	call := fb.last()
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/api/users/filter", call.path)
	assert.Equal(t, []string{"0"}, call.query["pageNumber"])
	assert.Equal(t, []string{"10"}, call.query["pageSize"])
	assert.Equal(t, []string{"true"}, call.query["isDeleted"])
	assert.Equal(t, []string{""}, call.query["keyword"])
	assert.NotContains(t, call.query, "isActive")
	assert.Equal(t, "Bearer tok", call.header.Get("Authorization"))

	assert.Equal(t, 23, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.True(t, page.Content[0].Active())

	require.Len(t, obs.calls, 1)
	assert.Equal(t, "/users/filter", obs.calls[0].endpoint)
	assert.Equal(t, http.StatusOK, obs.calls[0].status)
}

func TestWorkersListUsesScopedPathAndOmitsEmptyKeyword(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"content": []interface{}{}}})
	}}
	client, _ := newTestClient(t, fb)

	active := false
	_, err := client.Workers("tok", 42).List(context.Background(), models.ListQuery{
		Filter:     models.Filter{IsActive: &active},
		PageNumber: 2,
		PageSize:   5,
		SortBy:     "createdOn",
		SortDir:    "desc",
	})
	require.NoError(t, err)

	call := fb.last()
	assert.Equal(t, "/api/v1/workers/superuser/42/advanced-filter", call.path)
	assert.Equal(t, []string{"2"}, call.query["page"])
	assert.Equal(t, []string{"5"}, call.query["size"])
	assert.Equal(t, []string{"false"}, call.query["isActive"])
	assert.NotContains(t, call.query, "keyword")
	assert.NotContains(t, call.query, "pageNumber")
}

func TestWorkersListRequiresSuperUser(t *testing.T) {
	fb := &fakeBackend{}
	client, _ := newTestClient(t, fb)

	_, err := client.Workers("tok", 0).List(context.Background(), models.ListQuery{PageSize: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, fb.calls)
}

func TestAccountLifecycleEndpoints(t *testing.T) {
	fb := &fakeBackend{}
	client, _ := newTestClient(t, fb)
	users := client.Users("tok")
	ctx := context.Background()

	require.NoError(t, users.SetStatus(ctx, 3, false))
	assert.Equal(t, http.MethodPatch, fb.last().method)
	assert.Equal(t, "/api/users/3/status", fb.last().path)
	assert.Equal(t, []string{"false"}, fb.last().query["isActive"])

	require.NoError(t, users.SoftDelete(ctx, 3))
	assert.Equal(t, http.MethodDelete, fb.last().method)
	assert.Equal(t, "/api/users/3", fb.last().path)

	require.NoError(t, users.Restore(ctx, 3))
	assert.Equal(t, http.MethodPatch, fb.last().method)
	assert.Equal(t, "/api/users/3/restore", fb.last().path)

	require.NoError(t, client.Workers("tok", 1).PermanentDelete(ctx, 9))
	assert.Equal(t, http.MethodDelete, fb.last().method)
	assert.Equal(t, "/api/v1/workers/9/permanent", fb.last().path)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		sentinel   *appErrors.Error
		message    string
		unauthed   bool
		httpStatus int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"token expired"}`, sentinel: appErrors.ErrUnauthorized, message: "token expired", unauthed: true, httpStatus: http.StatusUnauthorized},
		{name: "validation", status: http.StatusBadRequest, body: `{"message":"bad keyword"}`, sentinel: appErrors.ErrBackendRejected, message: "bad keyword", httpStatus: http.StatusBadRequest},
		{name: "server without message", status: http.StatusInternalServerError, body: `oops`, sentinel: appErrors.ErrBackendUnavailable, message: "", httpStatus: http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}}
			client, _ := newTestClient(t, fb)

			err := client.Users("tok").SoftDelete(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel))
			assert.Equal(t, tc.unauthed, IsUnauthorized(err))
			assert.Equal(t, tc.httpStatus, appErrors.FromError(err).Status)
			assert.Equal(t, tc.message, appErrors.MessageOr(err, ""))
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil, nil)

	err := client.Users("tok").SoftDelete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
	assert.Equal(t, "fallback", appErrors.MessageOr(err, "fallback"))
}

func TestChangeRolesReplaceSendsFullSet(t *testing.T) {
	fb := &fakeBackend{}
	client, _ := newTestClient(t, fb)

	err := client.ChangeRoles(context.Background(), "tok", models.RoleChangeRequest{UserID: 11, RoleIDs: []int64{2, 5}, Action: models.RoleChangeReplace})
	require.NoError(t, err)

	call := fb.last()
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/api/roles/replace", call.path)
	assert.JSONEq(t, `{"userId":11,"roleIds":[2,5],"action":"REPLACE"}`, string(call.body))

	require.NoError(t, client.ChangeRoles(context.Background(), "tok", models.RoleChangeRequest{UserID: 11, RoleIDs: []int64{3}, Action: models.RoleChangeRemove}))
	assert.Equal(t, http.MethodPost, fb.last().method)
	assert.Equal(t, "/api/roles/remove", fb.last().path)

	err = client.ChangeRoles(context.Background(), "tok", models.RoleChangeRequest{Action: "TOGGLE"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestActiveRoles(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []map[string]interface{}{{"id": 1, "name": "ROLE_ADMIN"}, {"id": 2, "name": "ROLE_NORMAL"}}})
	}}
	client, _ := newTestClient(t, fb)

	roles, err := client.ActiveRoles(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []models.Role{{ID: 1, Name: models.RoleAdmin}, {ID: 2, Name: models.RoleNormal}}, roles)
	assert.Equal(t, "/api/roles/active", fb.last().path)
}

func TestLoginAcceptsEnvelopeAndBareShapes(t *testing.T) {
	bodies := []string{
		`{"data":{"token":"abc","user":{"id":1,"roles":[{"id":1,"name":"ROLE_ADMIN"}]}}}`,
		`{"token":"abc","user":{"id":1,"roles":[{"id":1,"name":"ROLE_ADMIN"}]}}`,
	}
	for _, body := range bodies {
		fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}}
		client, _ := newTestClient(t, fb)

		resp, err := client.Login(context.Background(), models.LoginRequest{UsernameOrEmail: "admin", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "abc", resp.Token)
		assert.True(t, resp.User.HasRole(models.RoleAdmin))
		assert.JSONEq(t, `{"usernameOrEmail":"admin","password":"pw"}`, string(fb.last().body))
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	fb := &fakeBackend{}
	client, _ := newTestClient(t, fb)
	ctx := context.Background()

	require.NoError(t, client.SendResetEmail(ctx, "a@example.com"))
	assert.Equal(t, "/api/v1/home/send-email-reset", fb.last().path)
	assert.Equal(t, []string{"a@example.com"}, fb.last().query["email"])

	require.NoError(t, client.VerifyResetLink(ctx, models.ResetLinkRequest{UID: "u1", Token: "t1"}))
	assert.Equal(t, "/api/v1/home/verify-pswd-link", fb.last().path)
	assert.Equal(t, []string{"t1"}, fb.last().query["code"])

	require.NoError(t, client.ResetPassword(ctx, models.ResetPasswordRequest{UID: "u1", Token: "t1", NewPassword: "Secret#123", ConfirmPassword: "Secret#123"}))
	assert.Equal(t, http.MethodPost, fb.last().method)
	assert.Contains(t, string(fb.last().body), `"newPassword":"Secret#123"`)
}

func TestUserImageNotFoundIsAbsent(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}}
	client, _ := newTestClient(t, fb)

	img, err := client.UserImage(context.Background(), "tok", 5)
	require.NoError(t, err)
	assert.Nil(t, img)
	assert.Equal(t, "/api/users/image/5", fb.last().path)
}

func TestUploadImageSendsMultipart(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "imageName": "me.png"})
	}}
	client, _ := newTestClient(t, fb)

	res, err := client.UploadImage(context.Background(), "tok", "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "me.png", res.ImageName)
	assert.True(t, strings.HasPrefix(fb.last().header.Get("Content-Type"), "multipart/form-data"))
	assert.Contains(t, string(fb.last().body), `name="userImage"`)
}

func TestRequestIDIsForwarded(t *testing.T) {
	fb := &fakeBackend{}
	client, _ := newTestClient(t, fb)

	ctx := requestid.WithValue(context.Background(), "rid-1")
	require.NoError(t, client.Users("tok").Restore(ctx, 1))
	assert.Equal(t, "rid-1", fb.last().header.Get(requestid.HeaderKey))
}
