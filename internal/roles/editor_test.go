package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/pagination"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

type fakeBackend struct {
	catalog    []models.Role
	catalogErr error
	changeErr  error
	tokens     []string
	requests   []models.RoleChangeRequest
}

func (f *fakeBackend) ActiveRoles(ctx context.Context, token string) ([]models.Role, error) {
	f.tokens = append(f.tokens, token)
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeBackend) ChangeRoles(ctx context.Context, token string, req models.RoleChangeRequest) error {
	f.tokens = append(f.tokens, token)
	f.requests = append(f.requests, req)
	return f.changeErr
}

type fakeOwner struct {
	refreshes  int
	refreshErr error
	notices    []string
}

func (o *fakeOwner) Refresh(ctx context.Context) error {
	o.refreshes++
	return o.refreshErr
}

func (o *fakeOwner) Notify(level, message string) {
	o.notices = append(o.notices, level+":"+message)
}

type serverError struct{ msg string }

func (e *serverError) Error() string         { return e.msg }
func (e *serverError) ServerMessage() string { return e.msg }

func catalog() []models.Role {
	return []models.Role{
		{ID: 1, Name: models.RoleAdmin},
		{ID: 2, Name: models.RoleNormal},
		{ID: 3, Name: models.RoleWorker},
		{ID: 5, Name: models.RoleSuperUser},
	}
}

func holder() models.Account {
	return models.Account{
		ID:   11,
		Name: "Dewi",
		Roles: []models.Role{
			{ID: 3, Name: models.RoleWorker},
			{ID: 1, Name: models.RoleAdmin},
			{ID: 2, Name: models.RoleNormal},
		},
	}
}

func TestEditorReplaceScenario(t *testing.T) {
	backend := &fakeBackend{catalog: catalog()}
	owner := &fakeOwner{}
	editor := NewEditor(backend, "tok", owner, nil)
	ctx := context.Background()

	state, err := editor.Open(ctx, holder())
	require.NoError(t, err)
	assert.True(t, state.Open)
	assert.Equal(t, []int64{1, 2, 3}, state.Selected)
	assert.Len(t, state.Catalog, 4)

	_, err = editor.Toggle(1)
	require.NoError(t, err)
	_, err = editor.Toggle(3)
	require.NoError(t, err)
	state, err = editor.Toggle(5)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, state.Selected)

	state, err = editor.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, state.Open)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, models.RoleChangeRequest{UserID: 11, RoleIDs: []int64{2, 5}, Action: models.RoleChangeReplace}, backend.requests[0])
	assert.Equal(t, []string{"tok", "tok"}, backend.tokens)
	assert.Equal(t, 1, owner.refreshes)
	assert.Equal(t, []string{"success:Roles updated"}, owner.notices)
}

func TestEditorSubmitFailureStaysOpen(t *testing.T) {
	backend := &fakeBackend{
		catalog:   catalog(),
		changeErr: appErrors.Wrap(&serverError{msg: "Cannot remove last admin"}, appErrors.ErrBackendRejected.Code, 400, "Cannot remove last admin"),
	}
	owner := &fakeOwner{}
	editor := NewEditor(backend, "tok", owner, nil)
	ctx := context.Background()

	_, err := editor.Open(ctx, holder())
	require.NoError(t, err)
	_, err = editor.Toggle(1)
	require.NoError(t, err)

	state, err := editor.Submit(ctx)
	require.Error(t, err)
	assert.True(t, state.Open)
	assert.Equal(t, "Cannot remove last admin", state.Error)
	assert.Equal(t, []int64{2, 3}, state.Selected)
	assert.Zero(t, owner.refreshes)
	assert.Empty(t, owner.notices)
}

func TestEditorSubmitRefreshFailure(t *testing.T) {
	backend := &fakeBackend{catalog: catalog()}
	owner := &fakeOwner{refreshErr: errors.New("list timeout")}
	editor := NewEditor(backend, "tok", owner, nil)
	ctx := context.Background()

	_, err := editor.Open(ctx, holder())
	require.NoError(t, err)
	_, err = editor.Toggle(3)
	require.NoError(t, err)

	state, err := editor.Submit(ctx)
	require.Error(t, err)
	assert.True(t, pagination.Applied(err))
	assert.EqualError(t, errors.Unwrap(err), "list timeout")
	assert.False(t, state.Open)
	require.Len(t, backend.requests, 1)
	assert.Equal(t, []int64{1, 2}, backend.requests[0].RoleIDs)
	assert.Equal(t, 1, owner.refreshes)
	assert.Equal(t, []string{"success:Roles updated"}, owner.notices)
}

func TestEditorSubmitFallbackMessage(t *testing.T) {
	backend := &fakeBackend{catalog: catalog(), changeErr: errors.New("connection reset")}
	editor := NewEditor(backend, "tok", &fakeOwner{}, nil)

	_, err := editor.Open(context.Background(), holder())
	require.NoError(t, err)
	state, err := editor.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to update roles", state.Error)
}

func TestEditorCatalogFailure(t *testing.T) {
	backend := &fakeBackend{catalogErr: errors.New("timeout")}
	editor := NewEditor(backend, "tok", &fakeOwner{}, nil)

	state, err := editor.Open(context.Background(), holder())
	require.Error(t, err)
	assert.True(t, state.Open)
	assert.Equal(t, "Failed to fetch roles", state.Error)
	assert.Empty(t, state.Catalog)
	assert.Equal(t, []int64{1, 2, 3}, state.Selected)
}

func TestEditorRejectsWhenClosed(t *testing.T) {
	editor := NewEditor(&fakeBackend{}, "tok", &fakeOwner{}, nil)

	_, err := editor.Toggle(1)
	assert.ErrorIs(t, err, appErrors.ErrEditorClosed)
	_, err = editor.Submit(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrEditorClosed)
}

func TestEditorRejectsUnknownRole(t *testing.T) {
	editor := NewEditor(&fakeBackend{catalog: catalog()}, "tok", &fakeOwner{}, nil)
	_, err := editor.Open(context.Background(), holder())
	require.NoError(t, err)

	state, err := editor.Toggle(42)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, []int64{1, 2, 3}, state.Selected)
}

func TestEditorClose(t *testing.T) {
	editor := NewEditor(&fakeBackend{catalog: catalog()}, "tok", &fakeOwner{}, nil)
	_, err := editor.Open(context.Background(), holder())
	require.NoError(t, err)

	state := editor.Close()
	assert.False(t, state.Open)
	assert.Empty(t, state.Selected)
	assert.Zero(t, state.UserID)
}
