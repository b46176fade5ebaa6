// Package roles implements the role editor opened from a list screen.
package roles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/pagination"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// Backend is the role surface of the remote backend.
type Backend interface {
	ActiveRoles(ctx context.Context, token string) ([]models.Role, error)
	ChangeRoles(ctx context.Context, token string, req models.RoleChangeRequest) error
}

// Owner is the list screen that opened the editor.
type Owner interface {
	Refresh(ctx context.Context) error
	Notify(level, message string)
}

// State is the editor snapshot returned to the console.
type State struct {
	Open     bool          `json:"open"`
	UserID   int64         `json:"userId,omitempty"`
	UserName string        `json:"userName,omitempty"`
	Catalog  []models.Role `json:"catalog"`
	Selected []int64       `json:"selected"`
	Error    string        `json:"error,omitempty"`
}

// Editor edits the role set of one record with full-replace semantics.
type Editor struct {
	backend Backend
	token   string
	owner   Owner
	logger  *zap.Logger

	mu       sync.Mutex
	open     bool
	userID   int64
	userName string
	catalog  []models.Role
	selected map[int64]struct{}
	errMsg   string
}

// NewEditor builds a closed editor bound to the session token and owning screen.
func NewEditor(backend Backend, token string, owner Owner, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		backend:  backend,
		token:    token,
		owner:    owner,
		logger:   logger,
		selected: map[int64]struct{}{},
	}
}

// Open loads the active role catalog and seeds the selection from the account.
// A catalog failure leaves the editor open with the error shown.
func (e *Editor) Open(ctx context.Context, account models.Account) (State, error) {
	catalog, err := e.backend.ActiveRoles(ctx, e.token)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.open = true
	e.userID = account.ID
	e.userName = account.Name
	e.selected = map[int64]struct{}{}
	for _, id := range account.RoleIDs() {
		e.selected[id] = struct{}{}
	}
	e.errMsg = ""
	e.catalog = catalog
	if err != nil {
		e.catalog = nil
		e.errMsg = appErrors.MessageOr(err, "Failed to fetch roles")
		e.logger.Warn("role catalog fetch failed", zap.Int64("user_id", account.ID), zap.Error(err))
		return e.stateLocked(), err
	}
	return e.stateLocked(), nil
}

// Toggle adds or removes a role id from the selection.
func (e *Editor) Toggle(roleID int64) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return e.stateLocked(), appErrors.ErrEditorClosed
	}
	if len(e.catalog) > 0 && !e.inCatalogLocked(roleID) {
		return e.stateLocked(), appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role %d is not active", roleID))
	}
	if _, ok := e.selected[roleID]; ok {
		delete(e.selected, roleID)
	} else {
		e.selected[roleID] = struct{}{}
	}
	return e.stateLocked(), nil
}

// Submit replaces the record's roles with the selection. On success the owner
// refetches keeping its page and the editor closes; on failure it stays open.
func (e *Editor) Submit(ctx context.Context) (State, error) {
	e.mu.Lock()
	if !e.open {
		defer e.mu.Unlock()
		return e.stateLocked(), appErrors.ErrEditorClosed
	}
	req := models.RoleChangeRequest{
		UserID:  e.userID,
		RoleIDs: e.selectionLocked(),
		Action:  models.RoleChangeReplace,
	}
	e.mu.Unlock()

	if err := e.backend.ChangeRoles(ctx, e.token, req); err != nil {
		e.logger.Warn("role replace failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		e.mu.Lock()
		defer e.mu.Unlock()
		e.errMsg = appErrors.MessageOr(err, "Failed to update roles")
		return e.stateLocked(), err
	}

	e.Close()
	refreshErr := e.owner.Refresh(ctx)
	e.owner.Notify("success", "Roles updated")
	if refreshErr != nil {
		return e.State(), &pagination.RefetchError{Err: refreshErr}
	}
	return e.State(), nil
}

// Close discards the editor state.
func (e *Editor) Close() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	e.userID = 0
	e.userName = ""
	e.catalog = nil
	e.selected = map[int64]struct{}{}
	e.errMsg = ""
	return e.stateLocked()
}

// State returns the current snapshot.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) stateLocked() State {
	catalog := make([]models.Role, len(e.catalog))
	copy(catalog, e.catalog)
	return State{
		Open:     e.open,
		UserID:   e.userID,
		UserName: e.userName,
		Catalog:  catalog,
		Selected: e.selectionLocked(),
		Error:    e.errMsg,
	}
}

func (e *Editor) selectionLocked() []int64 {
	ids := make([]int64, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Editor) inCatalogLocked(roleID int64) bool {
	for _, r := range e.catalog {
		if r.ID == roleID {
			return true
		}
	}
	return false
}
