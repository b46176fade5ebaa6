package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/pagination"
	"github.com/noah-isme/admin-console/internal/roles"
	"github.com/noah-isme/admin-console/pkg/config"
)

// Screen identifies a list screen within a workspace.
type Screen string

const (
	ScreenUsers   Screen = "users"
	ScreenWorkers Screen = "workers"
)

// AccountScreen is one list screen together with its role editor.
type AccountScreen struct {
	Controller *pagination.Controller[models.Account]
	Roles      *roles.Editor
}

// Workspace holds the screens of one console session. Screens are built lazily
// because the worker screen needs the managing user id.
type Workspace struct {
	SessionID string
	token     string

	mu      sync.Mutex
	screens map[Screen]*AccountScreen
	build   func(screen Screen, session *models.Session) *AccountScreen
}

// Screen returns the screen for the session, building it on first use.
func (w *Workspace) Screen(screen Screen, session *models.Session) *AccountScreen {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.screens[screen]; ok {
		return s
	}
	s := w.build(screen, session)
	w.screens[screen] = s
	return s
}

// ScreenBuilder creates a screen for an authenticated session.
type ScreenBuilder func(screen Screen, session *models.Session) *AccountScreen

// NewScreenBuilder wires list screens to the backend client using the screen configuration.
func NewScreenBuilder(client *backend.Client, cfg config.ScreensConfig, observer pagination.Observer, logger *zap.Logger) ScreenBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(screen Screen, session *models.Session) *AccountScreen {
		opts := pagination.Options{
			PageSize:     cfg.DefaultPageSize,
			PageSizes:    cfg.PageSizes,
			FetchTimeout: cfg.FetchTimeout,
			Logger:       logger,
			Observer:     observer,
		}

		var resource pagination.Resource[models.Account]
		switch screen {
		case ScreenWorkers:
			opts.Name, opts.Noun = "workers", "Worker"
			opts.SortBy, opts.SortDir = cfg.WorkerSortBy, cfg.WorkerSortDir
			resource = client.Workers(session.Token, session.UserID())
		default:
			opts.Name, opts.Noun = "users", "User"
			opts.SortBy, opts.SortDir = cfg.UserSortBy, cfg.UserSortDir
			resource = client.Users(session.Token)
		}

		controller := pagination.NewController[models.Account](resource, opts)
		return &AccountScreen{
			Controller: controller,
			Roles:      roles.NewEditor(client, session.Token, controller, logger.Named("roles")),
		}
	}
}

// WorkspaceRegistry keeps one workspace per console session in a bounded LRU.
type WorkspaceRegistry struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *Workspace]
	build   ScreenBuilder
	logger  *zap.Logger
}

// NewWorkspaceRegistry constructs a registry holding at most size workspaces for ttl each.
func NewWorkspaceRegistry(size int, ttl time.Duration, build ScreenBuilder, logger *zap.Logger) *WorkspaceRegistry {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &WorkspaceRegistry{build: build, logger: logger}
	r.entries = expirable.NewLRU[string, *Workspace](size, func(key string, _ *Workspace) {
		r.logger.Debug("workspace evicted", zap.String("session_id", key))
	}, ttl)
	return r
}

// Get returns the workspace of an authenticated session, replacing one built for a different token.
func (r *WorkspaceRegistry) Get(session *models.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.entries.Get(session.ID); ok && ws.token == session.Token {
		return ws
	}
	ws := &Workspace{
		SessionID: session.ID,
		token:     session.Token,
		screens:   map[Screen]*AccountScreen{},
		build:     r.build,
	}
	r.entries.Add(session.ID, ws)
	return ws
}

// Evict drops the workspace of a session.
func (r *WorkspaceRegistry) Evict(sessionID string) {
	r.entries.Remove(sessionID)
}

// Len reports the number of live workspaces.
func (r *WorkspaceRegistry) Len() int {
	return r.entries.Len()
}
