package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// State is the lifecycle state of a list screen.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateErrored State = "errored"
)

// Fetch outcomes reported to the Observer.
const (
	OutcomeLoaded  = "loaded"
	OutcomeErrored = "errored"
	OutcomeStale   = "stale"
)

// Record is a list row the controller can address by id.
type Record interface {
	RecordID() int64
	Active() bool
}

// Resource is the backend surface of one list screen.
type Resource[T Record] interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page[T], error)
	SetStatus(ctx context.Context, id int64, active bool) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	PermanentDelete(ctx context.Context, id int64) error
}

// Observer receives one event per completed fetch.
type Observer interface {
	ObserveFetch(resource, outcome string, duration time.Duration)
}

// Options configures a controller instance.
type Options struct {
	// Name labels the resource in messages and metrics, e.g. "users".
	Name string
	// Noun is the singular used in notifications, e.g. "User".
	Noun         string
	PageSize     int
	PageSizes    []int
	SortBy       string
	SortDir      string
	FetchTimeout time.Duration
	Logger       *zap.Logger
	Observer     Observer
}

// Notice is a transient notification for the caller to surface.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// View is a consistent snapshot of the screen state.
type View[T Record] struct {
	State      State             `json:"state"`
	Tab        models.Tab        `json:"tab"`
	Filter     models.Filter     `json:"filter"`
	Records    []T               `json:"records"`
	Pagination models.Pagination `json:"pagination"`
	Actions    []models.Action   `json:"actions"`
	PageSizes  []int             `json:"pageSizes,omitempty"`
	Error      string            `json:"error,omitempty"`
	Notice     *Notice           `json:"notice,omitempty"`
}

// Controller owns the record list and pagination state of one screen instance.
// Fetches are sequenced: a newer fetch cancels the one in flight and responses
// from superseded fetches are discarded.
type Controller[T Record] struct {
	resource Resource[T]
	opts     Options
	logger   *zap.Logger

	mu           sync.Mutex
	state        State
	tab          models.Tab
	keyword      string
	currentPage  int
	pageSize     int
	totalPages   int
	totalRecords int
	records      []T
	errMessage   string
	notice       *Notice
	seq          uint64
	cancel       context.CancelFunc
}

// NewController builds a controller in the Idle state on the All tab.
func NewController[T Record](resource Resource[T], opts Options) *Controller[T] {
	if opts.Name == "" {
		opts.Name = "records"
	}
	if opts.Noun == "" {
		opts.Noun = "Record"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller[T]{
		resource:    resource,
		opts:        opts,
		logger:      logger.With(zap.String("screen", opts.Name)),
		state:       StateIdle,
		tab:         models.TabAll,
		currentPage: 1,
		pageSize:    opts.PageSize,
		totalPages:  1,
		records:     []T{},
	}
}

// View returns the current snapshot without triggering a fetch.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Open mounts the screen: the first call leaves Idle and fetches, later calls return the snapshot.
func (c *Controller[T]) Open(ctx context.Context) (View[T], error) {
	c.mu.Lock()
	idle := c.state == StateIdle
	if !idle {
		defer c.mu.Unlock()
		return c.viewLocked(), nil
	}
	c.mu.Unlock()
	return c.load(ctx)
}

// Reload refetches with the current tab, keyword, page and size.
func (c *Controller[T]) Reload(ctx context.Context) (View[T], error) {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// Refresh reloads keeping the page; it lets collaborators such as the role editor
// trigger a refetch without depending on the record type.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	_, err := c.Reload(ctx)
	return err
}

// SetTab switches the filter preset and returns to page 1.
func (c *Controller[T]) SetTab(ctx context.Context, tab models.Tab) (View[T], error) {
	c.mu.Lock()
	c.tab = tab
	c.currentPage = 1
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// SetKeyword changes the search keyword and returns to page 1.
func (c *Controller[T]) SetKeyword(ctx context.Context, keyword string) (View[T], error) {
	c.mu.Lock()
	c.keyword = keyword
	c.currentPage = 1
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) (View[T], error) {
	c.mu.Lock()
	if !c.pageSizeAllowed(size) {
		defer c.mu.Unlock()
		return c.viewLocked(), appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page size %d is not allowed", size))
	}
	c.pageSize = size
	c.currentPage = 1
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// GoToPage navigates to a 1-based page within [1, totalPages].
func (c *Controller[T]) GoToPage(ctx context.Context, page int) (View[T], error) {
	c.mu.Lock()
	if page < 1 || page > c.totalPages {
		defer c.mu.Unlock()
		return c.viewLocked(), appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page %d is out of range", page))
	}
	c.currentPage = page
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// Next moves one page forward; it is a no-op on the last page.
func (c *Controller[T]) Next(ctx context.Context) (View[T], error) {
	return c.step(ctx, 1)
}

// Previous moves one page back; it is a no-op on the first page.
func (c *Controller[T]) Previous(ctx context.Context) (View[T], error) {
	return c.step(ctx, -1)
}

func (c *Controller[T]) step(ctx context.Context, delta int) (View[T], error) {
	c.mu.Lock()
	target := c.currentPage + delta
	if target < 1 || target > c.totalPages {
		defer c.mu.Unlock()
		return c.viewLocked(), nil
	}
	c.currentPage = target
	c.notice = nil
	c.mu.Unlock()
	return c.load(ctx)
}

// ToggleStatus flips the active flag of a record on the current page.
func (c *Controller[T]) ToggleStatus(ctx context.Context, id int64) (View[T], error) {
	c.mu.Lock()
	if !ActionAllowed(c.tab, models.ActionToggleStatus) {
		defer c.mu.Unlock()
		return c.viewLocked(), c.actionUnavailableLocked(models.ActionToggleStatus)
	}
	record, ok := c.findLocked(id)
	if !ok {
		defer c.mu.Unlock()
		return c.viewLocked(), appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d is not on the current page", c.opts.Noun, id))
	}
	c.mu.Unlock()

	next := !record.Active()
	success := fmt.Sprintf("%s deactivated", c.opts.Noun)
	if next {
		success = fmt.Sprintf("%s activated", c.opts.Noun)
	}
	return c.mutate(ctx, models.ActionToggleStatus, "Status update failed", success, func(ctx context.Context) error {
		return c.resource.SetStatus(ctx, id, next)
	})
}

// SoftDelete hides a record and refetches.
func (c *Controller[T]) SoftDelete(ctx context.Context, id int64) (View[T], error) {
	return c.mutate(ctx, models.ActionSoftDelete, "Soft delete failed", c.opts.Noun+" soft deleted", func(ctx context.Context) error {
		return c.resource.SoftDelete(ctx, id)
	})
}

// Restore reverses a soft delete and refetches.
func (c *Controller[T]) Restore(ctx context.Context, id int64) (View[T], error) {
	return c.mutate(ctx, models.ActionRestore, "Restore failed", c.opts.Noun+" restored", func(ctx context.Context) error {
		return c.resource.Restore(ctx, id)
	})
}

// PermanentDelete removes a soft-deleted record and refetches.
func (c *Controller[T]) PermanentDelete(ctx context.Context, id int64) (View[T], error) {
	return c.mutate(ctx, models.ActionPermanentDelete, "Permanent delete failed", c.opts.Noun+" permanently deleted", func(ctx context.Context) error {
		return c.resource.PermanentDelete(ctx, id)
	})
}

// Record returns a row of the current page by id.
func (c *Controller[T]) Record(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

// Notify records a notification raised by a collaborator such as the role editor.
func (c *Controller[T]) Notify(level, message string) {
	c.mu.Lock()
	c.notice = &Notice{Level: level, Message: message}
	c.mu.Unlock()
}

// mutate runs a single backend call and, on success, refetches with the current
// filter, page and size. A failed call leaves the list untouched.
func (c *Controller[T]) mutate(ctx context.Context, action models.Action, failure, success string, call func(context.Context) error) (View[T], error) {
	c.mu.Lock()
	if !ActionAllowed(c.tab, action) {
		defer c.mu.Unlock()
		return c.viewLocked(), c.actionUnavailableLocked(action)
	}
	c.notice = nil
	c.mu.Unlock()

	if err := call(ctx); err != nil {
		c.logger.Warn("mutation failed", zap.String("action", string(action)), zap.Error(err))
		c.mu.Lock()
		defer c.mu.Unlock()
		c.notice = &Notice{Level: "error", Message: failure + ": " + appErrors.MessageOr(err, failure)}
		return c.viewLocked(), err
	}

	_, fetchErr := c.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = &Notice{Level: "success", Message: success}
	if fetchErr != nil {
		return c.viewLocked(), &RefetchError{Err: fetchErr}
	}
	return c.viewLocked(), nil
}

// RefetchError is returned when a mutation was applied by the backend but the
// refetch that followed it failed.
type RefetchError struct {
	Err error
}

func (e *RefetchError) Error() string {
	return "refetch after mutation: " + e.Err.Error()
}

func (e *RefetchError) Unwrap() error {
	return e.Err
}

// Applied reports whether the backend accepted a mutation, which also holds
// when only the refetch after it failed.
func Applied(err error) bool {
	if err == nil {
		return true
	}
	var refetch *RefetchError
	return errors.As(err, &refetch)
}

// load issues one fetch for the current state and applies the response unless a
// newer fetch was started meanwhile.
func (c *Controller[T]) load(ctx context.Context) (View[T], error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	var (
		fetchCtx context.Context
		cancel   context.CancelFunc
	)
	if c.opts.FetchTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, c.opts.FetchTimeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	query := c.queryLocked()
	c.state = StateLoading
	c.mu.Unlock()

	start := time.Now()
	page, err := c.resource.List(fetchCtx, query)
	duration := time.Since(start)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.observe(OutcomeStale, duration)
		c.logger.Debug("discarding stale response", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
		return c.viewLocked(), nil
	}
	c.cancel = nil

	if err != nil {
		c.state = StateErrored
		c.errMessage = appErrors.MessageOr(err, "Failed to fetch "+c.opts.Name)
		c.notice = &Notice{Level: "error", Message: c.errMessage}
		c.observe(OutcomeErrored, duration)
		c.logger.Warn("fetch failed", zap.Int("page", query.PageNumber), zap.Error(err))
		return c.viewLocked(), err
	}

	c.applyLocked(page)
	c.observe(OutcomeLoaded, duration)
	return c.viewLocked(), nil
}

func (c *Controller[T]) applyLocked(page *models.Page[T]) {
	c.state = StateLoaded
	c.errMessage = ""
	if page == nil {
		page = &models.Page[T]{}
	}

	c.records = page.Content
	if c.records == nil {
		c.records = []T{}
	}
	c.totalRecords = page.TotalElements

	c.totalPages = page.TotalPages
	if c.totalPages <= 0 && c.pageSize > 0 {
		c.totalPages = (page.TotalElements + c.pageSize - 1) / c.pageSize
	}
	if c.totalPages < 1 {
		c.totalPages = 1
	}

	c.currentPage = page.Pageable.PageNumber + 1
	if c.currentPage < 1 {
		c.currentPage = 1
	}
	if c.currentPage > c.totalPages {
		c.currentPage = c.totalPages
	}
}

func (c *Controller[T]) queryLocked() models.ListQuery {
	return models.ListQuery{
		Filter:     FilterForTab(c.tab, c.keyword),
		PageNumber: c.currentPage - 1,
		PageSize:   c.pageSize,
		SortBy:     c.opts.SortBy,
		SortDir:    c.opts.SortDir,
	}
}

func (c *Controller[T]) viewLocked() View[T] {
	records := make([]T, len(c.records))
	copy(records, c.records)

	var notice *Notice
	if c.notice != nil {
		n := *c.notice
		notice = &n
	}

	return View[T]{
		State:   c.state,
		Tab:     c.tab,
		Filter:  FilterForTab(c.tab, c.keyword),
		Records: records,
		Pagination: models.Pagination{
			CurrentPage:  c.currentPage,
			PageSize:     c.pageSize,
			TotalPages:   c.totalPages,
			TotalRecords: c.totalRecords,
			HasPrevious:  c.currentPage > 1,
			HasNext:      c.currentPage < c.totalPages,
		},
		Actions:   ActionsForTab(c.tab),
		PageSizes: c.opts.PageSizes,
		Error:     c.errMessage,
		Notice:    notice,
	}
}

func (c *Controller[T]) findLocked(id int64) (T, bool) {
	for _, r := range c.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) actionUnavailableLocked(action models.Action) error {
	return appErrors.Clone(appErrors.ErrActionNotAvailable, fmt.Sprintf("%s is not available on the %s tab", action, c.tab))
}

func (c *Controller[T]) pageSizeAllowed(size int) bool {
	if size <= 0 {
		return false
	}
	if len(c.opts.PageSizes) == 0 {
		return true
	}
	for _, allowed := range c.opts.PageSizes {
		if allowed == size {
			return true
		}
	}
	return false
}

func (c *Controller[T]) observe(outcome string, duration time.Duration) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveFetch(c.opts.Name, outcome, duration)
	}
}
