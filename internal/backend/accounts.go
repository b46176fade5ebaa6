package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// listParams names the query parameters a list endpoint expects.
type listParams struct {
	page         string
	size         string
	omitEmptyKey bool
}

// AccountResource exposes list and lifecycle endpoints for users or workers.
type AccountResource struct {
	client   *Client
	token    string
	basePath string
	listPath string
	endpoint string
	params   listParams
}

// Users returns the user resource (/users) for the bearer token.
func (c *Client) Users(token string) *AccountResource {
	return &AccountResource{
		client:   c,
		token:    token,
		basePath: "/users",
		listPath: "/users/filter",
		endpoint: "/users/filter",
		params:   listParams{page: "pageNumber", size: "pageSize"},
	}
}

// Workers returns the worker resource scoped to the managing super-user.
// Listing fails with a validation error when superUserID is zero.
func (c *Client) Workers(token string, superUserID int64) *AccountResource {
	listPath := ""
	if superUserID > 0 {
		listPath = fmt.Sprintf("/v1/workers/superuser/%d/advanced-filter", superUserID)
	}
	return &AccountResource{
		client:   c,
		token:    token,
		basePath: "/v1/workers",
		listPath: listPath,
		endpoint: "/v1/workers/superuser/:id/advanced-filter",
		params:   listParams{page: "page", size: "size", omitEmptyKey: true},
	}
}

// List fetches one page of accounts matching the query.
func (r *AccountResource) List(ctx context.Context, q models.ListQuery) (*models.Page[models.Account], error) {
	if r.listPath == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "superUserId is required and cannot be undefined.")
	}

	var out envelope[models.Page[models.Account]]
	err := r.client.do(ctx, request{
		method:   http.MethodGet,
		path:     r.listPath,
		endpoint: r.endpoint,
		query:    r.encode(q),
		token:    r.token,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (r *AccountResource) encode(q models.ListQuery) url.Values {
	values := url.Values{}
	values.Set(r.params.page, strconv.Itoa(q.PageNumber))
	values.Set(r.params.size, strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		values.Set("sortDir", q.SortDir)
	}
	if q.Keyword != "" || !r.params.omitEmptyKey {
		values.Set("keyword", q.Keyword)
	}
	values.Set("isDeleted", strconv.FormatBool(q.IsDeleted))
	if q.IsActive != nil {
		values.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	return values
}

// SetStatus activates or deactivates an account.
func (r *AccountResource) SetStatus(ctx context.Context, id int64, active bool) error {
	return r.client.do(ctx, request{
		method:   http.MethodPatch,
		path:     r.recordPath(id, "/status"),
		endpoint: r.basePath + "/:id/status",
		query:    url.Values{"isActive": []string{strconv.FormatBool(active)}},
		token:    r.token,
	}, nil)
}

// SoftDelete hides an account without erasing it.
func (r *AccountResource) SoftDelete(ctx context.Context, id int64) error {
	return r.client.do(ctx, request{
		method:   http.MethodDelete,
		path:     r.recordPath(id, ""),
		endpoint: r.basePath + "/:id",
		token:    r.token,
	}, nil)
}

// Restore reverses a soft delete.
func (r *AccountResource) Restore(ctx context.Context, id int64) error {
	return r.client.do(ctx, request{
		method:   http.MethodPatch,
		path:     r.recordPath(id, "/restore"),
		endpoint: r.basePath + "/:id/restore",
		token:    r.token,
	}, nil)
}

// PermanentDelete irreversibly removes a soft-deleted account.
func (r *AccountResource) PermanentDelete(ctx context.Context, id int64) error {
	return r.client.do(ctx, request{
		method:   http.MethodDelete,
		path:     r.recordPath(id, "/permanent"),
		endpoint: r.basePath + "/:id/permanent",
		token:    r.token,
	}, nil)
}

func (r *AccountResource) recordPath(id int64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", r.basePath, id, suffix)
}
