package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// ActiveRoles returns the role catalog offered by the role editor.
func (c *Client) ActiveRoles(ctx context.Context, token string) ([]models.Role, error) {
	var out envelope[[]models.Role]
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/roles/active",
		token:  token,
	}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []models.Role{}, nil
	}
	return out.Data, nil
}

// ChangeRoles applies a role change. REPLACE overwrites the whole role set with PUT,
// ASSIGN and REMOVE are incremental POSTs.
func (c *Client) ChangeRoles(ctx context.Context, token string, req models.RoleChangeRequest) error {
	if req.RoleIDs == nil {
		req.RoleIDs = []int64{}
	}

	var method, path string
	switch req.Action {
	case models.RoleChangeReplace:
		method, path = http.MethodPut, "/roles/replace"
	case models.RoleChangeAssign:
		method, path = http.MethodPost, "/roles/assign"
	case models.RoleChangeRemove:
		method, path = http.MethodPost, "/roles/remove"
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown role change action")
	}

	return c.do(ctx, request{method: method, path: path, token: token, body: req}, nil)
}
