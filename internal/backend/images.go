package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// Image is a profile image fetched from the backend.
type Image struct {
	ContentType string
	Data        []byte
}

// UploadImage sends a profile image as multipart field userImage.
func (c *Client) UploadImage(ctx context.Context, token, filename string, content io.Reader) (*models.ImageUploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("userImage", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read image")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}

	var out models.ImageUploadResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/users/image",
		token:       token,
		rawBody:     &buf,
		contentType: writer.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UserImage fetches the profile image of a user. A 404 means the user has no
// image and yields (nil, nil).
func (c *Client) UserImage(ctx context.Context, token string, userID int64) (*Image, error) {
	resp, err := c.send(ctx, request{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/users/image/%d", userID),
		endpoint: "/users/image/:id",
		token:    token,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to read image")
	}
	return &Image{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
