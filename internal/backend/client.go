package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/middleware/requestid"
)

// Observer receives timing for every backend call.
type Observer interface {
	ObserveBackendCall(method, endpoint string, status int, duration time.Duration)
}

// ResponseError is a non-2xx answer from the backend.
type ResponseError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// ServerMessage exposes the message field of the backend error payload.
func (e *ResponseError) ServerMessage() string {
	return e.Message
}

// envelope is the common {data, message} wrapper used by the backend.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Client talks to the remote REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("backend"),
		observer:   observer,
	}
}

type request struct {
	method      string
	path        string
	endpoint    string
	query       url.Values
	token       string
	body        interface{}
	rawBody     io.Reader
	contentType string
}

// do executes the request and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrBackendRejected.Code, http.StatusBadGateway, "invalid backend response")
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.rawBody
	contentType := req.contentType
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backend request")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		httpReq.Header.Set(requestid.HeaderKey, reqID)
	}

	endpoint := req.endpoint
	if endpoint == "" {
		endpoint = req.path
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.method, endpoint, 0, duration)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, appErrors.Wrap(ctxErr, appErrors.ErrBackendUnavailable.Code, http.StatusGatewayTimeout, "backend request cancelled")
		}
		c.logger.Warn("backend call failed", zap.String("method", req.method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend unreachable")
	}

	c.observe(req.method, endpoint, resp.StatusCode, duration)
	c.logger.Debug("backend call",
		zap.String("method", req.method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)
	return resp, nil
}

func (c *Client) observe(method, endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(method, endpoint, status, duration)
	}
}

// decodeError maps a backend error response onto the console error taxonomy.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
	}
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = payload.ErrorMessage
	}

	respErr := &ResponseError{StatusCode: resp.StatusCode, Message: message}

	base := appErrors.ErrBackendRejected
	status := resp.StatusCode
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		base = appErrors.ErrBackendUnavailable
		status = http.StatusBadGateway
	}

	text := message
	if text == "" {
		text = base.Message
	}
	return appErrors.Wrap(respErr, base.Code, status, text)
}

// IsUnauthorized reports whether err carries a backend 401.
func IsUnauthorized(err error) bool {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsNotFound reports whether err carries a backend 404.
func IsNotFound(err error) bool {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}
	return false
}
