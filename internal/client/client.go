package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kinderhub/backend/internal/dto"
)

// Result is what every client call returns: a value or the reason there is none.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

func success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Envelope is the body shape every endpoint answers with.
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Message string         `json:"message,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// NetworkError covers transport failures, non-2xx answers and envelopes with
// success=false. Status is 0 when the request never got an answer.
type NetworkError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Details []dto.ErrorDetail
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client talks to the REST API rooted at baseURL, e.g. http://localhost:8080/api.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func do[T any](ctx context.Context, c *Client, method, path string, body interface{}) Result[T] {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return failure[T](fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return failure[T](fmt.Errorf("failed to build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send[T](c, req, path)
}

func send[T any](c *Client, req *http.Request, path string) Result[T] {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return failure[T](&NetworkError{Method: req.Method, Path: path, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[T](&NetworkError{Method: req.Method, Path: path, Status: resp.StatusCode, Message: "failed to read response", Err: err})
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return failure[T](&NetworkError{
			Method:  req.Method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: "unexpected response body",
			Err:     err,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		netErr := &NetworkError{
			Method:  req.Method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: env.Message,
		}
		if env.Error != nil {
			netErr.Code = env.Error.Code
			netErr.Message = env.Error.Message
			netErr.Details = env.Error.Details
		}
		if netErr.Message == "" {
			netErr.Message = http.StatusText(resp.StatusCode)
		}
		return failure[T](netErr)
	}

	return success(env.Data)
}
