// Package rest is the low-level HTTP client for the campus backend. It does
// JSON request/response plumbing, bearer auth and error normalization;
// resource-specific calls live in package backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer token for outgoing requests. The web layer
// implements it from the browser's auth cookie.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token. Handy in tests and
// for CLI use.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// APIError is a non-2xx backend reply.
type APIError struct {
	Status  int
	Op      string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Status, e.Message)
}

// UserMessage maps the status to the text shown in the dashboard banner.
func (e *APIError) UserMessage() string {
	switch {
	case e.Status == http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case e.Status == http.StatusForbidden:
		return "You do not have permission to perform this action."
	case e.Status == http.StatusNotFound:
		return "The requested resource was not found."
	case e.Status >= 500:
		return "The server encountered an error. Please try again later."
	default:
		if e.Message != "" {
			return e.Message
		}
		return "The request could not be completed."
	}
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// IsTimeout reports whether err was caused by the request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

type Client struct {
	base   string
	hc     *http.Client
	tokens TokenSource
	log    zerolog.Logger
}

// New builds a client for the backend at base. timeout bounds every request;
// zero means 30 seconds.
func New(base string, tokens TokenSource, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

// WithTokens returns a copy of the client using a different token source.
// Used per-request in the web layer, where the token comes from the inbound
// browser request.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug().Str("op", op).Err(err).Msg("backend request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return httpErr(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// PostMultipart uploads a file with the given form fields. file is read in
// full; callers enforce size limits before calling.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	op := "POST " + path
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	fw, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return httpErr(op, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// GetRaw streams a backend response body, for file view/download proxying.
// The caller must close the returned body.
func (c *Client) GetRaw(ctx context.Context, path string) (io.ReadCloser, string, error) {
	op := "GET " + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, "", httpErr(op, resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

func httpErr(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(b))
	// Many backend errors arrive as {"message": "..."}.
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		if env.Message != "" {
			msg = env.Message
		} else if env.Error != "" {
			msg = env.Error
		}
	}
	return &APIError{Status: resp.StatusCode, Op: op, Message: msg}
}

// PathEscape escapes a path segment for interpolation into a URL.
func PathEscape(s string) string { return url.PathEscape(s) }
