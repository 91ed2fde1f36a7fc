// Package backend is the storefront's client for the REST API that owns
// products, carts, favorites, transactions, notifications and profiles.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// ErrUnauthenticated is returned before any network I/O when a call needs a
// bearer token and the session has none.
var ErrUnauthenticated = errors.New("authentication required")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	base    string
	timeout time.Duration
	limiter *rate.Limiter
}

// New returns a client for the API rooted at base (for example
// http://localhost:8080/api/v1). rps <= 0 disables outbound throttling.
func New(base string, timeout time.Duration, rps float64) *Client {
	c := &Client{base: strings.TrimRight(base, "/"), timeout: timeout}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

type envelope struct {
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

// Upload is a file part of a multipart request.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

type call struct {
	method      string
	path        string
	query       url.Values
	token       string
	needsToken  bool
	jsonBody    any
	rawBody     []byte
	contentType string
	form        [][2]string
	files       []Upload
}

func (c *Client) do(ctx context.Context, r call, out any) error {
	if r.needsToken && r.token == "" {
		return ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("backend %s %s: %w", r.method, r.path, err)
		}
	}

	u := c.base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var a *fiber.Agent
	switch r.method {
	case fiber.MethodPost:
		a = fiber.Post(u)
	case fiber.MethodPut:
		a = fiber.Put(u)
	case fiber.MethodDelete:
		a = fiber.Delete(u)
	default:
		a = fiber.Get(u)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if r.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+r.token)
	}

	switch {
	case r.jsonBody != nil:
		a.JSON(r.jsonBody)
	case r.rawBody != nil:
		a.ContentType(r.contentType)
		a.Body(r.rawBody)
	case r.form != nil || r.files != nil:
		for _, f := range r.files {
			a.FileData(&fiber.FormFile{Fieldname: f.Field, Name: f.Filename, Content: f.Content})
		}
		args := fiber.AcquireArgs()
		for _, kv := range r.form {
			args.Add(kv[0], kv[1])
		}
		a.MultipartForm(args)
		fiber.ReleaseArgs(args)
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("backend %s %s: %w", r.method, r.path, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return &APIError{Method: r.method, Path: r.path, Status: code, Message: errorMessage(body)}
	}
	if out == nil {
		return nil
	}
	if err := decode(body, out); err != nil {
		return fmt.Errorf("backend %s %s: decode: %w", r.method, r.path, err)
	}
	return nil
}

// decode unwraps the {"payload": ...} envelope when present; a few endpoints
// (login, categories) answer with the bare object.
func decode(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && len(env.Payload) > 0 {
			if bytes.Equal(env.Payload, []byte("null")) {
				return nil
			}
			return json.Unmarshal(env.Payload, out)
		}
	}
	return json.Unmarshal(body, out)
}

func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	var env envelope
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func idPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
