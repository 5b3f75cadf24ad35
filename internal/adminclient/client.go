// Package adminclient is the admin side of the goodie workflow: a REST
// client, the pure merge rules for push events and a Board that keeps the
// admin's cached view consistent under both.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/tahcohcat/healplay/internal/models"
)

// APIError is a failed request. Message is the server's error text when it
// sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient talks to the server at baseURL ("http://localhost:8080"). The
// default HTTP client keeps cookies so a Login carries over to later calls.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{Message: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fallback}
	}
	return nil
}

// Login opens an admin session on the server.
func (c *Client) Login(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, nil, "Login failed")
}

func (c *Client) ListOrders(ctx context.Context) ([]models.GoodieOrder, error) {
	var out struct {
		Orders []models.GoodieOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/goodie-orders", nil, &out, "Failed to load orders"); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) ListGoodies(ctx context.Context) ([]models.Goodie, error) {
	var out struct {
		Goodies []models.Goodie `json:"goodies"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/goodies", nil, &out, "Failed to load goodies"); err != nil {
		return nil, err
	}
	return out.Goodies, nil
}

func (c *Client) CreateGoodie(ctx context.Context, req models.CreateGoodieRequest) (*models.Goodie, error) {
	var out struct {
		Goodie models.Goodie `json:"goodie"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/goodies", req, &out, "Failed to create goodie"); err != nil {
		return nil, err
	}
	return &out.Goodie, nil
}

func (c *Client) DeleteGoodie(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/goodies/"+url.PathEscape(id), nil, nil, "Failed to delete goodie")
}

func (c *Client) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.GoodieOrder, error) {
	var out struct {
		Order models.GoodieOrder `json:"order"`
	}
	body := models.UpdateOrderStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/goodie-orders/"+url.PathEscape(id), body, &out, "Failed to update order"); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// eventsURL is the websocket address of the admin event stream.
func (c *Client) eventsURL() string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/admin"
	return u.String()
}
