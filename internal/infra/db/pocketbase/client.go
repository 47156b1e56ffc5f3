// File: internal/infra/db/pocketbase/client.go
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/infra/metrics"
)

// PerPage is the largest page the store returns; lists never paginate beyond it.
const PerPage = 200

// APIError is a non-2xx answer from the record store.
type APIError struct {
	Status     int
	Collection string
	Op         string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pocketbase %s %s: status %d: %s", e.Op, e.Collection, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return domain.ErrUpstream }

// Client talks to the PocketBase REST API with a cached admin token.
type Client struct {
	baseURL  string
	identity string
	password string
	http     *http.Client
	log      *zerolog.Logger

	mu    sync.Mutex
	token string
}

func NewClient(cfg config.RecordStoreConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  cfg.URL,
		identity: cfg.AdminEmail,
		password: cfg.AdminPassword,
		http:     &http.Client{Timeout: timeout},
		log:      logger,
	}
}

type listResponse struct {
	Items json.RawMessage `json:"items"`
}

// List decodes the items matching filter into out, which must point to a slice.
func (c *Client) List(ctx context.Context, collection, filter string, out any) error {
	q := url.Values{}
	q.Set("perPage", strconv.Itoa(PerPage))
	if filter != "" {
		q.Set("filter", filter)
	}
	path := recordsPath(collection, "") + "?" + q.Encode()

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, collection, path, nil, &resp, false); err != nil {
		return err
	}
	if len(resp.Items) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Items, out); err != nil {
		return fmt.Errorf("decode %s items: %w", collection, err)
	}
	return nil
}

// Create posts body as a new record and decodes the stored record into out.
func (c *Client) Create(ctx context.Context, collection string, body, out any) error {
	return c.do(ctx, http.MethodPost, collection, recordsPath(collection, ""), body, out, true)
}

// Update patches the record id with the fields in body.
func (c *Client) Update(ctx context.Context, collection, id string, body, out any) error {
	if id == "" {
		return fmt.Errorf("update %s without id: %w", collection, domain.ErrInvalidArgument)
	}
	return c.do(ctx, http.MethodPatch, collection, recordsPath(collection, id), body, out, true)
}

func recordsPath(collection, id string) string {
	p := "/api/collections/" + url.PathEscape(collection) + "/records"
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, collection, path string, body, out any, authed bool) error {
	status, err := c.send(ctx, method, collection, path, body, out, authed)
	if status == http.StatusUnauthorized && c.dropToken() {
		c.log.Debug().Str("collection", collection).Msg("admin token rejected, logging in again")
		_, err = c.send(ctx, method, collection, path, body, out, true)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, collection, path string, body, out any, authed bool) (int, error) {
	var token string
	if authed {
		t, err := c.login(ctx)
		if err != nil {
			return 0, err
		}
		token = t
	} else {
		token = c.cachedToken()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal %s body: %w", collection, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "AdminAuth "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRecordStore(collection, method, 0, time.Since(start).Milliseconds())
		return 0, fmt.Errorf("pocketbase %s %s: %w: %w", method, collection, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRecordStore(collection, method, resp.StatusCode, time.Since(start).Milliseconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Collection: collection, Op: method, Body: truncate(string(respBody), 512)}
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to unmarshal %s response: %w", collection, err)
		}
	}
	return resp.StatusCode, nil
}

type authRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// login returns the cached admin token or obtains a new one.
func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	b, err := json.Marshal(authRequest{Identity: c.identity, Password: c.password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admins/auth-with-password", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRecordStore("admins", "login", 0, time.Since(start).Milliseconds())
		return "", fmt.Errorf("pocketbase admin login: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRecordStore("admins", "login", resp.StatusCode, time.Since(start).Milliseconds())

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Collection: "admins", Op: "login", Body: truncate(string(body), 512)}
	}
	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil || ar.Token == "" {
		return "", fmt.Errorf("pocketbase admin login: malformed response: %w", domain.ErrUpstream)
	}
	c.token = ar.Token
	return c.token, nil
}

func (c *Client) cachedToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// dropToken forgets the cached token and reports whether there was one.
func (c *Client) dropToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.token != ""
	c.token = ""
	return had
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
