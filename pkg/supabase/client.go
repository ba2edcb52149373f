package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Error is a non-2xx response from PostgREST or the auth API
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Filters is a PostgREST query. Keys may repeat, e.g. two "timestamp" range filters.
type Filters = url.Values

// Eq builds an "eq." filter value
func Eq(v string) string { return "eq." + v }

// Gte builds a "gte." filter value
func Gte(v string) string { return "gte." + v }

// Lte builds a "lte." filter value
func Lte(v string) string { return "lte." + v }

// do sends one request with the service key and returns the response body
func (c *Client) do(ctx context.Context, method, path string, query Filters, body interface{}, prefer string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s%s", c.URL, path)

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// Query selects rows from a table
func (c *Client) Query(ctx context.Context, table string, query Filters) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/rest/v1/"+table, query, nil, "")
}

// Insert inserts a record and returns the stored representation
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, data, "return=representation")
}

// Update patches every row matching the query and returns the stored representation
func (c *Client) Update(ctx context.Context, table string, query Filters, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, "/rest/v1/"+table, query, data, "return=representation")
}

// Delete deletes every row matching the query
func (c *Client) Delete(ctx context.Context, table string, query Filters) error {
	_, err := c.do(ctx, http.MethodDelete, "/rest/v1/"+table, query, nil, "")
	return err
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/user", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("token verification failed: %w", &Error{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is returned by the password grant and signup endpoints
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword exchanges email and password for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/v1/token", Filters{"grant_type": {"password"}}, credentials{email, password}, "")
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return decodeSession(body)
}

// SignUp registers a new auth user
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, credentials{email, password}, "")
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return decodeSession(body)
}

func decodeSession(body []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// IsStatus reports whether err is a Supabase error with the given status code
func IsStatus(err error, status int) bool {
	var se *Error
	return errors.As(err, &se) && se.StatusCode == status
}
