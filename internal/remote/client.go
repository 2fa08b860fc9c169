package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/studysync/pkg/models"
)

// RecordStore is the subset of the backend record service the sync engine
// needs: list the user's records for a course, create one, update one by id.
// Authentication and access control live behind this interface.
type RecordStore interface {
	List(ctx context.Context, course string) ([]models.SyncRecord, error)
	Create(ctx context.Context, record models.SyncRecord) (models.SyncRecord, error)
	Update(ctx context.Context, id string, record models.SyncRecord) error
}

// Client talks to the remote record service over HTTP with a bearer token
// issued by the external identity provider.
type Client struct {
	baseURL string
	token   string
	userID  string
	http    *http.Client
}

// NewClient creates a client for the given service URL and bearer token.
// The token is not verified here (the server holds the key); its claims are
// parsed to learn the user id and to reject tokens that are already expired.
func NewClient(baseURL, token string) (*Client, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %v", err)
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("access token has no subject claim")
	}
	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
		if expiry.Before(time.Now()) {
			return nil, fmt.Errorf("access token expired at %s", expiry.Format(time.RFC3339))
		}
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		userID:  subject,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// UserID returns the subject claim of the access token.
func (c *Client) UserID() string {
	return c.userID
}

// List fetches all of the user's records for a course.
func (c *Client) List(ctx context.Context, course string) ([]models.SyncRecord, error) {
	endpoint := fmt.Sprintf("%s/records?user_id=%s&course=%s",
		c.baseURL, url.QueryEscape(c.userID), url.QueryEscape(course))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %v", err)
	}
	var records []models.SyncRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create stores a new record and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, record models.SyncRecord) (models.SyncRecord, error) {
	record.UserID = c.userID
	body, err := json.Marshal(record)
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("failed to encode record: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/records", bytes.NewReader(body))
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("failed to build create request: %v", err)
	}
	var created models.SyncRecord
	if err := c.do(req, &created); err != nil {
		return models.SyncRecord{}, err
	}
	return created, nil
}

// Update replaces an existing record's payload and timestamp.
func (c *Client) Update(ctx context.Context, id string, record models.SyncRecord) error {
	record.UserID = c.userID
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %v", err)
	}
	endpoint := fmt.Sprintf("%s/records/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build update request: %v", err)
	}
	return c.do(req, nil)
}

// do sends the request with auth headers and decodes a JSON response into out
// when out is non-nil.
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("record service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("record service returned %s for %s %s", resp.Status, req.Method, req.URL.Path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode record service response: %v", err)
	}
	return nil
}
