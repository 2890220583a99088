package servicedesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sharedConfig "sdbridge/internal/shared/config"
)

// Client talks to the ServiceDesk REST API with bearer-token authentication.
// Calls are synchronous with a fixed timeout; 401/403 responses surface as
// ErrUnauthorized, everything else non-200 as a generic error.
type Client struct {
	baseURL    string
	apiPrefix  string
	httpClient *http.Client
}

// NewClient creates a new ServiceDesk API client.
func NewClient(cfg sharedConfig.ServiceDeskConfig) *Client {
	prefix := strings.TrimSpace(cfg.APIPrefix)
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiPrefix: strings.TrimRight(prefix, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Authenticate exchanges credentials for a session token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/auth/authenticate", "", nil, body)
	if err != nil {
		return nil, err
	}

	var data struct {
		UserID   *int   `json:"userId"`
		ID       *int   `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if data.Token == "" {
		return nil, fmt.Errorf("auth response missing token")
	}

	result := &AuthResult{
		Username: data.Username,
		Role:     data.Role,
		Token:    data.Token,
	}
	if result.Username == "" {
		result.Username = username
	}
	switch {
	case data.UserID != nil:
		result.UserID = *data.UserID
	case data.ID != nil:
		result.UserID = *data.ID
	default:
		return nil, fmt.Errorf("auth response missing user id")
	}
	return result, nil
}

// ListTickets fetches one page of the ticket listing.
func (c *Client) ListTickets(ctx context.Context, token string, page, size int, ticketType, sortField string, asc bool) (*TicketPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("type", ticketType)
	params.Set("sort", sortField)
	params.Set("asc", strconv.FormatBool(asc)) // backend expects "true"/"false"

	resp, err := c.do(ctx, http.MethodGet, "/ticket", token, params, nil)
	if err != nil {
		return nil, err
	}

	var result TicketPage
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("decode ticket page: %w", err)
	}
	return &result, nil
}

// GetTicket fetches a single ticket by id.
func (c *Client) GetTicket(ctx context.Context, token string, ticketID int) (*Ticket, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ticket/%d", ticketID), token, nil, nil)
	if err != nil {
		return nil, err
	}

	var t Ticket
	if err := json.Unmarshal(resp, &t); err != nil {
		return nil, fmt.Errorf("decode ticket %d: %w", ticketID, err)
	}
	return &t, nil
}

// UpdateTicketStatus updates a ticket's status. The API requires resending
// the full ticket object, not a partial patch.
func (c *Client) UpdateTicketStatus(ctx context.Context, token string, ticketID int, payload json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/ticket/status/%d", ticketID), token, nil, payload)
	return err
}

// GetUser fetches a user profile by id.
func (c *Client) GetUser(ctx context.Context, token string, userID int) (*UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), token, nil, nil)
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := json.Unmarshal(resp, &profile); err != nil {
		return nil, fmt.Errorf("decode user %d: %w", userID, err)
	}
	return &profile, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + c.apiPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path, token string, params url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("servicedesk request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &UnauthorizedError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("servicedesk %s %s: %d %s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
