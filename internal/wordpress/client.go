// Package wordpress talks to the WordPress JWT identity endpoint that owns
// credential validation. The service never sees or stores WordPress password
// hashes; it only learns whether a login succeeded and who the user is.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRejected means WordPress refused the credentials. Callers must not
// distinguish a wrong password from an unknown account.
var ErrRejected = errors.New("credentials rejected by identity provider")

// Identity is the authenticated WordPress user
type Identity struct {
	ID          string
	Email       string
	Name        string
	DisplayName string
}

// Client calls the WordPress JWT auth plugin token endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a WordPress identity client. baseURL is the site root,
// e.g. https://example.com — the plugin route is appended per request.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string          `json:"token"`
	Error json.RawMessage `json:"error"`
	Code  string          `json:"code"`
	User  *struct {
		ID          json.RawMessage `json:"id"`
		Email       string          `json:"email"`
		Name        string          `json:"name"`
		DisplayName string          `json:"display_name"`
		Nicename    string          `json:"nicename"`
	} `json:"user"`
}

// Authenticate validates usernameOrEmail/password against WordPress. The
// plugin accepts either a username or an email in the username field. A
// refusal returns ErrRejected; any transport or decoding failure returns a
// non-nil error that is not ErrRejected.
func (c *Client) Authenticate(ctx context.Context, usernameOrEmail, password string) (*Identity, error) {
	body, err := json.Marshal(tokenRequest{Username: usernameOrEmail, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	url := c.baseURL + "/wp-json/jwt-auth/v1/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("wordpress rejected credentials",
			zap.Int("status", resp.StatusCode))
		return nil, ErrRejected
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	// Some plugin versions report failures with a 200 and an error body
	if len(decoded.Error) > 0 || decoded.Code != "" || decoded.User == nil {
		return nil, ErrRejected
	}

	id := rawToString(decoded.User.ID)
	if id == "" {
		return nil, ErrRejected
	}

	name := firstNonEmpty(decoded.User.Name, decoded.User.DisplayName, decoded.User.Nicename)
	displayName := firstNonEmpty(decoded.User.DisplayName, decoded.User.Name, decoded.User.Nicename)

	email := decoded.User.Email
	if email == "" {
		email = usernameOrEmail
	}

	return &Identity{
		ID:          id,
		Email:       email,
		Name:        name,
		DisplayName: displayName,
	}, nil
}

// rawToString normalizes a user id that WordPress may send as either a JSON
// number or a string
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
