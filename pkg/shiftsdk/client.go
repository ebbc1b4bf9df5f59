package shiftsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const sessionTokenHeader = "X-Session-Token"

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the service at baseURL. Pass nil to use
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// SetToken installs the session token sent with subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token, if any.
func (c *Client) Token() string { return c.token }

// Login authenticates and stores the returned session token on the client.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, &out); err != nil {
		return AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// Logout destroys the current session and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Register creates a regular user in a fresh team.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", req, &out); err != nil {
		return AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// Me returns the user owning the current session.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// MintInvite creates a time-limited invite (admin only).
func (c *Client) MintInvite(ctx context.Context, req MintInviteRequest) (InviteResponse, error) {
	var out InviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites", req, &out); err != nil {
		return InviteResponse{}, err
	}
	return out, nil
}

// MintPermanentInvite creates a permanent, reusable invite (admin only,
// non-admin roles only).
func (c *Client) MintPermanentInvite(ctx context.Context, req MintInviteRequest) (InviteResponse, error) {
	var out InviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites/permanent", req, &out); err != nil {
		return InviteResponse{}, err
	}
	return out, nil
}

// ListInvites returns the invites visible to the calling admin.
func (c *Client) ListInvites(ctx context.Context) (ListInvitesResponse, error) {
	var out ListInvitesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/invites", nil, &out); err != nil {
		return ListInvitesResponse{}, err
	}
	return out, nil
}

// RedeemInvite redeems an invite token, creating a user and a session for
// it. The session token is stored on the client.
func (c *Client) RedeemInvite(ctx context.Context, req RedeemInviteRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites/redeem", req, &out); err != nil {
		return AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("shiftsdk: encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("shiftsdk: building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(sessionTokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("shiftsdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{
			Status:      resp.StatusCode,
			Code:        apiErr.Error,
			Description: apiErr.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("shiftsdk: decoding response: %w", err)
	}
	return nil
}
