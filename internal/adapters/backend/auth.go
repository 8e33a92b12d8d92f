package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/httpclient"
)

func (c *Client) Login(ctx context.Context, email, password string) (session.AuthResult, error) {
	if err := c.ready(); err != nil {
		return session.AuthResult{}, err
	}
	body := map[string]string{"email": email, "password": password}

	var out session.AuthResult
	if err := c.http.DoJSON(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return session.AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in session.RegisterInput) (session.AuthResult, error) {
	if err := c.ready(); err != nil {
		return session.AuthResult{}, err
	}

	var out session.AuthResult
	if err := c.http.DoJSON(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return session.AuthResult{}, err
	}
	return out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if err := c.ready(); err != nil {
		return err
	}
	body := map[string]string{"email": email}
	return c.http.DoJSON(ctx, http.MethodPost, "/auth/forgot-password", nil, body, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	if err := c.ready(); err != nil {
		return err
	}
	body := map[string]string{"token": token, "password": password}
	return c.http.DoJSON(ctx, http.MethodPost, "/auth/reset-password", nil, body, nil)
}

// Me trae el usuario dueño del token. Acepta {user: {...}} o el user plano.
func (c *Client) Me(ctx context.Context, token string) (session.User, error) {
	if err := c.ready(); err != nil {
		return session.User{}, err
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, http.MethodGet, "/auth/me", httpclient.Bearer(token), nil, &raw); err != nil {
		return session.User{}, err
	}

	var wrapped struct {
		User *session.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return checkUser(*wrapped.User)
	}

	var u session.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return session.User{}, fmt.Errorf("backend: decode user: %w", err)
	}
	return checkUser(u)
}

func checkUser(u session.User) (session.User, error) {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return session.User{}, fmt.Errorf("%w: user id", ErrIncompleteReply)
	}
	return u, nil
}
