// ABOUTME: Typed authentication operations over the gateway
// ABOUTME: Login, register, and me keep the session store in sync with the server

package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/loco-dev/loco-client/internal/api"
)

// Login authenticates with email and password. On success the server sets the
// auth cookies and the session store is updated with the returned user.
func (c *Client) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.EndpointLogin,
		Body:   api.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}

	var envelope api.AuthResponse
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, fmt.Errorf("login response missing user")
	}

	c.session.SetIdentity(*envelope.User)
	return envelope.User, nil
}

// Register creates an account and authenticates it in one step.
func (c *Client) Register(ctx context.Context, email, username, password string) (*api.User, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.EndpointRegister,
		Body:   api.RegisterRequest{Email: email, Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}

	var envelope api.AuthResponse
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, fmt.Errorf("register response missing user")
	}

	c.session.SetIdentity(*envelope.User)
	return envelope.User, nil
}

// Logout invalidates the server-side session. The local session is cleared
// whether or not the server call succeeds: a client that asked to log out is
// logged out.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodPost, Path: api.EndpointLogout})
	c.session.Clear()
	return err
}

// Me fetches the authenticated user and re-asserts it in the session store.
// This is the bootstrap call a fresh client makes to discover whether its
// cookies are still valid.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: api.EndpointMe})
	if err != nil {
		return nil, err
	}

	// /auth/me returns either a bare user or a {message, user} envelope
	// depending on server version.
	var envelope api.AuthResponse
	if err := resp.Decode(&envelope); err == nil && envelope.User != nil {
		c.session.SetIdentity(*envelope.User)
		return envelope.User, nil
	}

	var user api.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	c.session.SetIdentity(user)
	return &user, nil
}

// Refresh explicitly renews the session cookies. Most callers never need
// this: Do refreshes automatically on 401. A 401 from the refresh endpoint
// clears the session.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodPost, Path: api.EndpointRefresh})
	return err
}

// VerifyEmail confirms an address with the emailed one-time code.
func (c *Client) VerifyEmail(ctx context.Context, email, otp string) error {
	_, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.EndpointVerifyEmail,
		Body:   map[string]string{"email": email, "otp": otp},
	})
	return err
}

// ResendVerification requests a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	_, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.EndpointResendVerification,
		Body:   map[string]string{"email": email},
	})
	return err
}
