package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// AuthEvent names a change of the client's session.
type AuthEvent string

// Events delivered to OnAuthStateChange listeners.
const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthListener receives session changes. The session is nil for EventSignedOut.
type AuthListener func(event AuthEvent, s *domain.AuthSession)

// expiryMargin is how close to expiry a stored access token may be before
// Session refreshes it instead of handing it out.
const expiryMargin = 10 * time.Second

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword verifies email and password and starts a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	var s domain.AuthSession
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password}, &s, c.anonymous()); err != nil {
		return nil, fmt.Errorf("client.SignInWithPassword: %w", err)
	}
	if s.User == nil {
		return nil, fmt.Errorf("client.SignInWithPassword: response carried no user")
	}
	c.adopt(&s, EventSignedIn)
	return c.copySession(), nil
}

// signUpResponse is either a session (email confirmation disabled) or a bare
// user (confirmation pending).
type signUpResponse struct {
	domain.AuthSession
	domain.AuthUser
}

// SignUp creates a credential. If the backend starts a session right away it
// becomes the client's session; otherwise only the new user is returned.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.AuthUser, error) {
	var resp signUpResponse
	if err := c.post(ctx, "/auth/v1/signup", credentials{Email: email, Password: password}, &resp, c.anonymous()); err != nil {
		return nil, fmt.Errorf("client.SignUp: %w", err)
	}
	if resp.AccessToken != "" && resp.AuthSession.User != nil {
		s := resp.AuthSession
		c.adopt(&s, EventSignedIn)
		u := *s.User
		return &u, nil
	}
	if resp.AuthUser.ID == uuid.Nil {
		return nil, fmt.Errorf("client.SignUp: response carried no user")
	}
	u := resp.AuthUser
	return &u, nil
}

// SignOut drops the local session immediately, then revokes it on the
// backend. The local session is gone even if revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	var token string
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.session = nil
	c.loaded = true
	c.mu.Unlock()

	clearErr := c.store.Clear()
	c.emit(EventSignedOut, nil)

	if token != "" {
		err := c.post(ctx, "/auth/v1/logout?scope=global", nil, nil, withBearer(token))
		// An expired or already revoked token is as signed out as it gets.
		if err != nil && !IsStatus(err, http.StatusUnauthorized) && !IsStatus(err, http.StatusNotFound) && !IsStatus(err, http.StatusForbidden) {
			return fmt.Errorf("client.SignOut: %w", err)
		}
	}
	if clearErr != nil {
		return fmt.Errorf("client.SignOut: %w", clearErr)
	}
	return nil
}

// Session returns the current session, restoring it from the token store on
// first use and refreshing it when the access token is about to expire.
// It returns nil, nil when signed out.
func (c *Client) Session(ctx context.Context) (*domain.AuthSession, error) {
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("client.Session: %w", err)
	}
	s := c.copySession()
	if s == nil {
		return nil, nil
	}
	if s.ExpiresWithin(c.now(), expiryMargin) {
		refreshed, err := c.RefreshSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("client.Session: %w", err)
		}
		return refreshed, nil
	}
	return s, nil
}

func (c *Client) load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	s, err := c.store.Load()
	if err != nil {
		return err
	}
	c.session = s
	c.loaded = true
	return nil
}

// RefreshSession trades the refresh token for a new session. A refresh token
// the backend rejects ends the session.
func (c *Client) RefreshSession(ctx context.Context) (*domain.AuthSession, error) {
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("client.RefreshSession: %w", err)
	}
	c.mu.Lock()
	var refresh string
	if c.session != nil {
		refresh = c.session.RefreshToken
	}
	c.mu.Unlock()
	if refresh == "" {
		return nil, fmt.Errorf("client.RefreshSession: %w", ErrNoSession)
	}

	s, err := c.refresh(ctx, refresh)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			c.drop()
		}
		return nil, fmt.Errorf("client.RefreshSession: %w", err)
	}
	c.adopt(s, EventTokenRefreshed)
	return c.copySession(), nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	var s domain.AuthSession
	if err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{"refresh_token": refreshToken}, &s, c.anonymous()); err != nil {
		return nil, err
	}
	return &s, nil
}

// drop forgets the session after the backend refused it.
func (c *Client) drop() {
	c.mu.Lock()
	had := c.session != nil
	c.session = nil
	c.loaded = true
	c.mu.Unlock()
	c.store.Clear() //nolint:errcheck // the session is unusable either way
	if had {
		c.emit(EventSignedOut, nil)
	}
}

// SetSession adopts a token pair obtained elsewhere, such as from an OAuth
// redirect. Expired access tokens are refreshed; otherwise the user is
// looked up with the access token.
func (c *Client) SetSession(ctx context.Context, tokens domain.TokenPair) (*domain.AuthSession, error) {
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, fmt.Errorf("client.SetSession: access and refresh token are required")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("client.SetSession: parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("client.SetSession: read expiry: %w", err)
	}

	now := c.now()
	if exp == nil || !exp.Time.After(now.Add(expiryMargin)) {
		s, err := c.refresh(ctx, tokens.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("client.SetSession: %w", err)
		}
		c.adopt(s, EventSignedIn)
		return c.copySession(), nil
	}

	var u domain.AuthUser
	if err := c.get(ctx, "/auth/v1/user", &u, withBearer(tokens.AccessToken)); err != nil {
		return nil, fmt.Errorf("client.SetSession: %w", err)
	}
	s := &domain.AuthSession{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    exp.Unix(),
		ExpiresIn:    int(exp.Sub(now).Seconds()),
		User:         &u,
	}
	c.adopt(s, EventSignedIn)
	return c.copySession(), nil
}

// ExchangeCodeForSession completes a PKCE authorization.
func (c *Client) ExchangeCodeForSession(ctx context.Context, code, verifier string) (*domain.AuthSession, error) {
	body := map[string]string{"auth_code": code, "code_verifier": verifier}
	var s domain.AuthSession
	if err := c.post(ctx, "/auth/v1/token?grant_type=pkce", body, &s, c.anonymous()); err != nil {
		return nil, fmt.Errorf("client.ExchangeCodeForSession: %w", err)
	}
	c.adopt(&s, EventSignedIn)
	return c.copySession(), nil
}

// AuthorizeURL builds the provider authorization URL for a PKCE flow.
func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string, extra url.Values) string {
	params := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("provider", provider)
	params.Set("redirect_to", redirectTo)
	if codeChallenge != "" {
		params.Set("code_challenge", codeChallenge)
		params.Set("code_challenge_method", "s256")
	}
	return c.baseURL + "/auth/v1/authorize?" + params.Encode()
}

// ResetPasswordForEmail sends a password recovery email linking to redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?" + url.Values{"redirect_to": {redirectTo}}.Encode()
	}
	if err := c.post(ctx, path, map[string]string{"email": email}, nil, c.anonymous()); err != nil {
		return fmt.Errorf("client.ResetPasswordForEmail: %w", err)
	}
	return nil
}

// UpdatePassword changes the password of the signed-in user.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	if s := c.copySession(); s == nil {
		return fmt.Errorf("client.UpdatePassword: %w", ErrNoSession)
	}
	var u domain.AuthUser
	if err := c.doRequest(ctx, http.MethodPut, "/auth/v1/user", map[string]string{"password": password}, &u); err != nil {
		return fmt.Errorf("client.UpdatePassword: %w", err)
	}
	c.mu.Lock()
	if c.session != nil {
		c.session.User = &u
	}
	c.mu.Unlock()
	c.emit(EventUserUpdated, c.copySession())
	return nil
}

// OnAuthStateChange registers fn for session changes and returns a function
// that unregisters it. Listeners run on the goroutine that caused the change.
func (c *Client) OnAuthStateChange(fn AuthListener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// adopt makes s the current session, persists it and notifies listeners.
func (c *Client) adopt(s *domain.AuthSession, event AuthEvent) {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}
	c.mu.Lock()
	if s.User == nil && c.session != nil {
		s.User = c.session.User
	}
	c.session = s
	c.loaded = true
	c.mu.Unlock()
	c.store.Save(s) //nolint:errcheck // the in-memory session stays usable
	c.emit(event, c.copySession())
}

func (c *Client) copySession() *domain.AuthSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	if cp.User != nil {
		u := *cp.User
		cp.User = &u
	}
	return &cp
}

func (c *Client) emit(event AuthEvent, s *domain.AuthSession) {
	c.mu.Lock()
	fns := make([]AuthListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(event, s)
	}
}
