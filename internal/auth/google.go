package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/oauth"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// errNoBrowser is returned when provider sign-in is not configured.
var errNoBrowser = errors.New("no browser configured for provider sign-in")

// SignInWithGoogle runs the Google authorization flow in the browser and
// signs in with the result. A first-time Google user gets a customer
// profile. Every failure, including the user backing out, leaves the store
// as it was and yields MsgGoogleFailed.
func (c *Controller) SignInWithGoogle(ctx context.Context) (*domain.User, error) {
	if c.browser == nil || c.oauthRedirect == "" {
		return nil, apperr.Wrap(apperr.Credentials, MsgGoogleFailed, errNoBrowser)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.w.Begin()
	log := c.log.With().Str("op", "signInWithGoogle").Logger()

	s, err := c.googleSession(ctx)
	if err != nil {
		log.Info().Err(err).Msg("google sign-in did not complete")
		return nil, apperr.Wrap(apperr.Credentials, MsgGoogleFailed, err)
	}

	u, err := c.backend.GetProfile(ctx, s.User.ID)
	if client.IsNotFound(err) {
		u, err = c.insertProfile(ctx, googleProfile(*s.User))
		if err == nil {
			log.Info().Str("user_id", u.ID.String()).Msg("created profile for google user")
		}
	}
	if err != nil {
		log.Warn().Err(err).Str("user_id", s.User.ID.String()).Msg("google profile unavailable, signing out")
		c.invalidate(ctx)
		return nil, apperr.Wrap(apperr.Credentials, MsgGoogleFailed, err)
	}
	return c.commit(ctx, ticket, u, "signInWithGoogle")
}

// googleSession opens the browser and turns its redirect into a session.
func (c *Controller) googleSession(ctx context.Context) (*domain.AuthSession, error) {
	pkce, err := oauth.NewPKCE()
	if err != nil {
		return nil, err
	}
	authURL := c.backend.AuthorizeURL("google", c.oauthRedirect, pkce.Challenge, url.Values{
		"access_type": {"offline"},
		"prompt":      {"consent"},
	})

	res, err := c.browser.OpenAuthSession(ctx, authURL, c.oauthRedirect)
	if err != nil {
		return nil, err
	}
	if res.Type != oauth.Success {
		return nil, fmt.Errorf("auth session ended with %s", res.Type)
	}

	grant, err := oauth.ExtractGrant(res.URL)
	if err != nil {
		return nil, err
	}
	var s *domain.AuthSession
	if grant.HasCode() {
		s, err = c.backend.ExchangeCodeForSession(ctx, grant.Code, pkce.Verifier)
	} else {
		s, err = c.backend.SetSession(ctx, grant.Tokens)
	}
	if err != nil {
		return nil, err
	}
	if s == nil || s.User == nil {
		c.invalidate(ctx)
		return nil, errors.New("session carried no user")
	}
	return s, nil
}

// googleProfile derives a first-time profile from provider metadata.
func googleProfile(au domain.AuthUser) domain.NewProfile {
	name := au.MetadataString("full_name")
	if name == "" {
		name = au.MetadataString("name")
	}
	if name == "" {
		if local, _, ok := strings.Cut(au.Email, "@"); ok && local != "" {
			name = local
		}
	}
	if name == "" {
		name = "User"
	}
	avatar := au.MetadataString("avatar_url")
	if avatar == "" {
		avatar = au.MetadataString("picture")
	}
	return domain.NewProfile{
		ID:        au.ID,
		Email:     au.Email,
		Name:      name,
		AvatarURL: avatar,
		Role:      domain.RoleCustomer,
	}
}
