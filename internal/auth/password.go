package auth

import (
	"context"
	"strings"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/session"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// SignIn verifies email and password, loads the profile and makes it the
// session identity. The profile is returned so callers can route by role.
// On failure the store is left as it was.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if err := check(signInInput{Email: email, Password: password}, signInRules); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.w.Begin()

	s, err := c.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.log.Info().Str("op", "signIn").Msg("sign-in rejected")
		return nil, signInError(err)
	}

	u, err := c.backend.GetProfile(ctx, s.User.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("op", "signIn").Str("user_id", s.User.ID.String()).Msg("profile fetch failed, signing out")
		c.invalidate(ctx)
		return nil, profileError(err)
	}
	return c.commit(ctx, ticket, u, "signIn")
}

// SignUp creates a credential and its profile row, then makes the profile
// the session identity. A credential whose profile cannot be created is
// signed out again.
func (c *Controller) SignUp(ctx context.Context, email, password, name string, role domain.Role) error {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	in := signUpInput{Password: password, Name: name, Email: email, Role: string(role)}
	if err := check(in, signUpRules); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.w.Begin()

	au, err := c.backend.SignUp(ctx, email, password)
	if err != nil {
		c.log.Info().Err(err).Str("op", "signUp").Msg("credential creation rejected")
		return signUpError(err)
	}
	log := c.log.With().Str("op", "signUp").Str("user_id", au.ID.String()).Logger()

	p := domain.NewProfile{ID: au.ID, Email: email, Name: name, Role: role}
	var u *domain.User
	if rpcErr := c.backend.CreateUserProfile(ctx, p); rpcErr == nil {
		u, err = c.backend.GetProfile(ctx, au.ID)
		if err != nil {
			log.Warn().Err(err).Msg("profile created but fetch failed, signing out")
			c.invalidate(ctx)
			return apperr.Wrap(apperr.Profile, MsgProfileFetch, err)
		}
	} else {
		log.Warn().Err(rpcErr).Msg("create_user_profile failed, inserting directly")
		u, err = c.insertProfile(ctx, p)
		if err != nil {
			log.Warn().Err(err).Msg("profile insert failed, signing out")
			c.invalidate(ctx)
			return apperr.Wrap(apperr.Profile, MsgProfileCreate, err)
		}
	}

	_, err = c.commit(ctx, ticket, u, "signUp")
	return err
}

// insertProfile inserts p, reading the row back if it already exists.
func (c *Controller) insertProfile(ctx context.Context, p domain.NewProfile) (*domain.User, error) {
	u, err := c.backend.InsertProfile(ctx, p)
	if err == nil {
		return u, nil
	}
	if client.IsUniqueViolation(err) {
		return c.backend.GetProfile(ctx, p.ID)
	}
	return nil, err
}

// commit makes u the identity unless a sign-out happened since ticket was
// issued, in which case the backend session just created is dropped too.
func (c *Controller) commit(ctx context.Context, ticket session.Ticket, u *domain.User, op string) (*domain.User, error) {
	if !c.w.Authenticate(ticket, *u) {
		c.log.Info().Str("op", op).Str("user_id", u.ID.String()).Msg("signed out meanwhile, discarding")
		c.invalidate(ctx)
		return nil, apperr.New(apperr.State, MsgSignedOutMeanwhile)
	}
	c.log.Info().Str("op", op).Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("authenticated")
	cp := *u
	return &cp, nil
}

// SignOut clears the identity at once, then revokes the backend session.
// The store is Anonymous when SignOut returns, even if revocation failed.
func (c *Controller) SignOut(ctx context.Context) error {
	c.w.Clear()
	if err := c.backend.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Str("op", "signOut").Msg("backend sign-out failed")
		return transportError(err)
	}
	c.log.Info().Str("op", "signOut").Msg("signed out")
	return nil
}

// RequestPasswordReset emails a recovery link.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := check(resetRequestInput{Email: email}, resetRequestRules); err != nil {
		return err
	}
	if err := c.backend.ResetPasswordForEmail(ctx, email, c.resetRedirect); err != nil {
		c.log.Warn().Err(err).Str("op", "requestPasswordReset").Msg("reset email failed")
		return transportError(err)
	}
	return nil
}

// ResetPassword sets a new password. With tokens from a recovery link the
// recovery session is adopted first and signed out afterwards, so the user
// signs in with the new password. Without tokens the current session's
// password changes.
func (c *Controller) ResetPassword(ctx context.Context, tokens domain.TokenPair, password, confirm string) error {
	if err := check(newPasswordInput{Password: password, Confirm: confirm}, newPasswordRules); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	recovery := tokens.AccessToken != "" && tokens.RefreshToken != ""
	if recovery {
		if _, err := c.backend.SetSession(ctx, tokens); err != nil {
			c.log.Warn().Err(err).Str("op", "resetPassword").Msg("recovery session rejected")
			return transportError(err)
		}
	}
	if err := c.backend.UpdatePassword(ctx, password); err != nil {
		c.log.Warn().Err(err).Str("op", "resetPassword").Msg("password update failed")
		return transportError(err)
	}
	if recovery {
		c.invalidate(ctx)
	}
	c.log.Info().Str("op", "resetPassword").Msg("password updated")
	return nil
}
