// Package auth owns sign-in, sign-up, sign-out and profile changes, and is
// the only writer of the session store.
package auth

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/oauth"
	"github.com/kengakuru/kibanda/internal/session"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// Backend is the part of the backend client the controller uses.
// *client.Client satisfies it.
type Backend interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*domain.AuthUser, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*domain.AuthSession, error)
	SetSession(ctx context.Context, tokens domain.TokenPair) (*domain.AuthSession, error)
	ExchangeCodeForSession(ctx context.Context, code, verifier string) (*domain.AuthSession, error)
	AuthorizeURL(provider, redirectTo, codeChallenge string, extra url.Values) string
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, password string) error
	OnAuthStateChange(fn client.AuthListener) func()

	GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error)
	InsertProfile(ctx context.Context, p domain.NewProfile) (*domain.User, error)
	CreateUserProfile(ctx context.Context, p domain.NewProfile) error
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error)

	Upload(ctx context.Context, bucket, path string, data io.Reader, opts client.UploadOptions) error
	PublicURL(bucket, path string) string
}

var _ Backend = (*client.Client)(nil)

// Controller performs the auth operations. Mutating operations other than
// SignOut run one at a time; SignOut never waits for them and wins over any
// that finish after it.
type Controller struct {
	backend Backend
	store   *session.Store
	w       *session.Writer

	browser       oauth.Browser
	oauthRedirect string
	resetRedirect string
	log           zerolog.Logger
	now           func() time.Time

	mu sync.Mutex // serialises mutating operations

	// lifecycle of the auth-state subscription
	lifeMu      sync.Mutex
	unsubscribe func()
	bgCtx       context.Context
	bgCancel    context.CancelFunc
	bg          sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithBrowser sets the collaborator used for provider sign-in.
func WithBrowser(b oauth.Browser) Option {
	return func(c *Controller) { c.browser = b }
}

// WithOAuthRedirect sets the redirect URL registered with the provider.
func WithOAuthRedirect(u string) Option {
	return func(c *Controller) { c.oauthRedirect = u }
}

// WithResetRedirect sets the link target of password recovery emails.
func WithResetRedirect(u string) Option {
	return func(c *Controller) { c.resetRedirect = u }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides the time source used for avatar file names.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a controller writing through w.
func New(backend Backend, w *session.Writer, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		store:   w.Store(),
		w:       w,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "auth").Logger()
	return c
}

// Store returns the read side of the session.
func (c *Controller) Store() *session.Store {
	return c.store
}

// Start subscribes to session changes, restores the persisted session and
// resolves the store to Authenticated or Anonymous.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.unsubscribe == nil {
		c.bgCtx, c.bgCancel = context.WithCancel(context.Background())
		c.unsubscribe = c.backend.OnAuthStateChange(c.handleAuthEvent)
	}
	c.lifeMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	ticket := c.w.Begin()
	s, err := c.backend.Session(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("op", "restore").Msg("session restore failed")
		c.w.Clear()
		return apperr.Wrap(apperr.Transport, client.Message(err), err)
	}
	if s == nil || s.User == nil {
		c.w.Clear()
		return nil
	}

	u, err := c.backend.GetProfile(ctx, s.User.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("op", "restore").Str("user_id", s.User.ID.String()).Msg("profile fetch failed, signing out")
		c.invalidate(ctx)
		c.w.Clear()
		return profileError(err)
	}
	if !c.w.Authenticate(ticket, *u) {
		return nil
	}
	c.log.Info().Str("op", "restore").Str("user_id", u.ID.String()).Msg("session restored")
	return nil
}

// Close stops reacting to session changes and waits for background work.
func (c *Controller) Close() {
	c.lifeMu.Lock()
	unsubscribe, cancel := c.unsubscribe, c.bgCancel
	c.unsubscribe, c.bgCancel, c.bgCtx = nil, nil, nil
	c.lifeMu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	c.bg.Wait()
}

// handleAuthEvent runs on the goroutine that changed the backend session,
// which may be inside one of our own operations, so it never takes c.mu.
func (c *Controller) handleAuthEvent(event client.AuthEvent, s *domain.AuthSession) {
	switch event {
	case client.EventSignedOut:
		c.w.Clear()
	case client.EventTokenRefreshed:
		if s == nil || s.User == nil {
			return
		}
		c.lifeMu.Lock()
		ctx := c.bgCtx
		if ctx == nil {
			c.lifeMu.Unlock()
			return
		}
		c.bg.Add(1)
		c.lifeMu.Unlock()

		ticket := c.w.Begin()
		id := s.User.ID
		go func() {
			defer c.bg.Done()
			c.refetch(ctx, ticket, id)
		}()
	}
}

// refetch reloads the profile after a token refresh. A missing profile ends
// the session; transient failures keep the current identity.
func (c *Controller) refetch(ctx context.Context, ticket session.Ticket, id uuid.UUID) {
	u, err := c.backend.GetProfile(ctx, id)
	if err != nil {
		if client.IsNotFound(err) {
			c.log.Warn().Str("op", "refresh").Str("user_id", id.String()).Msg("profile vanished, signing out")
			c.w.Clear()
			c.invalidate(ctx)
			return
		}
		c.log.Warn().Err(err).Str("op", "refresh").Str("user_id", id.String()).Msg("profile re-fetch failed")
		return
	}
	c.w.Authenticate(ticket, *u)
}

// invalidate signs the backend out after a failure, logging rather than
// returning its error so the original failure is what the caller sees.
func (c *Controller) invalidate(ctx context.Context) {
	if err := c.backend.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("backend sign-out failed")
	}
}
