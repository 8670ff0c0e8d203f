package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/auth"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/internal/config"
	"github.com/kengakuru/kibanda/internal/logging"
	"github.com/kengakuru/kibanda/internal/oauth"
	"github.com/kengakuru/kibanda/internal/session"
	"github.com/kengakuru/kibanda/internal/tui"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", apperr.Message(err))
		os.Exit(1)
	}
}

// app holds everything a command needs, wired from the config.
type app struct {
	log     zerolog.Logger
	client  *client.Client
	auth    *auth.Controller
	catalog *catalog.Service
	cancel  context.CancelFunc
	logFile *os.File
}

// newApp wires the backend client, auth controller and catalog. Browser
// fallback notices go to out.
func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	logger, f, err := logging.Open(cfg.LogPath(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.SupabaseURL, cfg.AnonKey,
		client.WithTokenStore(client.NewFileTokenStore(cfg.SessionPath())))
	ctx, cancel := context.WithCancel(context.Background())
	c.StartAutoRefresh(ctx)

	_, w := session.New()
	ctrl := auth.New(c, w,
		auth.WithBrowser(oauth.NewLoopback(out)),
		auth.WithOAuthRedirect(cfg.OAuthRedirect),
		auth.WithResetRedirect(cfg.ResetRedirect),
		auth.WithLogger(logger),
	)

	cat, err := catalog.New(c, catalog.WithLogger(logger))
	if err != nil {
		cancel()
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("create catalog: %w", err)
	}

	logger.Info().Str("version", version).Str("backend", cfg.SupabaseURL).Msg("starting")
	return &app{log: logger, client: c, auth: ctrl, catalog: cat, cancel: cancel, logFile: f}, nil
}

func (a *app) Close() {
	a.auth.Close()
	a.cancel()
	a.logFile.Close() //nolint:errcheck
}

func run(args []string) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Println("kibanda " + version)
		return nil
	case "help", "--help", "-h":
		printHelp()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "":
		return runTUI(ctx, cfg)
	case "login":
		if len(args) > 1 && args[1] == "google" {
			return runLoginGoogle(ctx, cfg)
		}
		return runLogin(ctx, cfg)
	case "logout":
		return runLogout(ctx, cfg)
	case "whoami":
		return runWhoami(ctx, cfg)
	case "forgot":
		if len(args) < 2 {
			return errors.New("usage: kibanda forgot <email>")
		}
		return runForgot(ctx, cfg, args[1])
	case "reset":
		if len(args) < 2 {
			return errors.New("usage: kibanda reset <link from the reset email>")
		}
		return runReset(ctx, cfg, args[1])
	}
	return fmt.Errorf("unknown command %q (try kibanda help)", cmd)
}

// runTUI resolves the session in the background so the splash shows while
// it loads.
func runTUI(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	go func() {
		// Network errors leave the store Anonymous; the login screen shows.
		if err := a.auth.Start(ctx); err != nil {
			a.log.Warn().Err(err).Msg("session restore failed")
		}
	}()
	return launchTUI(ctx, a)
}

func launchTUI(ctx context.Context, a *app) error {
	model := tui.NewApp(a.auth, a.catalog)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if u, done := alreadySignedIn(ctx, a); done {
		fmt.Printf("Already signed in as %s.\n", u.Email)
		return launchTUI(ctx, a)
	}

	in := bufio.NewReader(os.Stdin)
	email, err := prompt(in, os.Stdout, "Email")
	if err != nil {
		return err
	}
	password, err := promptSecret(os.Stdin, in, os.Stdout, "Password")
	if err != nil {
		return err
	}
	u, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Println(signedInLine(*u))
	fmt.Println()
	return launchTUI(ctx, a)
}

func runLoginGoogle(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if u, done := alreadySignedIn(ctx, a); done {
		fmt.Printf("Already signed in as %s.\n", u.Email)
		return launchTUI(ctx, a)
	}

	fmt.Println("Opening browser to sign in with Google...")
	u, err := a.auth.SignInWithGoogle(ctx)
	if err != nil {
		return err
	}
	fmt.Println(signedInLine(*u))
	fmt.Println()
	return launchTUI(ctx, a)
}

// alreadySignedIn restores the saved session and reports the user if one
// came back.
func alreadySignedIn(ctx context.Context, a *app) (*domain.User, bool) {
	if err := a.auth.Start(ctx); err != nil {
		a.log.Warn().Err(err).Msg("session restore failed")
	}
	u := a.auth.Store().Identity()
	return u, u != nil
}

func runLogout(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, signedIn := alreadySignedIn(ctx, a); !signedIn {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := a.auth.SignOut(ctx); err != nil {
		// The local session is gone either way.
		fmt.Printf("Logged out locally (%s).\n", apperr.Message(err))
		return nil
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.auth.Start(ctx); err != nil {
		return err
	}
	u := a.auth.Store().Identity()
	if u == nil {
		printGreeting()
		return nil
	}
	fmt.Print(profileCard(*u))
	return nil
}

func runForgot(ctx context.Context, cfg *config.Config, email string) error {
	a, err := newApp(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Println(tui.MsgResetSent)
	fmt.Println("Then run: kibanda reset '<link from the email>'")
	return nil
}

func runReset(ctx context.Context, cfg *config.Config, link string) error {
	tokens, err := recoveryTokens(link)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewReader(os.Stdin)
	password, err := promptSecret(os.Stdin, in, os.Stdout, "New password")
	if err != nil {
		return err
	}
	confirm, err := promptSecret(os.Stdin, in, os.Stdout, "Confirm")
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, tokens, password, confirm); err != nil {
		return err
	}
	fmt.Println("Password updated. Sign in with: kibanda login")
	return nil
}

// recoveryTokens pulls the session tokens out of a password reset link.
func recoveryTokens(link string) (domain.TokenPair, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Scheme == "" {
		return domain.TokenPair{}, fmt.Errorf("not a link: %q", link)
	}
	grant, err := oauth.ExtractGrant(u)
	if err != nil {
		var pe *oauth.ProviderError
		if errors.As(err, &pe) {
			return domain.TokenPair{}, fmt.Errorf("reset link rejected: %s", pe.Error())
		}
		return domain.TokenPair{}, errors.New("the link carries no recovery session; request a new one with kibanda forgot")
	}
	if grant.HasCode() {
		return domain.TokenPair{}, errors.New("this link must be opened in the browser that requested it")
	}
	return grant.Tokens, nil
}

func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when in is a terminal.
func promptSecret(in *os.File, r *bufio.Reader, w io.Writer, label string) (string, error) {
	if !term.IsTerminal(in.Fd()) {
		return prompt(r, w, label)
	}
	fmt.Fprintf(w, "%s: ", label)
	b, err := term.ReadPassword(in.Fd())
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func signedInLine(u domain.User) string {
	return fmt.Sprintf("Signed in as %s (%s).", u.Name, u.Role)
}
