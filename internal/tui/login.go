package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/auth"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// authMode selects which anonymous screen is showing.
type authMode int

const (
	modeLogin authMode = iota
	modeRegister
	modeForgot
)

// Field labels double as lookup keys into the form.
const (
	fieldName     = "Name"
	fieldEmail    = "Email"
	fieldPassword = "Password"
	fieldConfirm  = "Confirm"
	fieldRole     = "I am a"
)

// MsgResetSent confirms a reset request without revealing whether the
// address has an account.
const MsgResetSent = "If that address has an account, a reset link is on its way."

type authDoneMsg struct {
	mode authMode
	err  error
}

type authModel struct {
	auth   Auth
	mode   authMode
	form   form
	busy   bool
	status string
	isErr  bool
	width  int
	height int
}

func newAuthModel(a Auth) authModel {
	m := authModel{auth: a}
	return m.switchMode(modeLogin)
}

func loginForm() form {
	return newForm(
		formField{label: fieldEmail, placeholder: "you@example.com"},
		formField{label: fieldPassword, secret: true},
	)
}

func registerForm() form {
	return newForm(
		formField{label: fieldName, placeholder: "Jane Wanjiku"},
		formField{label: fieldEmail, placeholder: "you@example.com"},
		formField{label: fieldPassword, secret: true, placeholder: "at least 6 characters"},
		formField{label: fieldConfirm, secret: true},
		formField{label: fieldRole, value: string(domain.RoleCustomer), choices: []string{string(domain.RoleCustomer), string(domain.RoleVendor)}},
	)
}

func forgotForm() form {
	return newForm(formField{label: fieldEmail, placeholder: "you@example.com"})
}

// switchMode changes screens, carrying the typed email across.
func (m authModel) switchMode(mode authMode) authModel {
	email := m.form.value(fieldEmail)
	switch mode {
	case modeRegister:
		m.form = registerForm()
	case modeForgot:
		m.form = forgotForm()
	default:
		m.form = loginForm()
	}
	m.form = m.form.set(fieldEmail, email)
	m.mode = mode
	m.status, m.isErr = "", false
	return m
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		if msg.mode == modeForgot {
			m = m.switchMode(modeLogin)
			m.status = MsgResetSent
		}
		// Successful sign-ins arrive as a store change and unmount this tree.
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			return m.switchMode(modeRegister), nil
		case "ctrl+f":
			return m.switchMode(modeForgot), nil
		case "esc":
			if m.mode != modeLogin {
				return m.switchMode(modeLogin), nil
			}
			return m, nil
		case "ctrl+g":
			return m.submitGoogle()
		}
		var submit bool
		m.form, submit = m.form.update(msg)
		if submit {
			return m.submit()
		}
	}
	return m, nil
}

func (m authModel) submit() (authModel, tea.Cmd) {
	a := m.auth
	mode := m.mode
	email := m.form.value(fieldEmail)
	password := m.form.value(fieldPassword)

	var run func(ctx context.Context) error
	switch mode {
	case modeLogin:
		run = func(ctx context.Context) error {
			_, err := a.SignIn(ctx, email, password)
			return err
		}
	case modeRegister:
		f := auth.SignUpForm{
			Name:            m.form.value(fieldName),
			Email:           email,
			Password:        password,
			ConfirmPassword: m.form.value(fieldConfirm),
			Role:            domain.Role(m.form.value(fieldRole)),
		}
		if err := auth.ValidateSignUp(f); err != nil {
			m.status, m.isErr = apperr.Message(err), true
			return m, nil
		}
		run = func(ctx context.Context) error {
			return a.SignUp(ctx, f.Email, f.Password, strings.TrimSpace(f.Name), f.Role)
		}
	case modeForgot:
		run = func(ctx context.Context) error {
			return a.RequestPasswordReset(ctx, email)
		}
	}

	m.busy = true
	m.status, m.isErr = "", false
	return m, func() tea.Msg {
		return authDoneMsg{mode: mode, err: run(context.Background())}
	}
}

func (m authModel) submitGoogle() (authModel, tea.Cmd) {
	a := m.auth
	m.busy = true
	m.status, m.isErr = "Continue in your browser...", false
	return m, func() tea.Msg {
		_, err := a.SignInWithGoogle(context.Background())
		return authDoneMsg{mode: modeLogin, err: err}
	}
}

func (m authModel) View() string {
	var b strings.Builder
	titles := map[authMode]string{
		modeLogin:    "Welcome back",
		modeRegister: "Create your account",
		modeForgot:   "Reset your password",
	}
	subtitles := map[authMode]string{
		modeLogin:    "Sign in to find street food near you.",
		modeRegister: "Customers discover stalls. Vendors list their menu.",
		modeForgot:   "We will email you a link to choose a new password.",
	}
	b.WriteString("  " + titleStyle.Render(titles[m.mode]) + "\n")
	b.WriteString("  " + dimStyle.Render(subtitles[m.mode]) + "\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	switch {
	case m.busy && m.status == "":
		b.WriteString("  " + dimStyle.Render("Working...") + "\n")
	case m.busy:
		b.WriteString("  " + dimStyle.Render(m.status) + "\n")
	case m.status != "":
		b.WriteString("  " + statusLine(m.status, m.isErr) + "\n")
	}
	if m.mode == modeLogin {
		b.WriteString("\n  " + metaStyle.Render("or press ctrl+g to continue with Google") + "\n")
	}
	return b.String()
}

func (m authModel) helpKeys() string {
	switch m.mode {
	case modeRegister:
		return helpBar(helpEntry("tab", "next"), helpEntry("←/→", "role"), helpEntry("enter", "sign up"), helpEntry("esc", "back"), helpEntry("ctrl+c", "quit"))
	case modeForgot:
		return helpBar(helpEntry("enter", "send link"), helpEntry("esc", "back"), helpEntry("ctrl+c", "quit"))
	default:
		return helpBar(helpEntry("tab", "next"), helpEntry("enter", "sign in"), helpEntry("ctrl+g", "google"), helpEntry("ctrl+r", "register"), helpEntry("ctrl+f", "forgot"), helpEntry("ctrl+c", "quit"))
	}
}
