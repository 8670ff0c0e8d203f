package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// profileMode is the state machine for the profile screen.
type profileMode int

const (
	profileViewing profileMode = iota
	profileEditing             // editing name and email
	profileAvatar              // typing an image path
)

const fieldImage = "Image"

type statsLoadedMsg struct {
	stats domain.CustomerStats
	err   error
}

type profileSavedMsg struct{ err error }

type avatarUploadedMsg struct {
	url string
	err error
}

type signedOutMsg struct{ err error }

type copyMsg struct{ err error }

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

type profileModel struct {
	auth    Auth
	catalog Catalog
	user    domain.User
	stats   *domain.CustomerStats
	mode    profileMode
	form    form
	busy    bool
	status  string
	isErr   bool
	width   int
	height  int
}

func newProfileModel(a Auth, c Catalog, u domain.User) profileModel {
	return profileModel{auth: a, catalog: c, user: u}
}

// Init loads review and favorite counts for customers.
func (m profileModel) Init() tea.Cmd {
	if m.user.IsVendor() {
		return nil
	}
	c, userID := m.catalog, m.user.ID
	return func() tea.Msg {
		stats, err := c.CustomerStats(context.Background(), userID)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case identityMsg:
		m.user = msg.user

	case statsLoadedMsg:
		if msg.err == nil {
			s := msg.stats
			m.stats = &s
		}

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.mode = profileViewing
		m.status, m.isErr = "Profile updated.", false

	case avatarUploadedMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.mode = profileViewing
		m.status, m.isErr = "Photo updated.", false

	case signedOutMsg:
		m.busy = false
		if msg.err != nil {
			// The local session is already gone; this is only a notice.
			m.status, m.isErr = apperr.Message(msg.err), true
		}

	case copyMsg:
		if msg.err != nil {
			m.status, m.isErr = "Could not copy to clipboard.", true
		} else {
			m.status, m.isErr = "Photo link copied.", false
		}

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.mode != profileViewing {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "e":
			m.mode = profileEditing
			m.form = newForm(
				formField{label: fieldName, value: m.user.Name},
				formField{label: fieldEmail, value: m.user.Email},
			)
			m.status = ""
		case "a":
			m.mode = profileAvatar
			m.form = newForm(formField{label: fieldImage, placeholder: "~/Pictures/me.jpg"})
			m.status = ""
		case "y":
			if m.user.AvatarURL == "" {
				m.status, m.isErr = "No photo to copy yet.", true
				return m, nil
			}
			url := m.user.AvatarURL
			return m, func() tea.Msg { return copyMsg{err: clipboardWrite(url)} }
		case "o":
			a := m.auth
			m.busy = true
			return m, func() tea.Msg { return signedOutMsg{err: a.SignOut(context.Background())} }
		}
	}
	return m, nil
}

func (m profileModel) updateForm(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = profileViewing
		m.status = ""
		return m, nil
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}

	a := m.auth
	m.busy = true
	m.status = ""
	if m.mode == profileAvatar {
		path := expandHome(strings.TrimSpace(m.form.value(fieldImage)))
		return m, func() tea.Msg {
			url, err := a.UploadAvatar(context.Background(), path)
			return avatarUploadedMsg{url: url, err: err}
		}
	}

	var upd domain.ProfileUpdate
	if name := m.form.value(fieldName); name != m.user.Name {
		upd.Name = &name
	}
	if email := m.form.value(fieldEmail); email != m.user.Email {
		upd.Email = &email
	}
	return m, func() tea.Msg {
		return profileSavedMsg{err: a.UpdateProfile(context.Background(), upd)}
	}
}

func (m profileModel) editing() bool {
	return m.mode != profileViewing
}

func (m profileModel) View() string {
	var b strings.Builder
	u := m.user

	card := []string{
		titleStyle.Render(u.Name),
		dimStyle.Render(u.Email),
		metaStyle.Render(strings.ToUpper(string(u.Role))),
	}
	if u.AvatarURL != "" {
		card = append(card, metaStyle.Render("photo: ")+dimStyle.Render(truncStr(u.AvatarURL, max(m.width-16, 20))))
	}
	if !u.CreatedAt.IsZero() {
		card = append(card, metaStyle.Render("member since "+u.CreatedAt.Format("January 2006")))
	}
	b.WriteString(cardStyle.Render(strings.Join(card, "\n")) + "\n")

	if m.stats != nil {
		fmt.Fprintf(&b, "\n  %s %s    %s %s\n",
			selectedStyle.Render(fmt.Sprint(m.stats.Reviews)), dimStyle.Render("reviews"),
			selectedStyle.Render(fmt.Sprint(m.stats.Favorites)), dimStyle.Render("favorites"))
	}

	switch m.mode {
	case profileEditing:
		b.WriteString("\n  " + sectionHeaderStyle.Render("EDIT PROFILE") + "\n")
		b.WriteString(m.form.View())
	case profileAvatar:
		b.WriteString("\n  " + sectionHeaderStyle.Render("NEW PHOTO") + "\n")
		b.WriteString(m.form.View())
	}

	switch {
	case m.busy:
		b.WriteString("\n  " + dimStyle.Render("Working...") + "\n")
	case m.status != "":
		b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
	}
	return b.String()
}

func (m profileModel) helpKeys() string {
	if m.mode != profileViewing {
		return helpBar(helpEntry("tab", "next"), helpEntry("enter", "save"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("e", "edit"), helpEntry("a", "photo"), helpEntry("y", "copy photo link"), helpEntry("o", "sign out"), helpEntry("?", "help"), helpEntry("q", "quit"))
}
