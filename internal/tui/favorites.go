package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

type favoritesLoadedMsg struct {
	vendors []domain.Vendor
	err     error
}

type favoritesModel struct {
	catalog Catalog
	user    domain.User
	vendors []domain.Vendor
	cursor  int
	loading bool
	loaded  bool
	err     string
	width   int
	height  int
}

func newFavoritesModel(c Catalog, u domain.User) favoritesModel {
	return favoritesModel{catalog: c, user: u}
}

func (m favoritesModel) Init() tea.Cmd {
	c, userID := m.catalog, m.user.ID
	return func() tea.Msg {
		vendors, err := c.Favorites(context.Background(), userID)
		return favoritesLoadedMsg{vendors: vendors, err: err}
	}
}

func (m favoritesModel) Update(msg tea.Msg) (favoritesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case favoritesLoadedMsg:
		m.loading = false
		m.loaded = true
		if msg.err != nil {
			m.err = apperr.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.vendors = msg.vendors
		m.cursor = clampCursor(m.cursor, len(m.vendors))

	case favoriteChangedMsg:
		if m.loaded {
			return m, m.Init()
		}

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "r":
			m.loading = true
			return m, m.Init()
		case "enter":
			if len(m.vendors) > 0 {
				v := m.vendors[m.cursor]
				return m, func() tea.Msg { return openVendorMsg{vendor: v} }
			}
		default:
			m.cursor = moveCursor(m.cursor, len(m.vendors), key)
		}
	}
	return m, nil
}

func (m favoritesModel) View() string {
	var b strings.Builder
	switch {
	case !m.loaded:
		b.WriteString("  " + dimStyle.Render("Loading favorites...") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case len(m.vendors) == 0:
		b.WriteString("  " + dimStyle.Render("No favorites yet. Press f on a vendor's page to save it.") + "\n")
	default:
		b.WriteString("  " + sectionHeaderStyle.Render(fmt.Sprintf("SAVED (%d)", len(m.vendors))) + "\n")
		for i, v := range m.vendors {
			b.WriteString(vendorRow(v, i == m.cursor, m.width) + "  " + statusBadge(v.IsOpen) + "\n")
		}
	}
	return b.String()
}
