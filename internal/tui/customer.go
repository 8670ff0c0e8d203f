package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/domain"
)

const (
	tabExplore = iota
	tabFavorites
	tabProfile
)

var customerTabs = []string{"Explore", "Favorites", "Profile"}

// openVendorMsg asks the customer tree to show a vendor's page.
type openVendorMsg struct{ vendor domain.Vendor }

// favoriteChangedMsg reports a saved/unsaved vendor so lists can refresh.
type favoriteChangedMsg struct {
	vendorID uuid.UUID
	saved    bool
}

type customerModel struct {
	auth       Auth
	catalog    Catalog
	user       domain.User
	tab        int
	explore    exploreModel
	favorites  favoritesModel
	profile    profileModel
	detail     detailModel
	detailOpen bool
	width      int
	height     int
}

func newCustomerModel(a Auth, c Catalog, u domain.User) customerModel {
	return customerModel{
		auth:      a,
		catalog:   c,
		user:      u,
		explore:   newExploreModel(c),
		favorites: newFavoritesModel(c, u),
		profile:   newProfileModel(a, c, u),
	}
}

func (m customerModel) Init() tea.Cmd {
	return m.explore.Init()
}

func (m customerModel) Update(msg tea.Msg) (customerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Tabs take one line and a blank one.
		m.width, m.height = msg.Width, msg.Height
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}
		m.explore, _ = m.explore.Update(body)
		m.favorites, _ = m.favorites.Update(body)
		m.profile, _ = m.profile.Update(body)
		m.detail, _ = m.detail.Update(body)
		return m, nil

	case identityMsg:
		m.user = msg.user
		m.favorites.user = msg.user
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd

	case openVendorMsg:
		m.detail = newDetailModel(m.catalog, m.user, msg.vendor)
		m.detail, _ = m.detail.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - 2})
		m.detailOpen = true
		return m, m.detail.Init()

	case favoriteChangedMsg:
		var cmd tea.Cmd
		m.favorites, cmd = m.favorites.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.detailOpen {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			if m.detail.closed {
				m.detailOpen = false
			}
			return m, cmd
		}
		if !m.editing() {
			if i := tabIndex(msg.String(), len(customerTabs)); i >= 0 {
				return m.switchTab(i)
			}
		}
	}

	// Data messages go to every screen; each ignores what it did not ask for.
	if _, ok := msg.(tea.KeyMsg); !ok {
		var c1, c2, c3, c4 tea.Cmd
		m.explore, c1 = m.explore.Update(msg)
		m.favorites, c2 = m.favorites.Update(msg)
		m.profile, c3 = m.profile.Update(msg)
		if m.detailOpen {
			m.detail, c4 = m.detail.Update(msg)
		}
		return m, tea.Batch(c1, c2, c3, c4)
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabExplore:
		m.explore, cmd = m.explore.Update(msg)
	case tabFavorites:
		m.favorites, cmd = m.favorites.Update(msg)
	case tabProfile:
		m.profile, cmd = m.profile.Update(msg)
	}
	return m, cmd
}

func (m customerModel) switchTab(i int) (customerModel, tea.Cmd) {
	if i == m.tab {
		return m, nil
	}
	m.tab = i
	switch i {
	case tabFavorites:
		return m, m.favorites.Init()
	case tabProfile:
		return m, m.profile.Init()
	}
	return m, nil
}

func (m customerModel) editing() bool {
	if m.detailOpen {
		return m.detail.editing()
	}
	switch m.tab {
	case tabExplore:
		return m.explore.searching
	case tabProfile:
		return m.profile.editing()
	}
	return false
}

func (m customerModel) View() string {
	tabs := renderTabs(customerTabs, m.tab, m.width)
	var body string
	switch {
	case m.detailOpen:
		body = m.detail.View()
	case m.tab == tabExplore:
		body = m.explore.View()
	case m.tab == tabFavorites:
		body = m.favorites.View()
	case m.tab == tabProfile:
		body = m.profile.View()
	}
	return tabs + "\n\n" + body
}

func (m customerModel) helpKeys() string {
	switch {
	case m.detailOpen:
		return m.detail.helpKeys()
	case m.tab == tabExplore:
		return m.explore.helpKeys()
	case m.tab == tabFavorites:
		return helpBar(helpEntry("1-3", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("r", "refresh"), helpEntry("?", "help"), helpEntry("q", "quit"))
	default:
		return m.profile.helpKeys()
	}
}
