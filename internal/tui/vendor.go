package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/pkg/domain"
)

const (
	tabDashboard = iota
	tabMenu
	tabAnalytics
	tabVendorProfile
)

var vendorTabs = []string{"Dashboard", "Menu", "Analytics", "Profile"}

// Setup form labels.
const (
	fieldBusiness    = "Business name"
	fieldAddress     = "Address"
	fieldDescription = "Description"
	fieldPhone       = "Phone"
	fieldLatitude    = "Latitude"
	fieldLongitude   = "Longitude"
)

type myVendorMsg struct {
	vendor *domain.Vendor
	err    error
}

type vendorCreatedMsg struct {
	vendor *domain.Vendor
	err    error
}

// vendorModel is the screen tree for vendor accounts. Until the vendor
// row exists it shows only the setup form.
type vendorModel struct {
	auth      Auth
	catalog   Catalog
	user      domain.User
	vendor    *domain.Vendor
	loaded    bool
	loadErr   string
	setup     form
	busy      bool
	status    string
	isErr     bool
	tab       int
	dashboard dashboardModel
	menu      menuModel
	analytics analyticsModel
	profile   profileModel
	width     int
	height    int
}

func newVendorModel(a Auth, c Catalog, u domain.User) vendorModel {
	return vendorModel{
		auth:    a,
		catalog: c,
		user:    u,
		setup:   setupForm(),
		profile: newProfileModel(a, c, u),
	}
}

func setupForm() form {
	return newForm(
		formField{label: fieldBusiness, placeholder: "Mama Njeri's Kitchen"},
		formField{label: fieldAddress, placeholder: "Moi Avenue, next to the bus stage"},
		formField{label: fieldDescription, placeholder: "What do you sell?"},
		formField{label: fieldPhone, placeholder: "optional"},
		formField{label: fieldLatitude, placeholder: "-1.2864"},
		formField{label: fieldLongitude, placeholder: "36.8172"},
	)
}

func (m vendorModel) Init() tea.Cmd {
	c, userID := m.catalog, m.user.ID
	return func() tea.Msg {
		v, err := c.MyVendor(context.Background(), userID)
		return myVendorMsg{vendor: v, err: err}
	}
}

// attach builds the vendor screens once the vendor row is known.
func (m vendorModel) attach(v *domain.Vendor) (vendorModel, tea.Cmd) {
	m.vendor = v
	m.dashboard = newDashboardModel(m.catalog, *v)
	m.menu = newMenuModel(m.catalog, v.ID)
	m.analytics = newAnalyticsModel(m.catalog, v.ID)
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	m, _ = m.resize(size)
	return m, m.dashboard.Init()
}

func (m vendorModel) resize(msg tea.WindowSizeMsg) (vendorModel, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}
	m.dashboard, _ = m.dashboard.Update(body)
	m.menu, _ = m.menu.Update(body)
	m.analytics, _ = m.analytics.Update(body)
	m.profile, _ = m.profile.Update(body)
	return m, nil
}

func (m vendorModel) Update(msg tea.Msg) (vendorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)

	case identityMsg:
		m.user = msg.user
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd

	case myVendorMsg:
		m.loaded = true
		if msg.err != nil {
			m.loadErr = apperr.Message(msg.err)
			return m, nil
		}
		m.loadErr = ""
		if msg.vendor == nil {
			return m, nil
		}
		return m.attach(msg.vendor)

	case vendorCreatedMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.status = ""
		return m.attach(msg.vendor)

	case vendorStatusMsg:
		if msg.err == nil && m.vendor != nil {
			v := *m.vendor
			v.IsOpen = msg.open
			m.vendor = &v
		}

	case tea.KeyMsg:
		if !m.loaded {
			return m, nil
		}
		if m.vendor == nil {
			return m.updateSetup(msg)
		}
		if !m.editing() {
			if i := tabIndex(msg.String(), len(vendorTabs)); i >= 0 {
				return m.switchTab(i)
			}
		}
		var cmd tea.Cmd
		switch m.tab {
		case tabDashboard:
			m.dashboard, cmd = m.dashboard.Update(msg)
		case tabMenu:
			m.menu, cmd = m.menu.Update(msg)
		case tabAnalytics:
			m.analytics, cmd = m.analytics.Update(msg)
		case tabVendorProfile:
			m.profile, cmd = m.profile.Update(msg)
		}
		return m, cmd
	}

	if m.vendor == nil {
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd
	}
	var c1, c2, c3, c4 tea.Cmd
	m.dashboard, c1 = m.dashboard.Update(msg)
	m.menu, c2 = m.menu.Update(msg)
	m.analytics, c3 = m.analytics.Update(msg)
	m.profile, c4 = m.profile.Update(msg)
	return m, tea.Batch(c1, c2, c3, c4)
}

func (m vendorModel) switchTab(i int) (vendorModel, tea.Cmd) {
	if i == m.tab {
		return m, nil
	}
	m.tab = i
	switch i {
	case tabDashboard:
		return m, m.dashboard.Init()
	case tabMenu:
		return m, m.menu.Init()
	case tabAnalytics:
		return m, m.analytics.Init()
	}
	return m, nil
}

func (m vendorModel) updateSetup(msg tea.KeyMsg) (vendorModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if msg.String() == "ctrl+o" {
		a := m.auth
		m.busy = true
		return m, func() tea.Msg { return signedOutMsg{err: a.SignOut(context.Background())} }
	}
	var submit bool
	m.setup, submit = m.setup.update(msg)
	if !submit {
		return m, nil
	}

	setup := catalog.VendorSetup{
		Name:        m.setup.value(fieldBusiness),
		Address:     m.setup.value(fieldAddress),
		Description: m.setup.value(fieldDescription),
		Phone:       m.setup.value(fieldPhone),
	}
	var ok bool
	if setup.Latitude, ok = parseCoord(m.setup.value(fieldLatitude)); !ok {
		m.status, m.isErr = catalog.MsgInvalidLocation, true
		return m, nil
	}
	if setup.Longitude, ok = parseCoord(m.setup.value(fieldLongitude)); !ok {
		m.status, m.isErr = catalog.MsgInvalidLocation, true
		return m, nil
	}

	c, userID := m.catalog, m.user.ID
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		v, err := c.SetupVendor(context.Background(), userID, setup)
		return vendorCreatedMsg{vendor: v, err: err}
	}
}

// parseCoord reads a coordinate, treating blank as zero.
func parseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func (m vendorModel) editing() bool {
	if m.vendor == nil {
		return m.loaded
	}
	switch m.tab {
	case tabMenu:
		return m.menu.editing()
	case tabVendorProfile:
		return m.profile.editing()
	}
	return false
}

func (m vendorModel) View() string {
	switch {
	case !m.loaded:
		return "  " + dimStyle.Render("Loading your stall...") + "\n"
	case m.loadErr != "":
		return "  " + errorStyle.Render(m.loadErr) + "\n"
	case m.vendor == nil:
		var b strings.Builder
		b.WriteString("  " + titleStyle.Render("Set up your stall") + "\n")
		b.WriteString("  " + dimStyle.Render("Tell customers where to find you and what you sell.") + "\n\n")
		b.WriteString(m.setup.View())
		switch {
		case m.busy:
			b.WriteString("\n  " + dimStyle.Render("Saving...") + "\n")
		case m.status != "":
			b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
		}
		return b.String()
	}

	tabs := renderTabs(vendorTabs, m.tab, m.width)
	var body string
	switch m.tab {
	case tabDashboard:
		body = m.dashboard.View()
	case tabMenu:
		body = m.menu.View()
	case tabAnalytics:
		body = m.analytics.View()
	case tabVendorProfile:
		body = m.profile.View()
	}
	return tabs + "\n\n" + body
}

func (m vendorModel) helpKeys() string {
	if m.vendor == nil {
		return helpBar(helpEntry("tab", "next"), helpEntry("enter", "save"), helpEntry("ctrl+o", "sign out"), helpEntry("ctrl+c", "quit"))
	}
	switch m.tab {
	case tabDashboard:
		return helpBar(helpEntry("1-4", "tabs"), helpEntry("t", "open/close"), helpEntry("r", "refresh"), helpEntry("?", "help"), helpEntry("q", "quit"))
	case tabMenu:
		return m.menu.helpKeys()
	case tabAnalytics:
		return helpBar(helpEntry("1-4", "tabs"), helpEntry("r", "refresh"), helpEntry("?", "help"), helpEntry("q", "quit"))
	default:
		return m.profile.helpKeys()
	}
}
