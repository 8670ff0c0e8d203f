package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/pkg/domain"
)

type vendorsLoadedMsg struct {
	vendors []domain.Vendor
	err     error
}

type featuredLoadedMsg struct {
	featured []domain.FeaturedVendor
	err      error
}

type categoriesLoadedMsg struct {
	categories []domain.Category
	err        error
}

// maxCategoryChips is how many categories the explore header shows.
const maxCategoryChips = 6

type exploreModel struct {
	catalog    Catalog
	vendors    []domain.Vendor
	featured   []domain.FeaturedVendor
	categories []domain.Category
	query      string
	searching  bool
	cursor     int
	loading    bool
	err        string
	width      int
	height     int
}

func newExploreModel(c Catalog) exploreModel {
	return exploreModel{catalog: c, loading: true}
}

func (m exploreModel) Init() tea.Cmd {
	c := m.catalog
	return tea.Batch(
		func() tea.Msg {
			vendors, err := c.OpenVendors(context.Background())
			return vendorsLoadedMsg{vendors: vendors, err: err}
		},
		func() tea.Msg {
			featured, err := c.Featured(context.Background())
			return featuredLoadedMsg{featured: featured, err: err}
		},
		func() tea.Msg {
			cats, err := c.Categories(context.Background())
			return categoriesLoadedMsg{categories: cats, err: err}
		},
	)
}

// visible returns the vendors matching the current search.
func (m exploreModel) visible() []domain.Vendor {
	return catalog.FilterVendors(m.vendors, m.query)
}

func (m exploreModel) Update(msg tea.Msg) (exploreModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case vendorsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = apperr.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.vendors = msg.vendors
		m.cursor = clampCursor(m.cursor, len(m.visible()))

	case featuredLoadedMsg:
		// Featured and categories are decoration; failures leave them empty.
		if msg.err == nil {
			m.featured = msg.featured
		}

	case categoriesLoadedMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg), nil
		}
		visible := m.visible()
		switch key := msg.String(); key {
		case "/":
			m.searching = true
		case "esc":
			m.query = ""
			m.cursor = 0
		case "r":
			m.loading = true
			return m, m.Init()
		case "enter":
			if len(visible) > 0 {
				v := visible[m.cursor]
				return m, func() tea.Msg { return openVendorMsg{vendor: v} }
			}
		default:
			m.cursor = moveCursor(m.cursor, len(visible), key)
		}
	}
	return m, nil
}

func (m exploreModel) updateSearch(msg tea.KeyMsg) exploreModel {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.query = ""
	default:
		m.query = editRune(m.query, msg.String())
	}
	m.cursor = 0
	return m
}

func (m exploreModel) View() string {
	var b strings.Builder

	if len(m.featured) > 0 {
		b.WriteString("  " + sectionHeaderStyle.Render("HIDDEN GEMS") + "\n")
		for _, f := range m.featured {
			name := f.Title
			if f.Vendor != nil && name == "" {
				name = f.Vendor.Name
			}
			fmt.Fprintf(&b, "  %s %s  %s\n", accentStyle.Render("✦"), selectedStyle.Render(name), dimStyle.Render(truncStr(oneLine(f.Description), 50)))
		}
		b.WriteString("\n")
	}

	if len(m.categories) > 0 {
		var chips []string
		for i, c := range m.categories {
			if i == maxCategoryChips {
				break
			}
			chips = append(chips, CategoryStyle(c.Name).Render(c.Name)+metaStyle.Render(fmt.Sprintf(" %d", c.VendorCount)))
		}
		b.WriteString("  " + strings.Join(chips, metaStyle.Render("  ·  ")) + "\n\n")
	}

	switch {
	case m.searching:
		b.WriteString("  " + inputPromptStyle.Render("/ ") + renderInput(m.query, "search by name, food or place", false, true) + "\n\n")
	case m.query != "":
		b.WriteString("  " + dimStyle.Render("matching ") + selectedStyle.Render(m.query) + dimStyle.Render("  (esc to clear)") + "\n\n")
	}

	switch {
	case m.loading && len(m.vendors) == 0:
		b.WriteString("  " + dimStyle.Render("Loading vendors...") + "\n")
		return b.String()
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	}

	visible := m.visible()
	if len(visible) == 0 {
		if m.query != "" {
			b.WriteString("  " + dimStyle.Render("No vendors match your search.") + "\n")
		} else {
			b.WriteString("  " + dimStyle.Render("No vendors are open right now.") + "\n")
		}
		return b.String()
	}

	b.WriteString("  " + sectionHeaderStyle.Render(fmt.Sprintf("OPEN NOW (%d)", len(visible))) + "\n")
	for i, v := range visible {
		b.WriteString(vendorRow(v, i == m.cursor, m.width) + "\n")
	}
	return b.String()
}

// vendorRow renders one vendor in a list.
func vendorRow(v domain.Vendor, selected bool, width int) string {
	text := fmt.Sprintf("%-28s", truncStr(v.Name, 28))
	name := normalStyle.Render(text)
	prefix := "  "
	if selected {
		name = selectedStyle.Render(text)
		prefix = accentStyle.Render("> ")
	}
	reviews := metaStyle.Render(fmt.Sprintf("(%d)", v.TotalReviews))
	addr := dimStyle.Render(truncStr(oneLine(v.Address), max(width-60, 12)))
	row := fmt.Sprintf("%s%s  %s %s  %s", prefix, name, ratingStars(v.Rating), reviews, addr)
	if selected {
		return selectedRowBg.Render(row)
	}
	return row
}

func (m exploreModel) helpKeys() string {
	if m.searching {
		return helpBar(helpEntry("enter", "done"), helpEntry("esc", "clear"))
	}
	return helpBar(helpEntry("1-3", "tabs"), helpEntry("j/k", "nav"), helpEntry("/", "search"), helpEntry("enter", "open"), helpEntry("r", "refresh"), helpEntry("?", "help"), helpEntry("q", "quit"))
}
