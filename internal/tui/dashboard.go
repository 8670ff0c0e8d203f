package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

type analyticsLoadedMsg struct {
	vendorID uuid.UUID
	stats    *domain.Analytics
	err      error
}

type vendorReviewsMsg struct {
	reviews []domain.Review
	err     error
}

type vendorStatusMsg struct {
	open bool
	err  error
}

// recentReviewsShown bounds the dashboard's review list.
const recentReviewsShown = 3

type dashboardModel struct {
	catalog Catalog
	vendor  domain.Vendor
	stats   *domain.Analytics
	reviews []domain.Review
	busy    bool
	status  string
	isErr   bool
	width   int
	height  int
}

func newDashboardModel(c Catalog, v domain.Vendor) dashboardModel {
	return dashboardModel{catalog: c, vendor: v}
}

func (m dashboardModel) Init() tea.Cmd {
	c, id := m.catalog, m.vendor.ID
	return tea.Batch(
		loadAnalytics(c, id),
		func() tea.Msg {
			reviews, err := c.Reviews(context.Background(), id)
			return vendorReviewsMsg{reviews: reviews, err: err}
		},
	)
}

func loadAnalytics(c Catalog, vendorID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		stats, err := c.Analytics(context.Background(), vendorID)
		return analyticsLoadedMsg{vendorID: vendorID, stats: stats, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case analyticsLoadedMsg:
		if msg.vendorID != m.vendor.ID {
			return m, nil
		}
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.stats = msg.stats

	case vendorReviewsMsg:
		if msg.err == nil {
			m.reviews = msg.reviews
		}

	case vendorStatusMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.vendor.IsOpen = msg.open
		if msg.open {
			m.status, m.isErr = "You are open for business.", false
		} else {
			m.status, m.isErr = "You are now closed.", false
		}

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "t":
			c, id, open := m.catalog, m.vendor.ID, !m.vendor.IsOpen
			m.busy = true
			m.status = ""
			return m, func() tea.Msg {
				return vendorStatusMsg{open: open, err: c.SetOpen(context.Background(), id, open)}
			}
		case "r":
			m.status = ""
			return m, m.Init()
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder
	v := m.vendor

	card := []string{
		titleStyle.Render(v.Name) + "  " + statusBadge(v.IsOpen),
		dimStyle.Render(v.Address),
	}
	if v.Description != "" {
		card = append(card, normalStyle.Render(truncStr(oneLine(v.Description), max(m.width-8, 20))))
	}
	b.WriteString(cardStyle.Render(strings.Join(card, "\n")) + "\n\n")

	if s := m.stats; s != nil {
		tiles := []string{
			statTile(fmt.Sprintf("%.1f", s.AverageRating), "rating"),
			statTile(fmt.Sprint(s.TotalReviews), "reviews"),
			statTile(fmt.Sprint(s.TotalFavorites), "favorites"),
			statTile(fmt.Sprint(s.MenuItems), "menu items"),
		}
		b.WriteString("  " + strings.Join(tiles, "    ") + "\n")
	} else if !m.isErr {
		b.WriteString("  " + dimStyle.Render("Loading stats...") + "\n")
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("RECENT REVIEWS") + "\n")
	if len(m.reviews) == 0 {
		b.WriteString("  " + dimStyle.Render("No reviews yet.") + "\n")
	}
	for i, r := range m.reviews {
		if i == recentReviewsShown {
			break
		}
		fmt.Fprintf(&b, "  %s %s  %s\n", ratingStars(float64(r.Rating)), dimStyle.Render(truncStr(oneLine(r.Comment), max(m.width-24, 20))), metaStyle.Render(formatTime(r.CreatedAt)))
	}

	if m.status != "" {
		b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
	}
	return b.String()
}

func statTile(value, label string) string {
	return selectedStyle.Render(value) + " " + dimStyle.Render(label)
}
