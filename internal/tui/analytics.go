package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// barWidth is the number of cells in an analytics bar.
const barWidth = 24

type analyticsModel struct {
	catalog  Catalog
	vendorID uuid.UUID
	stats    *domain.Analytics
	err      string
	width    int
	height   int
}

func newAnalyticsModel(c Catalog, vendorID uuid.UUID) analyticsModel {
	return analyticsModel{catalog: c, vendorID: vendorID}
}

func (m analyticsModel) Init() tea.Cmd {
	return loadAnalytics(m.catalog, m.vendorID)
}

func (m analyticsModel) Update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case analyticsLoadedMsg:
		if msg.vendorID != m.vendorID {
			return m, nil
		}
		if msg.err != nil {
			m.err = apperr.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.stats = msg.stats

	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.Init()
		}
	}
	return m, nil
}

func (m analyticsModel) View() string {
	if m.err != "" {
		return "  " + errorStyle.Render(m.err) + "\n"
	}
	s := m.stats
	if s == nil {
		return "  " + dimStyle.Render("Crunching numbers...") + "\n"
	}

	var b strings.Builder
	b.WriteString("  " + sectionHeaderStyle.Render("RATINGS") + "\n")
	fmt.Fprintf(&b, "  %s %s  %s\n", ratingStars(s.AverageRating), selectedStyle.Render(fmt.Sprintf("%.2f", s.AverageRating)), metaStyle.Render(fmt.Sprintf("from %d reviews", s.TotalReviews)))
	if s.RecentChange != 0 {
		fmt.Fprintf(&b, "  %s\n", trend(s.RecentChange))
	}
	for star := 5; star >= 1; star-- {
		n := s.RatingHistogram[star-1]
		fmt.Fprintf(&b, "  %d★ %s %s\n", star, bar(n, s.TotalReviews, barWidth), metaStyle.Render(fmt.Sprint(n)))
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("REVIEWS BY DAY") + "\n")
	busiest := 0
	for _, n := range s.ReviewsByWeekday {
		busiest = max(busiest, n)
	}
	// Monday first.
	for i := 1; i <= 7; i++ {
		day := time.Weekday(i % 7)
		n := s.ReviewsByWeekday[day]
		fmt.Fprintf(&b, "  %s %s %s\n", dimStyle.Render(day.String()[:3]), bar(n, busiest, barWidth), metaStyle.Render(fmt.Sprint(n)))
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("CUSTOMERS") + "\n")
	fmt.Fprintf(&b, "  %s %s  %s\n", selectedStyle.Render(fmt.Sprint(s.TotalFavorites)), dimStyle.Render("saved your stall"), metaStyle.Render(fmt.Sprintf("+%d this week", s.RecentFavorites)))

	b.WriteString("\n  " + sectionHeaderStyle.Render(fmt.Sprintf("MENU (%d items)", s.MenuItems)) + "\n")
	cats := make([]string, 0, len(s.ItemsByCategory))
	for c := range s.ItemsByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		a, c := s.ItemsByCategory[cats[i]], s.ItemsByCategory[cats[j]]
		if a != c {
			return a > c
		}
		return cats[i] < cats[j]
	})
	for _, c := range cats {
		n := s.ItemsByCategory[c]
		fmt.Fprintf(&b, "  %s %s %s\n", CategoryStyle(c).Render(fmt.Sprintf("%-12s", truncStr(c, 12))), bar(n, s.MenuItems, barWidth), metaStyle.Render(fmt.Sprint(n)))
	}
	return b.String()
}

// trend describes the last week's rating against the overall average.
func trend(change float64) string {
	if change > 0 {
		return successStyle.Render(fmt.Sprintf("▲ %.1f", change)) + dimStyle.Render(" this week")
	}
	return errorStyle.Render(fmt.Sprintf("▼ %.1f", -change)) + dimStyle.Render(" this week")
}
