package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/pkg/domain"
)

type menuLoadedMsg struct {
	foods []domain.Food
	err   error
}

type reviewsLoadedMsg struct {
	reviews []domain.Review
	err     error
}

type favoriteStateMsg struct {
	saved bool
	err   error
}

type favoriteToggledMsg struct {
	saved bool
	err   error
}

type reviewSubmittedMsg struct{ err error }

const (
	fieldRating  = "Rating"
	fieldComment = "Comment"
)

// maxReviewsShown bounds the review list on a vendor page.
const maxReviewsShown = 5

// detailModel is a vendor's page as a customer sees it.
type detailModel struct {
	catalog Catalog
	user    domain.User
	vendor  domain.Vendor
	menu    []domain.Food
	reviews []domain.Review
	saved   bool
	loading bool
	writing bool
	review  form
	busy    bool
	status  string
	isErr   bool
	closed  bool
	width   int
	height  int
}

func newDetailModel(c Catalog, u domain.User, v domain.Vendor) detailModel {
	return detailModel{catalog: c, user: u, vendor: v, loading: true}
}

func reviewForm() form {
	return newForm(
		formField{label: fieldRating, value: "5", choices: []string{"1", "2", "3", "4", "5"}},
		formField{label: fieldComment, placeholder: "What did you eat? How was it?"},
	)
}

func (m detailModel) Init() tea.Cmd {
	c, userID, vendorID := m.catalog, m.user.ID, m.vendor.ID
	return tea.Batch(
		func() tea.Msg {
			foods, err := c.VendorMenu(context.Background(), vendorID)
			return menuLoadedMsg{foods: foods, err: err}
		},
		m.loadReviews(),
		func() tea.Msg {
			saved, err := c.IsFavorite(context.Background(), userID, vendorID)
			return favoriteStateMsg{saved: saved, err: err}
		},
	)
}

func (m detailModel) loadReviews() tea.Cmd {
	c, vendorID := m.catalog, m.vendor.ID
	return func() tea.Msg {
		reviews, err := c.Reviews(context.Background(), vendorID)
		return reviewsLoadedMsg{reviews: reviews, err: err}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case menuLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.menu = msg.foods

	case reviewsLoadedMsg:
		if msg.err == nil {
			m.reviews = msg.reviews
		}

	case favoriteStateMsg:
		if msg.err == nil {
			m.saved = msg.saved
		}

	case favoriteToggledMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.saved = msg.saved
		id, saved := m.vendor.ID, msg.saved
		return m, func() tea.Msg { return favoriteChangedMsg{vendorID: id, saved: saved} }

	case reviewSubmittedMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.writing = false
		m.status, m.isErr = catalog.MsgReviewThanks, false
		return m, m.loadReviews()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.writing {
			return m.updateReview(msg)
		}
		switch msg.String() {
		case "esc", "backspace":
			m.closed = true
		case "f":
			return m.toggleFavorite()
		case "w":
			m.writing = true
			m.review = reviewForm()
			m.status = ""
		}
	}
	return m, nil
}

func (m detailModel) toggleFavorite() (detailModel, tea.Cmd) {
	c, userID, vendorID, saved := m.catalog, m.user.ID, m.vendor.ID, m.saved
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		next, err := c.ToggleFavorite(context.Background(), userID, vendorID, saved)
		return favoriteToggledMsg{saved: next, err: err}
	}
}

func (m detailModel) updateReview(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if msg.String() == "esc" {
		m.writing = false
		m.status = ""
		return m, nil
	}
	var submit bool
	m.review, submit = m.review.update(msg)
	if !submit {
		return m, nil
	}
	rating, _ := strconv.Atoi(m.review.value(fieldRating)) //nolint:errcheck // choices are digits
	comment := m.review.value(fieldComment)
	c, userID, vendorID := m.catalog, m.user.ID, m.vendor.ID
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		return reviewSubmittedMsg{err: c.SubmitReview(context.Background(), userID, vendorID, rating, comment)}
	}
}

func (m detailModel) editing() bool {
	return m.writing
}

func (m detailModel) View() string {
	var b strings.Builder
	v := m.vendor

	heart := metaStyle.Render("♡")
	if m.saved {
		heart = heartStyle.Render("♥")
	}
	fmt.Fprintf(&b, "  %s  %s  %s\n", titleStyle.Render(v.Name), statusBadge(v.IsOpen), heart)
	fmt.Fprintf(&b, "  %s %s  %s\n", ratingStars(v.Rating), dimStyle.Render(fmt.Sprintf("%.1f", v.Rating)), metaStyle.Render(fmt.Sprintf("%d reviews", v.TotalReviews)))
	if v.Address != "" {
		b.WriteString("  " + dimStyle.Render(v.Address) + "\n")
	}
	if v.Phone != "" {
		b.WriteString("  " + dimStyle.Render(v.Phone) + "\n")
	}
	if v.Description != "" {
		b.WriteString("\n  " + normalStyle.Render(oneLine(v.Description)) + "\n")
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("MENU") + "\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Loading menu...") + "\n")
	case len(m.menu) == 0:
		b.WriteString("  " + dimStyle.Render("Nothing on the menu right now.") + "\n")
	default:
		for _, sec := range catalog.GroupByCategory(m.menu) {
			b.WriteString("  " + CategoryStyle(sec.Category).Render(sec.Category) + "\n")
			for _, f := range sec.Foods {
				fmt.Fprintf(&b, "    %-28s %s  %s\n", truncStr(f.Name, 28), priceStyle.Render(formatPrice(f.Price)), metaStyle.Render(fmt.Sprintf("%d min", f.PreparationTime)))
			}
		}
	}

	if m.writing {
		b.WriteString("\n  " + sectionHeaderStyle.Render("YOUR REVIEW") + "\n")
		b.WriteString(m.review.View())
	} else {
		b.WriteString("\n  " + sectionHeaderStyle.Render("REVIEWS") + "\n")
		if len(m.reviews) == 0 {
			b.WriteString("  " + dimStyle.Render("No reviews yet. Be the first!") + "\n")
		}
		for i, r := range m.reviews {
			if i == maxReviewsShown {
				b.WriteString("  " + metaStyle.Render(fmt.Sprintf("and %d more", len(m.reviews)-maxReviewsShown)) + "\n")
				break
			}
			who := "Customer"
			if r.User != nil && r.User.Name != "" {
				who = r.User.Name
			}
			fmt.Fprintf(&b, "  %s %s %s\n", ratingStars(float64(r.Rating)), normalStyle.Render(who), metaStyle.Render(formatTime(r.CreatedAt)))
			b.WriteString("    " + dimStyle.Render(truncStr(oneLine(r.Comment), max(m.width-6, 20))) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
	}
	return b.String()
}

func (m detailModel) helpKeys() string {
	if m.writing {
		return helpBar(helpEntry("←/→", "rating"), helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("f", "favorite"), helpEntry("w", "review"), helpEntry("esc", "back"), helpEntry("?", "help"), helpEntry("q", "quit"))
}
