package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// settle feeds the messages produced by cmd back into m until nothing is
// left to run.
func settle(m customerModel, cmd tea.Cmd) customerModel {
	for depth := 0; cmd != nil && depth < 8; depth++ {
		var cmds []tea.Cmd
		for _, msg := range runCmd(cmd) {
			var next tea.Cmd
			m, next = m.Update(msg)
			cmds = append(cmds, next)
		}
		cmd = tea.Batch(cmds...)
	}
	return m
}

func press(m customerModel, keys ...string) customerModel {
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(keyMsg(k))
		m = settle(m, cmd)
	}
	return m
}

func newTestCustomer(fc *fakeCatalog) (customerModel, *fakeAuth) {
	fa := newFakeAuth()
	m := newCustomerModel(fa, fc, customerUser())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return settle(m, m.Init()), fa
}

func stalls() []domain.Vendor {
	return []domain.Vendor{
		{ID: uuid.New(), Name: "Mama Oliech", Address: "Marcus Garvey Rd", Rating: 4.6, TotalReviews: 12, IsOpen: true},
		{ID: uuid.New(), Name: "Kenchic Corner", Address: "Moi Avenue", Description: "chips and chicken", Rating: 3.9, IsOpen: true},
		{ID: uuid.New(), Name: "Githeri Base", Address: "Kenyatta Market", Rating: 4.1, IsOpen: true},
	}
}

func TestExploreLoadsAndSearches(t *testing.T) {
	m, _ := newTestCustomer(&fakeCatalog{vendors: stalls()})

	view := m.View()
	for _, want := range []string{"OPEN NOW (3)", "Mama Oliech", "Githeri Base", "Mains"} {
		if !strings.Contains(view, want) {
			t.Errorf("explore view missing %q:\n%s", want, view)
		}
	}

	m = press(m, "/", "c", "h", "i", "p", "s")
	if !m.editing() {
		t.Fatal("search should count as text entry")
	}
	// Digits type into the search instead of switching tabs.
	m = press(m, "2")
	if m.tab != tabExplore {
		t.Fatalf("tab switched while searching")
	}
	m = press(m, "backspace", "enter")
	if got := m.explore.visible(); len(got) != 1 || got[0].Name != "Kenchic Corner" {
		t.Fatalf("search visible = %+v", got)
	}
	if view := m.View(); !strings.Contains(view, "matching") || strings.Contains(view, "Githeri Base") {
		t.Errorf("filtered view wrong:\n%s", view)
	}

	m = press(m, "esc")
	if len(m.explore.visible()) != 3 {
		t.Error("esc did not clear the search")
	}
}

func TestExploreLoadFailure(t *testing.T) {
	m, _ := newTestCustomer(&fakeCatalog{err: errors.New(catalog.MsgLoadVendors)})
	if view := m.View(); !strings.Contains(view, catalog.MsgLoadVendors) {
		t.Errorf("error not shown:\n%s", view)
	}
}

func TestOpenVendorPage(t *testing.T) {
	fc := &fakeCatalog{
		vendors: stalls(),
		menu: []domain.Food{
			{ID: uuid.New(), Name: "Ugali Sukuma", Category: "Mains", Price: 120, PreparationTime: 10},
			{ID: uuid.New(), Name: "Chai", Category: "Drinks", Price: 30, PreparationTime: 5},
		},
		reviews: []domain.Review{{Rating: 4, Comment: "Tasty fish", User: &domain.User{Name: "Otieno"}}},
	}
	m, _ := newTestCustomer(fc)
	m = press(m, "j", "enter")

	if !m.detailOpen {
		t.Fatal("enter did not open the vendor page")
	}
	if m.detail.vendor.Name != "Kenchic Corner" {
		t.Errorf("opened %q", m.detail.vendor.Name)
	}
	view := m.View()
	for _, want := range []string{"Kenchic Corner", "Ugali Sukuma", "KSh 120", "Drinks", "Tasty fish", "Otieno"} {
		if !strings.Contains(view, want) {
			t.Errorf("vendor page missing %q:\n%s", want, view)
		}
	}

	m = press(m, "esc")
	if m.detailOpen {
		t.Error("esc did not close the vendor page")
	}
}

func TestToggleFavoriteRefreshesFavorites(t *testing.T) {
	fc := &fakeCatalog{vendors: stalls()}
	m, _ := newTestCustomer(fc)

	m = press(m, "2")
	if fc.called("Favorites") != 1 {
		t.Fatalf("Favorites called %d times", fc.called("Favorites"))
	}
	if !strings.Contains(m.View(), "No favorites yet") {
		t.Errorf("empty favorites view:\n%s", m.View())
	}

	m = press(m, "1", "enter", "f")
	if !m.detail.saved {
		t.Fatal("vendor not saved")
	}
	if !strings.Contains(m.View(), "♥") {
		t.Error("heart not shown")
	}
	if fc.called("Favorites") != 2 {
		t.Errorf("favorites list not refreshed after toggle: %d calls", fc.called("Favorites"))
	}

	m = press(m, "esc", "2")
	if view := m.View(); !strings.Contains(view, "SAVED (1)") || !strings.Contains(view, "Mama Oliech") {
		t.Errorf("favorites view:\n%s", view)
	}
}

func TestWriteReview(t *testing.T) {
	fc := &fakeCatalog{vendors: stalls()}
	m, _ := newTestCustomer(fc)
	m = press(m, "enter", "w")
	if !m.editing() {
		t.Fatal("review form should count as text entry")
	}

	m = press(m, "left", "tab")
	for _, r := range "Best fish in town" {
		m = press(m, string(r))
	}
	m = press(m, "enter")

	if len(fc.reviewed) != 1 || fc.reviewed[0] != "Best fish in town" {
		t.Fatalf("reviewed = %v", fc.reviewed)
	}
	if got := fc.reviews[0].Rating; got != 4 {
		t.Errorf("rating = %d, want 4", got)
	}
	if m.detail.writing {
		t.Error("form still open after submit")
	}
	if view := m.View(); !strings.Contains(view, catalog.MsgReviewThanks) || !strings.Contains(view, "Best fish in town") {
		t.Errorf("review not shown after submit:\n%s", view)
	}
}

func TestWriteReviewRejected(t *testing.T) {
	fc := &fakeCatalog{vendors: stalls()}
	m, _ := newTestCustomer(fc)
	m = press(m, "enter", "w")
	fc.err = errors.New(catalog.MsgAlreadyReviewed)
	m = press(m, "tab", "x", "enter")

	if !m.detail.writing {
		t.Error("form closed after a rejected review")
	}
	if !strings.Contains(m.View(), catalog.MsgAlreadyReviewed) {
		t.Errorf("rejection not shown:\n%s", m.View())
	}
}

func TestProfileEditSendsChangedFields(t *testing.T) {
	m, fa := newTestCustomer(&fakeCatalog{vendors: stalls()})
	m = press(m, "3")
	if !strings.Contains(m.View(), "reviews") {
		t.Errorf("stats missing:\n%s", m.View())
	}

	m = press(m, "e", " ", "O", "d", "h", "i", "a", "m", "b", "o", "tab", "enter")
	if len(fa.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(fa.updates))
	}
	upd := fa.updates[0]
	if upd.Name == nil || *upd.Name != "Amina Odhiambo" {
		t.Errorf("name update = %v", upd.Name)
	}
	if upd.Email != nil {
		t.Errorf("unchanged email sent: %q", *upd.Email)
	}
	if !strings.Contains(m.View(), "Profile updated.") {
		t.Errorf("no confirmation:\n%s", m.View())
	}
}

func TestProfileAvatarUpload(t *testing.T) {
	t.Setenv("HOME", "/home/amina")
	m, fa := newTestCustomer(&fakeCatalog{vendors: stalls()})
	m = press(m, "3", "a")
	for _, r := range "~/me.jpg" {
		m = press(m, string(r))
	}
	m = press(m, "enter")

	if fa.avatar != "/home/amina/me.jpg" {
		t.Errorf("uploaded %q", fa.avatar)
	}
	if !strings.Contains(m.View(), "Photo updated.") {
		t.Errorf("no confirmation:\n%s", m.View())
	}
}

func TestProfileCopyAvatarLink(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	defer func() { clipboardWrite = orig }()

	m, _ := newTestCustomer(&fakeCatalog{vendors: stalls()})
	m = press(m, "3", "y")
	if copied != "" || !strings.Contains(m.View(), "No photo to copy yet.") {
		t.Fatalf("copy without a photo: copied=%q\n%s", copied, m.View())
	}

	u := m.user
	u.AvatarURL = "https://cdn.example/avatars/amina.jpg"
	m, _ = m.Update(identityMsg{user: u})
	m = press(m, "y")
	if copied != u.AvatarURL {
		t.Errorf("copied %q", copied)
	}
	if !strings.Contains(m.View(), "Photo link copied.") {
		t.Errorf("no confirmation:\n%s", m.View())
	}
}

func TestProfileSignOut(t *testing.T) {
	m, fa := newTestCustomer(&fakeCatalog{vendors: stalls()})
	fa.w.Authenticate(fa.w.Begin(), m.user)
	_ = press(m, "3", "o")
	if !fa.called("SignOut") {
		t.Fatal("SignOut not called")
	}
	if fa.store.Identity() != nil {
		t.Error("store still authenticated")
	}
}
