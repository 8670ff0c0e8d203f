package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/internal/session"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// fakeAuth drives a real session store so the gate sees genuine snapshots.
type fakeAuth struct {
	mu       sync.Mutex
	store    *session.Store
	w        *session.Writer
	users    map[string]domain.User // by email
	password string
	err      error
	calls    []string
	updates  []domain.ProfileUpdate
	avatar   string
}

var _ Auth = (*fakeAuth)(nil)

func newFakeAuth() *fakeAuth {
	store, w := session.New()
	return &fakeAuth{store: store, w: w, users: map[string]domain.User{}, password: "secret1"}
}

func (f *fakeAuth) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAuth) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeAuth) Store() *session.Store { return f.store }

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*domain.User, error) {
	f.record("SignIn")
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok || password != f.password {
		return nil, apperr.New(apperr.Credentials, "Invalid email or password.")
	}
	f.w.Authenticate(f.w.Begin(), u)
	return &u, nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, password, name string, role domain.Role) error {
	f.record("SignUp")
	if f.err != nil {
		return f.err
	}
	u := domain.User{ID: uuid.New(), Email: email, Name: name, Role: role}
	f.users[email] = u
	f.w.Authenticate(f.w.Begin(), u)
	return nil
}

func (f *fakeAuth) SignInWithGoogle(context.Context) (*domain.User, error) {
	f.record("SignInWithGoogle")
	return nil, f.err
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.record("SignOut")
	f.w.Clear()
	return f.err
}

func (f *fakeAuth) RequestPasswordReset(context.Context, string) error {
	f.record("RequestPasswordReset")
	return f.err
}

func (f *fakeAuth) UpdateProfile(_ context.Context, upd domain.ProfileUpdate) error {
	f.record("UpdateProfile")
	f.mu.Lock()
	f.updates = append(f.updates, upd)
	f.mu.Unlock()
	return f.err
}

func (f *fakeAuth) UploadAvatar(_ context.Context, path string) (string, error) {
	f.record("UploadAvatar")
	f.avatar = path
	return "https://cdn.example/avatars/me.jpg", f.err
}

// fakeCatalog returns canned data and records writes.
type fakeCatalog struct {
	mu        sync.Mutex
	vendors   []domain.Vendor
	menu      []domain.Food
	reviews   []domain.Review
	saved     bool
	myVendor  *domain.Vendor
	stats     *domain.Analytics
	err       error
	calls     []string
	setup     catalog.VendorSetup
	foodForms []catalog.FoodForm
	reviewed  []string
}

var _ Catalog = (*fakeCatalog)(nil)

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCatalog) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeCatalog) OpenVendors(context.Context) ([]domain.Vendor, error) {
	f.record("OpenVendors")
	return f.vendors, f.err
}

func (f *fakeCatalog) Featured(context.Context) ([]domain.FeaturedVendor, error) {
	f.record("Featured")
	return nil, f.err
}

func (f *fakeCatalog) Categories(context.Context) ([]domain.Category, error) {
	f.record("Categories")
	return []domain.Category{{Name: "Mains", VendorCount: 2}}, f.err
}

func (f *fakeCatalog) VendorMenu(context.Context, uuid.UUID) ([]domain.Food, error) {
	f.record("VendorMenu")
	return f.menu, f.err
}

func (f *fakeCatalog) Reviews(context.Context, uuid.UUID) ([]domain.Review, error) {
	f.record("Reviews")
	return f.reviews, f.err
}

func (f *fakeCatalog) Favorites(context.Context, uuid.UUID) ([]domain.Vendor, error) {
	f.record("Favorites")
	if f.saved {
		return f.vendors[:1], f.err
	}
	return nil, f.err
}

func (f *fakeCatalog) IsFavorite(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	f.record("IsFavorite")
	return f.saved, f.err
}

func (f *fakeCatalog) ToggleFavorite(_ context.Context, _, _ uuid.UUID, saved bool) (bool, error) {
	f.record("ToggleFavorite")
	if f.err != nil {
		return saved, f.err
	}
	f.saved = !saved
	return f.saved, nil
}

func (f *fakeCatalog) SubmitReview(_ context.Context, _, _ uuid.UUID, rating int, comment string) error {
	f.record("SubmitReview")
	if f.err != nil {
		return f.err
	}
	f.reviewed = append(f.reviewed, comment)
	f.reviews = append(f.reviews, domain.Review{Rating: rating, Comment: comment, CreatedAt: time.Now()})
	return nil
}

func (f *fakeCatalog) CustomerStats(context.Context, uuid.UUID) (domain.CustomerStats, error) {
	f.record("CustomerStats")
	return domain.CustomerStats{Reviews: 3, Favorites: 4}, f.err
}

func (f *fakeCatalog) MyVendor(context.Context, uuid.UUID) (*domain.Vendor, error) {
	f.record("MyVendor")
	return f.myVendor, f.err
}

func (f *fakeCatalog) SetupVendor(_ context.Context, userID uuid.UUID, setup catalog.VendorSetup) (*domain.Vendor, error) {
	f.record("SetupVendor")
	if f.err != nil {
		return nil, f.err
	}
	f.setup = setup
	v := &domain.Vendor{ID: uuid.New(), UserID: userID, Name: setup.Name, Address: setup.Address, IsOpen: true}
	f.myVendor = v
	return v, nil
}

func (f *fakeCatalog) SetOpen(context.Context, uuid.UUID, bool) error {
	f.record("SetOpen")
	return f.err
}

func (f *fakeCatalog) Menu(context.Context, uuid.UUID) ([]domain.Food, error) {
	f.record("Menu")
	return f.menu, f.err
}

func (f *fakeCatalog) AddFood(_ context.Context, vendorID uuid.UUID, form catalog.FoodForm) (*domain.Food, error) {
	f.record("AddFood")
	if f.err != nil {
		return nil, f.err
	}
	f.foodForms = append(f.foodForms, form)
	food := domain.Food{ID: uuid.New(), VendorID: vendorID, Name: form.Name, IsAvailable: form.Available}
	f.menu = append(f.menu, food)
	return &food, nil
}

func (f *fakeCatalog) UpdateFood(_ context.Context, vendorID, foodID uuid.UUID, form catalog.FoodForm) (*domain.Food, error) {
	f.record("UpdateFood")
	if f.err != nil {
		return nil, f.err
	}
	f.foodForms = append(f.foodForms, form)
	return &domain.Food{ID: foodID, VendorID: vendorID, Name: form.Name}, nil
}

func (f *fakeCatalog) DeleteFood(context.Context, uuid.UUID, uuid.UUID) error {
	f.record("DeleteFood")
	return f.err
}

func (f *fakeCatalog) SetFoodAvailability(context.Context, uuid.UUID, uuid.UUID, bool) error {
	f.record("SetFoodAvailability")
	return f.err
}

func (f *fakeCatalog) Analytics(context.Context, uuid.UUID) (*domain.Analytics, error) {
	f.record("Analytics")
	return f.stats, f.err
}

// runCmd executes cmd and any batches it returns, collecting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText sends each rune of s as its own key press.
func typeText(f form, s string) form {
	for _, r := range s {
		f, _ = f.update(keyMsg(string(r)))
	}
	return f
}
