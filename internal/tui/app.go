// Package tui is the interactive terminal client. The root model follows the
// session store and mounts the screens that fit the current session.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/auth"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/internal/session"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// Auth is the slice of the auth controller the screens call.
type Auth interface {
	Store() *session.Store
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
	SignUp(ctx context.Context, email, password, name string, role domain.Role) error
	SignInWithGoogle(ctx context.Context) (*domain.User, error)
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error
	UploadAvatar(ctx context.Context, localPath string) (string, error)
}

var _ Auth = (*auth.Controller)(nil)

// Catalog is the slice of the catalog service the screens call.
type Catalog interface {
	OpenVendors(ctx context.Context) ([]domain.Vendor, error)
	Featured(ctx context.Context) ([]domain.FeaturedVendor, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	VendorMenu(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error)
	Reviews(ctx context.Context, vendorID uuid.UUID) ([]domain.Review, error)
	Favorites(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	IsFavorite(ctx context.Context, userID, vendorID uuid.UUID) (bool, error)
	ToggleFavorite(ctx context.Context, userID, vendorID uuid.UUID, saved bool) (bool, error)
	SubmitReview(ctx context.Context, userID, vendorID uuid.UUID, rating int, comment string) error
	CustomerStats(ctx context.Context, userID uuid.UUID) (domain.CustomerStats, error)
	MyVendor(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error)
	SetupVendor(ctx context.Context, userID uuid.UUID, setup catalog.VendorSetup) (*domain.Vendor, error)
	SetOpen(ctx context.Context, vendorID uuid.UUID, open bool) error
	Menu(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error)
	AddFood(ctx context.Context, vendorID uuid.UUID, form catalog.FoodForm) (*domain.Food, error)
	UpdateFood(ctx context.Context, vendorID, foodID uuid.UUID, form catalog.FoodForm) (*domain.Food, error)
	DeleteFood(ctx context.Context, vendorID, foodID uuid.UUID) error
	SetFoodAvailability(ctx context.Context, vendorID, foodID uuid.UUID, available bool) error
	Analytics(ctx context.Context, vendorID uuid.UUID) (*domain.Analytics, error)
}

var _ Catalog = (*catalog.Service)(nil)

// tree is the screen hierarchy mounted for a session state.
type tree int

const (
	treeSplash tree = iota
	treeAuth
	treeCustomer
	treeVendor
)

func treeFor(s session.Snapshot) tree {
	switch s.State() {
	case session.Authenticated:
		if s.Identity.IsVendor() {
			return treeVendor
		}
		return treeCustomer
	case session.Anonymous:
		return treeAuth
	default:
		return treeSplash
	}
}

// snapshotMsg carries a session store change.
type snapshotMsg session.Snapshot

// identityMsg tells a mounted tree its profile row was replaced.
type identityMsg struct{ user domain.User }

func waitSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

// App is the root Bubbletea model.
type App struct {
	auth     Auth
	catalog  Catalog
	snaps    <-chan session.Snapshot
	unsub    func()
	snap     session.Snapshot
	tree     tree
	login    authModel
	customer customerModel
	vendor   vendorModel
	helpOpen bool
	width    int
	height   int
	frame    int // logo ember animation frame
}

// NewApp creates the TUI over an auth controller and catalog. Call Close
// when the program exits.
func NewApp(a Auth, c Catalog) App {
	snaps, unsub := a.Store().Subscribe()
	return App{
		auth:    a,
		catalog: c,
		snaps:   snaps,
		unsub:   unsub,
		snap:    session.Snapshot{Loading: true},
		login:   newAuthModel(a),
	}
}

// Close stops following the session store.
func (a App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(emberTickCmd(), waitSnapshot(a.snaps))
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + blank(1) + help(1)
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 4}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := a.bodySize()
		a.login, _ = a.login.Update(body)
		a.customer, _ = a.customer.Update(body)
		a.vendor, _ = a.vendor.Update(body)
		return a, nil

	case emberTickMsg:
		a.frame++
		return a, emberTickCmd()

	case snapshotMsg:
		cmd := a.mount(session.Snapshot(msg))
		return a, tea.Batch(cmd, waitSnapshot(a.snaps))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch a.tree {
	case treeAuth:
		a.login, cmd = a.login.Update(msg)
	case treeCustomer:
		a.customer, cmd = a.customer.Update(msg)
	case treeVendor:
		a.vendor, cmd = a.vendor.Update(msg)
	}
	return a, cmd
}

// mount switches screen trees when the session changes. Screens never
// write the store; they only see the result here.
func (a *App) mount(s session.Snapshot) tea.Cmd {
	prev := a.snap
	a.snap = s
	next := treeFor(s)
	sameUser := prev.Identity != nil && s.Identity != nil && prev.Identity.ID == s.Identity.ID

	if next == a.tree && (next == treeSplash || next == treeAuth || sameUser) {
		if sameUser && *prev.Identity != *s.Identity {
			var cmd tea.Cmd
			im := identityMsg{user: *s.Identity}
			switch a.tree {
			case treeCustomer:
				a.customer, cmd = a.customer.Update(im)
			case treeVendor:
				a.vendor, cmd = a.vendor.Update(im)
			}
			return cmd
		}
		return nil
	}

	a.tree = next
	body := a.bodySize()
	switch next {
	case treeAuth:
		a.login = newAuthModel(a.auth)
		a.login, _ = a.login.Update(body)
	case treeCustomer:
		a.customer = newCustomerModel(a.auth, a.catalog, *s.Identity)
		a.customer, _ = a.customer.Update(body)
		return a.customer.Init()
	case treeVendor:
		a.vendor = newVendorModel(a.auth, a.catalog, *s.Identity)
		a.vendor, _ = a.vendor.Update(body)
		return a.vendor.Init()
	}
	return nil
}

func (a App) isEditing() bool {
	switch a.tree {
	case treeAuth:
		return true
	case treeCustomer:
		return a.customer.editing()
	case treeVendor:
		return a.vendor.editing()
	}
	return false
}

func (a App) View() string {
	logo := renderEmberLogo(a.frame)
	header := center(logo, a.width)

	sub := ""
	if u := a.snap.Identity; u != nil {
		sub = metaStyle.Render(fmt.Sprintf("%s · %s", u.Name, u.Role))
	}
	header += "\n" + center(sub, a.width)

	var body, help string
	switch a.tree {
	case treeSplash:
		body = splashView(a.frame, a.width, a.height-4)
		help = helpBar(helpEntry("ctrl+c", "quit"))
	case treeAuth:
		body = a.login.View()
		help = a.login.helpKeys()
	case treeCustomer:
		body = a.customer.View()
		help = a.customer.helpKeys()
	case treeVendor:
		body = a.vendor.View()
		help = a.vendor.helpKeys()
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar(helpEntry("esc", "close"))
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")
	return fmt.Sprintf("%s\n\n%s\n%s", header, body, help)
}

// center pads s so it sits in the middle of width columns.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// renderTabs draws a tab bar spread evenly across width.
func renderTabs(names []string, active, width int) string {
	if len(names) == 0 {
		return ""
	}
	colWidth := width / len(names)
	var b strings.Builder
	for i, name := range names {
		var label string
		if i == active {
			label = accentStyle.Render(fmt.Sprint(i+1)) + " " + selectedStyle.Underline(true).Render(name)
		} else {
			label = metaStyle.Render(fmt.Sprint(i+1)) + " " + dimStyle.Render(name)
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		b.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}
	return b.String()
}

// tabIndex maps "1".."9" to a tab index below n, or -1.
func tabIndex(key string, n int) int {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return -1
	}
	i := int(key[0] - '1')
	if i >= n {
		return -1
	}
	return i
}
