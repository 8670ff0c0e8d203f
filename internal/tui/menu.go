package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/internal/catalog"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// menuState is the state machine for menu editing.
type menuState int

const (
	menuBrowsing menuState = iota
	menuAdding             // filling the new item form
	menuEditing            // filling the form for the selected item
	menuDeleting           // waiting for delete confirmation
)

// Food form labels.
const (
	fieldFoodName  = "Name"
	fieldPrice     = "Price"
	fieldCategory  = "Category"
	fieldFoodDesc  = "Description"
	fieldPrepTime  = "Prep minutes"
	fieldAvailable = "Available"
)

type foodsLoadedMsg struct {
	foods []domain.Food
	err   error
}

// foodSavedMsg reports an add, edit, delete or availability change.
type foodSavedMsg struct {
	notice string
	err    error
}

type menuModel struct {
	catalog  Catalog
	vendorID uuid.UUID
	foods    []domain.Food
	cursor   int
	state    menuState
	form     form
	editID   uuid.UUID
	loaded   bool
	busy     bool
	status   string
	isErr    bool
	width    int
	height   int
}

func newMenuModel(c Catalog, vendorID uuid.UUID) menuModel {
	return menuModel{catalog: c, vendorID: vendorID}
}

func (m menuModel) Init() tea.Cmd {
	c, id := m.catalog, m.vendorID
	return func() tea.Msg {
		foods, err := c.Menu(context.Background(), id)
		return foodsLoadedMsg{foods: foods, err: err}
	}
}

func foodForm(f catalog.FoodForm) form {
	available := "yes"
	if !f.Available {
		available = "no"
	}
	return newForm(
		formField{label: fieldFoodName, value: f.Name, placeholder: "Githeri"},
		formField{label: fieldPrice, value: f.Price, placeholder: "150"},
		formField{label: fieldCategory, value: f.Category, placeholder: "Mains"},
		formField{label: fieldFoodDesc, value: f.Description, placeholder: "optional"},
		formField{label: fieldPrepTime, value: f.PreparationTime, placeholder: fmt.Sprint(catalog.DefaultPreparationTime)},
		formField{label: fieldAvailable, value: available, choices: []string{"yes", "no"}},
	)
}

func (m menuModel) formValues() catalog.FoodForm {
	return catalog.FoodForm{
		Name:            m.form.value(fieldFoodName),
		Price:           m.form.value(fieldPrice),
		Category:        m.form.value(fieldCategory),
		Description:     m.form.value(fieldFoodDesc),
		PreparationTime: m.form.value(fieldPrepTime),
		Available:       m.form.value(fieldAvailable) == "yes",
	}
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case foodsLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.foods = msg.foods
		m.cursor = clampCursor(m.cursor, len(m.foods))

	case foodSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.status, m.isErr = apperr.Message(msg.err), true
			return m, nil
		}
		m.state = menuBrowsing
		m.status, m.isErr = msg.notice, false
		return m, m.Init()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch m.state {
		case menuAdding, menuEditing:
			return m.updateForm(msg)
		case menuDeleting:
			return m.updateDelete(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m menuModel) selected() (domain.Food, bool) {
	if len(m.foods) == 0 {
		return domain.Food{}, false
	}
	return m.foods[m.cursor], true
}

func (m menuModel) updateBrowse(msg tea.KeyMsg) (menuModel, tea.Cmd) {
	m.status = ""
	switch key := msg.String(); key {
	case "a":
		m.state = menuAdding
		m.form = foodForm(catalog.FoodForm{Available: true})
	case "e", "enter":
		if f, ok := m.selected(); ok {
			m.state = menuEditing
			m.editID = f.ID
			m.form = foodForm(catalog.FormFromFood(f))
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.state = menuDeleting
		}
	case " ", "space":
		if f, ok := m.selected(); ok {
			c, vendorID, available := m.catalog, m.vendorID, !f.IsAvailable
			notice := f.Name + " is sold out."
			if available {
				notice = f.Name + " is back on the menu."
			}
			m.busy = true
			return m, func() tea.Msg {
				err := c.SetFoodAvailability(context.Background(), vendorID, f.ID, available)
				return foodSavedMsg{notice: notice, err: err}
			}
		}
	case "r":
		return m, m.Init()
	default:
		m.cursor = moveCursor(m.cursor, len(m.foods), key)
	}
	return m, nil
}

func (m menuModel) updateForm(msg tea.KeyMsg) (menuModel, tea.Cmd) {
	if msg.String() == "esc" {
		m.state = menuBrowsing
		m.status = ""
		return m, nil
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}

	values := m.formValues()
	// Validate here so mistakes show without a round trip.
	if _, err := values.Input(); err != nil {
		m.status, m.isErr = apperr.Message(err), true
		return m, nil
	}

	c, vendorID, foodID, adding := m.catalog, m.vendorID, m.editID, m.state == menuAdding
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		if adding {
			f, err := c.AddFood(context.Background(), vendorID, values)
			if err != nil {
				return foodSavedMsg{err: err}
			}
			return foodSavedMsg{notice: f.Name + " added to your menu."}
		}
		f, err := c.UpdateFood(context.Background(), vendorID, foodID, values)
		if err != nil {
			return foodSavedMsg{err: err}
		}
		return foodSavedMsg{notice: f.Name + " updated."}
	}
}

func (m menuModel) updateDelete(msg tea.KeyMsg) (menuModel, tea.Cmd) {
	f, ok := m.selected()
	if !ok || msg.String() != "y" {
		m.state = menuBrowsing
		return m, nil
	}
	c, vendorID := m.catalog, m.vendorID
	m.busy = true
	return m, func() tea.Msg {
		err := c.DeleteFood(context.Background(), vendorID, f.ID)
		return foodSavedMsg{notice: f.Name + " removed.", err: err}
	}
}

func (m menuModel) editing() bool {
	return m.state == menuAdding || m.state == menuEditing
}

func (m menuModel) View() string {
	var b strings.Builder

	switch m.state {
	case menuAdding, menuEditing:
		title := "NEW ITEM"
		if m.state == menuEditing {
			title = "EDIT ITEM"
		}
		b.WriteString("  " + sectionHeaderStyle.Render(title) + "\n")
		b.WriteString(m.form.View())
		if m.status != "" {
			b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
		}
		return b.String()
	}

	switch {
	case !m.loaded:
		b.WriteString("  " + dimStyle.Render("Loading menu...") + "\n")
	case len(m.foods) == 0:
		b.WriteString("  " + dimStyle.Render("Your menu is empty. Press a to add your first item.") + "\n")
	default:
		b.WriteString("  " + sectionHeaderStyle.Render(fmt.Sprintf("MENU (%d)", len(m.foods))) + "\n")
		for i, f := range m.foods {
			prefix := "  "
			name := normalStyle.Render(fmt.Sprintf("%-24s", truncStr(f.Name, 24)))
			if i == m.cursor {
				prefix = accentStyle.Render("> ")
				name = selectedStyle.Render(fmt.Sprintf("%-24s", truncStr(f.Name, 24)))
			}
			avail := successStyle.Render("available")
			if !f.IsAvailable {
				avail = closedStyle.Render("sold out ")
			}
			cat := CategoryStyle(f.Category).Render(fmt.Sprintf("%-12s", truncStr(f.Category, 12)))
			fmt.Fprintf(&b, "%s%s %s %s  %s\n", prefix, name, cat, priceStyle.Render(fmt.Sprintf("%-12s", formatPrice(f.Price))), avail)
		}
	}

	if m.state == menuDeleting {
		if f, ok := m.selected(); ok {
			b.WriteString("\n  " + errorStyle.Render(fmt.Sprintf("Delete %s? y to confirm, any other key to cancel", f.Name)) + "\n")
		}
	}
	if m.busy {
		b.WriteString("\n  " + dimStyle.Render("Saving...") + "\n")
	} else if m.status != "" {
		b.WriteString("\n  " + statusLine(m.status, m.isErr) + "\n")
	}
	return b.String()
}

func (m menuModel) helpKeys() string {
	if m.editing() {
		return helpBar(helpEntry("tab", "next"), helpEntry("←/→", "available"), helpEntry("enter", "save"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-4", "tabs"), helpEntry("j/k", "nav"), helpEntry("a", "add"), helpEntry("e", "edit"), helpEntry("space", "sold out"), helpEntry("d", "delete"), helpEntry("?", "help"), helpEntry("q", "quit"))
}
