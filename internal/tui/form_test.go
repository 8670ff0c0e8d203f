package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testForm() form {
	return newForm(
		formField{label: "Name"},
		formField{label: "Secret", secret: true},
		formField{label: "Role", value: "customer", choices: []string{"customer", "vendor"}},
	)
}

func TestFormTypingGoesToFocusedField(t *testing.T) {
	f := typeText(testForm(), "Wanjiku")
	f, _ = f.update(keyMsg("tab"))
	f = typeText(f, "pass word")

	if got := f.value("Name"); got != "Wanjiku" {
		t.Errorf("Name = %q", got)
	}
	if got := f.value("Secret"); got != "pass word" {
		t.Errorf("Secret = %q", got)
	}
	if got := f.value("Missing"); got != "" {
		t.Errorf("unknown label = %q, want empty", got)
	}
}

func TestFormNavigationWraps(t *testing.T) {
	f := testForm()
	f, _ = f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != 2 {
		t.Fatalf("shift+tab from first field: focus = %d, want 2", f.focus)
	}
	f, _ = f.update(keyMsg("tab"))
	if f.focus != 0 {
		t.Errorf("tab from last field: focus = %d, want 0", f.focus)
	}
}

func TestFormChoicesCycleAndIgnoreText(t *testing.T) {
	f := testForm()
	f.focus = 2
	f, _ = f.update(keyMsg("right"))
	if got := f.value("Role"); got != "vendor" {
		t.Fatalf("right: Role = %q, want vendor", got)
	}
	f, _ = f.update(keyMsg("right"))
	if got := f.value("Role"); got != "customer" {
		t.Errorf("right wraps: Role = %q, want customer", got)
	}
	f, _ = f.update(keyMsg("left"))
	f = typeText(f, "zz")
	if got := f.value("Role"); got != "vendor" {
		t.Errorf("typing on a choice field: Role = %q, want vendor", got)
	}
}

func TestFormSubmit(t *testing.T) {
	f := testForm()
	f, submit := f.update(keyMsg("enter"))
	if submit || f.focus != 1 {
		t.Fatalf("enter on first field: submit=%v focus=%d, want false/1", submit, f.focus)
	}
	f.focus = 2
	if _, submit = f.update(keyMsg("enter")); !submit {
		t.Error("enter on last field should submit")
	}
	f.focus = 0
	if _, submit = f.update(tea.KeyMsg{Type: tea.KeyCtrlS}); !submit {
		t.Error("ctrl+s should submit from any field")
	}
}

func TestFormPaste(t *testing.T) {
	f, _ := testForm().update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("jane@example.com"), Paste: true})
	if got := f.value("Name"); got != "jane@example.com" {
		t.Errorf("paste = %q", got)
	}
}

func TestFormUpdateDoesNotAliasPrevious(t *testing.T) {
	before := testForm()
	after := typeText(before, "x")
	if before.value("Name") != "" {
		t.Errorf("original form changed to %q", before.value("Name"))
	}
	if after.value("Name") != "x" {
		t.Errorf("updated form = %q", after.value("Name"))
	}
}

func TestFormSetAndReset(t *testing.T) {
	f := testForm().set("Name", "Otieno")
	f.focus = 2
	f, _ = f.update(keyMsg("right"))
	f = f.reset()
	if f.value("Name") != "" {
		t.Errorf("reset kept Name %q", f.value("Name"))
	}
	if f.value("Role") != "vendor" {
		t.Errorf("reset changed choice to %q", f.value("Role"))
	}
	if f.focus != 0 {
		t.Errorf("reset focus = %d", f.focus)
	}
}

func TestFormViewMasksSecrets(t *testing.T) {
	f := testForm().set("Secret", "hunter2").set("Name", "Akinyi")
	view := f.View()
	if strings.Contains(view, "hunter2") {
		t.Errorf("secret leaked into view:\n%s", view)
	}
	for _, want := range []string{"Name", "Akinyi", "Role", "customer", "•••••••"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
