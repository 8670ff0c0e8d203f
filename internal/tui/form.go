package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// formField is one labelled input. Fields with choices cycle with
// left/right instead of accepting text.
type formField struct {
	label       string
	value       string
	placeholder string
	secret      bool
	choices     []string
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	return form{fields: fields}
}

// value returns the value of the field with the given label.
func (f form) value(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return fld.value
		}
	}
	return ""
}

// set replaces the value of the field with the given label.
func (f form) set(label, value string) form {
	for i := range f.fields {
		if f.fields[i].label == label {
			f.fields[i].value = value
		}
	}
	return f
}

// reset clears every text field and returns focus to the first.
func (f form) reset() form {
	fields := make([]formField, len(f.fields))
	copy(fields, f.fields)
	for i := range fields {
		if len(fields[i].choices) == 0 {
			fields[i].value = ""
		}
	}
	return form{fields: fields}
}

// update applies a key to the form. submit is true when the user pressed
// enter on the last field or ctrl+s anywhere.
func (f form) update(msg tea.KeyMsg) (next form, submit bool) {
	n := len(f.fields)
	if n == 0 {
		return f, false
	}
	fields := make([]formField, n)
	copy(fields, f.fields)
	f.fields = fields
	cur := &f.fields[f.focus]

	switch key := msg.String(); key {
	case "ctrl+s":
		return f, true
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "enter":
		if f.focus == n-1 {
			return f, true
		}
		f.focus++
	case "left", "right":
		if len(cur.choices) > 0 {
			cur.value = cycle(cur.choices, cur.value, key == "right")
		}
	default:
		if len(cur.choices) == 0 {
			if msg.Type == tea.KeyRunes && msg.Paste {
				for _, r := range msg.Runes {
					cur.value = editRune(cur.value, string(r))
				}
			} else {
				cur.value = editRune(cur.value, key)
			}
		}
	}
	return f, false
}

func cycle(choices []string, current string, forward bool) string {
	idx := 0
	for i, c := range choices {
		if c == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(choices)
	} else {
		idx = (idx - 1 + len(choices)) % len(choices)
	}
	return choices[idx]
}

func (f form) View() string {
	width := 0
	for _, fld := range f.fields {
		width = max(width, len(fld.label))
	}
	var b strings.Builder
	for i, fld := range f.fields {
		focused := i == f.focus
		cursor := " "
		label := metaStyle
		if focused {
			cursor = accentStyle.Render(">")
			label = selectedStyle
		}
		var input string
		if len(fld.choices) > 0 {
			input = accentStyle.Render("‹ ") + selectedStyle.Render(fld.value) + accentStyle.Render(" ›")
		} else {
			input = renderInput(fld.value, fld.placeholder, fld.secret, focused)
		}
		fmt.Fprintf(&b, " %s %s  %s\n", cursor, label.Render(fmt.Sprintf("%-*s", width, fld.label)), input)
	}
	return b.String()
}
