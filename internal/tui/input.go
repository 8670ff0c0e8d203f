package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen caps every form field, in runes.
const maxInputLen = 2000

// editRune applies one key to a field value: backspace drops the last rune,
// a single printable rune is appended, and named keys are ignored.
func editRune(text, key string) string {
	if key == "backspace" {
		_, size := utf8.DecodeLastRuneInString(text)
		return text[:len(text)-size]
	}
	if key == "space" {
		key = " "
	}
	if utf8.RuneCountInString(key) != 1 || utf8.RuneCountInString(text) >= maxInputLen {
		return text
	}
	return text + key
}

// truncateToHeight keeps the first maxLines lines of s. A non-positive
// maxLines keeps everything.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	end := 0
	for n := 0; n < maxLines; n++ {
		i := strings.IndexByte(s[end:], '\n')
		if i < 0 {
			return s
		}
		end += i + 1
	}
	return s[:end]
}

// renderInput renders a one-line text input with a cursor when focused.
func renderInput(value, placeholder string, secret, focused bool) string {
	shown := value
	if secret {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	cursor := ""
	if focused {
		cursor = accentStyle.Render("█")
	}
	if shown == "" {
		return cursor + inputPlaceholderStyle.Render(placeholder)
	}
	if focused {
		return selectedStyle.Render(shown) + cursor
	}
	return normalStyle.Render(shown)
}
