package tui

import "strings"

var splashFrames = []string{"◐", "◓", "◑", "◒"}

// splashView is shown while the stored session is being checked.
func splashView(frame, width, height int) string {
	spinner := accentStyle.Render(splashFrames[(frame/3)%len(splashFrames)])
	line := center(spinner+" "+dimStyle.Render("Finding your session..."), width)
	top := max(height/2-1, 0)
	return strings.Repeat("\n", top) + line + "\n"
}
