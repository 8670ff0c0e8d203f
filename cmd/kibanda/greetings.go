package main

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kengakuru/kibanda/pkg/domain"
)

var kibandaGreetings = [...]string{
	"The chapati is hot. You are not signed in. One of these is a problem.",
	"Mama Oliech asked about you. We said you were still outside.",
	"Somewhere a mandazi is cooling. Nobody will review it.",
	"The jiko has been lit since five. Where have you been?",
	"The githeri does not wait. Neither does the queue.",
	"You cannot favorite a stall from out here.",
	"The smokie guy moved two streets over. Only members know which two.",
	"A stall near you just opened. We would tell you which, but you are not logged in.",
	"Every great plate of nyama choma starts with a login.",
	"Some vendors have fourteen reviews. Some have none. You could change that.",
	"The mutura is ready. The mutura is always ready.",
	"Chai is thirty shillings and this login is free.",
	"The best samosas in town are on a list. The list has a door.",
	"Lunch hour is not getting longer.",
	"A vendor updated their menu. It is a good update.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fb923c")).
		Bold(true).
		Render("K I B A N D A")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Chakula kizuri, karibu nawe."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"kibanda", "Browse vendors (interactive TUI)"},
		{"kibanda login", "Sign in with email and password"},
		{"kibanda login google", "Sign in with Google"},
		{"kibanda logout", "Clear your session"},
		{"kibanda whoami", "Show the signed-in profile"},
		{"kibanda forgot <email>", "Send a password reset link"},
		{"kibanda reset <link>", "Choose a new password from the reset link"},
		{"kibanda --version", "Show version"},
		{"kibanda help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render("Set SUPABASE_URL and SUPABASE_ANON_KEY in the environment or ~/.kibanda/.env")
	fmt.Printf("\n  %s\n\n", env)
}

func printGreeting() {
	msg := kibandaGreetings[rand.IntN(len(kibandaGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fb923c")).
		Bold(true).
		Render("KIBANDA")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To sign in: kibanda login")

	fmt.Printf("\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}

// profileCard renders the whoami output.
func profileCard(u domain.User) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("#fb923c")).Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", name.Render(u.Name))
	fmt.Fprintf(&b, "  %s %s\n", label.Render("email "), u.Email)
	fmt.Fprintf(&b, "  %s %s\n", label.Render("role  "), u.Role)
	if u.AvatarURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", label.Render("photo "), u.AvatarURL)
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "  %s %s\n", label.Render("since "), u.CreatedAt.Format("2 January 2006"))
	}
	b.WriteString("\n")
	return b.String()
}
