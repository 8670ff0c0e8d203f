package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The KIBANDA logo glows like coals on a jiko: each letter flickers on its
// own, and the whole fire flares up now and then.
type emberTickMsg time.Time

func emberTickCmd() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(t time.Time) tea.Msg {
		return emberTickMsg(t)
	})
}

// emberRamp runs from cold ash to the yellow tip of a flame.
var emberRamp = [][3]float64{
	{0x3b, 0x1d, 0x10},
	{0x9a, 0x34, 0x12},
	{0xea, 0x58, 0x0c},
	{0xfb, 0x92, 0x3c},
	{0xfd, 0xe6, 0x8a},
}

// emberNoise is a stable pseudo-random value in [0, 1) for a letter at a
// given step.
func emberNoise(letter, step int) float64 {
	h := uint32(letter)*374761393 + uint32(step)*668265263
	h = (h ^ h>>13) * 1274126177
	h ^= h >> 16
	return float64(h%1024) / 1024
}

// emberHeat is how hot a letter burns at a frame, in [0, 1]. Letters keep
// their own flicker, the middle of the word runs hotter than the edges, and
// every 64 frames a flare rolls through.
func emberHeat(letter, n, frame int) float64 {
	const stepFrames = 4
	step, rem := frame/stepFrames, frame%stepFrames
	f := float64(rem) / stepFrames
	flicker := emberNoise(letter, step)*(1-f) + emberNoise(letter, step+1)*f

	centre := float64(n-1) / 2
	core := 1 - math.Abs(float64(letter)-centre)/(centre+1)

	cycle := frame % 64
	flare := 0.0
	if cycle < 12 {
		flare = math.Sin(float64(cycle) / 12 * math.Pi)
	}

	heat := 0.2 + 0.35*flicker + 0.25*core + 0.3*flare
	return math.Max(0, math.Min(1, heat))
}

func emberColor(heat float64) lipgloss.Color {
	pos := heat * float64(len(emberRamp)-1)
	lo := int(pos)
	if lo >= len(emberRamp)-1 {
		lo = len(emberRamp) - 2
	}
	f := pos - float64(lo)
	a, b := emberRamp[lo], emberRamp[lo+1]
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X",
		int(a[0]+(b[0]-a[0])*f), int(a[1]+(b[1]-a[1])*f), int(a[2]+(b[2]-a[2])*f)))
}

// renderEmberLogo renders "K  I  B  A  N  D  A" at the given frame.
func renderEmberLogo(frame int) string {
	const text = "KIBANDA"
	letters := make([]string, len(text))
	for i := range text {
		letters[i] = lipgloss.NewStyle().
			Bold(true).
			Foreground(emberColor(emberHeat(i, len(text), frame))).
			Render(text[i : i+1])
	}
	return strings.Join(letters, "  ")
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fb923c"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fb923c")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fb923c")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Status lines
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	// Vendor state
	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	closedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555")).
			Bold(true)

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	heartStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fb923c"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a2a38")).
			Padding(0, 1)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))
)

// categoryColors gives the common menu categories a stable color.
var categoryColors = map[string]lipgloss.Color{
	"mains":      lipgloss.Color("#f0944a"),
	"snacks":     lipgloss.Color("#d4a844"),
	"drinks":     lipgloss.Color("#60a0e0"),
	"breakfast":  lipgloss.Color("#facc15"),
	"desserts":   lipgloss.Color("#c084e0"),
	"grill":      lipgloss.Color("#e06060"),
	"rice":       lipgloss.Color("#b8ccdf"),
	"vegetarian": lipgloss.Color("#43e88c"),
}

// CategoryStyle returns a bold style colored for a food category.
func CategoryStyle(category string) lipgloss.Style {
	if c, ok := categoryColors[strings.ToLower(strings.TrimSpace(category))]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// statusBadge renders OPEN or CLOSED.
func statusBadge(open bool) string {
	if open {
		return openStyle.Render("OPEN")
	}
	return closedStyle.Render("CLOSED")
}

// ratingStars renders a 0-5 rating as filled and empty stars.
func ratingStars(rating float64) string {
	full := int(math.Round(rating))
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return starStyle.Render(strings.Repeat("★", full)) + metaStyle.Render(strings.Repeat("☆", 5-full))
}

// bar renders a horizontal bar of n out of total cells across width.
func bar(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	cells := n * width / total
	if n > 0 && cells == 0 {
		cells = 1
	}
	return barStyle.Render(strings.Repeat("█", cells)) + metaStyle.Render(strings.Repeat("·", width-cells))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries into a single line.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// statusLine renders a status message, red for errors.
func statusLine(msg string, isErr bool) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return errorStyle.Render(msg)
	}
	return successStyle.Render(msg)
}

// helpView renders the help overlay.
func helpView() string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Chakula kizuri, karibu nawe."`)

	commands := []struct{ cmd, desc string }{
		{"kibanda", "Browse vendors (interactive TUI)"},
		{"kibanda login", "Sign in with email and password"},
		{"kibanda login google", "Sign in with Google"},
		{"kibanda logout", "Clear your session"},
		{"kibanda whoami", "Show the signed-in profile"},
		{"kibanda forgot <email>", "Send a password reset link"},
		{"kibanda version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", titleStyle.Render("K I B A N D A"), quote)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	keys := []struct{ key, desc string }{
		{"1-4", "switch tabs"},
		{"j/k", "move"},
		{"enter", "open / submit"},
		{"esc", "back"},
		{"ctrl+c", "quit"},
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
