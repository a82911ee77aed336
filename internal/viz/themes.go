package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/creepersim/internal/creeper"
)

// Theme colours the live view.
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Idle     lipgloss.Color
	Stepping lipgloss.Color
	Aligning lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Primary:  lipgloss.Color("#ff00ff"),
		Accent:   lipgloss.Color("#00ffff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
		Idle:     lipgloss.Color("#888888"),
		Stepping: lipgloss.Color("#00ff88"),
		Aligning: lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Primary:  lipgloss.Color("#00ff00"),
		Accent:   lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Idle:     lipgloss.Color("#007700"),
		Stepping: lipgloss.Color("#88ff88"),
		Aligning: lipgloss.Color("#ffff00"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Primary:  lipgloss.Color("#0077be"),
		Accent:   lipgloss.Color("#ffd700"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Idle:     lipgloss.Color("#4488aa"),
		Stepping: lipgloss.Color("#00ff88"),
		Aligning: lipgloss.Color("#ffcc00"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// PhaseStyle renders a controller phase in the theme's phase colour.
func (t Theme) PhaseStyle(p creeper.Phase) lipgloss.Style {
	c := t.Idle
	switch p {
	case creeper.Stepping:
		c = t.Stepping
	case creeper.Aligning:
		c = t.Aligning
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
