package viz

import "github.com/charmbracelet/lipgloss"

// Theme pairs a field colormap with the UI accent colours.
type Theme struct {
	Name    string
	Map     Colormap
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
}

var (
	ThemeSeismic = Theme{
		Name:    "seismic",
		Map:     Seismic,
		Primary: lipgloss.Color("#ff4444"),
		Accent:  lipgloss.Color("#4488ff"),
		Muted:   lipgloss.Color("#666666"),
	}

	ThemeViridis = Theme{
		Name:    "viridis",
		Map:     Viridis,
		Primary: lipgloss.Color("#5ec962"),
		Accent:  lipgloss.Color("#fde725"),
		Muted:   lipgloss.Color("#3b528b"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Map:     Grayscale,
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeSeismic

	Themes = []Theme{
		ThemeSeismic,
		ThemeViridis,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to seismic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSeismic
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme cycles CurrentTheme through Themes.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}
