package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Accent   lipgloss.Color
	Border   lipgloss.Color
	Warning  lipgloss.Color
	BarFill  lipgloss.Color
	BarLow   lipgloss.Color
	BarEmpty lipgloss.Color
}

var palettes = map[string]palette{
	"catppuccin": {
		Text:     lipgloss.Color("#cdd6f4"),
		Muted:    lipgloss.Color("#a6adc8"),
		Accent:   lipgloss.Color("#cba6f7"),
		Border:   lipgloss.Color("#585b70"),
		Warning:  lipgloss.Color("#f9e2af"),
		BarFill:  lipgloss.Color("#94e2d5"),
		BarLow:   lipgloss.Color("#f38ba8"),
		BarEmpty: lipgloss.Color("#313244"),
	},
	"dracula": {
		Text:     lipgloss.Color("#f8f8f2"),
		Muted:    lipgloss.Color("#6272a4"),
		Accent:   lipgloss.Color("#ff79c6"),
		Border:   lipgloss.Color("#44475a"),
		Warning:  lipgloss.Color("#f1fa8c"),
		BarFill:  lipgloss.Color("#50fa7b"),
		BarLow:   lipgloss.Color("#ff5555"),
		BarEmpty: lipgloss.Color("#343746"),
	},
	"gruvbox": {
		Text:     lipgloss.Color("#ebdbb2"),
		Muted:    lipgloss.Color("#a89984"),
		Accent:   lipgloss.Color("#fabd2f"),
		Border:   lipgloss.Color("#665c54"),
		Warning:  lipgloss.Color("#fe8019"),
		BarFill:  lipgloss.Color("#b8bb26"),
		BarLow:   lipgloss.Color("#fb4934"),
		BarEmpty: lipgloss.Color("#3c3836"),
	},
	"solarized_dark": {
		Text:     lipgloss.Color("#fdf6e3"),
		Muted:    lipgloss.Color("#93a1a1"),
		Accent:   lipgloss.Color("#b58900"),
		Border:   lipgloss.Color("#586e75"),
		Warning:  lipgloss.Color("#cb4b16"),
		BarFill:  lipgloss.Color("#859900"),
		BarLow:   lipgloss.Color("#dc322f"),
		BarEmpty: lipgloss.Color("#073642"),
	},
}

// styles are the lipgloss styles derived from the active palette.
type styles struct {
	title   lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	panel   lipgloss.Style
	fill    lipgloss.Style
	low     lipgloss.Style
	empty   lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		text:    lipgloss.NewStyle().Foreground(p.Text),
		muted:   lipgloss.NewStyle().Foreground(p.Muted),
		warning: lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		fill:    lipgloss.NewStyle().Foreground(p.BarFill),
		low:     lipgloss.NewStyle().Foreground(p.BarLow),
		empty:   lipgloss.NewStyle().Foreground(p.BarEmpty),
	}
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["catppuccin"]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// nextThemeName steps through the sorted theme names, wrapping both ways.
func nextThemeName(current string, step int) string {
	names := themeNames()
	idx := sort.SearchStrings(names, current)
	if idx >= len(names) || names[idx] != current {
		idx = 0
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}
