// Package theme holds the color palettes of the fincast dashboard. Each
// palette maps UI surfaces and ledger roles (inflow, outflow, confidence
// band) to terminal colors.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme is one palette.
type Theme struct {
	Name string

	// Surfaces, darkest first.
	Background, Surface, SurfaceHover, SurfaceBright lipgloss.Color
	Border, BorderAccent                             lipgloss.Color

	// Text, lowest contrast first.
	TextDim, TextMuted, TextPrimary lipgloss.Color

	Accent, AccentBright lipgloss.Color

	// Status colors used by score bars and warnings.
	Green, GreenBright, Yellow, Orange, Red, Cyan lipgloss.Color

	// Ledger roles.
	Inflow, Outflow, Band lipgloss.Color
}

// Active is the palette used for rendering.
var Active = FlexokiDark

// FlexokiDark is the default palette.
var FlexokiDark = Theme{
	Name:       "flexoki-dark",
	Background: "#100F0F", Surface: "#1C1B1A", SurfaceHover: "#282726", SurfaceBright: "#343331",
	Border: "#403E3C", BorderAccent: "#3AA99F",
	TextDim: "#575653", TextMuted: "#878580", TextPrimary: "#FFFCF0",
	Accent: "#3AA99F", AccentBright: "#5BC8BE",
	Green: "#879A39", GreenBright: "#A3B859", Yellow: "#D0A215", Orange: "#DA702C", Red: "#D14D41", Cyan: "#24837B",
	Inflow: "#A3B859", Outflow: "#D14D41", Band: "#878580",
}

// CatppuccinMocha is a pastel palette.
var CatppuccinMocha = Theme{
	Name:       "catppuccin-mocha",
	Background: "#1E1E2E", Surface: "#313244", SurfaceHover: "#45475A", SurfaceBright: "#585B70",
	Border: "#585B70", BorderAccent: "#89B4FA",
	TextDim: "#6C7086", TextMuted: "#A6ADC8", TextPrimary: "#CDD6F4",
	Accent: "#89B4FA", AccentBright: "#B4D0FB",
	Green: "#A6E3A1", GreenBright: "#C6F6C1", Yellow: "#F9E2AF", Orange: "#FAB387", Red: "#F38BA8", Cyan: "#94E2D5",
	Inflow: "#A6E3A1", Outflow: "#F38BA8", Band: "#A6ADC8",
}

// TokyoNight is a cool blue palette.
var TokyoNight = Theme{
	Name:       "tokyo-night",
	Background: "#1A1B26", Surface: "#24283B", SurfaceHover: "#343A52", SurfaceBright: "#414868",
	Border: "#565F89", BorderAccent: "#7AA2F7",
	TextDim: "#565F89", TextMuted: "#A9B1D6", TextPrimary: "#C0CAF5",
	Accent: "#7AA2F7", AccentBright: "#A9C1FF",
	Green: "#9ECE6A", GreenBright: "#B9E87A", Yellow: "#E0AF68", Orange: "#FF9E64", Red: "#F7768E", Cyan: "#7DCFFF",
	Inflow: "#9ECE6A", Outflow: "#F7768E", Band: "#A9B1D6",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:       "terminal",
	Background: "0", Surface: "0", SurfaceHover: "8", SurfaceBright: "8",
	Border: "8", BorderAccent: "6",
	TextDim: "8", TextMuted: "7", TextPrimary: "15",
	Accent: "6", AccentBright: "14",
	Green: "2", GreenBright: "10", Yellow: "3", Orange: "3", Red: "1", Cyan: "6",
	Inflow: "10", Outflow: "1", Band: "7",
}

// All lists the palettes in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns the named palette, or FlexokiDark when unknown.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive switches Active to the named palette.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the palette names.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Revenue is the inflow color.
func (t Theme) Revenue() lipgloss.Color { return t.Inflow }

// Cost is the outflow color.
func (t Theme) Cost() lipgloss.Color { return t.Outflow }

// Signed picks the inflow or outflow color by the sign of v.
func (t Theme) Signed(v float64) lipgloss.Color {
	if v < 0 {
		return t.Outflow
	}
	return t.Inflow
}
