// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	// CLI output styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style

	// Diff panel rows.
	DiffContextStyle     lipgloss.Style
	DiffAddedStyle       lipgloss.Style
	DiffRemovedStyle     lipgloss.Style
	DiffAddedEmphStyle   lipgloss.Style
	DiffRemovedEmphStyle lipgloss.Style
	DiffPlaceholderStyle lipgloss.Style

	// Diff panel gutters.
	LineNumberStyle        lipgloss.Style
	LineNumberAddedStyle   lipgloss.Style
	LineNumberRemovedStyle lipgloss.Style

	// Overlays inside the diff panels.
	StickyLineStyle    lipgloss.Style
	SearchMatchStyle   lipgloss.Style
	SearchCurrentStyle lipgloss.Style

	// Panel chrome.
	FocusedBorderStyle lipgloss.Style
	BlurredBorderStyle lipgloss.Style
	PanelTitleStyle    lipgloss.Style

	// Sidebar file tree.
	SidebarTitleStyle lipgloss.Style
	TreeDirStyle      lipgloss.Style
	TreeFileStyle     lipgloss.Style
	TreeSelectedStyle lipgloss.Style
	TreeViewedStyle   lipgloss.Style
	AddCountStyle     lipgloss.Style
	DelCountStyle     lipgloss.Style

	// Status bar segments.
	StatusBarStyle    lipgloss.Style
	StatusModeStyle   lipgloss.Style
	StatusBranchStyle lipgloss.Style
	StatusHelpStyle   lipgloss.Style

	// Modals (picker, help, explain).
	ModalStyle       lipgloss.Style
	ModalTitleStyle  lipgloss.Style
	ModalHelpStyle   lipgloss.Style
	PickerMatchStyle lipgloss.Style
)

// blend mixes tint into base in Lab space. Diff row backgrounds are
// derived this way so every palette gets readable fills without
// hand-tuning per theme.
func blend(base, tint color.Color, amount float64) color.Color {
	if base == nil || tint == nil {
		return base
	}
	b, ok := colorful.MakeColor(base)
	if !ok {
		return base
	}
	t, ok := colorful.MakeColor(tint)
	if !ok {
		return base
	}
	return b.BlendLab(t, amount).Clamped()
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	addedBg := blend(p.Background, p.Success, 0.15)
	removedBg := blend(p.Background, p.Error, 0.15)
	addedEmphBg := blend(p.Background, p.Success, 0.40)
	removedEmphBg := blend(p.Background, p.Error, 0.40)
	matchBg := blend(p.Background, p.Warning, 0.35)

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	DiffContextStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DiffAddedStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(addedBg)
	DiffRemovedStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(removedBg)
	DiffAddedEmphStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(addedEmphBg)
	DiffRemovedEmphStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(removedEmphBg)
	DiffPlaceholderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	LineNumberStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	LineNumberAddedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Background(addedBg)
	LineNumberRemovedStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Background(removedBg)

	StickyLineStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Background(ColorSurface)
	SearchMatchStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(matchBg)
	SearchCurrentStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorWarning).
		Bold(true)

	FocusedBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary)
	BlurredBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	SidebarTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	TreeDirStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	TreeFileStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	TreeSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface).
		Bold(true)
	TreeViewedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	AddCountStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	DelCountStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface)
	StatusModeStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Padding(0, 1).
		Bold(true)
	StatusBranchStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Background(ColorSurface).
		Padding(0, 1)
	StatusHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Background(ColorSurface)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	PickerMatchStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
