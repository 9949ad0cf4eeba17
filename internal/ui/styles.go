package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI colors - works with any terminal colorscheme
var (
	ColorFg        = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	ColorGreen     = lipgloss.Color("2")
	ColorRed       = lipgloss.Color("1")
	ColorYellow    = lipgloss.Color("3")
	ColorCyan      = lipgloss.Color("6")
	ColorPurple    = lipgloss.Color("5")
	ColorDim       = lipgloss.Color("8")
	ColorBorder    = lipgloss.Color("8")
	ColorBorderAct = lipgloss.Color("5")
)

// Status indicators
const (
	StatusRunning = "●"
	StatusStopped = "○"
	StatusInert   = "◌"
)

// Spinner frames (braille pattern)
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Base styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderAct).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Background(ColorPurple).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)
)

// Tree characters
const (
	TreeBranch = "├"
	TreeLast   = "└"
)
