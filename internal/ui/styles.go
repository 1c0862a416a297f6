package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One accent color keeps the output quiet.
const (
	ColorCyan   = "51"  // Primary accent for stage markers
	ColorGray   = "245" // Secondary text, labels
	ColorRed    = "196" // Errors
	ColorYellow = "220" // Warnings
	ColorGreen  = "77"  // Completion
)

// Styles holds the render styles.
type Styles struct {
	Stage   lipgloss.Style
	Label   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles returns styled components for terminal output.
func DefaultStyles() Styles {
	return Styles{
		Stage:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorGreen)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Stage:   lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
