package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the aulavoz configure form
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#E74C3C") // Red - the professor's default color
	ColorSecondary = lipgloss.Color("#2980B9") // Blue - first student

	// Status colors
	ColorSuccess = lipgloss.Color("#27AE60") // Green
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F39C12") // Amber

	// Text colors
	ColorText   = lipgloss.Color("#F8FAFC") // Bright white
	ColorMuted  = lipgloss.Color("#94A3B8") // Slate gray
	ColorSubtle = lipgloss.Color("#64748B") // Darker gray
)
