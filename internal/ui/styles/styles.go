// Package styles centralizes lipgloss colors and styles for terminal
// output so hook listings and result summaries look consistent.
package styles

import "charm.land/lipgloss/v2"

var (
	// Primary is the main accent color (cyan/teal).
	Primary = lipgloss.Color("62")

	// Success is used for passing hooks (green).
	Success = lipgloss.Color("82")

	// Error is used for failing hooks (red).
	Error = lipgloss.Color("196")

	// Muted is used for skipped hooks and secondary text (gray).
	Muted = lipgloss.Color("240")

	// Info is used for informational text (gray).
	Info = lipgloss.Color("244")
)

var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	ErrorStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(Muted)

	InfoStyle = lipgloss.NewStyle().Foreground(Info).Italic(true)
)
