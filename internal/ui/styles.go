// Package ui renders clarification messages in the terminal and collects
// the user's answers, as an option picker or a free-form input.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)

	// StyleQuestion renders the clarification message itself.
	StyleQuestion = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)

	// StyleOptionActive highlights the option under the cursor.
	StyleOptionActive = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// StyleOptionNormal renders unselected options.
	StyleOptionNormal = lipgloss.NewStyle().Foreground(ColorText)

	// StyleInputBox frames the free-form answer input.
	StyleInputBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)
)
