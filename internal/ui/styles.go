package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette
var (
	PrimaryColor = lipgloss.Color("#2E9CCA") // borders, table headings, spinner
	SuccessColor = lipgloss.Color("#43BF6D") // passed checks, likely cameras
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500") // optional checks, ARP-only scans
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// Terminal widths outside this range are clamped
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 120
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func cell(c lipgloss.Color) lipgloss.Style {
	return fg(c).Padding(0, 1)
}

// Header
var (
	HeaderTitleStyle      = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = fg(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = fg(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = fg(TextColor)
)

// Scan spinner
var (
	SpinnerStyle      = fg(PrimaryColor)
	SpinnerLabelStyle = fg(TextColor)
)

// Doctor checklist
var (
	StepCompleteStyle = fg(SuccessColor)
	StepWarningStyle  = fg(WarningColor)
	StepFailedStyle   = fg(ErrorColor)
	StepNoteStyle     = fg(MutedColor).Italic(true)
)

// Result boxes
var (
	SuccessTitleStyle         = fg(SuccessColor).Bold(true)
	WarningTitleStyle         = fg(WarningColor).Bold(true)
	ErrorTitleStyle           = fg(ErrorColor).Bold(true)
	ErrorMessageStyle         = fg(ErrorColor)
	ResultKeyStyle            = fg(MutedColor).Width(15)
	ResultValueStyle          = fg(TextColor)
	TroubleshootingTitleStyle = fg(MutedColor).Bold(true)
	TroubleshootingItemStyle  = fg(MutedColor)
)

// Device and camera tables. Highlighted rows look like cameras, muted rows
// came from the ARP cache only.
var (
	TableHeaderStyle        = cell(PrimaryColor).Bold(true)
	TableCellStyle          = cell(TextColor)
	TableMutedCellStyle     = cell(MutedColor)
	TableHighlightCellStyle = cell(SuccessColor)
)

// Markers
const (
	StepMarkerComplete = "✓"
	StepMarkerWarning  = "!"
	StepMarkerFailed   = "✗"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
	WarningMarker      = "⚠"
)

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the stdout width clamped to the supported range.
// Non-terminals get MinTerminalWidth.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return min(clampWidth(width), MaxContentWidth)
}

// RenderHorizontalDivider draws width copies of char in the primary colour
func RenderHorizontalDivider(width int, char string) string {
	return fg(PrimaryColor).Render(strings.Repeat(char, max(width, 1)))
}

func clampWidth(width int) int {
	return max(width, MinTerminalWidth)
}
