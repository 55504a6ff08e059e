package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/marceloreis098/CamHome/internal/discovery"
)

// StepStatus represents the outcome of one check
type StepStatus int

const (
	StepComplete StepStatus = iota // Passed
	StepWarning                    // Optional check failed; scans degrade
	StepFailed                     // Required check failed
)

// Step is one line of a checklist
type Step struct {
	Name    string     // e.g., "nmap"
	Status  StepStatus // Outcome
	Message string     // First line of the check's message
}

// Checklist renders prerequisite checks with a bar showing how many passed.
type Checklist struct {
	Steps []Step
	Width int
	bar   progress.Model
}

// NewChecklist converts a prerequisite report into checklist steps
func NewChecklist(result *discovery.PrerequisiteResult) *Checklist {
	c := &Checklist{Width: GetTerminalWidth()}
	for _, check := range result.Checks {
		step := Step{Name: check.Name, Message: firstLine(check.Message)}
		switch {
		case check.Available:
			step.Status = StepComplete
			if check.Version != "" {
				step.Message = check.Version
			}
		case check.Required:
			step.Status = StepFailed
		default:
			step.Status = StepWarning
		}
		c.Steps = append(c.Steps, step)
	}
	c.SetWidth(c.Width)
	return c
}

// SetWidth sets the terminal width for responsive rendering
func (c *Checklist) SetWidth(width int) *Checklist {
	c.Width = width
	barWidth := width - 20 // Leave room for percentage and count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	c.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return c
}

// Passed returns the number of passing checks
func (c *Checklist) Passed() int {
	n := 0
	for _, s := range c.Steps {
		if s.Status == StepComplete {
			n++
		}
	}
	return n
}

// Render returns the bar followed by one line per check
func (c *Checklist) Render() string {
	var b strings.Builder

	percent := 0.0
	if len(c.Steps) > 0 {
		percent = float64(c.Passed()) / float64(len(c.Steps))
	}
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  [%d/%d passed]", c.bar.ViewAs(percent), c.Passed(), len(c.Steps))))
	b.WriteString("\n\n")

	lines := make([]string, 0, len(c.Steps))
	for _, step := range c.Steps {
		lines = append(lines, renderStepLine(step))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// String implements fmt.Stringer
func (c *Checklist) String() string {
	return c.Render()
}

// renderStepLine renders "  ✓ name   (message)"
func renderStepLine(step Step) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepWarning:
		marker, style = StepMarkerWarning, StepWarningStyle
	default:
		marker, style = StepMarkerFailed, StepFailedStyle
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(style.Render(marker))
	b.WriteString(" ")
	b.WriteString(style.Render(step.Name))

	padding := 24 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))

	if step.Message != "" {
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
