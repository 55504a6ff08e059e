package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marceloreis098/CamHome/internal/discovery"
)

// ErrScanCancelled is returned when the user quits while a scan runs
var ErrScanCancelled = errors.New("scan cancelled")

// ScanFunc runs one scan
type ScanFunc func(ctx context.Context) *discovery.Report

// scanDoneMsg carries the finished report
type scanDoneMsg struct {
	report *discovery.Report
}

// ScanModel shows a spinner while a scan runs in the background.
type ScanModel struct {
	Label     string
	Spinner   spinner.Model
	StartTime time.Time

	scan   ScanFunc
	ctx    context.Context
	cancel context.CancelFunc

	report    *discovery.Report
	cancelled bool
}

// NewScanModel creates a model that runs scan when started
func NewScanModel(ctx context.Context, label string, scan ScanFunc) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return ScanModel{
		Label:   label,
		Spinner: s,
		scan:    scan,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init starts the spinner and the scan
func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.runScan)
}

func (m ScanModel) runScan() tea.Msg {
	return scanDoneMsg{report: m.scan(m.ctx)}
}

// Update implements tea.Model
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}

	case scanDoneMsg:
		m.report = msg.report
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		if m.StartTime.IsZero() {
			m.StartTime = time.Now()
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m ScanModel) View() string {
	if m.report != nil || m.cancelled {
		return ""
	}
	elapsed := ""
	if !m.StartTime.IsZero() {
		elapsed = StepNoteStyle.Render(fmt.Sprintf(" (%ds)", int(time.Since(m.StartTime).Seconds())))
	}
	return "  " + m.Spinner.View() + " " + SpinnerLabelStyle.Render(m.Label) + elapsed + "\n"
}

// Report returns the finished report, or nil
func (m ScanModel) Report() *discovery.Report {
	return m.report
}

// RunScan runs scan behind a spinner when out is a terminal, and directly
// otherwise so piped output stays clean.
func RunScan(ctx context.Context, label string, out io.Writer, scan ScanFunc) (*discovery.Report, error) {
	if out == nil {
		out = os.Stdout
	}
	if f, ok := out.(*os.File); !ok || f != os.Stdout || !IsTerminal() {
		return scan(ctx), nil
	}

	model := NewScanModel(ctx, label, scan)
	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrScanCancelled
		}
		return nil, fmt.Errorf("spinner failed: %w", err)
	}

	result := final.(ScanModel)
	if result.cancelled || result.report == nil {
		return nil, ErrScanCancelled
	}
	return result.report, nil
}
