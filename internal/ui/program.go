package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
)

// Printer writes UI components to a writer. Commands print everything
// through one Printer so tests can capture the output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box with optional tips
func (p *Printer) PrintWarning(title string, details map[string]string, troubleshooting []string) {
	r := NewWarningResult(title, details).SetWidth(p.width)
	r.Troubleshooting = troubleshooting
	p.Println(r.Render())
}

// PrintFailure prints an error result box with troubleshooting tips
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintDevices prints scan results as a table
func (p *Printer) PrintDevices(devices []discovery.Device) {
	p.Println(RenderDeviceTable(devices, p.width))
}

// PrintCameras prints the registered cameras as a table
func (p *Printer) PrintCameras(cameras []config.Camera) {
	p.Println(RenderCameraTable(cameras, p.width))
}

// PrintChecklist prints a prerequisite checklist
func (p *Printer) PrintChecklist(result *discovery.PrerequisiteResult) {
	p.Println(NewChecklist(result).SetWidth(p.width).Render())
	p.Newline()
}
