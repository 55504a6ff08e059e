package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
)

func TestHeader_Render(t *testing.T) {
	h := NewHeader("Network Scan", "camhome-cfg scan", map[string]string{
		"Timeout": "20s",
		"Subnet":  "192.168.1.0/24",
	}).SetWidth(80)

	out := h.Render()

	if !strings.Contains(out, "NETWORK SCAN") {
		t.Error("Render() should uppercase the title")
	}
	if !strings.Contains(out, "camhome-cfg scan") {
		t.Error("Render() should include the command")
	}
	if strings.Index(out, "Subnet") > strings.Index(out, "Timeout") {
		t.Error("Render() should list parameters in key order")
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Scan complete", map[string]string{"Devices": "4"}),
			want:   []string{"SUCCESS", "Scan complete", "Devices:", "4"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Scan failed", errors.New("boom"), []string{"Install nmap"}),
			want:   []string{"FAILED", "Error: boom", "Troubleshooting:", "Install nmap"},
		},
		{
			name:   "warning",
			result: NewWarningResult("Degraded scan", nil),
			want:   []string{"WARNING", "Degraded scan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(100).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestRenderDeviceTable(t *testing.T) {
	devices := []discovery.Device{
		{Address: "192.168.1.20", HardwareAddress: "28:57:be:00:00:01", Manufacturer: "Hikvision", Model: discovery.ModelRTSPCamera, OpenPorts: []int{80, 554}, AlreadyRegistered: true},
		{Address: "192.168.1.30", HardwareAddress: "aa:bb:cc:00:00:02", Manufacturer: discovery.GenericManufacturer, Model: discovery.ModelARPInferred, Source: discovery.SourceARP},
	}

	out := RenderDeviceTable(devices, 120)

	for _, want := range []string{"ADDRESS", "192.168.1.20", "192.168.1.30", "80,554", "yes", "Hikvision"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDeviceTable() missing %q", want)
		}
	}
}

func TestRenderCameraTable_NoPasswords(t *testing.T) {
	cameras := []config.Camera{{ID: "cam-1", Name: "Garage", IP: "192.168.1.64", Password: "hunter2"}}

	out := RenderCameraTable(cameras, 100)

	if !strings.Contains(out, "Garage") {
		t.Error("RenderCameraTable() should include the camera name")
	}
	if strings.Contains(out, "hunter2") {
		t.Error("RenderCameraTable() must not show passwords")
	}
}

func TestLooksLikeCamera(t *testing.T) {
	tests := []struct {
		device discovery.Device
		want   bool
	}{
		{discovery.Device{Manufacturer: "Dahua"}, true},
		{discovery.Device{Manufacturer: discovery.GenericManufacturer, OpenPorts: []int{554}}, true},
		{discovery.Device{Manufacturer: "Raspberry Pi", OpenPorts: []int{22}}, false},
	}

	for _, tt := range tests {
		if got := looksLikeCamera(tt.device); got != tt.want {
			t.Errorf("looksLikeCamera(%+v) = %v, want %v", tt.device, got, tt.want)
		}
	}
}

func TestChecklist(t *testing.T) {
	result := &discovery.PrerequisiteResult{
		Checks: []discovery.PrerequisiteCheck{
			{Name: "nmap", Available: false, Message: "nmap not found in PATH\nInstall it"},
			{Name: "ARP cache", Available: true, Required: true, Message: "12 entries"},
			{Name: "Network interface", Available: false, Required: true, Message: "no IPv4 interface"},
		},
	}

	c := NewChecklist(result)

	if c.Passed() != 1 {
		t.Errorf("Passed() = %d, want 1", c.Passed())
	}
	wantStatus := []StepStatus{StepWarning, StepComplete, StepFailed}
	for i, s := range c.Steps {
		if s.Status != wantStatus[i] {
			t.Errorf("Steps[%d].Status = %v, want %v", i, s.Status, wantStatus[i])
		}
	}
	if c.Steps[0].Message != "nmap not found in PATH" {
		t.Errorf("Steps[0].Message = %q, want first line only", c.Steps[0].Message)
	}

	out := c.Render()
	if !strings.Contains(out, "[1/3 passed]") {
		t.Errorf("Render() missing pass count:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Remove camera", []string{"Garage (192.168.1.64)"})
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Remove camera") {
				t.Error("Confirm() should print the title")
			}
		})
	}
}

func TestRunScan_NonTerminal(t *testing.T) {
	var out bytes.Buffer
	want := &discovery.Report{Subnet: "10.0.0.0/24"}

	got, err := RunScan(context.Background(), "Scanning", &out, func(ctx context.Context) *discovery.Report {
		return want
	})
	if err != nil {
		t.Fatalf("RunScan() error = %v", err)
	}
	if got != want {
		t.Error("RunScan() should return the scan's report")
	}
	if out.Len() != 0 {
		t.Errorf("RunScan() wrote %q to a non-terminal", out.String())
	}
}

func TestScanModel_Update(t *testing.T) {
	report := &discovery.Report{Subnet: "10.0.0.0/24"}
	m := NewScanModel(context.Background(), "Scanning", func(ctx context.Context) *discovery.Report { return report })

	if m.View() == "" {
		t.Error("View() should show the spinner while scanning")
	}

	next, cmd := m.Update(scanDoneMsg{report: report})
	if cmd == nil {
		t.Error("Update(scanDoneMsg) should quit")
	}
	if next.(ScanModel).Report() != report {
		t.Error("Update(scanDoneMsg) should store the report")
	}
	if next.View() != "" {
		t.Error("View() should be empty after the scan finished")
	}
}
