package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
)

// deviceColumns are the columns of the scan table
var deviceColumns = []string{"ADDRESS", "MAC", "MANUFACTURER", "MODEL", "PORTS", "REGISTERED"}

// cameraTemplates decides which manufacturers count as camera vendors
var cameraTemplates = discovery.DefaultSnapshotTemplates()

// cameraColumns are the columns of the camera list
var cameraColumns = []string{"ID", "NAME", "IP", "MANUFACTURER", "SNAPSHOT URL"}

// newTable returns a table in the shared style. highlight picks rows drawn
// in the success colour and muted picks rows drawn in grey.
func newTable(width int, highlight, muted func(row int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Width(clampWidth(width)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case highlight != nil && highlight(row):
				return TableHighlightCellStyle
			case muted != nil && muted(row):
				return TableMutedCellStyle
			default:
				return TableCellStyle
			}
		})
}

// RenderDeviceTable renders scan results. Devices that look like cameras
// are highlighted; devices only seen in the ARP cache are muted.
func RenderDeviceTable(devices []discovery.Device, width int) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{
			d.Address,
			d.HardwareAddress,
			d.Manufacturer,
			d.Model,
			formatPorts(d.OpenPorts),
			yesNo(d.AlreadyRegistered),
		})
	}

	t := newTable(width,
		func(row int) bool { return row < len(devices) && looksLikeCamera(devices[row]) },
		func(row int) bool { return row < len(devices) && devices[row].Source == discovery.SourceARP },
	)
	return t.Headers(deviceColumns...).Rows(rows...).Render()
}

// RenderCameraTable renders the registered cameras. Passwords are never shown.
func RenderCameraTable(cameras []config.Camera, width int) string {
	rows := make([][]string, 0, len(cameras))
	for _, c := range cameras {
		snapshot := c.SnapshotURL
		if snapshot == "" {
			snapshot = "(from manufacturer)"
		}
		rows = append(rows, []string{c.ID, c.Name, c.IP, c.Manufacturer, snapshot})
	}

	t := newTable(width, nil, nil)
	return t.Headers(cameraColumns...).Rows(rows...).Render()
}

// looksLikeCamera is true for RTSP hosts and known camera vendors
func looksLikeCamera(d discovery.Device) bool {
	if d.HasPort(554) {
		return true
	}
	return cameraTemplates.Lookup(d.Manufacturer) != discovery.GenericSnapshotTemplate
}

func formatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
