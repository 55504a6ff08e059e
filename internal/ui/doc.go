// Package ui provides terminal UI components for the camhome-cfg CLI.
//
// Components use Bubble Tea, Bubbles and Lipgloss. Most follow a "render
// once" pattern: they build a styled string and the caller prints it. The
// only interactive piece is the scan spinner.
//
// # Components
//
//   - Header: command banner with title and parameters
//   - Result: success, warning or failure box with details and tips
//   - Device and camera tables
//   - Checklist: prerequisite results with a pass bar
//   - ScanModel: spinner shown while a scan runs
//   - Confirm: yes/no prompt before destructive commands
//
// # Example
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Network Scan", "camhome-cfg scan", map[string]string{"Subnet": subnet})
//
//	report, err := ui.RunScan(ctx, "Scanning "+subnet, os.Stdout, func(ctx context.Context) *discovery.Report {
//	    return scanner.Scan(ctx, subnet)
//	})
//	if err != nil {
//	    return err
//	}
//	p.PrintDevices(report.Devices)
//
// # Non-interactive output
//
// RunScan skips the spinner when stdout is not a terminal, so piped or
// redirected output contains only the final table.
//
// # Logging Integration
//
// Logging is controlled by the CAMHOME_LOG_LEVEL environment variable or
// the --log-level flag. When unset, zap logging is silent and only the
// UI output is shown.
package ui
