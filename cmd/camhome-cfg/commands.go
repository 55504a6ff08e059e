package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"github.com/marceloreis098/CamHome/internal/logging"
	"github.com/marceloreis098/CamHome/internal/ui"
	"github.com/marceloreis098/CamHome/internal/urls"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

// Scan command flags
var (
	scanSubnet  string
	scanTimeout int
	scanFormat  string
	scanMDNS    bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(doctorCmd)
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the network for cameras",
	Long: `Scan the local network for cameras and other devices.

The subnet of the first private IPv4 interface is scanned unless --subnet
is given. nmap probes common camera ports; the ARP cache fills in hosts
nmap did not report. Without nmap, results come from the ARP cache only
and are marked as inferred.`,
	Example: `  # Scan the local subnet
  camhome-cfg scan

  # Scan another subnet with a longer probe timeout
  camhome-cfg scan --subnet 10.0.0.0/24 --timeout 60

  # JSON output for scripting
  camhome-cfg scan --format json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanSubnet, "subnet", "", "IPv4 CIDR to scan (default: auto-detect)")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Probe timeout in seconds (default from config, 20)")
	scanCmd.Flags().StringVar(&scanFormat, "format", formatTable, "Output format (table, json)")
	scanCmd.Flags().BoolVar(&scanMDNS, "mdns", false, "Fill hostnames from mDNS advertisements")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != formatTable && scanFormat != formatJSON {
		return fmt.Errorf("unknown format %q (want table or json)", scanFormat)
	}

	override := ""
	if scanSubnet != "" {
		subnet, err := discovery.ParseSubnet(scanSubnet)
		if err != nil {
			return err
		}
		override = subnet
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	opts := store.Discovery().ScannerOptions()
	if scanTimeout > 0 {
		opts.ProbeTimeout = time.Duration(scanTimeout) * time.Second
	}
	if scanMDNS {
		opts.MDNS = true
	}

	scanner, err := discovery.Build(opts, logging.Named("discovery"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	subnet := scanner.ResolveSubnet(override)

	var printer *ui.Printer
	if scanFormat == formatTable {
		printer = ui.NewPrinter(out)
		printer.PrintHeader("Network Scan", "camhome-cfg scan", map[string]string{
			"Subnet":  subnet,
			"Timeout": opts.ProbeTimeout.String(),
		})
	}

	report, err := ui.RunScan(ctx, "Scanning "+subnet+"...", out, func(ctx context.Context) *discovery.Report {
		return scanner.Scan(ctx, override)
	})
	if err != nil {
		return err
	}
	logging.LogScan(report.Subnet, len(report.Devices), report.Degraded, report.Duration, report.ProbeErr)

	cameras, err := store.Cameras(ctx)
	if err != nil {
		return fmt.Errorf("failed to read registered cameras: %w", err)
	}
	config.MarkRegistered(report.Devices, cameras)

	if scanFormat == formatJSON {
		return writeJSON(out, report.Devices)
	}

	printScanReport(printer, report)
	return nil
}

// printScanReport prints the device table and a summary box
func printScanReport(p *ui.Printer, report *discovery.Report) {
	if len(report.Devices) > 0 {
		p.PrintDevices(report.Devices)
		p.Newline()
	}

	details := map[string]string{
		"Subnet":   report.Subnet,
		"Devices":  strconv.Itoa(len(report.Devices)),
		"Duration": report.Duration.Round(time.Millisecond).String(),
	}

	switch {
	case report.Degraded:
		details["Probe error"] = report.ProbeErr.Error()
		p.PrintWarning("Scan used the ARP cache only", details, []string{
			"Install nmap for active probing: " + urls.NmapInstall,
			"Run 'camhome-cfg doctor' to check prerequisites",
			"Devices that have not talked to this machine recently will be missing",
		})
	case len(report.Devices) == 0:
		p.PrintWarning("No devices found", details, []string{
			"Check that this machine is on the same network as the cameras",
			"Try --subnet with the cameras' network, e.g. 192.168.1.0/24",
			"Increase --timeout on slow or large networks",
		})
	default:
		if report.SubnetFallback {
			details["Note"] = "no private interface found, used " + discovery.FallbackSubnet
		}
		p.PrintSuccess("Scan complete", details)
		p.Println("Use 'camhome-cfg cameras add --ip <address>' to register a camera")
	}
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// doctorCmd checks discovery prerequisites
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check discovery prerequisites",
	Long: `Check what network discovery needs on this machine:

  - nmap (optional; without it scans use the ARP cache only)
  - a readable neighbour cache (/proc/net/arp or netlink)
  - a non-loopback IPv4 interface

Exits with an error when a required check fails.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	settings := store.Discovery()
	opts := settings.ScannerOptions()
	neighbors, err := opts.NeighborSourceFor()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result := discovery.ValidatePrerequisites(ctx, settings.ProbePath, neighbors, discovery.NewSubnetResolver(nil))

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !ok || f != os.Stdout || !ui.IsTerminal() {
		_, _ = fmt.Fprint(out, discovery.FormatPrerequisiteReport(result))
	} else {
		p := ui.NewPrinter(out)
		p.PrintHeader("Doctor", "camhome-cfg doctor", map[string]string{
			"Config":          store.Path(),
			"Neighbour cache": settings.NeighborSource,
		})
		p.PrintChecklist(result)
		if result.AllAvailable {
			p.PrintSuccess("Ready to scan", nil)
		} else {
			p.PrintFailure("Discovery cannot run", nil, []string{"See " + urls.Troubleshooting})
		}
	}

	if !result.AllAvailable {
		return fmt.Errorf("required prerequisites are missing")
	}
	return nil
}
