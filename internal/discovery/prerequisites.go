package discovery

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/marceloreis098/CamHome/internal/urls"
)

// PrerequisiteCheck represents the result of checking a single prerequisite.
type PrerequisiteCheck struct {
	// Name is the human-readable name of the prerequisite
	Name string
	// Available indicates whether the prerequisite is available
	Available bool
	// Required is false for checks that only degrade results
	Required bool
	// Path is the resolved path (for binary checks)
	Path string
	// Version is the detected version (if applicable)
	Version string
	// Message provides additional context (error message or success info)
	Message string
	// Error contains the underlying error if check failed
	Error error
}

// PrerequisiteResult contains the results of all prerequisite checks.
type PrerequisiteResult struct {
	// Checks contains individual check results
	Checks []PrerequisiteCheck
	// AllAvailable is true if all required prerequisites are available
	AllAvailable bool
}

// ValidatePrerequisites checks what a full scan needs:
//   - the nmap binary (without it scans are ARP-only)
//   - a readable neighbour cache
//   - a non-loopback IPv4 interface
//
// A missing nmap is reported but does not fail validation, since scans
// still work in degraded mode.
func ValidatePrerequisites(ctx context.Context, probePath string, neighbors NeighborSource, resolver *SubnetResolver) *PrerequisiteResult {
	result := &PrerequisiteResult{
		Checks:       make([]PrerequisiteCheck, 0, 3),
		AllAvailable: true,
	}

	for _, check := range []PrerequisiteCheck{
		checkProbeBinary(ctx, probePath),
		checkNeighborSource(ctx, neighbors),
		checkInterfaces(resolver),
	} {
		result.Checks = append(result.Checks, check)
		if check.Required && !check.Available {
			result.AllAvailable = false
		}
	}

	return result
}

// checkProbeBinary verifies that nmap is available and executable.
func checkProbeBinary(ctx context.Context, probePath string) PrerequisiteCheck {
	if probePath == "" {
		probePath = "nmap"
	}
	check := PrerequisiteCheck{
		Name: "nmap",
	}

	path, err := exec.LookPath(probePath)
	if err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("%s not found in PATH; scans will use the ARP cache only\n"+
			"Install on Debian/Ubuntu: sudo apt-get install nmap\n"+
			"Install on macOS: brew install nmap\n"+
			"Other platforms: %s", probePath, urls.NmapInstall)
		return check
	}
	check.Path = path

	version, err := probeVersion(ctx, path)
	if err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("%s found at %s but failed to execute: %v", probePath, path, err)
		return check
	}

	check.Version = version
	check.Available = true
	check.Message = fmt.Sprintf("Found at %s", path)
	return check
}

func probeVersion(ctx context.Context, path string) (string, error) {
	versionCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, path, "--version").Output()
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", nil
}

// checkNeighborSource verifies that the neighbour cache can be read.
func checkNeighborSource(ctx context.Context, neighbors NeighborSource) PrerequisiteCheck {
	check := PrerequisiteCheck{
		Name:     "ARP cache",
		Required: true,
	}
	if neighbors == nil {
		neighbors = NewProcARPReader()
	}

	entries, err := neighbors.Neighbors(ctx)
	if err != nil {
		check.Error = err
		check.Message = "Cannot read the neighbour cache; quiet devices will not be listed"
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("%d complete entries", len(entries))
	return check
}

// checkInterfaces verifies that a local subnet can be derived.
func checkInterfaces(resolver *SubnetResolver) PrerequisiteCheck {
	check := PrerequisiteCheck{
		Name:     "Local IPv4 network",
		Required: true,
	}
	if resolver == nil {
		resolver = NewSubnetResolver(nil)
	}

	subnet, fallback := resolver.Resolve()
	if fallback {
		check.Message = fmt.Sprintf("No non-loopback IPv4 interface found; scans default to %s", subnet)
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("Scanning %s by default", subnet)
	return check
}

// ValidateProbePath checks that a specific nmap binary is usable.
func ValidateProbePath(ctx context.Context, probePath string) error {
	if probePath == "" {
		return &PrerequisiteError{
			Prerequisite: "nmap",
			Details:      "probe path is empty",
		}
	}

	version, err := probeVersion(ctx, probePath)
	if err != nil {
		return &PrerequisiteError{
			Prerequisite: "nmap",
			Details:      fmt.Sprintf("Failed to execute %s --version", probePath),
			Err:          err,
		}
	}

	if !strings.Contains(strings.ToLower(version), "nmap") {
		return &PrerequisiteError{
			Prerequisite: "nmap",
			Details:      fmt.Sprintf("%s does not appear to be nmap", probePath),
		}
	}

	return nil
}

// FormatPrerequisiteReport formats a PrerequisiteResult into a human-readable string.
func FormatPrerequisiteReport(result *PrerequisiteResult) string {
	var sb strings.Builder

	sb.WriteString("Discovery Prerequisites Check:\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	for _, check := range result.Checks {
		switch {
		case check.Available:
			sb.WriteString(fmt.Sprintf("✓ %s\n", check.Name))
			if check.Version != "" {
				sb.WriteString(fmt.Sprintf("  Version: %s\n", check.Version))
			}
		case check.Required:
			sb.WriteString(fmt.Sprintf("✗ %s\n", check.Name))
		default:
			sb.WriteString(fmt.Sprintf("! %s (optional)\n", check.Name))
		}
		if check.Message != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", check.Message))
		}
		sb.WriteString("\n")
	}

	if result.AllAvailable {
		sb.WriteString("All required prerequisites are available.\n")
	} else {
		sb.WriteString("Some prerequisites are missing. See " + urls.Troubleshooting + "\n")
	}

	return sb.String()
}
