package discovery

import (
	"fmt"

	"github.com/marceloreis098/CamHome/internal/urls"
)

// ProbeExecutionError represents a failure running the host-discovery tool.
// This covers a missing binary, permission problems and non-zero exit codes.
type ProbeExecutionError struct {
	// Tool is the probe binary that was invoked
	Tool string
	// Subnet is the network that was being probed
	Subnet string
	// ExitCode is the process exit code, -1 when it never started
	ExitCode int
	// Stderr is the tool's stderr output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *ProbeExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %q failed for %s (exit code %d): %v\nstderr: %s",
			e.Tool, e.Subnet, e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("probe %q failed for %s (exit code %d)\nstderr: %s",
		e.Tool, e.Subnet, e.ExitCode, e.Stderr)
}

func (e *ProbeExecutionError) Unwrap() error {
	return e.Err
}

// ProbeTimeoutError represents a probe that exceeded its wall-clock budget.
// The child process has been killed by the time this error is returned.
type ProbeTimeoutError struct {
	// Subnet is the network that was being probed
	Subnet string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *ProbeTimeoutError) Error() string {
	return fmt.Sprintf("probe of %s timed out after %s\n"+
		"Hint: Increase the probe timeout or scan a smaller subnet",
		e.Subnet, e.Timeout)
}

// ProbeOutputError represents probe output that could not be parsed at all.
// Individual malformed lines never produce this error; they are skipped.
type ProbeOutputError struct {
	// Format is the output format that was expected
	Format OutputFormat
	// Underlying error
	Err error
}

func (e *ProbeOutputError) Error() string {
	return fmt.Sprintf("failed to parse %s probe output: %v", e.Format, e.Err)
}

func (e *ProbeOutputError) Unwrap() error {
	return e.Err
}

// InvalidSubnetError represents a subnet override that is not an IPv4 CIDR.
type InvalidSubnetError struct {
	// Value is the rejected input
	Value string
	// Underlying error if any
	Err error
}

func (e *InvalidSubnetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid subnet %q: expected IPv4 CIDR such as 192.168.1.0/24: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid subnet %q: expected IPv4 CIDR such as 192.168.1.0/24", e.Value)
}

func (e *InvalidSubnetError) Unwrap() error {
	return e.Err
}

// PrerequisiteError represents a missing prerequisite (nmap binary, ARP table, etc.).
type PrerequisiteError struct {
	// Prerequisite is the name of the missing prerequisite
	Prerequisite string
	// Details provides additional context
	Details string
	// Underlying error
	Err error
}

func (e *PrerequisiteError) Error() string {
	msg := fmt.Sprintf("missing prerequisite: %s", e.Prerequisite)
	if e.Details != "" {
		msg += "\n" + e.Details
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nError: %v", e.Err)
	}
	msg += "\nSee: " + urls.Troubleshooting
	return msg
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}
