package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultProbeTimeout bounds one probe invocation
const DefaultProbeTimeout = 20 * time.Second

// Prober actively probes a subnet for live hosts
type Prober interface {
	Probe(ctx context.Context, subnet string) ([]ProbeHost, error)
}

// ProbeConfig holds the configuration for nmap execution.
type ProbeConfig struct {
	// Path is the nmap binary.
	// Default: "nmap" (searches PATH)
	Path string

	// Ports are the TCP ports checked on every host.
	// Default: DefaultProbePorts
	Ports []int

	// Timing is the nmap timing template flag.
	// Default: "-T4"
	Timing string

	// Format selects the output flag and parser.
	// Default: FormatNormal
	Format OutputFormat

	// ExtraArgs are appended before the target
	ExtraArgs []string

	// Timeout is the hard wall-clock limit; the child is killed when exceeded.
	// Default: DefaultProbeTimeout
	Timeout time.Duration
}

// DefaultProbeConfig returns a ProbeConfig with sensible defaults.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Path:    "nmap",
		Ports:   append([]int(nil), DefaultProbePorts...),
		Timing:  "-T4",
		Format:  FormatNormal,
		Timeout: DefaultProbeTimeout,
	}
}

// NmapProber runs nmap via os/exec and parses its output.
type NmapProber struct {
	config ProbeConfig
	parser Parser
	logger *zap.Logger
}

// NewNmapProber creates a prober. Zero-valued config fields take defaults.
func NewNmapProber(config ProbeConfig, logger *zap.Logger) (*NmapProber, error) {
	defaults := DefaultProbeConfig()
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if len(config.Ports) == 0 {
		config.Ports = defaults.Ports
	}
	if config.Timing == "" {
		config.Timing = defaults.Timing
	}
	if config.Format == "" {
		config.Format = defaults.Format
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	parser, err := ParserFor(config.Format)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &NmapProber{
		config: config,
		parser: parser,
		logger: logger,
	}, nil
}

// Config returns the effective configuration
func (p *NmapProber) Config() ProbeConfig {
	return p.config
}

// Args returns the nmap argument list for subnet
func (p *NmapProber) Args(subnet string) []string {
	ports := make([]string, len(p.config.Ports))
	for i, port := range p.config.Ports {
		ports[i] = strconv.Itoa(port)
	}

	args := []string{
		p.config.Timing,
		"-p", strings.Join(ports, ","),
		p.config.Format.Flag(), "-",
	}
	args = append(args, p.config.ExtraArgs...)
	return append(args, subnet)
}

// Probe runs nmap once against subnet.
//
// Steps:
//  1. Start nmap under a context bounded by the configured timeout
//  2. Capture stdout/stderr
//  3. Map a deadline to ProbeTimeoutError, other failures to ProbeExecutionError
//  4. Parse stdout with the format's parser
func (p *NmapProber) Probe(ctx context.Context, subnet string) ([]ProbeHost, error) {
	startTime := time.Now()
	args := p.Args(subnet)

	p.logger.Debug("starting probe",
		zap.String("path", p.config.Path),
		zap.Strings("args", args),
		zap.Duration("timeout", p.config.Timeout),
	)

	timeoutCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.CommandContext(timeoutCtx, p.config.Path, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	// Grandchildren holding the pipes open must not keep Wait blocked
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	duration := time.Since(startTime)

	p.logger.Debug("probe complete",
		zap.Duration("duration", duration),
		zap.Int("stdout_size", stdoutBuf.Len()),
		zap.Int("stderr_size", stderrBuf.Len()),
		zap.Error(err),
	)

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &ProbeTimeoutError{
			Subnet:  subnet,
			Timeout: p.config.Timeout.String(),
		}
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &ProbeExecutionError{
			Tool:     p.config.Path,
			Subnet:   subnet,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderrBuf.String()),
			Err:      err,
		}
	}

	hosts, err := p.parser.Parse(stdoutBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("probe of %s: %w", subnet, err)
	}

	p.logger.Info("probe finished",
		zap.String("subnet", subnet),
		zap.Int("hosts", len(hosts)),
		zap.Duration("duration", duration),
	)

	return hosts, nil
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, subnet string) ([]ProbeHost, error)

// Probe implements Prober
func (f ProberFunc) Probe(ctx context.Context, subnet string) ([]ProbeHost, error) {
	return f(ctx, subnet)
}
