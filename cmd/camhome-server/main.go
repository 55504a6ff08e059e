// Camhome-server is the CamHome backend: network discovery, the camera
// registry and the snapshot proxy behind one HTTP API.
//
// Usage:
//
//	camhome-server server [flags]
//
// See 'camhome-server server --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"github.com/marceloreis098/CamHome/internal/logging"
	"github.com/marceloreis098/CamHome/internal/server"
	"github.com/marceloreis098/CamHome/internal/urls"
	"github.com/marceloreis098/CamHome/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "camhome-server",
	Short: "CamHome surveillance backend",
	Long: `The CamHome backend serves the dashboard API.

It discovers devices on the local network, keeps the list of registered
cameras and proxies camera snapshots so the browser never talks to a
camera directly.

For scanning and camera management from a terminal, use 'camhome-cfg'.

Source and issues: ` + urls.Repository,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	configPath string
	listenAddr string
	logLevel   string
	staticDir  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long: `Start the CamHome HTTP server.

Settings are read from the configuration file and can be overridden with
flags. The camera list is reloaded automatically when the file changes,
for example after 'camhome-cfg cameras add'.

Scans run nmap when it is installed. Without nmap, discovery falls back
to the ARP cache and results are marked as inferred.`,
	Example: `  # Start with the default config file
  camhome-server server

  # Listen on another port with debug logging
  camhome-server server --listen :8080 --log-level debug

  # Serve the built dashboard
  camhome-server server --static-dir ./dist`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, :3000)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serverCmd.Flags().StringVar(&staticDir, "static-dir", "", "Directory with the built dashboard")
}

func runServer(cmd *cobra.Command, args []string) error {
	store, err := config.Open(configPath, nil)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings := store.Server()
	fileLevel := settings.LogLevel
	applyServerFlags(cmd, &settings)

	if err := logging.Initialize(resolveLogLevel(cmd.Flags().Changed("log-level"), logLevel, fileLevel)); err != nil {
		return err
	}
	defer logging.Sync()

	store.SetLogger(logging.Named("config"))

	if settings.StaticDir != "" {
		info, err := os.Stat(settings.StaticDir)
		if err != nil {
			return fmt.Errorf("cannot access static directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static path is not a directory: %s", settings.StaticDir)
		}
	}

	discoverySettings := store.Discovery()
	scanner, err := discovery.Build(discoverySettings.ScannerOptions(), logging.Named("discovery"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := discovery.ValidateProbePath(checkCtx, discoverySettings.ProbePath); err != nil {
		logging.Warn("nmap unavailable, scans will use the ARP cache only", zap.Error(err))
	}
	cancel()

	srv, err := server.New(&server.Config{
		ListenAddr:      settings.Listen,
		StaticDir:       settings.StaticDir,
		SnapshotTimeout: time.Duration(settings.SnapshotTimeout) * time.Second,
	}, scanner, store, logging.Named("server"))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info("Starting CamHome",
		zap.String("version", version.Full()),
		zap.String("config", store.Path()),
		zap.String("listen", settings.Listen),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		if err := store.Watch(gctx); err != nil {
			// The server keeps running without live reload
			logging.Warn("config watcher stopped", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// applyServerFlags overrides file settings with flags the user set
func applyServerFlags(cmd *cobra.Command, settings *config.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		settings.Listen = listenAddr
	}
	if flags.Changed("static-dir") {
		settings.StaticDir = staticDir
	}
}

// resolveLogLevel picks the flag, then CAMHOME_LOG_LEVEL, then the config
// file, then info. The server always logs.
func resolveLogLevel(flagSet bool, flagLevel, fileLevel string) string {
	if flagSet && flagLevel != "" {
		return flagLevel
	}
	if env := os.Getenv(logging.LogLevelEnvVar); env != "" {
		return env
	}
	if fileLevel != "" {
		return fileLevel
	}
	return "info"
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("camhome-server %s\n", version.Full())
	},
}
