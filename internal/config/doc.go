// Package config provides configuration management for CamHome.
//
// This package manages a YAML-based configuration file that stores the HTTP
// server settings, the network discovery settings and the list of registered
// cameras. The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/camhome/config.yaml or $HOME/.config/camhome/config.yaml
//   - macOS: $HOME/.config/camhome/config.yaml
//   - Windows: %LOCALAPPDATA%\camhome\config.yaml
//
// The --config flag on both binaries overrides the location.
//
// # Usage Example
//
//	store, err := config.Open("", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cam, err := store.AddCamera(config.Camera{Name: "Garage", IP: "192.168.1.64"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Pick up edits made by camhome-cfg or a text editor
//	go store.Watch(ctx)
//
// # Thread Safety
//
// Store guards the registry with a read/write mutex and serialises disk
// writes. Every write goes to a temporary file that is renamed into place.
package config
