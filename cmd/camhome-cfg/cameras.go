package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marceloreis098/CamHome/internal/config"
	"github.com/marceloreis098/CamHome/internal/discovery"
	"github.com/marceloreis098/CamHome/internal/ui"
	"github.com/marceloreis098/CamHome/internal/urls"
)

// Cameras command flags
var (
	camerasFormat string

	addName         string
	addIP           string
	addManufacturer string
	addModel        string
	addSnapshotURL  string
	addStreamURL    string
	addUsername     string
	addPassword     string
	addHTTPS        bool

	removeYes bool
)

func init() {
	rootCmd.AddCommand(camerasCmd)
	camerasCmd.AddCommand(camerasListCmd)
	camerasCmd.AddCommand(camerasAddCmd)
	camerasCmd.AddCommand(camerasRemoveCmd)

	camerasListCmd.Flags().StringVar(&camerasFormat, "format", formatTable, "Output format (table, json)")

	camerasAddCmd.Flags().StringVar(&addName, "name", "", "Display name (required)")
	camerasAddCmd.Flags().StringVar(&addIP, "ip", "", "Camera IPv4 address (required)")
	camerasAddCmd.Flags().StringVar(&addManufacturer, "manufacturer", "", "Manufacturer, used to pick a snapshot URL template")
	camerasAddCmd.Flags().StringVar(&addModel, "model", "", "Model")
	camerasAddCmd.Flags().StringVar(&addSnapshotURL, "snapshot-url", "", "Snapshot URL template ([IP], [USER] and [PASS] are filled in)")
	camerasAddCmd.Flags().StringVar(&addStreamURL, "stream-url", "", "RTSP stream URL (default: rtsp://<ip>:554/onvif1)")
	camerasAddCmd.Flags().StringVar(&addUsername, "username", "", "Camera username")
	camerasAddCmd.Flags().StringVar(&addPassword, "password", "", "Camera password")
	camerasAddCmd.Flags().BoolVar(&addHTTPS, "https", false, "Fetch snapshots over HTTPS")
	_ = camerasAddCmd.MarkFlagRequired("name")
	_ = camerasAddCmd.MarkFlagRequired("ip")

	camerasRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Do not ask for confirmation")
}

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Manage registered cameras",
	Long: `List, add and remove the cameras CamHome shows on the dashboard.

Changes are saved to the configuration file. A running camhome-server
reloads the list automatically.`,
}

var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered cameras",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if camerasFormat != formatTable && camerasFormat != formatJSON {
			return fmt.Errorf("unknown format %q (want table or json)", camerasFormat)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		cameras, err := store.Cameras(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if camerasFormat == formatJSON {
			return writeJSON(out, redactAll(cameras))
		}

		p := ui.NewPrinter(out)
		if len(cameras) == 0 {
			p.Println("No cameras registered. Run 'camhome-cfg scan' to find some.")
			return nil
		}
		p.PrintCameras(cameras)
		return nil
	},
}

var camerasAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a camera",
	Long: `Register a camera.

When --snapshot-url is omitted, a URL template is picked from the
manufacturer name. When --stream-url is omitted, the common ONVIF RTSP
path is used.

Known snapshot URLs per vendor: ` + urls.SnapshotURLs,
	Example: `  # Register a Hikvision camera found by 'camhome-cfg scan'
  camhome-cfg cameras add --name Garage --ip 192.168.1.64 \
    --manufacturer Hikvision --username admin --password secret`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		if existing, ok := store.Registry().CameraByIP(addIP); ok {
			return fmt.Errorf("%s is already registered as %q (id %s)", addIP, existing.Name, existing.ID)
		}

		camera, err := store.AddCamera(newCameraFromFlags())
		if err != nil {
			return err
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintSuccess("Camera added", map[string]string{
			"ID":           camera.ID,
			"Name":         camera.Name,
			"IP":           camera.IP,
			"Snapshot URL": camera.SnapshotURL,
		})
		return nil
	},
}

// newCameraFromFlags builds a camera from the add flags, filling URL defaults
func newCameraFromFlags() config.Camera {
	c := config.Camera{
		Name:         addName,
		IP:           addIP,
		Manufacturer: addManufacturer,
		Model:        addModel,
		SnapshotURL:  addSnapshotURL,
		StreamURL:    addStreamURL,
		Username:     addUsername,
		Password:     addPassword,
		HTTPS:        addHTTPS,
	}
	if c.SnapshotURL == "" && c.Manufacturer != "" {
		c.SnapshotURL = discovery.DefaultSnapshotTemplates().Lookup(c.Manufacturer)
	}
	if c.StreamURL == "" && c.IP != "" {
		c.StreamURL = discovery.StreamURLGuess(c.IP)
	}
	return c
}

var camerasRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a registered camera",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		camera, err := store.Camera(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !removeYes {
			details := []string{fmt.Sprintf("%s (%s)", camera.Name, camera.IP)}
			if !ui.Confirm(os.Stdin, out, "Remove camera?", details) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
		}

		if err := store.RemoveCamera(camera.ID); err != nil {
			return err
		}

		ui.NewPrinter(out).PrintSuccess("Camera removed", map[string]string{
			"ID":   camera.ID,
			"Name": camera.Name,
		})
		return nil
	},
}

func redactAll(cameras []config.Camera) []config.Camera {
	out := make([]config.Camera, len(cameras))
	for i, c := range cameras {
		out[i] = c.Redacted()
	}
	return out
}
