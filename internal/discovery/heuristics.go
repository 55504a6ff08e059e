package discovery

// Models reported for devices
const (
	ModelRTSPCamera    = "IP Camera (RTSP)"
	ModelWebService    = "Web Service / Camera"
	ModelNetworkDevice = "Network Device"
	ModelARPInferred   = "Inferred from ARP cache (not actively probed)"
)

// DefaultProbePorts are the TCP ports the probe checks
var DefaultProbePorts = []int{80, 554, 5000, 8000, 8080, 34567, 37777}

// PortHint maps a vendor-specific service port to a best-guess manufacturer.
// Hints only apply when MAC classification produced GenericManufacturer.
type PortHint struct {
	Port         int
	Manufacturer string
}

// DefaultPortHints returns the built-in port heuristics
func DefaultPortHints() []PortHint {
	return []PortHint{
		// Dahua private SDK port
		{Port: 37777, Manufacturer: "Dahua"},
		// XiongMai NETSurveillance / DVRIP
		{Port: 34567, Manufacturer: "XiongMai"},
	}
}

// manufacturerFromPorts returns the first hint whose port is open
func manufacturerFromPorts(ports []int, hints []PortHint) (string, bool) {
	for _, hint := range hints {
		for _, p := range ports {
			if p == hint.Port {
				return hint.Manufacturer, true
			}
		}
	}
	return "", false
}

// modelFromPorts guesses a device class from its open ports
func modelFromPorts(ports []int) string {
	web := false
	for _, p := range ports {
		switch p {
		case 554:
			return ModelRTSPCamera
		case 80, 8000, 8080:
			web = true
		}
	}
	if web {
		return ModelWebService
	}
	return ModelNetworkDevice
}
