package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the project repository at https://github.com/marceloreis098/CamHome

// Repository is the project home page.
const Repository = "https://github.com/marceloreis098/CamHome"

// GettingStarted covers installing the server and registering a first camera.
const GettingStarted = "https://github.com/marceloreis098/CamHome#readme"

// Troubleshooting lists fixes for common discovery problems such as a missing
// nmap binary, an unreadable ARP table or a scan that finds nothing.
const Troubleshooting = "https://github.com/marceloreis098/CamHome/wiki/Troubleshooting"

// NmapInstall is the upstream download page for the nmap probe.
const NmapInstall = "https://nmap.org/download.html"

// SnapshotURLs documents the per-vendor snapshot URL templates and their placeholders.
const SnapshotURLs = "https://github.com/marceloreis098/CamHome/wiki/Snapshot-URLs"
