// Package urls holds the links printed in CLI help, troubleshooting boxes
// and server error hints, so they are changed in one place.
//
//	p.PrintWarning("Scan used the ARP cache only", details, []string{
//	    "Install nmap for active probing: " + urls.NmapInstall,
//	})
package urls
