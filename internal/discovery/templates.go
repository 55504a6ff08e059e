package discovery

import (
	"net/url"
	"strings"
)

// Placeholders understood by snapshot URL templates
const (
	IPPlaceholder   = "[IP]"
	UserPlaceholder = "[USER]"
	PassPlaceholder = "[PASS]"
)

// GenericSnapshotTemplate is suggested when no vendor template matches
const GenericSnapshotTemplate = "http://[IP]/snapshot.jpg"

// SnapshotTemplate pairs a manufacturer keyword with a URL template
type SnapshotTemplate struct {
	// Keyword is matched case-insensitively against the manufacturer name
	Keyword string
	// Template is the snapshot URL with placeholders
	Template string
}

// SnapshotTemplates is an ordered list; the first matching keyword wins
type SnapshotTemplates []SnapshotTemplate

// DefaultSnapshotTemplates returns the built-in per-vendor snapshot paths
func DefaultSnapshotTemplates() SnapshotTemplates {
	return SnapshotTemplates{
		{Keyword: "hikvision", Template: "http://[IP]/ISAPI/Streaming/channels/101/picture"},
		{Keyword: "dahua", Template: "http://[IP]/cgi-bin/snapshot.cgi?channel=1"},
		{Keyword: "intelbras", Template: "http://[IP]/cgi-bin/snapshot.cgi?channel=1"},
		{Keyword: "amcrest", Template: "http://[IP]/cgi-bin/snapshot.cgi?channel=1"},
		{Keyword: "xiongmai", Template: "http://[IP]/snap.jpg"},
		{Keyword: "vstarcam", Template: "http://[IP]/snapshot.cgi?user=[USER]&pwd=[PASS]"},
		{Keyword: "yoosee", Template: "http://[IP]:5000/snapshot"},
		{Keyword: "axis", Template: "http://[IP]/axis-cgi/jpg/image.cgi"},
		{Keyword: "reolink", Template: "http://[IP]/cgi-bin/api.cgi?cmd=Snap&channel=0&rs=camhome&user=[USER]&password=[PASS]"},
		{Keyword: "onvif", Template: "http://[IP]:8080/onvif/snapshot"},
	}
}

// Lookup returns the raw template for a manufacturer
func (t SnapshotTemplates) Lookup(manufacturer string) string {
	name := strings.ToLower(manufacturer)
	for _, tmpl := range t {
		if tmpl.Keyword != "" && strings.Contains(name, strings.ToLower(tmpl.Keyword)) {
			return tmpl.Template
		}
	}
	return GenericSnapshotTemplate
}

// Suggest returns the template for a manufacturer with the address filled in
func (t SnapshotTemplates) Suggest(manufacturer, address string) string {
	return strings.ReplaceAll(t.Lookup(manufacturer), IPPlaceholder, address)
}

// ExpandSnapshotURL fills every placeholder. Credentials are query-escaped.
func ExpandSnapshotURL(template, address, username, password string) string {
	r := strings.NewReplacer(
		IPPlaceholder, address,
		UserPlaceholder, url.QueryEscape(username),
		PassPlaceholder, url.QueryEscape(password),
	)
	return r.Replace(template)
}

// StreamURLGuess is the RTSP path most inexpensive cameras answer on
func StreamURLGuess(address string) string {
	return "rtsp://" + address + ":554/onvif1"
}
