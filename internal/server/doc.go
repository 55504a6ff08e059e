// Package server implements the CamHome HTTP API.
//
// The server exposes network discovery, the camera registry and a snapshot
// proxy to the dashboard. All JSON bodies are encoded with goccy/go-json.
//
// # Endpoints
//
//	GET    /discover?subnet=             scan and return []Device
//	GET    /api/scan?subnet=             alias of /discover
//	GET    /discover/stream?subnet=      WebSocket: started, device..., done
//	GET    /api/cameras                  list cameras (passwords removed)
//	POST   /api/cameras                  register a camera
//	GET    /api/cameras/{id}             one camera
//	PUT    /api/cameras/{id}             replace a camera
//	DELETE /api/cameras/{id}             remove a camera
//	GET    /api/cameras/{id}/snapshot    proxy one still image
//	GET    /healthz                      {"status":"ok","version":{...}}
//
// Any other path is served from the static directory when one is
// configured, falling back to index.html for client-side routes.
//
// # Errors
//
// Failures are reported as {"error": "..."}:
//   - 400 for an invalid subnet or camera body
//   - 404 for an unknown camera
//   - 502 when the camera does not answer a snapshot request
//   - 503 when the camera registry cannot be read during discovery
//
// A scan that falls back to the neighbour cache is not an error: the device
// list is returned with status 200.
//
// # Request IDs
//
// Every response carries an X-Request-ID header. An ID supplied by the
// client is kept; otherwise a UUID is generated. The same ID appears on the
// access log line.
//
// # Usage Example
//
//	scanner := discovery.NewScanner(discovery.ScannerConfig{}, logger)
//	srv, err := server.New(server.DefaultConfig(), scanner, store, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
