// Package server exposes the corner pipeline as an MCP tool server.
//
// Requests arrive as newline-delimited JSON-RPC 2.0 on stdin and responses
// leave on stdout; Serve accepts any reader and writer so tests can drive a
// whole session in memory. The handled methods are initialize, tools/list,
// tools/call and ping. Notifications get no reply.
//
// # Tools
//
//   - image_load: metadata of an image file, which is then cached
//   - image_dimensions: width and height of an image file
//   - image_unload: drop one cached image, or all of them
//   - corners_process: all nine pipeline images, base64 encoded, with corner counts
//   - corners_detect: corner coordinates and scores only
//
// The corner tools read the image from path (cached) or image_base64 (never
// cached), and layer their optional arguments over the tuning file given to
// NewWithConfig. Arguments are validated before the image is read.
//
// # Errors
//
// A failed call returns a JSON-RPC error and no result. Code -32602 means
// the caller's image or arguments were rejected; -32000 means the pipeline
// failed on valid input. The data field carries the Go error string.
//
// # Logging
//
// Each tools/call produces one event on the server logger, tagged with a
// fresh request_id, the tool name, the duration and, for corner tools, the
// number of corners found.
package server
