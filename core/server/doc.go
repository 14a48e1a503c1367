// Package server holds the HTTP server configuration.
//
// The start command owns the fiber app; this package only defines the
// settings it reads: listen port, API key, and whether content roots are
// watched for changes (with the debounce applied before a reload).
package server
