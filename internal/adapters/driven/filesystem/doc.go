// Package filesystem finds PDF documents on local disk for upload.
//
// Source scans a directory for candidate documents and watches it with
// fsnotify so the console's picker stays current. Load and Expand turn
// command-line arguments into upload files, counting pages locally with
// github.com/ledongthuc/pdf so obviously broken files are rejected before
// any bytes are sent.
package filesystem
