// Package mcp provides an MCP (Model Context Protocol) server adapter for
// policydesk. It lets AI assistants list, upload and question the documents
// held by the indexing service through the same orchestrators as the console.
package mcp

import "errors"

var (
	// ErrMissingRoster is returned when the document roster is not provided.
	ErrMissingRoster = errors.New("mcp: document roster is required")

	// ErrMissingChat is returned when the chat session is not provided.
	ErrMissingChat = errors.New("mcp: chat session is required")

	// errUploadsDisabled is returned by upload_documents when no file
	// expander is configured.
	errUploadsDisabled = errors.New("uploads are not available in this server")
)
