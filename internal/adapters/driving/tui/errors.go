package tui

import "errors"

// ErrMissingRoster is returned when the document roster is not provided.
var ErrMissingRoster = errors.New("tui: document roster is required")

// ErrMissingUploads is returned when the upload orchestrator is not provided.
var ErrMissingUploads = errors.New("tui: upload orchestrator is required")

// ErrMissingChat is returned when the chat session is not provided.
var ErrMissingChat = errors.New("tui: chat session is required")

// ErrMissingViews is returned when the view controller is not provided.
var ErrMissingViews = errors.New("tui: view controller is required")

// ErrMissingAdmin is returned when the document admin is not provided.
var ErrMissingAdmin = errors.New("tui: document admin is required")
