// Package domain defines the core entities for policydesk.
//
// This package is the innermost layer of the hexagon. It has NO external
// dependencies and defines the fundamental types:
//
//   - Document: a server-side indexed policy document, cached client-side
//   - ChatMessage: one entry of the append-only conversation transcript
//   - Citation: a page/snippet/score triple attached to an answer
//   - UploadFile / SelectionSet: files chosen for the next upload
//   - View: the single active console view
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
