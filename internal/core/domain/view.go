package domain

// View identifies one of the console's top-level views.
// Exactly one view is active at any time.
type View int

const (
	// ViewUpload is the file selection and upload view.
	ViewUpload View = iota
	// ViewChat is the question/answer conversation view.
	ViewChat
	// ViewDocuments lists the indexed documents.
	ViewDocuments
)

// Views lists every view in navigation order.
func Views() []View {
	return []View{ViewUpload, ViewChat, ViewDocuments}
}

// IsValid returns true if the view is known.
func (v View) IsValid() bool {
	return v >= ViewUpload && v <= ViewDocuments
}

// String returns the string representation of the view.
func (v View) String() string {
	switch v {
	case ViewUpload:
		return "upload"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	default:
		return "unknown"
	}
}

// Title returns the tab label for the view.
func (v View) Title() string {
	switch v {
	case ViewUpload:
		return "Upload"
	case ViewChat:
		return "Chat"
	case ViewDocuments:
		return "Documents"
	default:
		return unknownDescription
	}
}
