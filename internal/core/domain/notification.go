package domain

import "time"

// NotificationLevel classifies a user-facing notification.
type NotificationLevel string

// Notification levels.
const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient message for the user, the console's
// equivalent of a toast.
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
	Time    time.Time
}

// NewNotification creates a notification stamped with the current time.
func NewNotification(level NotificationLevel, title, message string) Notification {
	return Notification{
		Level:   level,
		Title:   title,
		Message: message,
		Time:    time.Now(),
	}
}

// String renders the notification on one line.
func (n Notification) String() string {
	if n.Message == "" {
		return n.Title
	}
	if n.Title == "" {
		return n.Message
	}
	return n.Title + ": " + n.Message
}
