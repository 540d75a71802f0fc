package notifications

import (
	"fmt"
	"time"

	"github.com/unlockenglish/tutorsite/internal/content"
)

// Type categorises the event that triggered the notification.
type Type string

const (
	TypeStudentRequest Type = "student_request"
)

// Notification is a message for the teacher.
type Notification struct {
	Type      Type      `json:"type"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRequest builds the alert sent when a student submits a topic request.
func FromRequest(r content.StudentRequest) Notification {
	return Notification{
		Type:    TypeStudentRequest,
		Subject: fmt.Sprintf("New topic request: %s", r.Topic),
		Message: fmt.Sprintf("%s (class/roll %s) asked for %s:\n\n%s",
			r.StudentName, r.ClassRoll, r.Topic, r.Message),
		CreatedAt: r.CreatedAt,
	}
}
