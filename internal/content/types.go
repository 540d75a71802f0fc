// Package content defines the records the site publishes and the storage
// contract the rest of the application consumes.
package content

import (
	"strings"
	"time"
)

// Resource is a published study resource.
type Resource struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Category    string    `json:"category" db:"category"` // section id the resource is filed under
	Description string    `json:"description" db:"description"`
	Content     string    `json:"content" db:"content"` // rendered HTML
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewResource holds the fields needed to publish a resource.
type NewResource struct {
	Title       string `json:"title" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"max=400"`
	Content     string `json:"content" validate:"required"`
}

// Trim strips surrounding whitespace from every field.
func (r NewResource) Trim() NewResource {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	r.Content = strings.TrimSpace(r.Content)
	return r
}

// StudentRequest is a topic request submitted through the student portal.
type StudentRequest struct {
	ID          int64     `json:"id" db:"id"`
	StudentName string    `json:"student_name" db:"student_name"`
	ClassRoll   string    `json:"class_roll" db:"class_roll"`
	Topic       string    `json:"topic" db:"topic"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewRequest holds the fields of the student request form.
type NewRequest struct {
	StudentName string `json:"student_name" validate:"required,max=120"`
	ClassRoll   string `json:"class_roll" validate:"required,max=60"`
	Topic       string `json:"topic" validate:"required,oneof='Model Question' Paragraph Composition 'Grammar Explanation' Other"`
	Message     string `json:"message" validate:"required,max=2000"`
}

// Trim strips surrounding whitespace from every field.
func (r NewRequest) Trim() NewRequest {
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.ClassRoll = strings.TrimSpace(r.ClassRoll)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Message = strings.TrimSpace(r.Message)
	return r
}

// RequestTopics lists the topics a student can ask for, in display order.
var RequestTopics = []string{"Model Question", "Paragraph", "Composition", "Grammar Explanation", "Other"}

// Notice is a message shown in the home page ticker. Only the latest one is shown.
type Notice struct {
	ID        int64     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category is a user-defined content section.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Label     string    `json:"label" db:"label"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewCategory holds the fields of the add-category form.
type NewCategory struct {
	Label string `json:"label" validate:"required,max=60"`
}
