// Package audit records what admins did to the site's content.
package audit

import "time"

// Action describes what was done.
type Action string

const (
	ActionResourcePublished Action = "resource_published"
	ActionResourceDeleted   Action = "resource_deleted"
	ActionCategoryCreated   Action = "category_created"
	ActionCategoryDeleted   Action = "category_deleted"
	ActionNoticePosted      Action = "notice_posted"
	ActionRequestDeleted    Action = "request_deleted"
	ActionSignedIn          Action = "signed_in"
	ActionSignedOut         Action = "signed_out"
)

// ActorSystem is used when no signed-in admin performed the action, such as
// a CLI import.
const ActorSystem = "system"

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Actor     string    `json:"actor" db:"actor"`
	Action    Action    `json:"action" db:"action"`
	// Subject identifies the record acted on, e.g. "resource:12".
	Subject string `json:"subject" db:"subject"`
	Summary string `json:"summary" db:"summary"`
}
