package archivist

import (
	"time"
)

// Action names a state change recorded in the audit log.
type Action string

const (
	ActionVersionUploaded        Action = "version_uploaded"
	ActionCheckedOut             Action = "checked_out"
	ActionCheckedIn              Action = "checked_in"
	ActionCheckoutCancelled      Action = "checkout_cancelled"
	ActionConfidentialityChanged Action = "confidentiality_changed"
	ActionUploaded               Action = "uploaded"
)

type AuditEntry struct {
	ID           string                 `json:"id"`
	Action       Action                 `json:"action"`
	ActorID      string                 `json:"actorId"`
	DocumentID   string                 `json:"documentId"`
	DepartmentID string                 `json:"departmentId,omitempty"`
	VersionFrom  Version                `json:"versionFrom"`
	VersionTo    Version                `json:"versionTo"`
	Details      map[string]interface{} `json:"details,omitempty"`
	At           time.Time              `json:"at"`
}

// AuditSink receives audit entries. Entries are never read back by the
// lifecycle, a failing sink does not fail the operation that produced the
// entry.
type AuditSink interface {
	Record(AuditEntry) error
}

// AuditLog is an AuditSink that can be read, used by the compliance views.
type AuditLog interface {
	AuditSink
	List(documentID string) ([]AuditEntry, error)
}
