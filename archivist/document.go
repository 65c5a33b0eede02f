package archivist

import (
	"fmt"
	"time"

	"github.com/bobinette/archivist/errors"
)

// Status is the editorial status of a document.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusArchived Status = "archived"
)

// Lock is the exclusive edit claim a principal holds on a document after
// checking it out.
type Lock struct {
	HolderID   string    `json:"holderId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	Notes      string    `json:"notes,omitempty"`
}

type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileType string `json:"fileType"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize"`

	FolderID     string `json:"folderId,omitempty"`
	DepartmentID string `json:"departmentId"`
	OwnerID      string `json:"ownerId"`

	Status          Status   `json:"status"`
	Confidentiality Level    `json:"confidentiality"`
	Assignees       []string `json:"assignees"`
	Tags            []string `json:"tags"`

	Version Version `json:"version"`
	Lock    *Lock   `json:"lock"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// IsLocked reports whether the document is checked out.
func (d Document) IsLocked() bool {
	return d.Lock != nil
}

// LockedBy reports whether the document is checked out by userID.
func (d Document) LockedBy(userID string) bool {
	return d.Lock != nil && d.Lock.HolderID == userID
}

// LockedByOther reports whether the document is checked out by someone
// other than userID.
func (d Document) LockedByOther(userID string) bool {
	return d.Lock != nil && d.Lock.HolderID != userID
}

func (d Document) HasAssignee(userID string) bool {
	for _, a := range d.Assignees {
		if a == userID {
			return true
		}
	}
	return false
}

// VersionRecord is the snapshot of a document taken right before its
// version changes. Records are never updated nor deleted.
type VersionRecord struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"documentId"`
	Version     Version     `json:"version"`
	Type        VersionType `json:"versionType"`
	FileURL     string      `json:"fileUrl"`
	FileSize    int64       `json:"fileSize"`
	UploadedBy  string      `json:"uploadedBy"`
	ChangeNotes string      `json:"changeNotes,omitempty"`
	UploadedAt  time.Time   `json:"uploadedAt"`

	Metadata VersionMetadata `json:"metadata"`
}

// VersionMetadata is the part of the document metadata kept with a version.
type VersionMetadata struct {
	Name            string   `json:"name"`
	FileType        string   `json:"fileType"`
	Status          Status   `json:"status"`
	Confidentiality Level    `json:"confidentiality"`
	Tags            []string `json:"tags"`
	DepartmentID    string   `json:"departmentId"`
}

// Snapshot builds the version record of d as it is now.
func (d Document) Snapshot(t VersionType, by, notes string, at time.Time) VersionRecord {
	return VersionRecord{
		DocumentID:  d.ID,
		Version:     d.Version.Current(),
		Type:        t,
		FileURL:     d.FileURL,
		FileSize:    d.FileSize,
		UploadedBy:  by,
		ChangeNotes: notes,
		UploadedAt:  at,
		Metadata: VersionMetadata{
			Name:            d.Name,
			FileType:        d.FileType,
			Status:          d.Status,
			Confidentiality: d.Confidentiality,
			Tags:            d.Tags,
			DepartmentID:    d.DepartmentID,
		},
	}
}

// DocumentStore persists documents and their version history.
//
// Update and AppendVersion run fn against the stored document within a
// single transaction: the document cannot change between the read fn sees
// and the write. If fn returns an error nothing is written and the error is
// returned as is.
type DocumentStore interface {
	Get(id string) (Document, error)
	List() ([]Document, error)
	Insert(*Document) error
	Update(id string, fn func(*Document) error) (Document, error)

	// AppendVersion writes the record returned by fn, then the document as
	// mutated by fn.
	AppendVersion(id string, fn func(*Document) (VersionRecord, error)) (Document, VersionRecord, error)
	ListVersions(documentID string) ([]VersionRecord, error)
}

// DocumentIndex is the full text index over document names and tags.
type DocumentIndex interface {
	Index(*Document) error
	Search(q string, limit, offset int) ([]string, error)
	Delete(id string) error
}

// ErrDocumentNotFound is returned by stores when id does not exist.
func ErrDocumentNotFound(id string) error {
	return errors.New(fmt.Sprintf("document %s not found", id), errors.Missing())
}
