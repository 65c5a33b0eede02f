package postgres

import (
	"time"

	"github.com/bobinette/archivist/archivist"
)

type documentRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	FileType     string
	FileURL      string
	FileSize     int64
	FolderID     string
	DepartmentID string `gorm:"index"`
	OwnerID      string `gorm:"index;not null"`

	Status          string
	Confidentiality string   `gorm:"not null;default:'internal'"`
	Assignees       []string `gorm:"serializer:json"`
	Tags            []string `gorm:"serializer:json"`

	VersionNumber archivist.Version `gorm:"type:numeric(10,1);not null;default:1"`

	CheckedOut    bool `gorm:"not null;default:false"`
	CheckedOutBy  *string
	CheckedOutAt  *time.Time
	CheckoutNotes *string

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (documentRow) TableName() string { return "files" }

func fromDocument(doc archivist.Document) documentRow {
	row := documentRow{
		ID:              doc.ID,
		Name:            doc.Name,
		FileType:        doc.FileType,
		FileURL:         doc.FileURL,
		FileSize:        doc.FileSize,
		FolderID:        doc.FolderID,
		DepartmentID:    doc.DepartmentID,
		OwnerID:         doc.OwnerID,
		Status:          string(doc.Status),
		Confidentiality: string(doc.Confidentiality),
		Assignees:       doc.Assignees,
		Tags:            doc.Tags,
		VersionNumber:   doc.Version.Current(),
		CreatedAt:       doc.CreatedAt,
		ModifiedAt:      doc.ModifiedAt,
	}

	if doc.Lock != nil {
		holder, at, notes := doc.Lock.HolderID, doc.Lock.AcquiredAt, doc.Lock.Notes
		row.CheckedOut = true
		row.CheckedOutBy = &holder
		row.CheckedOutAt = &at
		if notes != "" {
			row.CheckoutNotes = &notes
		}
	}
	return row
}

func (row documentRow) toDocument() archivist.Document {
	doc := archivist.Document{
		ID:              row.ID,
		Name:            row.Name,
		FileType:        row.FileType,
		FileURL:         row.FileURL,
		FileSize:        row.FileSize,
		FolderID:        row.FolderID,
		DepartmentID:    row.DepartmentID,
		OwnerID:         row.OwnerID,
		Status:          archivist.Status(row.Status),
		Confidentiality: archivist.Level(row.Confidentiality),
		Assignees:       row.Assignees,
		Tags:            row.Tags,
		Version:         row.VersionNumber,
		CreatedAt:       row.CreatedAt,
		ModifiedAt:      row.ModifiedAt,
	}

	if row.CheckedOut && row.CheckedOutBy != nil {
		doc.Lock = &archivist.Lock{HolderID: *row.CheckedOutBy}
		if row.CheckedOutAt != nil {
			doc.Lock.AcquiredAt = *row.CheckedOutAt
		}
		if row.CheckoutNotes != nil {
			doc.Lock.Notes = *row.CheckoutNotes
		}
	}
	return doc
}

type versionRow struct {
	ID            string            `gorm:"primaryKey"`
	FileID        string            `gorm:"index;not null"`
	VersionNumber archivist.Version `gorm:"type:numeric(10,1);not null"`
	VersionType   string            `gorm:"not null"`
	FileURL       string
	FileSize      int64
	UploadedBy    string
	ChangeNotes   *string
	UploadedAt    time.Time

	Metadata archivist.VersionMetadata `gorm:"serializer:json"`
}

func (versionRow) TableName() string { return "file_versions" }

func fromRecord(r archivist.VersionRecord) versionRow {
	row := versionRow{
		ID:            r.ID,
		FileID:        r.DocumentID,
		VersionNumber: r.Version,
		VersionType:   string(r.Type),
		FileURL:       r.FileURL,
		FileSize:      r.FileSize,
		UploadedBy:    r.UploadedBy,
		UploadedAt:    r.UploadedAt,
		Metadata:      r.Metadata,
	}
	if r.ChangeNotes != "" {
		notes := r.ChangeNotes
		row.ChangeNotes = &notes
	}
	return row
}

func (row versionRow) toRecord() archivist.VersionRecord {
	r := archivist.VersionRecord{
		ID:         row.ID,
		DocumentID: row.FileID,
		Version:    row.VersionNumber,
		Type:       archivist.VersionType(row.VersionType),
		FileURL:    row.FileURL,
		FileSize:   row.FileSize,
		UploadedBy: row.UploadedBy,
		UploadedAt: row.UploadedAt,
		Metadata:   row.Metadata,
	}
	if row.ChangeNotes != nil {
		r.ChangeNotes = *row.ChangeNotes
	}
	return r
}

type auditRow struct {
	ID           string `gorm:"primaryKey"`
	Seq          int64  `gorm:"autoIncrement;uniqueIndex"`
	EntityType   string `gorm:"not null;default:'file'"`
	EntityID     string `gorm:"index"`
	Action       string `gorm:"not null"`
	UserID       string
	DepartmentID string

	VersionFrom archivist.Version `gorm:"type:numeric(10,1)"`
	VersionTo   archivist.Version `gorm:"type:numeric(10,1)"`

	Details   map[string]interface{} `gorm:"serializer:json"`
	CreatedAt time.Time
}

func (auditRow) TableName() string { return "audit_log" }
