package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

type AuditLog struct {
	Driver *Driver
}

func (l *AuditLog) Record(entry archivist.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	row := auditRow{
		ID:           entry.ID,
		EntityType:   "file",
		EntityID:     entry.DocumentID,
		Action:       string(entry.Action),
		UserID:       entry.ActorID,
		DepartmentID: entry.DepartmentID,
		VersionFrom:  entry.VersionFrom,
		VersionTo:    entry.VersionTo,
		Details:      entry.Details,
		CreatedAt:    entry.At,
	}
	return l.Driver.db.Omit("Seq").Create(&row).Error
}

func (l *AuditLog) List(documentID string) ([]archivist.AuditEntry, error) {
	q := l.Driver.db.Order("seq")
	if documentID != "" {
		q = q.Where("entity_id = ?", documentID)
	}

	var rows []auditRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]archivist.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = archivist.AuditEntry{
			ID:           row.ID,
			Action:       archivist.Action(row.Action),
			ActorID:      row.UserID,
			DocumentID:   row.EntityID,
			DepartmentID: row.DepartmentID,
			VersionFrom:  row.VersionFrom,
			VersionTo:    row.VersionTo,
			Details:      row.Details,
			At:           row.CreatedAt,
		}
	}
	return entries, nil
}
