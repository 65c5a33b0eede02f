package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bobinette/archivist/archivist"
)

// DocumentStore implements archivist.DocumentStore. Read-modify-write
// operations lock the row with SELECT ... FOR UPDATE inside a transaction,
// so concurrent checkouts are arbitrated by the database.
type DocumentStore struct {
	Driver *Driver
}

func (s *DocumentStore) Get(id string) (archivist.Document, error) {
	var row documentRow
	if err := s.Driver.db.First(&row, "id = ?", id).Error; err != nil {
		return archivist.Document{}, notFound(err, id)
	}
	return row.toDocument(), nil
}

func (s *DocumentStore) List() ([]archivist.Document, error) {
	var rows []documentRow
	if err := s.Driver.db.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]archivist.Document, len(rows))
	for i, row := range rows {
		docs[i] = row.toDocument()
	}
	return docs, nil
}

func (s *DocumentStore) Insert(doc *archivist.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.ModifiedAt = now

	row := fromDocument(*doc)
	return s.Driver.db.Create(&row).Error
}

func (s *DocumentStore) Update(id string, fn func(*archivist.Document) error) (archivist.Document, error) {
	var doc archivist.Document
	err := s.Driver.db.Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = lockDocument(tx, id)
		if err != nil {
			return err
		}

		if err := fn(&doc); err != nil {
			return err
		}
		doc.ID = id

		row := fromDocument(doc)
		return tx.Save(&row).Error
	})
	if err != nil {
		return archivist.Document{}, err
	}
	return doc, nil
}

func (s *DocumentStore) AppendVersion(id string, fn func(*archivist.Document) (archivist.VersionRecord, error)) (archivist.Document, archivist.VersionRecord, error) {
	var doc archivist.Document
	var record archivist.VersionRecord
	err := s.Driver.db.Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = lockDocument(tx, id)
		if err != nil {
			return err
		}

		record, err = fn(&doc)
		if err != nil {
			return err
		}
		doc.ID = id
		record.DocumentID = id
		if record.ID == "" {
			record.ID = uuid.New().String()
		}

		version := fromRecord(record)
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		row := fromDocument(doc)
		return tx.Save(&row).Error
	})
	if err != nil {
		return archivist.Document{}, archivist.VersionRecord{}, err
	}
	return doc, record, nil
}

func (s *DocumentStore) ListVersions(documentID string) ([]archivist.VersionRecord, error) {
	var rows []versionRow
	err := s.Driver.db.
		Where("file_id = ?", documentID).
		Order("version_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]archivist.VersionRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

func lockDocument(tx *gorm.DB, id string) (archivist.Document, error) {
	var row documentRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
	if err != nil {
		return archivist.Document{}, notFound(err, id)
	}
	return row.toDocument(), nil
}

func notFound(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return archivist.ErrDocumentNotFound(id)
	}
	return err
}
