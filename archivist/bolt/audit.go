package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

// AuditLog appends audit entries to the audit bucket, keyed by sequence so
// that a cursor walks them in write order.
type AuditLog struct {
	Driver *Driver
}

func (l *AuditLog) Record(entry archivist.AuditEntry) error {
	return l.Driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(auditBucket)

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("error incrementing audit sequence: %v", err)
		}

		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		if entry.At.IsZero() {
			entry.At = time.Now()
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put(itob(seq), data)
	})
}

func (l *AuditLog) List(documentID string) ([]archivist.AuditEntry, error) {
	entries := make([]archivist.AuditEntry, 0)

	err := l.Driver.store.View(func(tx *bolt.Tx) error {
		return tx.Bucket(auditBucket).ForEach(func(_, data []byte) error {
			var entry archivist.AuditEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}
			if documentID == "" || entry.DocumentID == documentID {
				entries = append(entries, entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
