package inmem

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

type AuditLog struct {
	mu      sync.Locker
	entries []archivist.AuditEntry

	// Err, when set, is returned by Record and nothing is stored.
	Err error
}

func NewAuditLog() *AuditLog {
	return &AuditLog{
		mu:      &sync.Mutex{},
		entries: make([]archivist.AuditEntry, 0),
	}
}

func (l *AuditLog) Record(entry archivist.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return l.Err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	l.entries = append(l.entries, entry)
	return nil
}

// List returns the entries of a document, or all of them if documentID is
// empty.
func (l *AuditLog) List(documentID string) ([]archivist.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]archivist.AuditEntry, 0)
	for _, e := range l.entries {
		if documentID == "" || e.DocumentID == documentID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
