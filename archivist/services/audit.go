package services

import (
	"time"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/log"
)

// auditor writes audit entries best effort: a failure is logged and
// swallowed, the state change it describes is already committed.
type auditor struct {
	sink   archivist.AuditSink
	logger log.Logger
}

func (a auditor) record(entry archivist.AuditEntry) {
	if a.sink == nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	if err := a.sink.Record(entry); err != nil {
		a.logger.
			WithField("action", entry.Action).
			WithField("document", entry.DocumentID).
			Errorf("could not write audit entry: %v", err)
	}
}
