package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist"
)

// TestAuditLog checks that entries are appended and listed in order. log
// must be empty.
func TestAuditLog(t *testing.T, log archivist.AuditLog) {
	entries := []archivist.AuditEntry{
		{Action: archivist.ActionCheckedOut, ActorID: "alice", DocumentID: "d1", At: time.Now()},
		{Action: archivist.ActionCheckedOut, ActorID: "bob", DocumentID: "d2", At: time.Now()},
		{
			Action:      archivist.ActionCheckedIn,
			ActorID:     "alice",
			DocumentID:  "d1",
			VersionFrom: archivist.NewVersion(1),
			VersionTo:   archivist.NewVersion(2),
			At:          time.Now(),
		},
	}
	for _, e := range entries {
		require.NoError(t, log.Record(e))
	}

	listed, err := log.List("d1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, archivist.ActionCheckedOut, listed[0].Action)
	assert.Equal(t, archivist.ActionCheckedIn, listed[1].Action)
	assert.Equal(t, "2.0", listed[1].VersionTo.String())
	assert.NotEmpty(t, listed[0].ID)

	all, err := log.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := log.List("d3")
	require.NoError(t, err)
	assert.Empty(t, none)
}
