package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

func TestAllowedLevels(t *testing.T) {
	assert.Equal(t, archivist.Levels, AllowedLevels(ModeUpload, archivist.Secret))
	assert.Equal(t, []archivist.Level{archivist.Secret, archivist.TopSecret}, AllowedLevels(ModeEdit, archivist.Secret))
	assert.Equal(t, archivist.Levels, AllowedLevels(ModeEdit, ""))
}

func TestSetConfidentiality_editScenario(t *testing.T) {
	doc := archivist.Document{ID: "1", Confidentiality: archivist.Internal, Assignees: []string{"bob"}}

	err := SetConfidentiality(&doc, archivist.Public, nil, ModeEdit)
	errors.AssertReason(t, err, errors.ReasonInvalidLevel)
	errors.AssertCode(t, err, 400)
	assert.Equal(t, archivist.Internal, doc.Confidentiality, "failed call must not modify the document")
	assert.Equal(t, []string{"bob"}, doc.Assignees)

	err = SetConfidentiality(&doc, archivist.Secret, []string{}, ModeEdit)
	errors.AssertReason(t, err, errors.ReasonMissingAssignees)
	assert.Equal(t, archivist.Internal, doc.Confidentiality)

	err = SetConfidentiality(&doc, archivist.Secret, []string{"carol"}, ModeEdit)
	require.NoError(t, err)
	assert.Equal(t, archivist.Secret, doc.Confidentiality)
	assert.Equal(t, []string{"carol"}, doc.Assignees)
}

func TestSetConfidentiality_publicClearsAssignees(t *testing.T) {
	doc := archivist.Document{ID: "1"}
	err := SetConfidentiality(&doc, archivist.Public, []string{"carol", "dave"}, ModeUpload)
	require.NoError(t, err)
	assert.Equal(t, archivist.Public, doc.Confidentiality)
	assert.Empty(t, doc.Assignees)
}

func TestSetConfidentiality_monotonicOnEdit(t *testing.T) {
	for _, current := range archivist.Levels {
		for _, requested := range archivist.Levels {
			doc := archivist.Document{ID: "1", Confidentiality: current, Assignees: []string{"carol"}}
			err := SetConfidentiality(&doc, requested, []string{"carol"}, ModeEdit)
			if requested.Rank() < current.Rank() {
				errors.AssertReason(t, err, errors.ReasonInvalidLevel)
				continue
			}
			require.NoError(t, err, "%s -> %s", current, requested)
			assert.True(t, doc.Confidentiality.Rank() >= current.Rank())
			if doc.Confidentiality == archivist.Public {
				assert.Empty(t, doc.Assignees)
			}
		}
	}
}

func TestSetConfidentiality_unknownLevel(t *testing.T) {
	doc := archivist.Document{ID: "1"}
	err := SetConfidentiality(&doc, archivist.Level("cosmic"), []string{"carol"}, ModeUpload)
	errors.AssertReason(t, err, errors.ReasonInvalidLevel)
}

func TestSetConfidentiality_dedupAssignees(t *testing.T) {
	doc := archivist.Document{ID: "1"}
	err := SetConfidentiality(&doc, archivist.Confidential, []string{"carol", " carol", "", "dave"}, ModeUpload)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "dave"}, doc.Assignees)

	err = SetConfidentiality(&doc, archivist.Secret, []string{"", "  "}, ModeEdit)
	errors.AssertReason(t, err, errors.ReasonMissingAssignees)
}
