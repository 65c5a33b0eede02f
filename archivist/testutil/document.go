package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

// TestDocumentStore runs the behaviour every archivist.DocumentStore must
// implement against store. store must be empty.
func TestDocumentStore(t *testing.T, store archivist.DocumentStore) {
	docs := []*archivist.Document{
		{
			Name:            "budget.xlsx",
			FileType:        "xlsx",
			FileURL:         "s3://bucket/budget-v1.xlsx",
			FileSize:        1024,
			DepartmentID:    "finance",
			OwnerID:         "alice",
			Status:          archivist.StatusDraft,
			Confidentiality: archivist.Confidential,
			Assignees:       []string{"carol"},
			Tags:            []string{"budget", "2026"},
			Version:         archivist.NewVersion(1),
		},
		{
			Name:            "handbook.pdf",
			FileType:        "pdf",
			FileURL:         "s3://bucket/handbook.pdf",
			DepartmentID:    "hr",
			OwnerID:         "bob",
			Status:          archivist.StatusApproved,
			Confidentiality: archivist.Public,
			Assignees:       []string{},
			Version:         archivist.NewVersion(2.3),
		},
	}

	for i, doc := range docs {
		err := store.Insert(doc)
		require.NoError(t, err, "inserting %d", i)
		require.NotEmpty(t, doc.ID, "inserting should set the id")
		assert.False(t, doc.CreatedAt.IsZero(), "inserting should set created at")
	}

	// Get
	for _, doc := range docs {
		retrieved, err := store.Get(doc.ID)
		require.NoError(t, err)
		AssertDocument(t, *doc, retrieved, "get "+doc.Name)
	}

	_, err := store.Get("does-not-exist")
	errors.AssertReason(t, err, errors.ReasonNotFound)
	errors.AssertCode(t, err, 404)

	// List keeps insertion order
	listed, err := store.List()
	require.NoError(t, err)
	require.Len(t, listed, len(docs))
	for i := range docs {
		AssertDocument(t, *docs[i], listed[i], fmt.Sprintf("list %d", i))
	}

	testUpdate(t, store, docs[0].ID)
	testAppendVersion(t, store, docs[1].ID)
	testConcurrentUpdates(t, store, docs[0].ID)
}

func testUpdate(t *testing.T, store archivist.DocumentStore, id string) {
	acquired := time.Now().UTC().Truncate(time.Second)
	updated, err := store.Update(id, func(doc *archivist.Document) error {
		doc.Lock = &archivist.Lock{HolderID: "alice", AcquiredAt: acquired, Notes: "fixing totals"}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Lock)

	retrieved, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, retrieved.Lock, "lock should be persisted")
	assert.Equal(t, "alice", retrieved.Lock.HolderID)
	assert.Equal(t, "fixing totals", retrieved.Lock.Notes)
	assert.True(t, acquired.Equal(retrieved.Lock.AcquiredAt))

	// An error in fn aborts the update
	failure := errors.New("nope", errors.Locked(errors.ReasonAlreadyLockedByOther))
	_, err = store.Update(id, func(doc *archivist.Document) error {
		doc.Lock = nil
		doc.Name = "changed"
		return failure
	})
	errors.AssertReason(t, err, errors.ReasonAlreadyLockedByOther)

	retrieved, err = store.Get(id)
	require.NoError(t, err)
	assert.NotNil(t, retrieved.Lock, "failed update must not be written")
	assert.Equal(t, "budget.xlsx", retrieved.Name)

	// Clear the lock
	_, err = store.Update(id, func(doc *archivist.Document) error {
		doc.Lock = nil
		return nil
	})
	require.NoError(t, err)
	retrieved, err = store.Get(id)
	require.NoError(t, err)
	assert.Nil(t, retrieved.Lock)

	_, err = store.Update("does-not-exist", func(*archivist.Document) error { return nil })
	errors.AssertReason(t, err, errors.ReasonNotFound)
}

func testAppendVersion(t *testing.T, store archivist.DocumentStore, id string) {
	bumps := []struct {
		t        archivist.VersionType
		url      string
		expected string
	}{
		{t: archivist.Minor, url: "s3://bucket/handbook-2.4.pdf", expected: "2.4"},
		{t: archivist.Major, url: "s3://bucket/handbook-3.pdf", expected: "3.0"},
		{t: archivist.Minor, url: "s3://bucket/handbook-3.1.pdf", expected: "3.1"},
	}

	for _, b := range bumps {
		b := b
		doc, record, err := store.AppendVersion(id, func(doc *archivist.Document) (archivist.VersionRecord, error) {
			record := doc.Snapshot(b.t, "bob", "bump", time.Now())
			doc.Version = doc.Version.Bump(b.t)
			doc.FileURL = b.url
			return record, nil
		})
		require.NoError(t, err)
		assert.Equal(t, b.expected, doc.Version.String())
		assert.Equal(t, id, record.DocumentID)
		assert.NotEmpty(t, record.ID)
	}

	// Failing fn writes neither the record nor the document
	_, _, err := store.AppendVersion(id, func(doc *archivist.Document) (archivist.VersionRecord, error) {
		doc.Version = doc.Version.Major()
		return archivist.VersionRecord{}, errors.New("forbidden", errors.Permission(errors.ReasonForbidden))
	})
	errors.AssertReason(t, err, errors.ReasonForbidden)

	doc, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "3.1", doc.Version.String())
	assert.Equal(t, "s3://bucket/handbook-3.1.pdf", doc.FileURL)

	records, err := store.ListVersions(id)
	require.NoError(t, err)
	require.Len(t, records, 3)
	expected := []struct{ version, url string }{
		{"2.3", "s3://bucket/handbook.pdf"},
		{"2.4", "s3://bucket/handbook-2.4.pdf"},
		{"3.0", "s3://bucket/handbook-3.pdf"},
	}
	for i, e := range expected {
		assert.Equal(t, e.version, records[i].Version.String(), "record %d", i)
		assert.Equal(t, e.url, records[i].FileURL, "record %d", i)
		assert.Equal(t, "handbook.pdf", records[i].Metadata.Name)
	}

	records, err = store.ListVersions("does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, _, err = store.AppendVersion("does-not-exist", func(*archivist.Document) (archivist.VersionRecord, error) {
		return archivist.VersionRecord{}, nil
	})
	errors.AssertReason(t, err, errors.ReasonNotFound)
}

// testConcurrentUpdates checks that Update is an atomic read-modify-write:
// of n concurrent lock attempts on an unlocked document exactly one wins.
func testConcurrentUpdates(t *testing.T, store archivist.DocumentStore, id string) {
	const n = 8

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			holder := fmt.Sprintf("user-%d", i)
			_, err := store.Update(id, func(doc *archivist.Document) error {
				if doc.LockedByOther(holder) {
					return errors.New("locked", errors.Locked(errors.ReasonAlreadyLockedByOther))
				}
				doc.Lock = &archivist.Lock{HolderID: holder, AcquiredAt: time.Now()}
				return nil
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			errors.AssertReason(t, err, errors.ReasonAlreadyLockedByOther)
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent checkout should succeed")
}

// AssertDocument compares the persisted fields of two documents.
func AssertDocument(t *testing.T, exp, got archivist.Document, name string) {
	assert.Equal(t, exp.ID, got.ID, "%s: id", name)
	assert.Equal(t, exp.Name, got.Name, "%s: name", name)
	assert.Equal(t, exp.FileURL, got.FileURL, "%s: file url", name)
	assert.Equal(t, exp.FileSize, got.FileSize, "%s: file size", name)
	assert.Equal(t, exp.OwnerID, got.OwnerID, "%s: owner", name)
	assert.Equal(t, exp.DepartmentID, got.DepartmentID, "%s: department", name)
	assert.Equal(t, exp.Status, got.Status, "%s: status", name)
	assert.Equal(t, exp.Confidentiality, got.Confidentiality, "%s: confidentiality", name)
	assert.ElementsMatch(t, exp.Assignees, got.Assignees, "%s: assignees", name)
	assert.ElementsMatch(t, exp.Tags, got.Tags, "%s: tags", name)
	assert.Equal(t, exp.Version.String(), got.Version.String(), "%s: version", name)
	assert.Equal(t, exp.Lock == nil, got.Lock == nil, "%s: lock", name)
}
