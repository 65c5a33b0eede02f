package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/inmem"
	"github.com/bobinette/archivist/errors"
	"github.com/bobinette/archivist/log"
)

var (
	alice = archivist.Principal{ID: "alice", Name: "Alice", Role: archivist.RoleUser}
	bob   = archivist.Principal{ID: "bob", Name: "Bob", Role: archivist.RoleUser}
	dana  = archivist.Principal{ID: "dana", Name: "Dana", Role: archivist.RoleUser, IsDepartmentManager: true}
	root  = archivist.Principal{ID: "root", Name: "Root", Role: archivist.RoleAdmin}
)

type fixture struct {
	store *inmem.DocumentStore
	audit *inmem.AuditLog
	svc   *LifecycleService
}

func newFixture(t *testing.T, version float64) (fixture, archivist.Document) {
	store := inmem.NewDocumentStore()
	audit := inmem.NewAuditLog()
	principals := inmem.NewPrincipalRepository(alice, bob, dana, root)

	doc := archivist.Document{
		Name:            "plan.pdf",
		FileURL:         "https://files/plan-v1.pdf",
		FileSize:        12,
		DepartmentID:    "ops",
		OwnerID:         alice.ID,
		Confidentiality: archivist.Public,
		Version:         archivist.NewVersion(version),
	}
	require.NoError(t, store.Insert(&doc))

	svc := NewLifecycleService(store, principals, nil, audit, log.Discard())
	return fixture{store: store, audit: audit, svc: svc}, doc
}

func (f fixture) actions(t *testing.T, id string) []archivist.Action {
	entries, err := f.audit.List(id)
	require.NoError(t, err)

	actions := make([]archivist.Action, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	return actions
}

func TestLifecycle_checkoutScenario(t *testing.T) {
	f, doc := newFixture(t, 1)

	got, err := f.svc.CheckOut(doc.ID, alice.ID, "fixing typos")
	require.NoError(t, err)
	assert.True(t, got.LockedBy(alice.ID))
	assert.Equal(t, "fixing typos", got.Lock.Notes)

	// Bob cannot take the lock
	_, err = f.svc.CheckOut(doc.ID, bob.ID, "")
	errors.AssertCode(t, err, 409)
	errors.AssertReason(t, err, errors.ReasonAlreadyLockedByOther)

	// Nor check in
	_, err = f.svc.CheckIn(doc.ID, bob.ID)
	errors.AssertReason(t, err, errors.ReasonNotHolder)

	got, err = f.svc.CheckIn(doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Lock)
	assert.Equal(t, "2.0", got.Version.String())

	got, err = f.svc.CheckOut(doc.ID, bob.ID, "")
	require.NoError(t, err)
	assert.True(t, got.LockedBy(bob.ID))

	assert.Equal(t, []archivist.Action{
		archivist.ActionCheckedOut,
		archivist.ActionCheckedIn,
		archivist.ActionCheckedOut,
	}, f.actions(t, doc.ID))

	history, err := f.svc.VersionHistory(doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "1.0", history[0].Version.String())
	assert.Equal(t, archivist.Major, history[0].Type)
	assert.Equal(t, "fixing typos", history[0].ChangeNotes)
}

func TestLifecycle_checkoutIsIdempotentForHolder(t *testing.T) {
	f, doc := newFixture(t, 1)

	_, err := f.svc.CheckOut(doc.ID, alice.ID, "first")
	require.NoError(t, err)

	got, err := f.svc.CheckOut(doc.ID, alice.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Lock.Notes)
	assert.Equal(t, "1.0", got.Version.String())
}

func TestLifecycle_checkInUnlocked(t *testing.T) {
	f, doc := newFixture(t, 1)

	_, err := f.svc.CheckIn(doc.ID, alice.ID)
	errors.AssertCode(t, err, 409)
	errors.AssertReason(t, err, errors.ReasonNotLocked)

	_, err = f.svc.CheckIn("unknown", alice.ID)
	errors.AssertCode(t, err, 404)
}

func TestLifecycle_cancelCheckout(t *testing.T) {
	f, doc := newFixture(t, 1.3)

	_, err := f.svc.CancelCheckout(doc.ID, alice.ID, false)
	errors.AssertReason(t, err, errors.ReasonNotLocked)

	_, err = f.svc.CheckOut(doc.ID, alice.ID, "")
	require.NoError(t, err)

	// Bob is not a manager
	_, err = f.svc.CancelCheckoutAs(bob, doc.ID)
	errors.AssertCode(t, err, 403)
	errors.AssertReason(t, err, errors.ReasonForbidden)

	// Admin alone is not a manager
	_, err = f.svc.CancelCheckoutAs(root, doc.ID)
	errors.AssertCode(t, err, 403)

	got, err := f.svc.CancelCheckoutAs(dana, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Lock)
	assert.Equal(t, "1.3", got.Version.String())

	history, err := f.svc.VersionHistory(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	entries, err := f.audit.List(doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, archivist.ActionCheckoutCancelled, entries[1].Action)
	assert.Equal(t, dana.ID, entries[1].ActorID)
	assert.Equal(t, alice.ID, entries[1].Details["holder"])
}

func TestLifecycle_holderCancels(t *testing.T) {
	f, doc := newFixture(t, 1)

	_, err := f.svc.CheckOut(doc.ID, bob.ID, "")
	require.NoError(t, err)

	got, err := f.svc.CancelCheckout(doc.ID, bob.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsLocked())
}

func TestLifecycle_uploadNewVersion(t *testing.T) {
	f, doc := newFixture(t, 2.3)

	v, err := f.svc.UploadNewVersion(UploadRequest{
		DocumentID:  doc.ID,
		UserID:      alice.ID,
		FileURL:     "https://files/plan-v2.pdf",
		FileSize:    40,
		Type:        archivist.Minor,
		ChangeNotes: "new charts",
	})
	require.NoError(t, err)
	assert.Equal(t, "2.4", v.String())

	v, err = f.svc.UploadNewVersion(UploadRequest{
		DocumentID: doc.ID,
		UserID:     alice.ID,
		FileURL:    "https://files/plan-v3.pdf",
		Type:       archivist.Major,
	})
	require.NoError(t, err)
	assert.Equal(t, "3.0", v.String())

	got, err := f.store.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files/plan-v3.pdf", got.FileURL)
	assert.Equal(t, "3.0", f.svc.LatestVersion(doc.ID).String())

	history, err := f.svc.VersionHistory(doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2.3", history[0].Version.String())
	assert.Equal(t, "https://files/plan-v1.pdf", history[0].FileURL)
	assert.Equal(t, "new charts", history[0].ChangeNotes)
	assert.Equal(t, "2.4", history[1].Version.String())
	assert.Equal(t, "https://files/plan-v2.pdf", history[1].FileURL)

	entries, err := f.audit.List(doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, archivist.ActionVersionUploaded, entries[0].Action)
	assert.Equal(t, "2.3", entries[0].VersionFrom.String())
	assert.Equal(t, "2.4", entries[0].VersionTo.String())
	assert.Equal(t, "ops", entries[0].DepartmentID)
}

func TestLifecycle_uploadPermissions(t *testing.T) {
	f, doc := newFixture(t, 1)

	req := UploadRequest{DocumentID: doc.ID, FileURL: "https://files/x.pdf", Type: archivist.Minor}

	// Not owner, not manager
	req.UserID = bob.ID
	_, err := f.svc.UploadNewVersion(req)
	errors.AssertReason(t, err, errors.ReasonForbidden)
	ok, reason := f.svc.CanUploadVersion(doc.ID, bob.ID)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	// Unknown principal falls back to ownership
	req.UserID = "ghost"
	_, err = f.svc.UploadNewVersion(req)
	errors.AssertReason(t, err, errors.ReasonForbidden)

	// Manager may upload
	ok, _ = f.svc.CanUploadVersion(doc.ID, dana.ID)
	assert.True(t, ok)
	req.UserID = dana.ID
	v, err := f.svc.UploadNewVersion(req)
	require.NoError(t, err)
	assert.Equal(t, "1.1", v.String())

	// Locked by bob: even the owner is rejected
	_, err = f.svc.CheckOut(doc.ID, bob.ID, "")
	require.NoError(t, err)
	req.UserID = alice.ID
	_, err = f.svc.UploadNewVersion(req)
	errors.AssertCode(t, err, 409)
	errors.AssertReason(t, err, errors.ReasonLockedByOther)
	ok, _ = f.svc.CanUploadVersion(doc.ID, alice.ID)
	assert.False(t, ok)

	ok, reason = f.svc.CanUploadVersion("unknown", alice.ID)
	assert.False(t, ok)
	assert.Equal(t, "document not found", reason)

	assert.Equal(t, "1.1", f.svc.LatestVersion(doc.ID).String())
}

func TestLifecycle_uploadHolderMayUpload(t *testing.T) {
	f, doc := newFixture(t, 1)

	_, err := f.svc.CheckOut(doc.ID, alice.ID, "")
	require.NoError(t, err)

	v, err := f.svc.UploadNewVersion(UploadRequest{DocumentID: doc.ID, UserID: alice.ID, FileURL: "u", Type: archivist.Minor})
	require.NoError(t, err)
	assert.Equal(t, "1.1", v.String())

	// The lock is kept
	info, err := f.svc.CheckoutInfo(doc.ID)
	require.NoError(t, err)
	assert.True(t, info.CheckedOut)
	assert.Equal(t, alice.ID, info.CheckedOutBy)
	assert.Equal(t, "Alice", info.HolderName)
	assert.Equal(t, "1.1", info.Version.String())
}

func TestLifecycle_uploadValidation(t *testing.T) {
	f, doc := newFixture(t, 1)

	_, err := f.svc.UploadNewVersion(UploadRequest{DocumentID: doc.ID, UserID: alice.ID, FileURL: "u", Type: "patch"})
	errors.AssertCode(t, err, 400)
	errors.AssertReason(t, err, errors.ReasonInvalidRequest)

	_, err = f.svc.UploadNewVersion(UploadRequest{DocumentID: doc.ID, UserID: alice.ID, Type: archivist.Major})
	errors.AssertCode(t, err, 400)

	_, err = f.svc.UploadNewVersion(UploadRequest{DocumentID: "unknown", UserID: alice.ID, FileURL: "u", Type: archivist.Major})
	errors.AssertCode(t, err, 404)
}

type unreachableStore struct {
	archivist.DocumentStore
	err error
}

func (s unreachableStore) Get(string) (archivist.Document, error) {
	return archivist.Document{}, s.err
}

func TestLifecycle_canUploadStoreFailure(t *testing.T) {
	f, doc := newFixture(t, 1)
	f.svc.store = unreachableStore{DocumentStore: f.store, err: fmt.Errorf("connection refused")}

	ok, reason := f.svc.CanUploadVersion(doc.ID, alice.ID)
	assert.False(t, ok)
	assert.Equal(t, "connection refused", reason)
}

func TestLifecycle_auditFailureIsNotFatal(t *testing.T) {
	f, doc := newFixture(t, 1)
	f.audit.Err = fmt.Errorf("audit table is gone")

	v, err := f.svc.UploadNewVersion(UploadRequest{DocumentID: doc.ID, UserID: alice.ID, FileURL: "u", Type: archivist.Minor})
	require.NoError(t, err)
	assert.Equal(t, "1.1", v.String())

	_, err = f.svc.CheckOut(doc.ID, alice.ID, "")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(doc.ID, alice.ID)
	require.NoError(t, err)

	history, err := f.svc.VersionHistory(doc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	f.audit.Err = nil
	assert.Empty(t, f.actions(t, doc.ID))
}

func TestLifecycle_concurrentCheckouts(t *testing.T) {
	f, doc := newFixture(t, 1)

	users := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			_, errs[i] = f.svc.CheckOut(doc.ID, u, "")
		}(i, u)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		errors.AssertReason(t, err, errors.ReasonAlreadyLockedByOther)
	}
	assert.Equal(t, 1, winners)
}

func TestLifecycle_checkedOutBy(t *testing.T) {
	f, first := newFixture(t, 1)

	second := archivist.Document{Name: "b", OwnerID: alice.ID, DepartmentID: "hr", Confidentiality: archivist.Public}
	third := archivist.Document{Name: "c", OwnerID: alice.ID, DepartmentID: "ops", Confidentiality: archivist.Public}
	require.NoError(t, f.store.Insert(&second))
	require.NoError(t, f.store.Insert(&third))

	for _, id := range []string{first.ID, second.ID} {
		_, err := f.svc.CheckOut(id, bob.ID, "")
		require.NoError(t, err)
	}
	_, err := f.svc.CheckOut(third.ID, alice.ID, "")
	require.NoError(t, err)

	docs, err := f.svc.CheckedOutBy(bob.ID, "")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = f.svc.CheckedOutBy(bob.ID, "hr")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second.ID, docs[0].ID)

	info, err := f.svc.CheckoutInfo(first.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, info.CheckedOutBy)

	_, err = f.svc.CancelCheckout(first.ID, bob.ID, false)
	require.NoError(t, err)
	info, err = f.svc.CheckoutInfo(first.ID)
	require.NoError(t, err)
	assert.False(t, info.CheckedOut)
	assert.Nil(t, info.CheckedOutAt)
}
