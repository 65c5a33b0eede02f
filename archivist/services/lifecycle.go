package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/access"
	"github.com/bobinette/archivist/errors"
	"github.com/bobinette/archivist/log"
)

func errAlreadyLockedByOther() error {
	return errors.New("document is already checked out by another user", errors.Locked(errors.ReasonAlreadyLockedByOther))
}

func errLockedByOther() error {
	return errors.New("cannot upload new version: document is checked out by another user", errors.Locked(errors.ReasonLockedByOther))
}

func errNotLocked() error {
	return errors.New("document is not checked out", errors.Locked(errors.ReasonNotLocked))
}

func errNotHolder() error {
	return errors.New("you do not have permission to check in this document", errors.Permission(errors.ReasonNotHolder))
}

// LifecycleService governs checkout locks and version progression. Every
// operation is a single read-modify-write against the store.
type LifecycleService struct {
	store      archivist.DocumentStore
	principals archivist.PrincipalRepository
	index      archivist.DocumentIndex
	auditor    auditor
	logger     log.Logger

	now func() time.Time
}

func NewLifecycleService(
	store archivist.DocumentStore,
	principals archivist.PrincipalRepository,
	index archivist.DocumentIndex,
	sink archivist.AuditSink,
	logger log.Logger,
) *LifecycleService {
	return &LifecycleService{
		store:      store,
		principals: principals,
		index:      index,
		auditor:    auditor{sink: sink, logger: logger},
		logger:     logger,

		now: time.Now,
	}
}

// CheckOut locks the document for userID. Checking out a document already
// held by userID refreshes the notes.
func (s *LifecycleService) CheckOut(documentID, userID, notes string) (archivist.Document, error) {
	doc, err := s.store.Update(documentID, func(doc *archivist.Document) error {
		if doc.LockedByOther(userID) {
			return errAlreadyLockedByOther()
		}

		doc.Lock = &archivist.Lock{
			HolderID:   userID,
			AcquiredAt: s.now(),
			Notes:      notes,
		}
		return nil
	})
	if err != nil {
		return archivist.Document{}, err
	}

	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionCheckedOut,
		ActorID:      userID,
		DocumentID:   doc.ID,
		DepartmentID: doc.DepartmentID,
		VersionFrom:  doc.Version.Current(),
		VersionTo:    doc.Version.Current(),
		Details:      map[string]interface{}{"notes": notes},
	})
	return doc, nil
}

// CheckIn releases the lock held by userID and moves the document to the
// next whole version.
func (s *LifecycleService) CheckIn(documentID, userID string) (archivist.Document, error) {
	var from archivist.Version
	doc, _, err := s.store.AppendVersion(documentID, func(doc *archivist.Document) (archivist.VersionRecord, error) {
		if !doc.IsLocked() {
			return archivist.VersionRecord{}, errNotLocked()
		}
		if !doc.LockedBy(userID) {
			return archivist.VersionRecord{}, errNotHolder()
		}

		now := s.now()
		record := doc.Snapshot(archivist.Major, userID, doc.Lock.Notes, now)

		from = doc.Version.Current()
		doc.Lock = nil
		doc.Version = from.Major()
		doc.ModifiedAt = now
		return record, nil
	})
	if err != nil {
		return archivist.Document{}, err
	}

	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionCheckedIn,
		ActorID:      userID,
		DocumentID:   doc.ID,
		DepartmentID: doc.DepartmentID,
		VersionFrom:  from,
		VersionTo:    doc.Version,
	})
	return doc, nil
}

// CancelCheckout releases the lock without changing the version. Managers
// can cancel the checkout of another user.
func (s *LifecycleService) CancelCheckout(documentID, userID string, isManager bool) (archivist.Document, error) {
	var holder string
	doc, err := s.store.Update(documentID, func(doc *archivist.Document) error {
		if !doc.IsLocked() {
			return errNotLocked()
		}
		if !doc.LockedBy(userID) && !isManager {
			return errors.New("you do not have permission to cancel this checkout", errors.Permission(errors.ReasonForbidden))
		}

		holder = doc.Lock.HolderID
		doc.Lock = nil
		return nil
	})
	if err != nil {
		return archivist.Document{}, err
	}

	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionCheckoutCancelled,
		ActorID:      userID,
		DocumentID:   doc.ID,
		DepartmentID: doc.DepartmentID,
		VersionFrom:  doc.Version.Current(),
		VersionTo:    doc.Version.Current(),
		Details:      map[string]interface{}{"holder": holder},
	})
	return doc, nil
}

// CancelCheckoutAs is CancelCheckout with the manager flag resolved from the
// principal capabilities.
func (s *LifecycleService) CancelCheckoutAs(p archivist.Principal, documentID string) (archivist.Document, error) {
	return s.CancelCheckout(documentID, p.ID, access.Resolve(p).Manager())
}

type UploadRequest struct {
	DocumentID   string                `json:"documentId"`
	UserID       string                `json:"userId"`
	DepartmentID string                `json:"departmentId"`
	FileURL      string                `json:"fileUrl"`
	FileSize     int64                 `json:"fileSize"`
	Type         archivist.VersionType `json:"versionType"`
	ChangeNotes  string                `json:"changeNotes"`
}

// UploadNewVersion replaces the artifact of a document. The superseded
// artifact is kept as a version record, written in the same transaction as
// the document update. The audit entry is written afterwards and its
// failure does not fail the upload.
func (s *LifecycleService) UploadNewVersion(req UploadRequest) (archivist.Version, error) {
	if !req.Type.Valid() {
		return archivist.Version{}, errors.New(
			fmt.Sprintf("invalid version type %q, expected major or minor", req.Type),
			errors.Validation(errors.ReasonInvalidRequest),
		)
	}
	if req.FileURL == "" {
		return archivist.Version{}, errors.New("missing file url", errors.Validation(errors.ReasonInvalidRequest))
	}

	isManager, err := s.isManager(req.UserID)
	if err != nil {
		return archivist.Version{}, err
	}

	var from archivist.Version
	var name string
	doc, _, err := s.store.AppendVersion(req.DocumentID, func(doc *archivist.Document) (archivist.VersionRecord, error) {
		if ok, reason := canUpload(*doc, req.UserID, isManager); !ok {
			return archivist.VersionRecord{}, reason
		}

		now := s.now()
		record := doc.Snapshot(req.Type, req.UserID, req.ChangeNotes, now)

		from = doc.Version.Current()
		name = doc.Name
		doc.FileURL = req.FileURL
		doc.FileSize = req.FileSize
		doc.Version = from.Bump(req.Type)
		doc.ModifiedAt = now
		return record, nil
	})
	if err != nil {
		return archivist.Version{}, err
	}

	department := req.DepartmentID
	if department == "" {
		department = doc.DepartmentID
	}
	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionVersionUploaded,
		ActorID:      req.UserID,
		DocumentID:   doc.ID,
		DepartmentID: department,
		VersionFrom:  from,
		VersionTo:    doc.Version,
		Details: map[string]interface{}{
			"versionType": req.Type,
			"fileName":    name,
			"changeNotes": req.ChangeNotes,
		},
	})

	if s.index != nil {
		if err := s.index.Index(&doc); err != nil {
			s.logger.Errorf("could not index document %s: %v", doc.ID, err)
		}
	}

	return doc.Version, nil
}

// CanUploadVersion tells whether userID may upload a new version, and why
// not. It runs the same checks as UploadNewVersion.
func (s *LifecycleService) CanUploadVersion(documentID, userID string) (bool, string) {
	doc, err := s.store.Get(documentID)
	if errors.Is(err, errors.ReasonNotFound) {
		return false, "document not found"
	} else if err != nil {
		return false, err.Error()
	}

	isManager, err := s.isManager(userID)
	if err != nil {
		return false, err.Error()
	}

	if ok, err := canUpload(doc, userID, isManager); !ok {
		return false, err.Error()
	}
	return true, ""
}

func canUpload(doc archivist.Document, userID string, isManager bool) (bool, error) {
	if doc.LockedByOther(userID) {
		return false, errLockedByOther()
	}

	if doc.OwnerID != userID && !isManager {
		return false, errors.New("you do not have permission to upload a new version of this document", errors.Permission(errors.ReasonForbidden))
	}
	return true, nil
}

// isManager looks up the principal. An unknown principal is not a manager,
// ownership still applies.
func (s *LifecycleService) isManager(userID string) (bool, error) {
	if s.principals == nil {
		return false, nil
	}

	p, err := s.principals.Get(userID)
	if err != nil {
		if errors.CodeOf(err) == 404 {
			return false, nil
		}
		return false, err
	}
	return access.Resolve(p).Manager(), nil
}

// CheckoutInfo describes the lock state of a document.
type CheckoutInfo struct {
	CheckedOut   bool              `json:"checkedOut"`
	CheckedOutBy string            `json:"checkedOutBy,omitempty"`
	CheckedOutAt *time.Time        `json:"checkedOutAt,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Version      archivist.Version `json:"version"`
	HolderName   string            `json:"holderName,omitempty"`
}

func (s *LifecycleService) CheckoutInfo(documentID string) (CheckoutInfo, error) {
	doc, err := s.store.Get(documentID)
	if err != nil {
		return CheckoutInfo{}, err
	}

	info := CheckoutInfo{Version: doc.Version.Current()}
	if doc.Lock == nil {
		return info, nil
	}

	at := doc.Lock.AcquiredAt
	info.CheckedOut = true
	info.CheckedOutBy = doc.Lock.HolderID
	info.CheckedOutAt = &at
	info.Notes = doc.Lock.Notes

	if s.principals != nil {
		if p, err := s.principals.Get(doc.Lock.HolderID); err == nil {
			info.HolderName = p.Name
		}
	}
	return info, nil
}

// CheckedOutBy lists the documents locked by userID, most recent checkout
// first. departmentID is optional.
func (s *LifecycleService) CheckedOutBy(userID, departmentID string) ([]archivist.Document, error) {
	docs, err := s.store.List()
	if err != nil {
		return nil, err
	}

	res := make([]archivist.Document, 0)
	for _, doc := range docs {
		if !doc.LockedBy(userID) {
			continue
		}
		if departmentID != "" && doc.DepartmentID != departmentID {
			continue
		}
		res = append(res, doc)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Lock.AcquiredAt.After(res[j].Lock.AcquiredAt)
	})
	return res, nil
}

// VersionHistory returns the version records of a document, oldest first.
func (s *LifecycleService) VersionHistory(documentID string) ([]archivist.VersionRecord, error) {
	if _, err := s.store.Get(documentID); err != nil {
		return nil, err
	}
	return s.store.ListVersions(documentID)
}

// LatestVersion returns the current version of a document, 1.0 when the
// document cannot be read.
func (s *LifecycleService) LatestVersion(documentID string) archivist.Version {
	doc, err := s.store.Get(documentID)
	if err != nil {
		return archivist.Version{}.Current()
	}
	return doc.Version.Current()
}
