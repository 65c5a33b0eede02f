package services

import (
	"fmt"
	"strings"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/access"
	"github.com/bobinette/archivist/errors"
	"github.com/bobinette/archivist/log"
)

// DocumentService exposes documents filtered by what the caller can access.
type DocumentService struct {
	store   archivist.DocumentStore
	index   archivist.DocumentIndex
	audit   archivist.AuditLog
	auditor auditor
	logger  log.Logger
}

func NewDocumentService(
	store archivist.DocumentStore,
	index archivist.DocumentIndex,
	audit archivist.AuditLog,
	logger log.Logger,
) *DocumentService {
	s := &DocumentService{
		store:  store,
		index:  index,
		audit:  audit,
		logger: logger,
	}
	if audit != nil {
		s.auditor = auditor{sink: audit, logger: logger}
	}
	return s
}

// Draft is a document about to be uploaded.
type Draft struct {
	Name            string          `json:"name"`
	FileType        string          `json:"fileType"`
	FileURL         string          `json:"fileUrl"`
	FileSize        int64           `json:"fileSize"`
	FolderID        string          `json:"folderId"`
	DepartmentID    string          `json:"departmentId"`
	Tags            []string        `json:"tags"`
	Confidentiality archivist.Level `json:"confidentiality"`
	Assignees       []string        `json:"assignees"`
}

// Upload creates a document owned by the caller, at version 1.0 and not
// checked out.
func (s *DocumentService) Upload(p archivist.Principal, draft Draft) (archivist.Document, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return archivist.Document{}, errors.New("missing document name", errors.Validation(errors.ReasonInvalidRequest))
	}

	doc := archivist.Document{
		Name:         draft.Name,
		FileType:     draft.FileType,
		FileURL:      draft.FileURL,
		FileSize:     draft.FileSize,
		FolderID:     draft.FolderID,
		DepartmentID: draft.DepartmentID,
		OwnerID:      p.ID,
		Status:       archivist.StatusDraft,
		Tags:         draft.Tags,
		Version:      archivist.NewVersion(1),
	}
	if err := access.SetConfidentiality(&doc, draft.Confidentiality, draft.Assignees, access.ModeUpload); err != nil {
		return archivist.Document{}, err
	}

	if err := s.store.Insert(&doc); err != nil {
		return archivist.Document{}, err
	}

	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionUploaded,
		ActorID:      p.ID,
		DocumentID:   doc.ID,
		DepartmentID: doc.DepartmentID,
		VersionTo:    doc.Version,
		Details:      map[string]interface{}{"fileName": doc.Name, "confidentiality": doc.Confidentiality},
	})
	s.reindex(doc)
	return doc, nil
}

// Get returns the document if p can access it. Documents p cannot access
// are reported as not found.
func (s *DocumentService) Get(p archivist.Principal, id string) (archivist.Document, error) {
	doc, err := s.store.Get(id)
	if err != nil {
		return archivist.Document{}, err
	}

	if !access.CanAccess(p, doc) {
		return archivist.Document{}, archivist.ErrDocumentNotFound(id)
	}
	return doc, nil
}

// List returns every document p can access.
func (s *DocumentService) List(p archivist.Principal) ([]archivist.Document, error) {
	docs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	return access.FilterVisible(p, docs), nil
}

// Search looks q up in the index and returns the matching documents p can
// access, in index order.
func (s *DocumentService) Search(p archivist.Principal, q string, limit int) ([]archivist.Document, error) {
	if s.index == nil || strings.TrimSpace(q) == "" {
		return s.List(p)
	}
	if limit <= 0 {
		limit = 100
	}

	ids, err := s.index.Search(q, limit, 0)
	if err != nil {
		return nil, err
	}

	docs := make([]archivist.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.store.Get(id)
		if errors.Is(err, errors.ReasonNotFound) {
			// Stale index entry
			continue
		} else if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return access.FilterVisible(p, docs), nil
}

// SetConfidentiality changes the level and assignees of a document. The
// level can only be kept or raised. Only the owner and document managers can
// change it.
func (s *DocumentService) SetConfidentiality(p archivist.Principal, id string, level archivist.Level, assignees []string) (archivist.Document, error) {
	var from archivist.Level
	doc, err := s.store.Update(id, func(doc *archivist.Document) error {
		if !access.CanAccess(p, *doc) {
			return archivist.ErrDocumentNotFound(id)
		}
		if doc.OwnerID != p.ID && !access.Resolve(p).ManageDocuments {
			return errors.New("only the owner or a manager can change the confidentiality", errors.Permission(errors.ReasonForbidden))
		}

		from = doc.Confidentiality
		return access.SetConfidentiality(doc, level, assignees, access.ModeEdit)
	})
	if err != nil {
		return archivist.Document{}, err
	}

	s.auditor.record(archivist.AuditEntry{
		Action:       archivist.ActionConfidentialityChanged,
		ActorID:      p.ID,
		DocumentID:   doc.ID,
		DepartmentID: doc.DepartmentID,
		VersionFrom:  doc.Version.Current(),
		VersionTo:    doc.Version.Current(),
		Details: map[string]interface{}{
			"from":      from,
			"to":        doc.Confidentiality,
			"assignees": doc.Assignees,
		},
	})
	s.reindex(doc)
	return doc, nil
}

// AuditTrail returns the audit entries of a document. It requires the
// document to be accessible, and the caller to be its owner or an admin or
// manager.
func (s *DocumentService) AuditTrail(p archivist.Principal, id string) ([]archivist.AuditEntry, error) {
	doc, err := s.Get(p, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != p.ID && !access.Resolve(p).Override() {
		return nil, errors.New("you do not have permission to read the audit log", errors.Permission(errors.ReasonForbidden))
	}
	if s.audit == nil {
		return []archivist.AuditEntry{}, nil
	}
	return s.audit.List(id)
}

// Reindex indexes every stored document.
func (s *DocumentService) Reindex() (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("no index configured")
	}

	docs, err := s.store.List()
	if err != nil {
		return 0, err
	}
	for i := range docs {
		if err := s.index.Index(&docs[i]); err != nil {
			return i, err
		}
	}
	return len(docs), nil
}

func (s *DocumentService) reindex(doc archivist.Document) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(&doc); err != nil {
		s.logger.Errorf("could not index document %s: %v", doc.ID, err)
	}
}
