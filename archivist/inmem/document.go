package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

// DocumentStore keeps documents in memory. It is used in tests and by the
// cli dry runs.
type DocumentStore struct {
	mu        sync.Locker
	documents map[string]archivist.Document
	order     []string
	versions  map[string][]archivist.VersionRecord
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		mu:        &sync.Mutex{},
		documents: make(map[string]archivist.Document),
		versions:  make(map[string][]archivist.VersionRecord),
	}
}

func (s *DocumentStore) Get(id string) (archivist.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return archivist.Document{}, archivist.ErrDocumentNotFound(id)
	}
	return clone(doc), nil
}

func (s *DocumentStore) List() ([]archivist.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]archivist.Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, clone(s.documents[id]))
	}
	return docs, nil
}

func (s *DocumentStore) Insert(doc *archivist.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.ModifiedAt = now

	if _, ok := s.documents[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = clone(*doc)
	return nil
}

func (s *DocumentStore) Update(id string, fn func(*archivist.Document) error) (archivist.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[id]
	if !ok {
		return archivist.Document{}, archivist.ErrDocumentNotFound(id)
	}

	doc := clone(stored)
	if err := fn(&doc); err != nil {
		return archivist.Document{}, err
	}
	doc.ID = id

	s.documents[id] = clone(doc)
	return doc, nil
}

func (s *DocumentStore) AppendVersion(id string, fn func(*archivist.Document) (archivist.VersionRecord, error)) (archivist.Document, archivist.VersionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[id]
	if !ok {
		return archivist.Document{}, archivist.VersionRecord{}, archivist.ErrDocumentNotFound(id)
	}

	doc := clone(stored)
	record, err := fn(&doc)
	if err != nil {
		return archivist.Document{}, archivist.VersionRecord{}, err
	}
	doc.ID = id
	record.DocumentID = id
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	s.versions[id] = append(s.versions[id], record)
	s.documents[id] = clone(doc)
	return doc, record, nil
}

func (s *DocumentStore) ListVersions(documentID string) ([]archivist.VersionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]archivist.VersionRecord, len(s.versions[documentID]))
	copy(records, s.versions[documentID])
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Version.Cmp(records[j].Version) < 0
	})
	return records, nil
}

// clone copies the slices and the lock so that callers cannot mutate the
// stored document.
func clone(doc archivist.Document) archivist.Document {
	if doc.Lock != nil {
		lock := *doc.Lock
		doc.Lock = &lock
	}
	if doc.Assignees != nil {
		doc.Assignees = append([]string{}, doc.Assignees...)
	}
	if doc.Tags != nil {
		doc.Tags = append([]string{}, doc.Tags...)
	}
	return doc
}
