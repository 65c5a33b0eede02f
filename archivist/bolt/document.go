package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

// DocumentStore is used to store and retrieve documents from a bolt
// database. Versions are kept in a sub-bucket per document of the versions
// bucket, keyed by sequence.
type DocumentStore struct {
	Driver *Driver
}

func (s *DocumentStore) Get(id string) (archivist.Document, error) {
	var doc archivist.Document
	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, id)
		return err
	})
	return doc, err
}

func (s *DocumentStore) List() ([]archivist.Document, error) {
	docs := make([]archivist.Document, 0)

	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(documentBucket)

		c := bucket.Cursor()
		for _, data := c.First(); data != nil; _, data = c.Next() {
			var doc archivist.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys are random ids, restore the insertion order.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *DocumentStore) Insert(doc *archivist.Document) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		now := time.Now()
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = now
		}
		doc.ModifiedAt = now

		return putDocument(tx, doc)
	})
}

func (s *DocumentStore) Update(id string, fn func(*archivist.Document) error) (archivist.Document, error) {
	var doc archivist.Document
	err := s.Driver.store.Update(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, id)
		if err != nil {
			return err
		}

		if err := fn(&doc); err != nil {
			return err
		}
		doc.ID = id

		return putDocument(tx, &doc)
	})
	if err != nil {
		return archivist.Document{}, err
	}
	return doc, nil
}

func (s *DocumentStore) AppendVersion(id string, fn func(*archivist.Document) (archivist.VersionRecord, error)) (archivist.Document, archivist.VersionRecord, error) {
	var doc archivist.Document
	var record archivist.VersionRecord
	err := s.Driver.store.Update(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, id)
		if err != nil {
			return err
		}

		record, err = fn(&doc)
		if err != nil {
			return err
		}
		doc.ID = id
		record.DocumentID = id
		if record.ID == "" {
			record.ID = uuid.New().String()
		}

		// The record goes first: a reader must never see a bumped version
		// without its predecessor.
		bucket, err := tx.Bucket(versionBucket).CreateBucketIfNotExists([]byte(id))
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("error incrementing version sequence: %v", err)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := bucket.Put(itob(seq), data); err != nil {
			return err
		}

		return putDocument(tx, &doc)
	})
	if err != nil {
		return archivist.Document{}, archivist.VersionRecord{}, err
	}
	return doc, record, nil
}

func (s *DocumentStore) ListVersions(documentID string) ([]archivist.VersionRecord, error) {
	records := make([]archivist.VersionRecord, 0)

	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(versionBucket).Bucket([]byte(documentID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, data []byte) error {
			var record archivist.VersionRecord
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Version.Cmp(records[j].Version) < 0
	})
	return records, nil
}

// ------------------------------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------------------------------

func getDocument(tx *bolt.Tx, id string) (archivist.Document, error) {
	data := tx.Bucket(documentBucket).Get([]byte(id))
	if data == nil {
		return archivist.Document{}, archivist.ErrDocumentNotFound(id)
	}

	var doc archivist.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return archivist.Document{}, err
	}
	return doc, nil
}

func putDocument(tx *bolt.Tx, doc *archivist.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Bucket(documentBucket).Put([]byte(doc.ID), data)
}

// itob returns an 8-byte big endian representation of v.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
