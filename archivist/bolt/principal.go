package bolt

import (
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

type PrincipalRepository struct {
	Driver *Driver
}

func (r *PrincipalRepository) Get(id string) (archivist.Principal, error) {
	var principal archivist.Principal
	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(principalBucket).Get([]byte(id))
		if data == nil {
			return errors.New(fmt.Sprintf("principal %s not found", id), errors.Missing())
		}
		return json.Unmarshal(data, &principal)
	})
	if err != nil {
		return archivist.Principal{}, err
	}
	return principal, nil
}

func (r *PrincipalRepository) List() ([]archivist.Principal, error) {
	principals := make([]archivist.Principal, 0)
	err := r.Driver.store.View(func(tx *bolt.Tx) error {
		return tx.Bucket(principalBucket).ForEach(func(_, data []byte) error {
			var p archivist.Principal
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			principals = append(principals, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return principals, nil
}

func (r *PrincipalRepository) Upsert(p *archivist.Principal) error {
	return r.Driver.store.Update(func(tx *bolt.Tx) error {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}

		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket(principalBucket).Put([]byte(p.ID), data)
	})
}
