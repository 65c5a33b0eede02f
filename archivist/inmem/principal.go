package inmem

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

type PrincipalRepository struct {
	mu         sync.Locker
	principals []archivist.Principal
}

func NewPrincipalRepository(principals ...archivist.Principal) *PrincipalRepository {
	return &PrincipalRepository{
		mu:         &sync.Mutex{},
		principals: principals,
	}
}

func (r *PrincipalRepository) Get(id string) (archivist.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.principals {
		if p.ID == id {
			return p, nil
		}
	}
	return archivist.Principal{}, errors.New(fmt.Sprintf("principal %s not found", id), errors.Missing())
}

func (r *PrincipalRepository) List() ([]archivist.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]archivist.Principal{}, r.principals...), nil
}

func (r *PrincipalRepository) Upsert(p *archivist.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	for i, existing := range r.principals {
		if existing.ID == p.ID {
			r.principals[i] = *p
			return nil
		}
	}
	r.principals = append(r.principals, *p)
	return nil
}
