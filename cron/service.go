// Package cron runs the periodic maintenance jobs: rebuilding the search
// index and reporting checkouts held for too long.
package cron

import (
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/log"
)

const (
	DefaultReindexSpec = "0 0 * * *"   // Daily at midnight
	DefaultStaleSpec   = "0 8 * * 1-5" // Week days at 8am
)

type Reindexer interface {
	Reindex() (int, error)
}

type Configuration struct {
	Reindex    string `toml:"reindex"`
	Stale      string `toml:"stale"`
	StaleAfter int    `toml:"stale_after"` // hours
}

type Service struct {
	store     archivist.DocumentStore
	reindexer Reindexer

	staleAfter time.Duration
	logger     log.Logger

	now func() time.Time
}

func NewService(store archivist.DocumentStore, reindexer Reindexer, staleAfter time.Duration, logger log.Logger) *Service {
	if staleAfter <= 0 {
		staleAfter = 72 * time.Hour
	}

	return &Service{
		store:     store,
		reindexer: reindexer,

		staleAfter: staleAfter,
		logger:     logger,

		now: time.Now,
	}
}

// Start schedules the jobs and starts the scheduler. An empty spec disables
// the job. The returned cron must be stopped by the caller.
func (s *Service) Start(conf Configuration) (*cron.Cron, error) {
	c := cron.New()

	if conf.Reindex != "" {
		if _, err := c.AddFunc(conf.Reindex, s.runReindex); err != nil {
			return nil, err
		}
	}

	if conf.Stale != "" {
		if _, err := c.AddFunc(conf.Stale, s.runStaleReport); err != nil {
			return nil, err
		}
	}

	c.Start()
	return c, nil
}

func (s *Service) runReindex() {
	n, err := s.reindexer.Reindex()
	if err != nil {
		s.logger.Errorf("could not reindex documents: %v", err)
		return
	}
	s.logger.Printf("successfully reindexed %d documents", n)
}

func (s *Service) runStaleReport() {
	docs, err := s.StaleCheckouts()
	if err != nil {
		s.logger.Errorf("could not list stale checkouts: %v", err)
		return
	}

	for _, doc := range docs {
		s.logger.
			WithField("document", doc.ID).
			WithField("holder", doc.Lock.HolderID).
			WithField("department", doc.DepartmentID).
			Warnf("document checked out since %s", doc.Lock.AcquiredAt.Format(time.RFC3339))
	}
}

// StaleCheckouts returns the documents checked out for longer than the
// configured duration, oldest checkout first.
func (s *Service) StaleCheckouts() ([]archivist.Document, error) {
	docs, err := s.store.List()
	if err != nil {
		return nil, err
	}

	limit := s.now().Add(-s.staleAfter)
	stale := make([]archivist.Document, 0)
	for _, doc := range docs {
		if doc.Lock != nil && doc.Lock.AcquiredAt.Before(limit) {
			stale = append(stale, doc)
		}
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].Lock.AcquiredAt.Before(stale[j].Lock.AcquiredAt)
	})
	return stale, nil
}
