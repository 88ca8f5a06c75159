package scraper

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler drives periodic cycles in watch mode.
type Scheduler struct {
	cron     *cron.Cron
	entry    cron.EntryID
	isActive bool
	mu       sync.Mutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

func (s *Scheduler) Start(spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isActive {
		return nil
	}

	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	s.cron.Start()
	s.isActive = true
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return
	}

	s.cron.Remove(s.entry)
	s.cron.Stop()
	s.isActive = false
}

func (s *Scheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActive
}
