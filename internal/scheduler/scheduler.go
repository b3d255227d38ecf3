// Package scheduler runs the portal's periodic housekeeping: expiring idle
// sessions and pruning stale wizard drafts.
package scheduler

import (
	"log"
	"time"

	"estatehub-portal/internal/config"
	"estatehub-portal/internal/database"
	"estatehub-portal/internal/session"

	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	cron      *cron.Cron
	sessions  *session.Manager
	db        *database.DB
	cfg       config.SessionConfig
	isRunning bool
}

// New creates a scheduler over the session manager and local database.
func New(sessions *session.Manager, db *database.DB, cfg config.SessionConfig) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		db:       db,
		cfg:      cfg,
	}
}

// Start registers the cleanup job and starts the cron loop.
func (s *Scheduler) Start() error {
	spec := s.cfg.CleanupSchedule
	if spec == "" {
		spec = "@every 15m"
	}

	if _, err := s.cron.AddFunc(spec, s.runCleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("scheduler: started (cleanup schedule %s)", spec)
	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("scheduler: stopped")
	}
}

// RunNow triggers the cleanup immediately (manual trigger, tests).
func (s *Scheduler) RunNow() {
	s.runCleanup()
}

func (s *Scheduler) runCleanup() {
	dropped := s.sessions.PruneIdle()
	if dropped > 0 {
		log.Printf("scheduler: expired %d idle sessions", dropped)
	}

	if s.db != nil {
		cutoff := time.Now().Add(-s.cfg.DraftTTL())
		pruned, err := s.db.PruneDrafts(cutoff)
		if err != nil {
			log.Printf("scheduler: draft pruning failed: %v", err)
		} else if pruned > 0 {
			log.Printf("scheduler: pruned %d stale wizard drafts", pruned)
		}
	}
}
