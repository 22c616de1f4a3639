package ics

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler refreshes all feeds on a cron schedule.
type Scheduler struct {
	service Service
	cron    *cron.Cron
}

func NewScheduler(service Service) *Scheduler {
	return &Scheduler{service: service, cron: cron.New()}
}

// Start registers the refresh job and starts the cron loop. spec accepts the
// standard five-field syntax and descriptors like "@every 30m".
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.service.RefreshAll(context.Background()); err != nil {
			log.Errorf("scheduled feed refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid feed refresh schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Infof("feed refresh scheduled: %s", spec)
	return nil
}

// Stop halts the cron loop. A running refresh finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
