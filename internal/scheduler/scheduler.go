package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Aias00/gold-price-monitor/internal/model"
)

// Refresher is the orchestrator surface the scheduler drives.
type Refresher interface {
	GetSeries(ctx context.Context, forceRefresh bool) (model.SeriesData, error)
}

// Scheduler fires periodic forced refreshes so the cache and badge stay
// warm even when nobody opens the popup.
type Scheduler struct {
	Cron    *cron.Cron
	Service Refresher
	Ctx     context.Context
}

func New(ctx context.Context, svc Refresher) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(),
		Service: svc,
		Ctx:     ctx,
	}
}

// Register adds the periodic refresh task.
func (s *Scheduler) Register(every time.Duration) error {
	if _, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", every), s.refresh); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one forced refresh immediately (startup warm-up).
func (s *Scheduler) RunNow() {
	s.refresh()
}

// refresh swallows errors: a failed run must never disable future runs.
func (s *Scheduler) refresh() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] refresh panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.Ctx, time.Minute)
	defer cancel()

	data, err := s.Service.GetSeries(ctx, true)
	if err != nil {
		log.Printf("[ERROR] scheduled refresh: %v", err)
		return
	}
	if latest, ok := data.Latest(); ok {
		log.Printf("[INFO] refreshed: %d records, latest %s @ %.2f", len(data.Records), latest.Date, latest.Price)
	}
}
