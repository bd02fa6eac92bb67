package worker

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ProductEnumerator pages over product identities without loading full
// records.
type ProductEnumerator interface {
	Count(ctx context.Context) (int, error)
	ListIDs(ctx context.Context, offset, limit int) ([]string, error)
}

// Scheduler periodically fans reconciliation out across the whole catalog:
// one independent task per product, enumerated in fixed-size id pages. It
// performs no registry calls and no reconciliation inline.
type Scheduler struct {
	products   ProductEnumerator
	dispatcher *Dispatcher
	pageSize   int
	interval   time.Duration
	logger     *log.Logger

	cron *cron.Cron
}

func NewScheduler(products ProductEnumerator, dispatcher *Dispatcher, pageSize int, interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		products:   products,
		dispatcher: dispatcher,
		pageSize:   pageSize,
		interval:   interval,
		logger:     logger,
	}
}

// Start registers the periodic fan-out job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.FanOut(context.Background()); err != nil {
			s.logger.Printf("scheduler: fan-out error=%v", err)
		}
	}); err != nil {
		return fmt.Errorf("register fan-out job: %w", err)
	}
	s.cron.Start()
	s.logger.Printf("scheduler: fan-out every %s, page size %d", s.interval, s.pageSize)
	return nil
}

// Stop halts the cron runner and waits for a running fan-out to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// FanOut enqueues one reconciliation task per product. A product that fails
// to enqueue does not stop the rest of the batch.
func (s *Scheduler) FanOut(ctx context.Context) error {
	total, err := s.products.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}

	enqueued := 0
	pages := PageCount(total, s.pageSize)
	for page := 0; page < pages; page++ {
		ids, err := s.products.ListIDs(ctx, page*s.pageSize, s.pageSize)
		if err != nil {
			return fmt.Errorf("list product ids page %d: %w", page, err)
		}
		for _, id := range ids {
			if s.dispatcher.EnqueueReconcile(id) {
				enqueued++
			}
		}
	}

	s.logger.Printf("scheduler: fan-out products=%d pages=%d enqueued=%d", total, pages, enqueued)
	return nil
}

// PageCount returns ceil(total/pageSize); an empty catalog still yields one
// page so the enumeration always issues at least one query.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
