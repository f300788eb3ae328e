package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenPurger deletes reset tokens that can no longer be consumed.
type TokenPurger interface {
	PurgeDead(ctx context.Context, now time.Time) (int64, error)
}

// Cleanup runs the periodic purge of expired and consumed reset tokens.
// Purging is hygiene, not correctness: consumption checks expiry and
// consumed_at on every read regardless.
type Cleanup struct {
	cron    *cron.Cron
	tokens  TokenPurger
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCleanup creates the cleanup scheduler
func NewCleanup(tokens TokenPurger) *Cleanup {
	return &Cleanup{
		cron:   cron.New(cron.WithSeconds()),
		tokens: tokens,
	}
}

// Start schedules the purge job
func (c *Cleanup) Start(ctx context.Context, schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	if _, err := c.cron.AddFunc(schedule, c.run); err != nil {
		return err
	}

	c.cron.Start()
	c.running = true

	log.Printf("Token cleanup scheduled: %s", schedule)
	return nil
}

// Stop stops the scheduler gracefully
func (c *Cleanup) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.cancel()
	ctx := c.cron.Stop()
	<-ctx.Done()

	c.running = false
	log.Println("Token cleanup stopped")
}

func (c *Cleanup) run() {
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	n, err := c.tokens.PurgeDead(ctx, time.Now())
	if err != nil {
		log.Printf("Token purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Purged %d dead reset tokens", n)
	}
}
