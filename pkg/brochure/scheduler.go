// Package brochure delivers the program brochure after a successful
// brochure-intent submission. A ticket is issued immediately and becomes
// downloadable once the deferred trigger fires.
package brochure

import (
	"log/slog"
	"time"
)

// Trigger issues tickets and fires them when their delay elapses
type Trigger interface {
	Issue() string
	Fire(ticket string)
}

// Download tells the caller where and when the brochure becomes available
type Download struct {
	Ticket     string        `json:"ticket"`
	URL        string        `json:"url"`
	ReadyAfter time.Duration `json:"-"`
	ReadyInMS  int64         `json:"readyInMs"`
}

// Scheduler fires a trigger once, a fixed delay after Schedule
type Scheduler struct {
	delay   time.Duration
	trigger Trigger
	logger  *slog.Logger
}

func NewScheduler(delay time.Duration, trigger Trigger) *Scheduler {
	return &Scheduler{
		delay:   delay,
		trigger: trigger,
		logger:  slog.Default().With("component", "brochure"),
	}
}

// Schedule issues a ticket and arranges a single Fire after the delay. Each
// call is a separate ticket, so callers schedule once per submission.
func (s *Scheduler) Schedule() Download {
	ticket := s.trigger.Issue()

	time.AfterFunc(s.delay, func() {
		s.logger.Info("brochure download ready", "ticket", ticket)
		s.trigger.Fire(ticket)
	})

	return Download{
		Ticket:     ticket,
		URL:        "/brochure/" + ticket,
		ReadyAfter: s.delay,
		ReadyInMS:  s.delay.Milliseconds(),
	}
}
