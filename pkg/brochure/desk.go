package brochure

import (
	"sync"

	"github.com/google/uuid"
)

// TicketState is the lifecycle of a brochure ticket
type TicketState int

const (
	TicketUnknown TicketState = iota
	TicketPending
	TicketReady
)

// Desk is the production Trigger. It remembers issued tickets in memory and
// serves the brochure file for fired ones.
type Desk struct {
	path string

	mu      sync.RWMutex
	tickets map[string]TicketState
}

func NewDesk(path string) *Desk {
	return &Desk{path: path, tickets: make(map[string]TicketState)}
}

// Path is the brochure file served for ready tickets
func (d *Desk) Path() string {
	return d.path
}

func (d *Desk) Issue() string {
	ticket := uuid.NewString()
	d.mu.Lock()
	d.tickets[ticket] = TicketPending
	d.mu.Unlock()
	return ticket
}

// Fire marks a pending ticket ready. Unknown or already fired tickets are ignored.
func (d *Desk) Fire(ticket string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tickets[ticket] == TicketPending {
		d.tickets[ticket] = TicketReady
	}
}

func (d *Desk) Status(ticket string) TicketState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tickets[ticket]
}
