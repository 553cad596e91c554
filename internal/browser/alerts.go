package browser

import (
	"context"
	"sync"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// AlertQueue buffers alerts until a front end collects them, as the web
// page does with each API response.
type AlertQueue struct {
	mu       sync.Mutex
	messages []string
}

func NewAlertQueue() *AlertQueue {
	return &AlertQueue{}
}

func (q *AlertQueue) Alert(ctx context.Context, message string) {
	utils.LogDebug(ctx, "Queued alert", utils.Fields{"alert": message})
	q.mu.Lock()
	q.messages = append(q.messages, message)
	q.mu.Unlock()
}

// Drain returns the pending alerts in order and empties the queue. It never
// returns nil.
func (q *AlertQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.messages
	q.messages = nil
	if out == nil {
		out = []string{}
	}
	return out
}
