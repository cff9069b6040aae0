// Package notifications implements the transient user-facing notification
// surface (toasts) and the re-render signals pushed to connected clients.
package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"quantum/internal/middleware"
	"quantum/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Severity tags a toast notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Channel is the Redis pub/sub channel all client events are published on.
const Channel = "quantum:events"

// Event is the wire shape delivered to connected clients. Toasts carry a
// severity and message; render events carry the region to refresh.
type Event struct {
	Type      string    `json:"type"` // "toast" or "render"
	Severity  Severity  `json:"severity,omitempty"`
	Message   string    `json:"message,omitempty"`
	Region    string    `json:"region,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers fire-and-forget user-visible notifications.
// Implementations must not fail the calling operation.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// Publisher logs every toast and, when Redis is available, publishes it for
// delivery to connected WebSocket clients.
type Publisher struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewPublisher creates a Publisher. A nil Redis client degrades to log-only.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb, log: middleware.Logger}
}

// Notify implements Notifier.
func (p *Publisher) Notify(ctx context.Context, severity Severity, message string) {
	p.log.InfoContext(ctx, "toast",
		slog.String("severity", string(severity)),
		slog.String("message", message),
	)
	observability.ToastsPublished.WithLabelValues(string(severity)).Inc()

	p.publish(ctx, Event{
		Type:      "toast",
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// NotifyRender signals that a view region should re-render.
func (p *Publisher) NotifyRender(ctx context.Context, region string) {
	p.publish(ctx, Event{
		Type:      "render",
		Region:    region,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	if p.rdb == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	// Best-effort: delivery failures must never fail the mutation that
	// triggered the notification.
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		p.log.WarnContext(ctx, "event publish failed", slog.String("error", err.Error()))
	}
}

// Recorder captures notifications for tests.
type Recorder struct {
	mu    sync.Mutex
	items []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Event{
		Type:      "toast",
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Items returns a copy of everything recorded so far.
func (r *Recorder) Items() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Event{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset clears recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
