package session

import (
	"sync"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Text     string
	Severity Severity
}

// Renderer displays notifications to the user.
type Renderer interface {
	Show(Notification)
	Dismiss(Notification)
}

// NotificationQueue is a FIFO display queue for transient human-readable
// events. Pushes are coalesced within a debounce window into one flush;
// debouncing delays rendering of a burst, it never drops entries. Each
// shown entry is dismissed after a fixed display duration.
type NotificationQueue struct {
	renderer    Renderer
	flushWindow time.Duration
	displayFor  time.Duration

	mu    sync.Mutex
	queue []Notification
	timer *time.Timer
}

func NewNotificationQueue(renderer Renderer, flushWindow, displayFor time.Duration) *NotificationQueue {
	return &NotificationQueue{
		renderer:    renderer,
		flushWindow: flushWindow,
		displayFor:  displayFor,
	}
}

// Push enqueues a notification and (re)schedules the debounced flush.
func (q *NotificationQueue) Push(text string, severity Severity) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queue = append(q.queue, Notification{Text: text, Severity: severity})

	if q.timer == nil {
		q.timer = time.AfterFunc(q.flushWindow, q.Flush)
	} else {
		q.timer.Reset(q.flushWindow)
	}
}

// Pending reports the number of queued, not yet rendered notifications.
func (q *NotificationQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queue)
}

// Flush renders every queued entry in arrival order and schedules its
// dismissal. Normally driven by the debounce timer.
func (q *NotificationQueue) Flush() {
	q.mu.Lock()
	drained := q.queue
	q.queue = nil
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.mu.Unlock()

	for _, notification := range drained {
		q.renderer.Show(notification)
		time.AfterFunc(q.displayFor, func() {
			q.renderer.Dismiss(notification)
		})
	}
}

// Stop cancels a pending flush timer. Queued entries stay queued.
func (q *NotificationQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
