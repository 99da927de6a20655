package syncengine

import "time"

// Status is the process-wide sync snapshot broadcast to subscribers. It is
// ephemeral: rebuilt every drain, reset on process start, never persisted.
type Status struct {
	IsSyncing    bool      `json:"is_syncing"`
	PendingCount int       `json:"pending_count"`
	LastSyncAt   time.Time `json:"last_sync_at"`
	LastError    string    `json:"last_error"`
	Progress     int       `json:"progress"`
}

// Result is what one drain reports back.
type Result struct {
	Success bool `json:"success"`
	Synced  int  `json:"synced"`
	Failed  int  `json:"failed"`
}

// Status returns the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Subscribe registers a callback invoked immediately with the current
// status and again on every change. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func(Status)) func() {
	e.mu.Lock()
	id := e.nextSubId
	e.nextSubId++
	if e.subscribers == nil {
		e.subscribers = make(map[int]func(Status))
	}
	e.subscribers[id] = fn
	current := e.status
	e.mu.Unlock()

	fn(current)

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// mutateStatus applies fn under the lock and broadcasts the new snapshot.
func (e *Engine) mutateStatus(fn func(*Status)) {
	e.mu.Lock()
	fn(&e.status)
	snapshot := e.status
	subs := make([]func(Status), 0, len(e.subscribers))
	for _, sub := range e.subscribers {
		subs = append(subs, sub)
	}
	e.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}
