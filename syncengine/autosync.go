package syncengine

import (
	"context"
	"errors"
	"time"
)

var errSyncInProgress = errors.New("sync already in progress")

// StartAutoSync runs the drain on a fixed interval while connectivity is
// present. Every ReconcileEvery ticks it also runs the background refresh.
// Both are advisory triggers onto the single-flight Sync; they never
// bypass its guard. Returns immediately; Stop shuts the loop down.
func (e *Engine) StartAutoSync(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.cfg.Interval)
		defer ticker.Stop()
		tick := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stopCh:
				return
			case <-ticker.C:
				if !e.probe.Online(ctx) {
					continue
				}
				e.Sync(ctx)
				tick++
				if e.cfg.ReconcileEvery > 0 && tick%e.cfg.ReconcileEvery == 0 {
					if err := e.Reconcile(ctx); err != nil {
						e.logger.WithField("module", "syncengine").Debug("reconcile skipped: " + err.Error())
					}
				}
			}
		}
	}()
}

// NotifyOnline should be called on an offline→online transition. It waits
// out the debounce (connectivity tends to flap right after it returns) and
// then attempts a drain through the normal guard.
func (e *Engine) NotifyOnline(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-time.After(e.cfg.OnlineDebounce):
		}
		if e.probe.Online(ctx) {
			e.Sync(ctx)
		}
	}()
}

// Stop ends the auto-sync loop. It does not abort an in-flight drain; the
// single-flight guard only prevents new ones from starting.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}
