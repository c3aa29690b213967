package orchestrator

import (
	"context"
	"time"
)

// restartRefreshLocked replaces the refresh task. The task reads the
// location through the orchestrator on every tick, so it never works from
// a stale copy.
func (o *Orchestrator) restartRefreshLocked() {
	if o.stopped {
		return
	}
	if o.tickCancel != nil {
		o.tickCancel()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.tickCancel = cancel

	o.wg.Add(1)
	go o.runRefresh(ctx)
}

func (o *Orchestrator) runRefresh(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Refresh()
		}
	}
}
