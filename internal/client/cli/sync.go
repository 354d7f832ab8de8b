package cli

import (
	"context"
	"fmt"
)

// Sync runs one sync cycle in the foreground and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	if !a.config.SyncEnabled() {
		printlnFn("Sync is not configured (no remote endpoint).")
		return nil
	}

	if !a.engine.Sync(ctx) {
		printlnFn("Sync already in progress.")
		return nil
	}
	return a.Status(ctx)
}

// Status prints connectivity, backlog size, and the last successful sync.
func (a *App) Status(ctx context.Context) error {
	if !a.config.SyncEnabled() {
		printlnFn("Sync: disabled (local-only mode)")
		return nil
	}

	st := a.engine.Status()
	conn := "offline"
	if st.Online {
		conn = "online"
	}
	last := "never"
	if !st.LastSyncAt.IsZero() {
		last = st.LastSyncAt.Local().Format("2006-01-02 15:04:05")
	}
	printlnFn(fmt.Sprintf("Connectivity: %s | pending changes: %d | last sync: %s", conn, st.PendingCount, last))
	return nil
}
