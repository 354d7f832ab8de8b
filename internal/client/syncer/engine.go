// Package syncer reconciles the local store with the remote store: it
// pushes the coalesced pending backlog, pulls remote changes past the
// high-water mark, and resolves conflicts last-write-wins. At most one
// cycle runs at a time; triggers that arrive mid-cycle collapse into a
// no-op instead of queueing.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/netmon"
	"github.com/dvoronkov/petvault/internal/client/remote"
	"github.com/dvoronkov/petvault/internal/client/store"
	"github.com/dvoronkov/petvault/internal/common"
	"github.com/dvoronkov/petvault/internal/logging"
)

// DefaultInterval is how often the scheduler attempts a cycle.
const DefaultInterval = 30 * time.Second

// Engine orchestrates sync cycles. All local writes go through the Store's
// transactional API; the engine never holds a transaction across network
// calls, so a cycle abandoned mid-flight cannot corrupt local state.
type Engine struct {
	store   *store.Store
	remote  remote.Store
	monitor *netmon.Monitor
	log     logging.Logger

	interval time.Duration
	trigger  chan struct{}
	now      func() time.Time

	// cycleMu is the single-flight guard: a single-slot lock, not a
	// queue, so triggers can never build up a backlog.
	cycleMu sync.Mutex

	statusMu sync.Mutex
	status   models.SyncStatus
	userID   string
}

// New builds an Engine. A nil remote disables sync: every cycle
// short-circuits as offline while the local store stays fully usable.
func New(s *store.Store, r remote.Store, m *netmon.Monitor, interval time.Duration, log logging.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		store:    s,
		remote:   r,
		monitor:  m,
		log:      log,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// SetUser scopes pulls to the authenticated user. An empty id (logged
// out) disables the pull phase; pushes still drain the backlog.
func (e *Engine) SetUser(id string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.userID = id
}

func (e *Engine) currentUser() string {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.userID
}

// Status returns a snapshot of the engine's state.
func (e *Engine) Status() models.SyncStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

// Trigger requests a sync cycle without blocking. Requests arriving while
// a cycle runs (or is already requested) are dropped, not queued.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run drives scheduled sync until ctx is cancelled: a ticker at the
// configured interval plus manual triggers, both funnelled through the
// same single-flight guard.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sync(ctx)
		case <-e.trigger:
			e.Sync(ctx)
		}
	}
}

// Sync runs one cycle unless another is already in flight. It reports
// whether a cycle actually ran. Failures never propagate: they end the
// cycle cleanly and show up only in Status.
func (e *Engine) Sync(ctx context.Context) bool {
	if !e.cycleMu.TryLock() {
		return false
	}
	defer e.cycleMu.Unlock()

	e.runCycle(ctx)
	return true
}

func (e *Engine) runCycle(ctx context.Context) {
	online := e.monitor.Online(ctx)
	if !online {
		e.updateStatus(ctx, false, false)
		return
	}

	err := e.push(ctx)
	if err == nil {
		err = e.pull(ctx)
	}

	if err != nil {
		// Transient by taxonomy: the next scheduled trigger retries the
		// whole cycle. No partial-cycle retry loop here.
		e.log.Warn(ctx, "sync cycle aborted", "error", err)
		e.updateStatus(ctx, true, false)
		return
	}

	e.updateStatus(ctx, true, true)
	e.log.Debug(ctx, "sync cycle finished")
}

func (e *Engine) updateStatus(ctx context.Context, online, success bool) {
	pending, err := e.store.CountPendingChanges(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to count pending changes", "error", err)
	}

	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Online = online
	e.status.PendingCount = pending
	if success {
		e.status.LastSyncAt = e.now()
	}
}

// push drains the coalesced backlog. A conflict resolves in place and may
// leave the entry pending for the next cycle; a transient remote failure
// aborts the remainder of the phase.
func (e *Engine) push(ctx context.Context) error {
	changes, err := e.store.PendingChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending changes: %w", err)
	}

	for _, change := range changes {
		err := e.pushChange(ctx, change)

		var conflict *remote.ConflictError
		switch {
		case err == nil:
			if err := e.store.MarkChangesSynced(ctx, change.EntryIDs); err != nil {
				return fmt.Errorf("failed to mark %s %s synced: %w", change.Table, change.EntityID, err)
			}
		case errors.As(err, &conflict):
			if err := e.resolvePushConflict(ctx, change, conflict); err != nil {
				return err
			}
		default:
			return fmt.Errorf("push %s %s: %w", change.Table, change.EntityID, err)
		}
	}
	return nil
}

func (e *Engine) pushChange(ctx context.Context, change models.PendingChange) error {
	switch change.Table {
	case models.TableUsers:
		var u models.User
		if err := json.Unmarshal(change.Payload, &u); err != nil {
			return fmt.Errorf("bad user snapshot: %w", err)
		}
		return e.remote.UpsertUser(ctx, &u)
	case models.TablePets:
		var p models.Pet
		if err := json.Unmarshal(change.Payload, &p); err != nil {
			return fmt.Errorf("bad pet snapshot: %w", err)
		}
		if change.Op == models.OpDelete {
			return e.remote.DeletePet(ctx, &p)
		}
		return e.remote.UpsertPet(ctx, &p)
	default:
		return fmt.Errorf("unknown table %q", change.Table)
	}
}

// resolvePushConflict applies last-write-wins between the rejected local
// snapshot and the remote version the conflict carried. Remote wins ties.
// When local wins, the pending entry stays for re-push on the next cycle;
// the compare-and-set on the remote will then let it through.
func (e *Engine) resolvePushConflict(ctx context.Context, change models.PendingChange, conflict *remote.ConflictError) error {
	switch change.Table {
	case models.TableUsers:
		var local models.User
		if err := json.Unmarshal(change.Payload, &local); err != nil {
			return fmt.Errorf("bad user snapshot: %w", err)
		}
		if conflict.User == nil || local.LastModified.After(conflict.User.LastModified) {
			e.log.Debug(ctx, "local user wins conflict, re-push next cycle", "id", local.ID)
			return nil
		}
		e.log.Info(ctx, "remote user version wins conflict", "id", conflict.User.ID)
		return e.store.ApplyRemoteUser(ctx, conflict.User)
	case models.TablePets:
		var local models.Pet
		if err := json.Unmarshal(change.Payload, &local); err != nil {
			return fmt.Errorf("bad pet snapshot: %w", err)
		}
		if conflict.Pet == nil || local.LastModified.After(conflict.Pet.LastModified) {
			e.log.Debug(ctx, "local pet wins conflict, re-push next cycle", "id", local.ID)
			return nil
		}
		e.log.Info(ctx, "remote pet version wins conflict", "id", conflict.Pet.ID)
		return e.store.ApplyRemotePet(ctx, conflict.Pet)
	default:
		return fmt.Errorf("unknown table %q", change.Table)
	}
}

// pull fetches entities modified past the high-water mark and applies
// last-write-wins per entity. Each application is its own transaction, so
// a cycle interrupted mid-pull leaves no partial entity behind.
func (e *Engine) pull(ctx context.Context) error {
	userID := e.currentUser()
	if userID == "" {
		return nil
	}

	hwm, err := e.store.HighWaterMark(ctx)
	if err != nil {
		return fmt.Errorf("failed to read high-water mark: %w", err)
	}
	maxSeen := hwm

	remoteUsers, err := e.remote.FetchUsersModifiedSince(ctx, userID, hwm)
	if err != nil {
		return fmt.Errorf("pull users: %w", err)
	}
	for i := range remoteUsers {
		u := &remoteUsers[i]
		if u.LastModified.After(maxSeen) {
			maxSeen = u.LastModified
		}
		if err := e.applyRemoteUser(ctx, u); err != nil {
			return err
		}
	}

	remotePets, err := e.remote.FetchPetsModifiedSince(ctx, userID, hwm)
	if err != nil {
		return fmt.Errorf("pull pets: %w", err)
	}
	for i := range remotePets {
		p := &remotePets[i]
		if p.LastModified.After(maxSeen) {
			maxSeen = p.LastModified
		}
		if err := e.applyRemotePet(ctx, p); err != nil {
			return err
		}
	}

	if maxSeen.After(hwm) {
		if err := e.store.SetHighWaterMark(ctx, maxSeen); err != nil {
			return fmt.Errorf("failed to advance high-water mark: %w", err)
		}
	}
	return nil
}

func (e *Engine) applyRemoteUser(ctx context.Context, u *models.User) error {
	local, err := e.store.GetUserByID(ctx, u.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		// no local copy: remote wins by default
	case err != nil:
		return err
	case local.LastModified.After(u.LastModified):
		// local strictly newer: keep it, the push path will win later
		return nil
	}
	return e.store.ApplyRemoteUser(ctx, u)
}

func (e *Engine) applyRemotePet(ctx context.Context, p *models.Pet) error {
	local, err := e.store.GetPet(ctx, p.ID, true)
	switch {
	case errors.Is(err, common.ErrNotFound):
	case err != nil:
		return err
	case local.LastModified.After(p.LastModified):
		return nil
	}
	return e.store.ApplyRemotePet(ctx, p)
}
