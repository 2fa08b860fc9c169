package sync

import (
	"context"
	"log"
	"os"
	"strconv"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/studysync/internal/remote"
	"github.com/example/studysync/internal/store"
	"github.com/example/studysync/pkg/models"
)

// Config holds the engine's timing parameters.
type Config struct {
	// Quiet period after the last dirty mark before a batched push
	Debounce time.Duration
	// Delay before the initial pull, letting first render settle
	SettleDelay time.Duration
	// Budget for the final best-effort flush on shutdown
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default engine configuration. SYNC_DEBOUNCE_SECONDS
// overrides the quiet period.
func DefaultConfig() *Config {
	cfg := &Config{
		Debounce:        3 * time.Second,
		SettleDelay:     2 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
	if raw := os.Getenv("SYNC_DEBOUNCE_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.Debounce = time.Duration(seconds) * time.Second
		}
	}
	return cfg
}

// Engine keeps the local slice store and the remote record store eventually
// consistent. Local writes mark slices dirty through the gateway's listener
// hook; a debounce timer batches them into one push carrying the latest state.
// Pulls merge remote records into local state through the gateway's merge
// path, which never re-marks slices dirty. Local reads and writes never wait
// on the network: the local copy is authoritative for the running session.
type Engine struct {
	gateway  *store.Gateway
	client   remote.RecordStore
	config   *Config
	deviceID string

	mu        stdsync.Mutex
	dirty     map[string]bool
	timer     *time.Timer
	status    models.SyncStatus
	lastSync  time.Time
	remoteIDs map[string]string // slice name -> remote record id

	now func() time.Time
}

// New creates an engine bound to a gateway and remote store, and registers
// for the gateway's dirty notifications. Call Start to schedule the initial
// pull.
func New(gateway *store.Gateway, client remote.RecordStore, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	engine := &Engine{
		gateway:   gateway,
		client:    client,
		config:    config,
		deviceID:  uuid.NewString(),
		dirty:     make(map[string]bool),
		status:    models.SyncStatusSynced,
		remoteIDs: make(map[string]string),
		now:       time.Now,
	}
	gateway.OnDirty(engine.markDirty)
	return engine
}

// Start schedules the initial pull after the settle delay. The pull runs in
// the background; the session never waits for it.
func (e *Engine) Start(ctx context.Context) {
	go func() {
		select {
		case <-time.After(e.config.SettleDelay):
		case <-ctx.Done():
			return
		}
		if err := e.Pull(ctx); err != nil {
			log.Printf("Initial sync pull failed: %v", err)
		}
	}()
}

// Status returns the engine's health indicator and last successful sync time.
func (e *Engine) Status() (models.SyncStatus, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.lastSync
}

// markDirty notes a user-driven slice write and (re)starts the debounce
// timer, so a burst of edits results in one push carrying the final state.
func (e *Engine) markDirty(slice string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty[slice] = true
	if e.timer != nil {
		e.timer.Reset(e.config.Debounce)
		return
	}
	e.timer = time.AfterFunc(e.config.Debounce, func() {
		if err := e.Flush(context.Background()); err != nil {
			log.Printf("Sync push failed, will retry: %v", err)
		}
	})
}

// Flush pushes every dirty slice now. Failed slices are re-marked dirty and
// retried on the next dirty mark, scheduled pull, or manual SyncNow.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	pending := make([]string, 0, len(e.dirty))
	for slice := range e.dirty {
		pending = append(pending, slice)
	}
	e.dirty = make(map[string]bool)
	if len(pending) == 0 {
		// Nothing to push; the remote was not contacted, so the status
		// indicator keeps whatever the last real round trip established
		e.mu.Unlock()
		return nil
	}
	e.status = models.SyncStatusSyncing
	e.mu.Unlock()

	var firstErr error
	for _, slice := range pending {
		if err := e.pushSlice(ctx, slice); err != nil {
			e.mu.Lock()
			e.dirty[slice] = true
			e.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if firstErr != nil {
		e.status = models.SyncStatusOffline
		return firstErr
	}
	e.status = models.SyncStatusSynced
	e.lastSync = e.now()
	return nil
}

// pushSlice sends one slice's current local state, creating the remote record
// on first push and updating it afterwards. Always reads the store at push
// time, so the push carries the latest state rather than the one that marked
// the slice dirty.
func (e *Engine) pushSlice(ctx context.Context, slice string) error {
	value, _, ok, err := e.gateway.Get(slice)
	if err != nil || !ok {
		// Nothing stored under this slice; nothing to push
		return err
	}
	record := models.SyncRecord{
		Course:    e.gateway.Course(),
		Slice:     slice,
		Payload:   value,
		UpdatedAt: e.now().UTC().Format(time.RFC3339),
		DeviceID:  e.deviceID,
	}

	e.mu.Lock()
	remoteID := e.remoteIDs[slice]
	e.mu.Unlock()

	if remoteID != "" {
		return e.client.Update(ctx, remoteID, record)
	}
	created, err := e.client.Create(ctx, record)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.remoteIDs[slice] = created.ID
	e.mu.Unlock()
	return nil
}

// Pull fetches all remote slices for the course and merges each into local
// state with its per-slice strategy. Merge results are written through the
// gateway's merge path, so a pull can never loop back into a push.
func (e *Engine) Pull(ctx context.Context) error {
	e.mu.Lock()
	e.status = models.SyncStatusSyncing
	e.mu.Unlock()

	records, err := e.client.List(ctx, e.gateway.Course())
	if err != nil {
		e.mu.Lock()
		e.status = models.SyncStatusOffline
		e.mu.Unlock()
		return err
	}

	for _, record := range records {
		if err := e.mergeRecord(record); err != nil {
			log.Printf("Failed to merge slice %s: %v", record.Slice, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = models.SyncStatusSynced
	e.lastSync = e.now()
	return nil
}

// mergeRecord merges one remote record into its local slice.
func (e *Engine) mergeRecord(record models.SyncRecord) error {
	e.mu.Lock()
	e.remoteIDs[record.Slice] = record.ID
	e.mu.Unlock()

	localValue, localTime, localOK, err := e.gateway.Get(record.Slice)
	if err != nil {
		return err
	}
	local := Side{Present: localOK, Value: localValue, UpdatedAt: localTime}

	remoteTime, _ := time.Parse(time.RFC3339, record.UpdatedAt)
	remoteSide := Side{Present: len(record.Payload) > 0, Value: record.Payload, UpdatedAt: remoteTime}

	merged, present := StrategyFor(record.Slice)(local, remoteSide)
	if !present {
		return nil
	}

	stamp := localTime
	if remoteTime.After(stamp) {
		stamp = remoteTime
	}
	return e.gateway.SetFromMerge(record.Slice, merged, stamp)
}

// SyncNow is the manual retry action behind the sync indicator: one pull
// followed by a push of anything still dirty.
func (e *Engine) SyncNow(ctx context.Context) error {
	if err := e.Pull(ctx); err != nil {
		return err
	}
	return e.Flush(ctx)
}

// Stop cancels the debounce timer and makes one final best-effort push of all
// outstanding dirty slices, bounded by the shutdown timeout.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.config.ShutdownTimeout)
	defer cancel()
	if err := e.Flush(ctx); err != nil {
		log.Printf("Final sync push failed: %v", err)
	}
}
