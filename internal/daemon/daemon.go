// Package daemon keeps a loaded site current: it reloads on script changes,
// snapshots every distinct state, verifies hrefs and syncs a published branch
// on a schedule, and announces changes to websocket subscribers.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/gitsync"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/metrics"
	"git.home.luguber.info/inful/navindex/internal/server/events"
	"git.home.luguber.info/inful/navindex/internal/site"
	"git.home.luguber.info/inful/navindex/internal/store"
	"git.home.luguber.info/inful/navindex/internal/verify"
)

// Deps are the collaborators a daemon uses. All are optional; a missing one
// disables its feature.
type Deps struct {
	Store    store.Store
	Hub      *events.Hub
	Recorder metrics.Recorder
	Syncer   *gitsync.Syncer
	Verifier *verify.Verifier
	Logger   *slog.Logger
}

// Status is a point-in-time view of the daemon.
type Status struct {
	Site        string    `json:"site"`
	StartedAt   time.Time `json:"started_at"`
	LoadedAt    time.Time `json:"loaded_at,omitzero"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Reloads     int       `json:"reloads"`
	LastError   string    `json:"last_error,omitempty"`
}

// Daemon owns the current site. Readers get an immutable *site.Site; a
// reload builds a new one and swaps it in under the write lock.
type Daemon struct {
	cfg  *config.Config
	dir  string
	opts site.Options
	deps Deps

	mu      sync.RWMutex
	current *site.Site
	status  Status

	reloadCh chan struct{}
	logger   *slog.Logger
}

// New creates a daemon serving cfg.Site.Dir, or the synced checkout when a
// syncer is given.
func New(cfg *config.Config, deps Deps) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.ConfigError("configuration is required").Build()
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	dir := cfg.Site.Dir
	if deps.Syncer != nil {
		dir = deps.Syncer.SiteDir()
	}
	if dir == "" {
		return nil, errors.ConfigError("site directory is required").Build()
	}
	d := &Daemon{
		cfg:      cfg,
		dir:      dir,
		opts:     site.OptionsFromConfig(cfg.Site),
		deps:     deps,
		reloadCh: make(chan struct{}, 1),
		logger:   deps.Logger.With(logfields.Site(dir)),
	}
	d.status = Status{Site: dir, StartedAt: time.Now()}
	return d, nil
}

// Current returns the loaded site, or nil before the first successful load.
func (d *Daemon) Current() *site.Site {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Status returns a copy of the daemon status.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Dir is the site directory being served.
func (d *Daemon) Dir() string { return d.dir }

// TriggerReload queues a reload for the worker. It never blocks; a trigger
// arriving while one is pending is merged with it.
func (d *Daemon) TriggerReload() {
	select {
	case d.reloadCh <- struct{}{}:
	default:
	}
}

// Reload loads the site directory and, when it differs from the current
// site, swaps it in, stores a snapshot and announces it. A failed load keeps
// the previous site.
func (d *Daemon) Reload(ctx context.Context) error {
	start := time.Now()
	s, err := site.Load(ctx, d.dir, d.opts)
	elapsed := time.Since(start)
	if err != nil {
		d.deps.Recorder.ObserveLoadDuration(elapsed, metrics.ResultFor(err))
		d.deps.Recorder.IncReload(metrics.ResultFor(err))
		d.setError(err)
		d.logger.Error("Site reload failed", logfields.Error(err))
		d.publish(events.Event{Type: events.TypeReloadFail, Site: d.dir, Message: err.Error()})
		return err
	}
	fp, err := site.Fingerprint(s)
	if err != nil {
		d.setError(err)
		return err
	}
	d.deps.Recorder.ObserveLoadDuration(elapsed, metrics.ResultSuccess)

	d.mu.Lock()
	unchanged := d.current != nil && d.status.Fingerprint == fp
	if !unchanged {
		d.current = s
		d.status.Fingerprint = fp
		d.status.LoadedAt = s.LoadedAt
		d.status.Reloads++
	}
	d.status.LastError = ""
	d.mu.Unlock()

	if unchanged {
		d.deps.Recorder.IncReload(metrics.ResultSkipped)
		d.logger.Debug("Site unchanged", slog.String("fingerprint", fp))
		return nil
	}
	d.deps.Recorder.IncReload(metrics.ResultSuccess)

	stats := s.Stats()
	d.deps.Recorder.SetSiteSize(stats.Nodes, stats.Symbols, stats.Entries)
	if v, verr := s.Validate(); verr == nil {
		d.deps.Recorder.SetViolations(len(v.Violations) + len(v.Index.Problems))
	}

	snapID := d.snapshot(ctx, s)
	d.logger.Info("Site loaded",
		logfields.Count(stats.Nodes),
		slog.Int("symbols", stats.Symbols),
		slog.Int("entries", stats.Entries),
		slog.String("fingerprint", fp),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	d.publish(events.Event{
		Type:        events.TypeReloaded,
		Site:        d.dir,
		Fingerprint: fp,
		SnapshotID:  snapID,
		Stats:       &stats,
	})
	return nil
}

func (d *Daemon) snapshot(ctx context.Context, s *site.Site) string {
	if d.deps.Store == nil {
		return ""
	}
	snap, err := store.NewSnapshot(s)
	if err != nil {
		d.logger.Warn("Failed to build snapshot", logfields.Error(err))
		return ""
	}
	id, created, err := d.deps.Store.Save(ctx, snap)
	if err != nil {
		d.logger.Warn("Failed to store snapshot", logfields.Error(err))
		return ""
	}
	d.deps.Recorder.IncSnapshot(created)
	if created {
		d.logger.Info("Snapshot stored", logfields.SnapshotID(id))
	}
	return id
}

// Verify checks every href of the current site against the HTML pages.
func (d *Daemon) Verify(ctx context.Context) (*verify.Report, error) {
	if d.deps.Verifier == nil {
		return nil, errors.ConfigError("verification is not configured").Build()
	}
	s := d.Current()
	if s == nil {
		return nil, errors.NewError(errors.CategoryRuntime, "no site loaded yet").Retryable().Build()
	}
	report, err := d.deps.Verifier.Verify(ctx, s)
	if err != nil {
		return nil, err
	}
	d.deps.Recorder.SetBrokenHrefs(len(report.Broken))
	d.publish(events.Event{Type: events.TypeVerified, Site: d.dir, Broken: len(report.Broken)})
	if !report.OK() {
		d.logger.Warn("Broken hrefs found", logfields.Count(len(report.Broken)))
	}
	return report, nil
}

// Sync pulls the published branch and queues a reload when it moved.
func (d *Daemon) Sync(ctx context.Context) error {
	if d.deps.Syncer == nil {
		return errors.ConfigError("git sync is not configured").Build()
	}
	res, err := d.deps.Syncer.Sync(ctx)
	d.deps.Recorder.IncGitSync(metrics.ResultFor(err))
	if err != nil {
		return err
	}
	if res.Changed {
		d.publish(events.Event{Type: events.TypeSynced, Site: d.dir, Message: res.Commit})
		d.TriggerReload()
	}
	return nil
}

// Run performs the initial sync and load, then serves reload triggers from
// the watcher until ctx is done. The initial load may fail; the daemon keeps
// running and retries on the next change.
func (d *Daemon) Run(ctx context.Context) error {
	if d.deps.Syncer != nil {
		if err := d.Sync(ctx); err != nil {
			d.logger.Error("Initial git sync failed", logfields.Error(err))
		}
	}

	// Watch before the first load so no change is missed in between. A
	// reload queued by the initial sync then finds an unchanged site.
	watcher, err := NewSiteWatcher(d.dir, d.cfg.Daemon.DebounceDuration(), d.reloadCh, d.logger)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create site watcher").Build()
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Start(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch site directory").Build()
	}
	_ = d.Reload(ctx)

	sched, err := d.schedule(ctx)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			d.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}()

	d.worker(ctx)
	return nil
}

// worker serializes reloads.
func (d *Daemon) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.reloadCh:
			_ = d.Reload(ctx)
		}
	}
}

func (d *Daemon) schedule(ctx context.Context) (*Scheduler, error) {
	sched, err := NewScheduler(d.logger)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create scheduler").Build()
	}
	if every := d.cfg.Daemon.VerifyIntervalDuration(); every > 0 && d.deps.Verifier != nil {
		if _, err := sched.Every(ctx, "verify", every, func(ctx context.Context) error {
			_, err := d.Verify(ctx)
			return err
		}); err != nil {
			return nil, err
		}
	}
	if every := d.cfg.Daemon.SyncIntervalDuration(); every > 0 && d.deps.Syncer != nil {
		if _, err := sched.Every(ctx, "git-sync", every, d.Sync); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func (d *Daemon) setError(err error) {
	d.mu.Lock()
	d.status.LastError = err.Error()
	d.mu.Unlock()
}

func (d *Daemon) publish(ev events.Event) {
	if d.deps.Hub != nil {
		d.deps.Hub.Publish(ev)
	}
}
