package updater

import (
	"context"
	"errors"
	"sync"
	"time"

	"casadns/internal/casadns"
	"casadns/internal/storage"

	"go.uber.org/zap"
)

// ErrNoAddress is returned by Update when neither a public IPv4 nor a
// public IPv6 address could be discovered. The cycle is skipped without
// touching state; the next scheduled cycle retries.
var ErrNoAddress = errors.New("no public address discovered")

// Discoverer returns the caller's current public addresses, each empty
// when unknown. Implementations never fail as a whole.
type Discoverer interface {
	Discover(ctx context.Context) (ipv4, ipv6 string)
}

// Pusher applies the given addresses to the remote DNS records
type Pusher interface {
	Push(ctx context.Context, ipv4, ipv6 string) casadns.Result
}

// Recorder persists completed push attempts
type Recorder interface {
	Record(ctx context.Context, rec storage.UpdateRecord) error
}

// State is the engine's observable state. Zero values mean "not yet
// known": the engine always starts empty and is never persisted.
type State struct {
	LastIPv4    string     `json:"last_ipv4,omitempty"`
	LastIPv6    string     `json:"last_ipv6,omitempty"`
	LastIP      string     `json:"last_ip,omitempty"` // IPv4 preferred over IPv6
	LastStatus  int        `json:"last_status,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Updater keeps the configured CasaDNS domains pointed at the current
// public addresses. Update cycles are serialized: the periodic ticker
// and manual triggers never interleave.
type Updater struct {
	interval   time.Duration
	discoverer Discoverer
	pusher     Pusher
	recorder   Recorder // may be nil
	logger     *zap.Logger

	updateMu sync.Mutex   // serializes update cycles
	stateMu  sync.RWMutex // guards state, listeners and cancel

	state     State
	listeners []func()
	cancel    context.CancelFunc
}

// New creates a new Updater. recorder may be nil to disable history.
func New(interval time.Duration, discoverer Discoverer, pusher Pusher, recorder Recorder, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Updater{
		interval:   interval,
		discoverer: discoverer,
		pusher:     pusher,
		recorder:   recorder,
		logger:     logger,
	}
}

// RegisterListener appends fn to the notification list. Listeners are
// invoked synchronously in registration order after each local state
// change, before the remote push completes. The list is append-only.
// A listener must not call Update synchronously.
func (u *Updater) RegisterListener(fn func()) {
	u.stateMu.Lock()
	u.listeners = append(u.listeners, fn)
	u.stateMu.Unlock()
}

// State returns a copy of the current engine state
func (u *Updater) State() State {
	u.stateMu.RLock()
	defer u.stateMu.RUnlock()
	return u.state
}

// Start performs one immediate forced update so state is populated
// before the first tick, then schedules periodic updates until Stop is
// called or ctx is canceled.
func (u *Updater) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	u.stateMu.Lock()
	u.cancel = cancel
	u.stateMu.Unlock()

	u.logger.Info("Starting updater",
		zap.Duration("interval", u.interval))

	if err := u.Update(ctx, true); err != nil {
		u.logger.Warn("Initial update skipped", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := u.Update(ctx, false); err != nil {
					u.logger.Warn("Scheduled update skipped", zap.Error(err))
				}
			}
		}
	}()

	return nil
}

// Stop cancels periodic updates. An in-flight cycle completes
// naturally; calling Stop without Start is a no-op.
func (u *Updater) Stop() {
	u.stateMu.Lock()
	cancel := u.cancel
	u.cancel = nil
	u.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Update runs one update cycle. Discovery that yields no address at
// all returns ErrNoAddress without mutating state or calling the
// remote endpoint. When the addresses are unchanged and force is
// false, the cycle is a no-op. Otherwise local state is updated and
// listeners are notified before the push, so observers see the new
// address without waiting on remote latency.
func (u *Updater) Update(ctx context.Context, force bool) error {
	u.updateMu.Lock()
	defer u.updateMu.Unlock()

	ipv4, ipv6 := u.discoverer.Discover(ctx)

	if ipv4 == "" && ipv6 == "" {
		u.logger.Warn("Could not determine public IPv4 or IPv6, skipping update")
		return ErrNoAddress
	}

	primary := ipv4
	if primary == "" {
		primary = ipv6
	}

	u.stateMu.RLock()
	unchanged := u.state.LastIPv4 == ipv4 && u.state.LastIPv6 == ipv6
	u.stateMu.RUnlock()

	if !force && unchanged {
		u.logger.Debug("Public IPs unchanged, skipping update",
			zap.String("ipv4", ipv4),
			zap.String("ipv6", ipv6))
		return nil
	}

	u.stateMu.Lock()
	oldIPv4, oldIPv6 := u.state.LastIPv4, u.state.LastIPv6
	u.state.LastIPv4 = ipv4
	u.state.LastIPv6 = ipv6
	u.state.LastIP = primary
	listeners := u.listeners
	u.stateMu.Unlock()

	u.logger.Info("Public IPs changed",
		zap.String("old_ipv4", oldIPv4),
		zap.String("old_ipv6", oldIPv6),
		zap.String("ipv4", ipv4),
		zap.String("ipv6", ipv6))

	u.notify(listeners)
	u.push(ctx, ipv4, ipv6)

	return nil
}

// notify invokes the listeners in registration order. A panicking
// listener is recovered and logged so the remaining listeners and the
// push still run.
func (u *Updater) notify(listeners []func()) {
	for i, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					u.logger.Error("Listener callback panicked",
						zap.Int("listener", i),
						zap.Any("panic", r))
				}
			}()
			fn()
		}()
	}
}

// push performs the remote call and records its outcome. A completed
// request sets last_status and last_updated and clears last_error even
// when the status is not 200; a transport-level failure sets only
// last_error, leaving status and timestamp from the previous attempt.
func (u *Updater) push(ctx context.Context, ipv4, ipv6 string) {
	res := u.pusher.Push(ctx, ipv4, ipv6)

	rec := storage.UpdateRecord{
		Timestamp: time.Now().UTC(),
		IPv4:      ipv4,
		IPv6:      ipv6,
		Status:    res.Status,
	}

	u.stateMu.Lock()
	if res.Err != nil {
		u.state.LastError = res.Err.Error()
		rec.Error = res.Err.Error()
	} else {
		now := time.Now().UTC()
		u.state.LastStatus = res.Status
		u.state.LastUpdated = &now
		u.state.LastError = ""
	}
	u.stateMu.Unlock()

	if u.recorder != nil {
		if err := u.recorder.Record(ctx, rec); err != nil {
			u.logger.Error("Failed to record update attempt", zap.Error(err))
		}
	}
}
