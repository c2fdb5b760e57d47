package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds a one-slot semaphore and the reference count.
// The semaphore is a channel so waiting for it honors a context.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// wifiEntry is the shared credential view of one device.
type wifiEntry struct {
	link domain.WifiLink
	rev  uint64
}

// Info describes an attached console.
type Info struct {
	ConsoleID  string      `json:"console_id"`
	DeviceID   string      `json:"device_id"`
	Remote     string      `json:"remote,omitempty"`
	Mode       domain.Mode `json:"-"`
	ModeName   string      `json:"mode"`
	AttachedAt time.Time   `json:"attached_at"`
}

// Manager orchestrates device access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Map of active locks
	infos map[string]*Info      // Attached consoles by console ID
	wifi  map[string]*wifiEntry // Credential view by device ID

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the device state store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		infos:   make(map[string]*Info),
		wifi:    make(map[string]*wifiEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST take entry.sem, and then call release(key) after giving it back.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the lock for deviceID. Waiting for the
// lock ends with ctx, so a busy device fails the caller instead of stalling it.
func (m *Manager) WithLock(ctx context.Context, deviceID string, fn func(context.Context) error) error {
	entry := m.acquire(deviceID)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(deviceID)
		return fmt.Errorf("device %s busy: %w", deviceID, ctx.Err())
	}
	defer func() {
		<-entry.sem
		m.release(deviceID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, deviceID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The caller's ctx may already be done; release on a fresh one.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"device_id", deviceID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves a device state under the device lock.
func (m *Manager) Load(ctx context.Context, deviceID string) (*domain.DeviceState, error) {
	var state *domain.DeviceState
	err := m.WithLock(ctx, deviceID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, deviceID)
		return err
	})
	return state, err
}

// Delete removes a device state, resetting it to factory defaults on next use.
func (m *Manager) Delete(ctx context.Context, deviceID string) error {
	return m.WithLock(ctx, deviceID, func(ctx context.Context) error {
		return m.store.Delete(ctx, deviceID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Attach registers a console and returns the function that detaches it.
func (m *Manager) Attach(consoleID, deviceID, remote string) func() {
	m.mu.Lock()
	m.infos[consoleID] = &Info{
		ConsoleID:  consoleID,
		DeviceID:   deviceID,
		Remote:     remote,
		ModeName:   domain.ModeProvisioning.String(),
		AttachedAt: time.Now(),
	}
	m.mu.Unlock()
	m.logger.Debug("console attached", "console_id", consoleID, "device_id", deviceID, "remote", remote)

	return func() {
		m.mu.Lock()
		delete(m.infos, consoleID)
		m.mu.Unlock()
		m.logger.Debug("console detached", "console_id", consoleID)
	}
}

// Hooks keeps the attached console's mode current.
func (m *Manager) Hooks() domain.ConsoleHooks {
	return domain.ConsoleHooks{
		OnModeChange: func(_ context.Context, ev *domain.ModeEvent) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if info, ok := m.infos[ev.ConsoleID]; ok {
				info.Mode = ev.To
				info.ModeName = ev.To.String()
			}
		},
	}
}

// Sessions returns a snapshot of attached consoles ordered by attach time.
func (m *Manager) Sessions() []Info {
	m.mu.Lock()
	out := make([]Info, 0, len(m.infos))
	for _, info := range m.infos {
		out = append(out, *info)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AttachedAt.Equal(out[j].AttachedAt) {
			return out[i].ConsoleID < out[j].ConsoleID
		}
		return out[i].AttachedAt.Before(out[j].AttachedAt)
	})
	return out
}

// NoteWifi records the credential view of deviceID and returns its revision.
func (m *Manager) NoteWifi(deviceID string, link domain.WifiLink) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.wifi[deviceID]
	if !ok {
		e = &wifiEntry{}
		m.wifi[deviceID] = e
	}
	e.rev++
	e.link = link
	return e.rev
}

// noteJoined records a join outcome unless the view moved past rev.
func (m *Manager) noteJoined(deviceID string, rev uint64, connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.wifi[deviceID]; ok && e.rev == rev {
		e.link.Connected = connected
	}
}

// KnownWifi returns the credential view of deviceID, if any was recorded.
func (m *Manager) KnownWifi(deviceID string) (domain.WifiLink, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.wifi[deviceID]
	if !ok {
		return domain.WifiLink{}, false
	}
	return e.link, true
}
