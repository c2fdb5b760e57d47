package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/provision/internal/config"
	"github.com/aretw0/provision/pkg/adapters/ble"
	"github.com/aretw0/provision/pkg/adapters/file"
	"github.com/aretw0/provision/pkg/adapters/i2c"
	"github.com/aretw0/provision/pkg/adapters/memory"
	"github.com/aretw0/provision/pkg/adapters/redis"
	"github.com/aretw0/provision/pkg/adapters/sim"
	"github.com/aretw0/provision/pkg/console"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/observability"
	"github.com/aretw0/provision/pkg/persistence/middleware"
	"github.com/aretw0/provision/pkg/ports"
	"github.com/aretw0/provision/pkg/session"
)

// environment holds the long-lived collaborators shared by every console of a process.
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   ports.StateStore
	pinger  interface{ Ping(context.Context) error }
	device  *sim.Device
	manager *session.Manager
	closers []func() error
}

// newEnvironment wires the store, the simulated device and the session manager from cfg.
func newEnvironment(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*environment, error) {
	env := &environment{cfg: cfg, logger: logger}

	var sessOpts []session.Option
	switch cfg.Store.Backend {
	case config.BackendRedis:
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB,
			redis.WithPrefix(cfg.Store.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		env.closers = append(env.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			_ = env.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Store.RedisAddr, err)
		}
		env.store = store
		env.pinger = store
		sessOpts = append(sessOpts, session.WithLocker(redis.NewLocker(store.Client(), store.Prefix())))
	case config.BackendFile:
		env.store = file.New(cfg.Store.Path)
	default:
		env.store = memory.NewStore()
	}

	enc, err := cfg.Encryption()
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	if enc != nil {
		env.store = middleware.NewEncryptionMiddleware(*enc)(env.store)
	}
	env.manager = session.NewManager(env.store, append(sessOpts, session.WithLogger(logger))...)

	profile := sim.DefaultProfile()
	if cfg.Device.Profile != "" {
		p, err := sim.LoadProfile(cfg.Device.Profile)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		profile = p
	}
	if cfg.Device.ID != "" {
		profile.ID = cfg.Device.ID
	}
	if profile.ID == "" {
		profile.ID = sim.DefaultProfile().ID
	}

	simOpts := []sim.Option{sim.WithLogger(logger)}
	if cfg.Device.I2CBus >= 0 {
		bus, err := i2c.OpenBus(cfg.Device.I2CBus)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		env.closers = append(env.closers, bus.Close)
		simOpts = append(simOpts, sim.WithBus(i2c.NewScanner(bus, i2c.WithLogger(logger))))
	}
	if cfg.Device.BleHardware {
		simOpts = append(simOpts, sim.WithBleScanner(ble.NewScanner(nil, ble.WithLogger(logger))))
	}
	env.device = sim.New(env.store, profile, simOpts...)

	// Consoles on this device share the manager's credential view; seed it
	// with what the device already knows about its uplink.
	if st, err := env.device.WifiStatus(ctx); err != nil {
		logger.Warn("could not read wifi status", "device_id", env.device.ID(), "err", err)
	} else {
		env.manager.NoteWifi(env.device.ID(), domain.WifiLink{SSID: st.SSID, Connected: st.Connected})
	}

	logger.Info("device ready",
		"device_id", profile.ID,
		"store", cfg.Store.Backend,
		"encrypted", enc != nil,
		"i2c_bus", cfg.Device.I2CBus,
		"ble_hardware", cfg.Device.BleHardware,
	)
	return env, nil
}

// consoleOptions maps the configuration onto console options for one console.
func (e *environment) consoleOptions(id string, hooks domain.ConsoleHooks) []console.Option {
	cc := e.cfg.Console
	if e.cfg.Debug {
		hooks = hooks.Merge(observability.LogHooks(e.logger))
	}
	opts := []console.Option{
		console.WithID(id),
		console.WithLogger(e.logger),
		console.WithHooks(hooks),
		console.WithCapacity(cc.Capacity),
		console.WithPrompt(cc.Prompt),
		console.WithSeparator(e.cfg.SeparatorByte()),
		console.WithScanTimeout(cc.ScanTimeout),
		console.WithBleScanWindow(cc.BleScanWindow),
		console.WithConnectTimeout(cc.ConnectTimeout),
		console.WithUnknownCommandReply(cc.UnknownReply),
	}

	if link, ok := e.manager.KnownWifi(e.device.ID()); ok {
		opts = append(opts, console.WithWifiState(link.SSID, link.Connected))
	}
	if e.cfg.Console.PassthroughEcho {
		opts = append(opts, console.WithPassthroughEcho(true))
	}
	return opts
}

// Close releases the store and bus handles.
func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
