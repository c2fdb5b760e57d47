// Package http exposes the operational endpoints of a console server:
// health, Prometheus metrics, attached sessions and stored device state.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the ops API.
type Server struct {
	manager  *session.Manager
	gatherer prometheus.Gatherer
	pinger   Pinger
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer sets the metrics source. Defaults to the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithPinger makes /healthz check a backing service.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the ops router.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager:  manager,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/sessions", s.ListSessions)
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.ListDevices)
		r.Get("/{deviceID}", s.GetDevice)
		r.Delete("/{deviceID}", s.ResetDevice)
	})
	return r
}

// DeviceView is the public form of a device state. The password never leaves the process.
type DeviceView struct {
	ID          string           `json:"id"`
	SSID        string           `json:"ssid,omitempty"`
	HasPassword bool             `json:"has_password"`
	Ble         domain.BleConfig `json:"ble"`
}

func newDeviceView(st *domain.DeviceState) DeviceView {
	return DeviceView{
		ID:          st.ID,
		SSID:        st.Credentials.SSID,
		HasPassword: st.Credentials.Password != "",
		Ble:         st.Ble,
	}
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "err", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Sessions())
}

// ListDevices handles GET /devices.
func (s *Server) ListDevices(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.fail(w, "list devices", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetDevice handles GET /devices/{deviceID}.
func (s *Server) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deviceID")
	st, err := s.manager.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "load device", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newDeviceView(st))
}

// ResetDevice handles DELETE /devices/{deviceID}, restoring factory defaults on next use.
func (s *Server) ResetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deviceID")
	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.fail(w, "reset device", err)
		return
	}
	s.logger.Info("device reset", "device_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "device not found", http.StatusNotFound)
		return
	}
	s.logger.Error(op+" failed", "err", err)
	http.Error(w, op+" failed", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
