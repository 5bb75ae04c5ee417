// Package daemon provides the long-running forecast API server.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

// Config holds the daemon listen address, event buffer and import sync settings.
type Config struct {
	Addr           string
	EventsBuffer   int
	ImportDir      string
	SyncInterval   time.Duration // 0 disables directory sync
	MaxUploadBytes int64
}

// Snapshot is the compact forecast state carried by events.
type Snapshot struct {
	At         time.Time `json:"at"`
	BasePeriod string    `json:"base_period"`
	Records    int       `json:"records"`
	Revenue30d float64   `json:"revenue_30d"`
	Cost30d    float64   `json:"cost_30d"`
	Revenue60d float64   `json:"revenue_60d"`
	Cost60d    float64   `json:"cost_60d"`
}

// Delta captures the change between consecutive forecast snapshots.
type Delta struct {
	Records    int     `json:"records"`
	Revenue30d float64 `json:"revenue_30d"`
	Cost30d    float64 `json:"cost_30d"`
	Revenue60d float64 `json:"revenue_60d"`
	Cost60d    float64 `json:"cost_60d"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.Revenue30d == 0 &&
		d.Cost30d == 0 &&
		d.Revenue60d == 0 &&
		d.Cost60d == 0
}

// Event is emitted on training, forecasting and sync activity.
type Event struct {
	ID        int64                             `json:"id"`
	Type      string                            `json:"type"`
	Timestamp time.Time                         `json:"timestamp"`
	Snapshot  *Snapshot                         `json:"snapshot,omitempty"`
	Delta     *Delta                            `json:"delta,omitempty"`
	Accuracy  map[model.FlowType]model.Accuracy `json:"accuracy,omitempty"`
	Message   string                            `json:"message,omitempty"`
}

// Event types.
const (
	EventTrained  = "trained"
	EventForecast = "forecast"
	EventSynced   = "synced"
)

// Status is the body of GET /v1/status.
type Status struct {
	StartedAt       time.Time      `json:"started_at"`
	LastSyncAt      time.Time      `json:"last_sync_at,omitempty"`
	SyncIntervalSec int            `json:"sync_interval_sec"`
	SyncCount       int64          `json:"sync_count"`
	ImportDir       string         `json:"import_dir,omitempty"`
	Engine          forecast.State `json:"engine"`
	Latest          *Snapshot      `json:"latest,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
}

// Server hosts the HTTP API over a service.
type Server struct {
	cfg   Config
	svc   *service.Service
	store *store.Store
	log   *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastSyncAt  time.Time
	syncCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon server with the provided config.
func New(cfg Config, svc *service.Service, st *store.Store, logger *zap.Logger) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.SyncInterval > 0 && cfg.SyncInterval < 2*time.Second {
		cfg.SyncInterval = 10 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:       cfg,
		svc:       svc,
		store:     st,
		log:       logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/historical-data", s.handleHistoricalData)
		r.Post("/monthly-update", s.handleMonthlyUpdate)
		r.Get("/predictions", s.handlePredictions)
		r.Get("/health", s.handleHealth)
		r.Get("/model-stats", s.handleModelStats)
		r.Get("/history", s.handleHistory)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})

	return r
}

// Run serves HTTP and, when configured, syncs the import directory until
// ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr))

	var tick <-chan time.Time
	if s.cfg.SyncInterval > 0 && s.cfg.ImportDir != "" {
		s.syncOnce()
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			s.syncOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// syncOnce imports changed files from the import directory and, when new
// records arrived, retrains and forecasts.
func (s *Server) syncOnce() {
	res, err := pipeline.LoadWithCache(s.cfg.ImportDir, s.store, nil)
	now := time.Now()

	s.mu.Lock()
	s.lastSyncAt = now
	s.syncCount++
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("sync failed", zap.String("dir", s.cfg.ImportDir), zap.Error(err))
		return
	}
	for _, fe := range res.FileErrors {
		s.log.Warn("import file rejected", zap.String("path", fe.Path), zap.Error(fe.Err))
	}
	if res.Saved == 0 {
		return
	}

	s.log.Info("sync imported records",
		zap.Int("files", res.Reparsed),
		zap.Int("saved", res.Saved))
	s.emit(Event{Type: EventSynced, Message: fmt.Sprintf("%d new records from %d files", res.Saved, res.Reparsed)})

	tr, err := s.svc.Train()
	if err != nil {
		s.recordError("sync training", err)
		return
	}
	s.emit(Event{Type: EventTrained, Accuracy: tr.Accuracy})

	f, err := s.svc.LatestForecast()
	if err != nil {
		s.recordError("sync forecast", err)
		return
	}
	s.publishForecast(f)
}

func (s *Server) recordError(op string, err error) {
	s.mu.Lock()
	s.lastError = fmt.Sprintf("%s: %v", op, err)
	s.mu.Unlock()
	s.log.Error(op+" failed", zap.Error(err))
}

func snapshotFromForecast(f model.Forecast) Snapshot {
	return Snapshot{
		At:         f.GeneratedAt,
		BasePeriod: f.BasePeriod,
		Records:    f.Records,
		Revenue30d: f.Predictions[forecast.Key(model.Revenue, 30)].Predicted,
		Cost30d:    f.Predictions[forecast.Key(model.Cost, 30)].Predicted,
		Revenue60d: f.Predictions[forecast.Key(model.Revenue, 60)].Predicted,
		Cost60d:    f.Predictions[forecast.Key(model.Cost, 60)].Predicted,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Records:    curr.Records - prev.Records,
		Revenue30d: curr.Revenue30d - prev.Revenue30d,
		Cost30d:    curr.Cost30d - prev.Cost30d,
		Revenue60d: curr.Revenue60d - prev.Revenue60d,
		Cost60d:    curr.Cost60d - prev.Cost60d,
	}
}

// publishForecast records f as the latest snapshot and emits an event when
// it is the first forecast or differs from the previous one.
func (s *Server) publishForecast(f model.Forecast) {
	snap := snapshotFromForecast(f)

	s.mu.Lock()
	prev, prevExists := s.snapshot, s.hasSnapshot
	s.snapshot = snap
	s.hasSnapshot = true
	s.mu.Unlock()

	ev := Event{Type: EventForecast, Snapshot: &snap}
	if prevExists {
		delta := diffSnapshots(prev, snap)
		if delta.isZero() && prev.BasePeriod == snap.BasePeriod {
			return
		}
		ev.Delta = &delta
	}
	s.emit(ev)
}

// emit assigns an ID and timestamp, then publishes.
func (s *Server) emit(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.mu.Unlock()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.publishEvent(ev)
}

func (s *Server) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Server) snapshotStatus() Status {
	engine := s.svc.State()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastSyncAt:      s.lastSyncAt,
		SyncIntervalSec: int(s.cfg.SyncInterval.Seconds()),
		SyncCount:       s.syncCount,
		ImportDir:       s.cfg.ImportDir,
		Engine:          engine,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.hasSnapshot {
		snap := s.snapshot
		st.Latest = &snap
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the latest forecast immediately.
	current := Event{Type: "snapshot", Timestamp: time.Now()}
	if latest := s.snapshotStatus().Latest; latest != nil {
		current.Snapshot = latest
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Server) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
