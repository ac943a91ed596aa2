// Package daemon keeps a dashboard cache warm on a schedule and re-exposes it
// over a small HTTP API with a server-sent event stream.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/notify"
	"github.com/theirongolddev/finsight/internal/txcache"
)

// Cache is the part of txcache.Cache the daemon drives.
type Cache interface {
	Dashboard(ctx context.Context, force bool) model.DashboardSnapshot
	DeleteTransaction(ctx context.Context, id string) error
	Snapshot() model.DashboardSnapshot
	Status() txcache.Status
	Subscribe() (<-chan txcache.Change, func())
	Wait()
}

// Publisher forwards events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, ev notify.Event) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string
	EventsBuffer int
	Logger       *logrus.Logger
	Publisher    Publisher
}

// Snapshot is a compact dashboard state for status/event payloads.
type Snapshot struct {
	At        time.Time   `json:"at"`
	Records   int         `json:"records"`
	Stats     model.Stats `json:"stats"`
	FetchedAt time.Time   `json:"fetched_at"`
	State     string      `json:"state"`
	Message   string      `json:"message,omitempty"`
}

// Delta captures stats movement between dashboard refreshes.
type Delta struct {
	Records       int     `json:"records"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Net           float64 `json:"net"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.TotalIncome == 0 &&
		d.TotalExpenses == 0 &&
		d.Net == 0
}

// Event is emitted whenever the cache reports a change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Key       string    `json:"key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	Schedule        string    `json:"schedule"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	cache Cache
	log   *logrus.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service driving cache.
func New(cache Cache, cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 30s"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		cache:     cache,
		log:       cfg.Logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDelete)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves HTTP, polls on the cron schedule and forwards cache changes
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	changes, unsubscribe := s.cache.Subscribe()
	defer unsubscribe()

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		s.forward(ctx, changes)
	}()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "schedule": s.cfg.Schedule}).Info("daemon started")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)
	sched.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("daemon http server: %w", err)
	}

	<-sched.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	s.cache.Wait()
	unsubscribe()
	<-forwardDone

	return runErr
}

func (s *Service) pollOnce(ctx context.Context) {
	s.cache.Dashboard(ctx, false)

	st := s.cache.Status()
	s.mu.Lock()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()

	if st.State == txcache.StateError {
		s.log.WithField("err", st.Message).Warn("poll failed, serving last snapshot")
	}
}

// forward turns cache changes into daemon events until changes closes or
// ctx is canceled.
func (s *Service) forward(ctx context.Context, changes <-chan txcache.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if ev, ok := s.record(ch); ok {
				s.publishEvent(ctx, ev)
			}
		}
	}
}

// record folds ch into the current snapshot and reports the event to emit.
// Dashboard changes that move nothing are dropped.
func (s *Service) record(ch txcache.Change) (Event, bool) {
	now := time.Now()
	snap := snapshotFromCache(s.cache.Snapshot(), ch.Status, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot
	prevExists := s.hasSnapshot
	s.snapshot = snap
	s.hasSnapshot = true

	ev := Event{
		Type:      string(ch.Kind),
		Key:       ch.Key,
		Timestamp: now,
		Snapshot:  snap,
	}
	switch {
	case ch.Kind == txcache.ChangeDashboard && !prevExists:
		ev.Type = "snapshot"
	case ch.Kind == txcache.ChangeDashboard:
		ev.Delta = diffSnapshots(prev, snap)
		if ev.Delta.isZero() && prev.FetchedAt.Equal(snap.FetchedAt) {
			return Event{}, false
		}
	case ch.Kind == txcache.ChangeStatus && ch.Status.State == txcache.StateLoading:
		return Event{}, false
	}

	s.nextEventID++
	ev.ID = s.nextEventID
	return ev, true
}

func snapshotFromCache(d model.DashboardSnapshot, st txcache.Status, at time.Time) Snapshot {
	return Snapshot{
		At:        at,
		Records:   len(d.Transactions),
		Stats:     d.Stats,
		FetchedAt: d.FetchedAt,
		State:     st.State.String(),
		Message:   st.Message,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Records:       curr.Records - prev.Records,
		TotalIncome:   curr.Stats.TotalIncome - prev.Stats.TotalIncome,
		TotalExpenses: curr.Stats.TotalExpenses - prev.Stats.TotalExpenses,
		Net:           curr.Stats.Net - prev.Stats.Net,
	}
}

func (s *Service) publishEvent(ctx context.Context, ev Event) {
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

	if s.cfg.Publisher == nil {
		return
	}
	err := s.cfg.Publisher.Publish(ctx, notify.Event{
		Kind:      ev.Type,
		Key:       ev.Key,
		State:     ev.Snapshot.State,
		Message:   ev.Snapshot.Message,
		Records:   ev.Snapshot.Records,
		Stats:     ev.Snapshot.Stats,
		FetchedAt: ev.Snapshot.FetchedAt,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		s.log.WithError(err).WithField("event", ev.ID).Warn("publish to broker failed")
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		Schedule:        s.cfg.Schedule,
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.snapshot.Message,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Snapshot())
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Dashboard(r.Context(), true)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.cache.DeleteTransaction(r.Context(), id); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": err.Error()})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
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

	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
