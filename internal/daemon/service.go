// Package daemon provides the long-running background forecast monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/cards"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/pipeline"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "forecast_delta"
	EventRisk     = "risk_alert"
)

// Source yields the current dataset. *store.Store satisfies it.
type Source interface {
	Load() (model.Dataset, bool, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Days         int
	Precision    forecast.Precision
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       zerolog.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// ScenarioSnapshot is a compact forecast state for one scenario.
type ScenarioSnapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Today     decimal.Decimal `json:"today"`
	End       decimal.Decimal `json:"end"`
	Low       decimal.Decimal `json:"low"`
	LowDate   time.Time       `json:"low_date"`
	RiskDays  int             `json:"risk_days"`
	FirstRisk *time.Time      `json:"first_risk,omitempty"`
	CardTotal decimal.Decimal `json:"card_total"`
}

// Snapshot is the forecast state of every scenario at one poll.
type Snapshot struct {
	At        time.Time          `json:"at"`
	Days      int                `json:"days"`
	Scenarios []ScenarioSnapshot `json:"scenarios"`
}

// ScenarioDelta is the change of one scenario between polls.
type ScenarioDelta struct {
	ID        string          `json:"id"`
	Added     bool            `json:"added,omitempty"`
	Removed   bool            `json:"removed,omitempty"`
	End       decimal.Decimal `json:"end"`
	Low       decimal.Decimal `json:"low"`
	RiskDays  int             `json:"risk_days"`
	CardTotal decimal.Decimal `json:"card_total"`
}

func (d ScenarioDelta) isZero() bool {
	return !d.Added && !d.Removed &&
		d.End.IsZero() &&
		d.Low.IsZero() &&
		d.RiskDays == 0 &&
		d.CardTotal.IsZero()
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Scenarios []ScenarioDelta `json:"scenarios,omitempty"`
}

func (d Delta) isZero() bool {
	return len(d.Scenarios) == 0
}

// Event is emitted whenever the forecast snapshot updates.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Scenario  string    `json:"scenario,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Days            int       `json:"days"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	src Source
	log zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	dataset     model.Dataset
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from src.
func New(cfg Config, src Source) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Days < 1 {
		cfg.Days = 90
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		log:       cfg.Logger.With().Str("component", "daemon").Logger(),
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/forecast", s.handleForecast)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
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
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("daemon shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	start := s.cfg.Now()
	ds, _, err := s.src.Load()
	if err == nil {
		var snap Snapshot
		snap, err = buildSnapshot(ds, s.cfg.Days, s.cfg.Precision, start)
		if err == nil {
			s.apply(ds, snap)
			s.log.Debug().Int("scenarios", len(snap.Scenarios)).Dur("took", time.Since(start)).Msg("poll")
			return
		}
	}

	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = start
	s.pollCount++
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("poll failed")
}

func (s *Service) apply(ds model.Dataset, snap Snapshot) {
	var out []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.dataset = ds
	s.lastPollAt = snap.At
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		out = append(out, Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: snap.At, Snapshot: snap})
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		out = append(out, Event{ID: s.nextEventID, Type: EventDelta, Timestamp: snap.At, Snapshot: snap, Delta: delta})
	}
	for _, id := range newRisks(prev, snap, prevExists) {
		s.nextEventID++
		out = append(out, Event{ID: s.nextEventID, Type: EventRisk, Timestamp: snap.At, Snapshot: snap, Scenario: id})
	}
	s.mu.Unlock()

	for _, ev := range out {
		if ev.Type == EventRisk {
			s.log.Warn().Str("scenario", ev.Scenario).Msg("scenario forecast goes negative")
		}
		s.publishEvent(ev)
	}
}

func buildSnapshot(ds model.Dataset, days int, precision forecast.Precision, now time.Time) (Snapshot, error) {
	snap := Snapshot{At: now, Days: days}
	for _, sc := range ds.Scenarios {
		series, err := forecast.SimulateCashSeries(ds, sc.ID, days, now, forecast.WithPrecision(precision))
		if err != nil {
			return Snapshot{}, fmt.Errorf("forecasting %s: %w", sc.ID, err)
		}
		risk := forecast.SummarizeRisk(series)
		ss := ScenarioSnapshot{
			ID:       sc.ID,
			Name:     sc.Name,
			Today:    series[0].Balance,
			End:      series[len(series)-1].Balance,
			Low:      risk.Low.Balance,
			LowDate:  risk.Low.Date,
			RiskDays: risk.Count,
		}
		if risk.First != nil {
			first := risk.First.Date
			ss.FirstRisk = &first
		}
		preds, err := cards.PredictScenario(ds, sc.ID, now)
		if err != nil {
			return Snapshot{}, err
		}
		for _, p := range preds {
			ss.CardTotal = ss.CardTotal.Add(p.PredictedTotal)
		}
		snap.Scenarios = append(snap.Scenarios, ss)
	}
	return snap, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	before := make(map[string]ScenarioSnapshot, len(prev.Scenarios))
	for _, sc := range prev.Scenarios {
		before[sc.ID] = sc
	}

	var d Delta
	for _, sc := range curr.Scenarios {
		p, ok := before[sc.ID]
		delete(before, sc.ID)
		sd := ScenarioDelta{
			ID:        sc.ID,
			Added:     !ok,
			End:       sc.End.Sub(p.End),
			Low:       sc.Low.Sub(p.Low),
			RiskDays:  sc.RiskDays - p.RiskDays,
			CardTotal: sc.CardTotal.Sub(p.CardTotal),
		}
		if !sd.isZero() {
			d.Scenarios = append(d.Scenarios, sd)
		}
	}
	for _, sc := range prev.Scenarios {
		if _, gone := before[sc.ID]; gone {
			d.Scenarios = append(d.Scenarios, ScenarioDelta{ID: sc.ID, Removed: true})
		}
	}
	return d
}

// newRisks lists scenarios that had no negative days before and have some now.
func newRisks(prev, curr Snapshot, prevExists bool) []string {
	had := make(map[string]bool, len(prev.Scenarios))
	for _, sc := range prev.Scenarios {
		had[sc.ID] = sc.RiskDays > 0
	}
	var out []string
	for _, sc := range curr.Scenarios {
		if sc.RiskDays > 0 && (!prevExists || !had[sc.ID]) {
			out = append(out, sc.ID)
		}
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
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

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Days:            s.cfg.Days,
		Summary:         s.snapshot,
		LastError:       s.lastError,
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

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

// handleForecast serves a full forecast report from the last polled dataset.
func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pipeline.Request{
		Scenario:     q.Get("scenario"),
		HorizonDays:  s.cfg.Days,
		Now:          s.cfg.Now(),
		Precision:    s.cfg.Precision,
		IncludeTrend: q.Get("trend") == "true",
	}
	if v := q.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "days must be an integer", http.StatusBadRequest)
			return
		}
		req.HorizonDays = days
	}
	if v := q.Get("group"); v != "" {
		g, err := forecast.ParseGrouping(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Grouping = g
	}

	s.mu.RLock()
	ds, ok := s.dataset, s.hasSnapshot
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "no data polled yet", http.StatusServiceUnavailable)
		return
	}
	if req.Scenario == "" && len(ds.Scenarios) > 0 {
		req.Scenario = ds.Scenarios[0].ID
	}

	report, err := pipeline.Forecast(ds, req)
	switch {
	case errors.Is(err, model.ErrScenarioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, forecast.ErrHorizonTooLong), errors.Is(err, forecast.ErrNegativeHorizon):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
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

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
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
