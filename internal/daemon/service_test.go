package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/notify"
	"github.com/theirongolddev/finsight/internal/txcache"
)

type stubTransport struct {
	mu        sync.Mutex
	records   []model.Transaction
	getErr    error
	deleteErr error
}

func (s *stubTransport) Get(context.Context, string, url.Values) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return json.Marshal(s.records)
}

func (s *stubTransport) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, r := range s.records {
		if "/transactions/"+r.ID == path {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev notify.Event) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seeded() *stubTransport {
	return &stubTransport{records: []model.Transaction{
		{ID: "t1", Type: model.Income, Amount: 200},
		{ID: "t2", Type: model.Expense, Amount: 50},
		{ID: "t3", Type: model.Expense, Amount: 30},
	}}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Records: 3, Stats: model.Stats{TotalIncome: 200, TotalExpenses: 80, Net: 120}}
	curr := Snapshot{Records: 2, Stats: model.Stats{TotalIncome: 0, TotalExpenses: 80, Net: -80}}

	delta := diffSnapshots(prev, curr)
	if delta.Records != -1 {
		t.Fatalf("Records delta = %d, want -1", delta.Records)
	}
	if delta.TotalIncome != -200 || delta.Net != -200 {
		t.Fatalf("delta = %+v, want income -200 net -200", delta)
	}
	if delta.TotalExpenses != 0 {
		t.Fatalf("TotalExpenses delta = %v, want 0", delta.TotalExpenses)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(txcache.New(seeded()), Config{EventsBuffer: 2, Logger: quietLogger()})

	ctx := context.Background()
	s.publishEvent(ctx, Event{ID: 1})
	s.publishEvent(ctx, Event{ID: 2})
	s.publishEvent(ctx, Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRecordEmitsSnapshotThenDelta(t *testing.T) {
	tr := seeded()
	cache := txcache.New(tr)
	s := New(cache, Config{Logger: quietLogger()})
	ctx := context.Background()

	cache.Dashboard(ctx, false)
	ev, ok := s.record(txcache.Change{Kind: txcache.ChangeDashboard, Status: cache.Status()})
	if !ok || ev.Type != "snapshot" || ev.ID != 1 {
		t.Fatalf("first event = %+v ok=%v, want snapshot #1", ev, ok)
	}
	if ev.Snapshot.Stats.Net != 120 {
		t.Fatalf("snapshot net = %v, want 120", ev.Snapshot.Stats.Net)
	}

	if _, ok := s.record(txcache.Change{Kind: txcache.ChangeStatus, Status: txcache.Status{State: txcache.StateLoading, Loading: true}}); ok {
		t.Fatal("loading transitions should not emit events")
	}

	if err := cache.DeleteTransaction(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	cache.Wait()

	ev, ok = s.record(txcache.Change{Kind: txcache.ChangeDashboard, Status: cache.Status()})
	if !ok {
		t.Fatal("expected delta event after reconcile")
	}
	if ev.Type != "dashboard" || ev.Delta.Records != -1 || ev.Delta.Net != -200 {
		t.Fatalf("delta event = %+v", ev)
	}
}

func TestPublisherReceivesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(txcache.New(seeded()), Config{Logger: quietLogger(), Publisher: pub})

	s.publishEvent(context.Background(), Event{
		ID:       7,
		Type:     "dashboard",
		Snapshot: Snapshot{Records: 2, State: "idle", Stats: model.Stats{Net: -80}},
	})

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.events))
	}
	if got := pub.events[0]; got.Kind != "dashboard" || got.Stats.Net != -80 || got.Records != 2 {
		t.Fatalf("published event = %+v", got)
	}
}

func TestHTTPHandlers(t *testing.T) {
	tr := seeded()
	cache := txcache.New(tr)
	s := New(cache, Config{Logger: quietLogger()})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var snap model.DashboardSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(snap.Transactions) != 3 || snap.Stats.Net != 120 {
		t.Fatalf("refresh snapshot = %+v", snap)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/transactions/t1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("delete status = %d, want 202", resp.StatusCode)
	}
	cache.Wait()

	resp, err = http.Get(srv.URL + "/v1/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if want := (model.Stats{TotalIncome: 0, TotalExpenses: 80, Net: -80}); snap.Stats != want {
		t.Fatalf("stats = %+v, want %+v", snap.Stats, want)
	}

	tr.mu.Lock()
	tr.deleteErr = errors.New("upstream down")
	tr.mu.Unlock()
	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/v1/transactions/t2", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("failed delete status = %d, want 502", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestRunPollsAndStops(t *testing.T) {
	tr := seeded()
	cache := txcache.New(tr)
	s := New(cache, Config{Addr: "127.0.0.1:0", Schedule: "@every 1h", Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.snapshotStatus().PollCount == 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial poll never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if got := cache.Stats().Net; got != 120 {
		t.Fatalf("net = %v, want 120", got)
	}
}

func TestRunRejectsBadSchedule(t *testing.T) {
	s := New(txcache.New(seeded()), Config{Schedule: "whenever", Logger: quietLogger()})
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected schedule error")
	}
}
