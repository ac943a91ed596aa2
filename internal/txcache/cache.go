// Package txcache keeps a session-scoped view of the user's transactions and
// analytics, deciding per read whether cached data is fresh enough to serve.
package txcache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/pipeline"
)

const dashboardPath = "/transactions/"

const subscriberBuffer = 16

// Transport is the authenticated request primitive the cache depends on.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// Cache owns the dashboard snapshot and the analytics slots.
//
// Operations are not serialized against each other. The mutex only guards
// individual field transitions and is never held across a transport call, so
// concurrent fetches race and whichever completes last wins.
type Cache struct {
	transport Transport
	clock     func() time.Time
	log       *logrus.Logger
	window    time.Duration
	limit     int

	mu        sync.RWMutex
	dashboard model.DashboardSnapshot
	analytics map[string]model.AnalyticsPayload
	loading   bool
	errMsg    string

	nextSubID int
	subs      map[int]chan Change

	bg sync.WaitGroup
}

// New returns an empty cache backed by transport.
func New(transport Transport, opts ...Option) *Cache {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := &Cache{
		transport: transport,
		clock:     time.Now,
		log:       logger,
		window:    DefaultFreshnessWindow,
		limit:     DefaultDashboardLimit,
		analytics: make(map[string]model.AnalyticsPayload),
		subs:      make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dashboard returns the dashboard snapshot, fetching unless force is false and
// the current snapshot is non-empty and younger than the freshness window.
//
// Failures never reach the caller: the previous snapshot stays in place and
// the error is recorded in the cache status.
func (c *Cache) Dashboard(ctx context.Context, force bool) model.DashboardSnapshot {
	now := c.clock()

	c.mu.Lock()
	if !force && c.freshLocked(now) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{
			"op":  "dashboard",
			"age": now.Sub(snap.FetchedAt).String(),
		}).Debug("serving cached dashboard")
		return snap
	}
	c.loading = true
	c.mu.Unlock()
	c.notify(Change{Kind: ChangeStatus})

	records, err := c.fetchDashboard(ctx)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.errMsg = MsgDashboardFailed
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"op": "dashboard", "force": force}).WithError(err).Warn(MsgDashboardFailed)
		c.notify(Change{Kind: ChangeStatus})
		return snap
	}
	c.dashboard = model.DashboardSnapshot{
		Transactions: records,
		Stats:        pipeline.Aggregate(records),
		FetchedAt:    now,
	}
	c.errMsg = ""
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"op":      "dashboard",
		"force":   force,
		"records": len(records),
	}).Debug("dashboard refreshed")
	c.notify(Change{Kind: ChangeDashboard})
	return snap
}

func (c *Cache) freshLocked(now time.Time) bool {
	d := c.dashboard
	return len(d.Transactions) > 0 &&
		!d.FetchedAt.IsZero() &&
		now.Sub(d.FetchedAt) < c.window
}

func (c *Cache) fetchDashboard(ctx context.Context) ([]model.Transaction, error) {
	query := url.Values{"limit": {strconv.Itoa(c.limit)}}
	body, err := c.transport.Get(ctx, dashboardPath, query)
	if err != nil {
		return nil, err
	}
	var records []model.Transaction
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parsing transactions: %w", err)
	}
	return records, nil
}

// Analytics always fetches the period from the server and stores the result
// under AnalyticsKey(p). Unlike Dashboard, failures are returned.
func (c *Cache) Analytics(ctx context.Context, p model.AnalyticsPeriod) (model.AnalyticsPayload, error) {
	key := AnalyticsKey(p)

	c.setLoading()

	payload, err := c.fetchAnalytics(ctx, p)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.errMsg = MsgAnalyticsFailed
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"op": "analytics", "key": key}).WithError(err).Warn(MsgAnalyticsFailed)
		c.notify(Change{Kind: ChangeStatus, Key: key})
		return model.AnalyticsPayload{}, fmt.Errorf("fetch analytics %s: %w", key, err)
	}
	c.analytics[key] = payload
	c.errMsg = ""
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"op": "analytics", "key": key}).Debug("analytics stored")
	c.notify(Change{Kind: ChangeAnalytics, Key: key})
	return payload, nil
}

func (c *Cache) fetchAnalytics(ctx context.Context, p model.AnalyticsPeriod) (model.AnalyticsPayload, error) {
	var payload model.AnalyticsPayload
	body, err := c.transport.Get(ctx, AnalyticsPath(p.Kind), AnalyticsQuery(p))
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, fmt.Errorf("parsing analytics: %w", err)
	}
	return payload, nil
}

// DeleteTransaction deletes id on the server, drops it from the local record
// list, and starts a forced dashboard refetch without waiting for it.
// Stats are left as they were until that refetch lands.
func (c *Cache) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.transport.Delete(ctx, dashboardPath+url.PathEscape(id)); err != nil {
		c.mu.Lock()
		c.errMsg = MsgDeleteFailed
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"op": "delete", "id": id}).WithError(err).Warn(MsgDeleteFailed)
		c.notify(Change{Kind: ChangeStatus})
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	c.mu.Lock()
	before := len(c.dashboard.Transactions)
	c.dashboard.Transactions = slices.DeleteFunc(slices.Clone(c.dashboard.Transactions), func(t model.Transaction) bool {
		return t.ID == id
	})
	removed := before - len(c.dashboard.Transactions)
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"op": "delete", "id": id, "removed": removed}).Debug("transaction deleted")
	if removed > 0 {
		c.notify(Change{Kind: ChangeDashboard})
	}

	c.reconcile(ctx)
	return nil
}

// reconcile refetches the dashboard in the background. The caller's
// cancellation does not propagate; its values do.
func (c *Cache) reconcile(ctx context.Context) {
	bgCtx := context.WithoutCancel(ctx)
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.Dashboard(bgCtx, true)
	}()
}

// Wait blocks until every background reconcile has finished.
func (c *Cache) Wait() {
	c.bg.Wait()
}

func (c *Cache) setLoading() {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.notify(Change{Kind: ChangeStatus})
}

func (c *Cache) snapshotLocked() model.DashboardSnapshot {
	snap := c.dashboard
	snap.Transactions = slices.Clone(c.dashboard.Transactions)
	return snap
}

// Snapshot returns a copy of the current dashboard snapshot.
func (c *Cache) Snapshot() model.DashboardSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Transactions returns a copy of the recent records.
func (c *Cache) Transactions() []model.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.dashboard.Transactions)
}

// Stats returns the aggregate computed at the last successful fetch.
func (c *Cache) Stats() model.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard.Stats
}

// HasData reports whether any records are cached.
func (c *Cache) HasData() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dashboard.Transactions) > 0
}

// LastFetched returns when the dashboard last refreshed; zero if never.
func (c *Cache) LastFetched() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard.FetchedAt
}

// AnalyticsEntry returns the cached payload for p, if any.
func (c *Cache) AnalyticsEntry(p model.AnalyticsPeriod) (model.AnalyticsPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payload, ok := c.analytics[AnalyticsKey(p)]
	return payload, ok
}

// AnalyticsEntries returns a copy of every analytics slot keyed by AnalyticsKey.
func (c *Cache) AnalyticsEntries() map[string]model.AnalyticsPayload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.analytics)
}

// Loading reports whether a fetch is in flight.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the recorded error message, or "" when the last fetch succeeded.
func (c *Cache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Status returns the combined loading/error state.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return statusOf(c.loading, c.errMsg)
}

// Subscribe registers for change notifications. A subscriber that is not
// keeping up loses its oldest buffered changes, never the newest, so the last
// change it reads always carries the current status. The returned func
// unsubscribes and closes the channel.
func (c *Cache) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)

	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			c.mu.Unlock()
		})
	}
}

func (c *Cache) notify(ch Change) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ch.Status = statusOf(c.loading, c.errMsg)
	for _, sub := range c.subs {
		deliver(sub, ch)
	}
}

// deliver sends ch without blocking. On a full buffer the oldest change is
// evicted to make room; an evicted dashboard change upgrades a status-only
// replacement so the snapshot reload is not lost.
func deliver(sub chan Change, ch Change) {
	select {
	case sub <- ch:
		return
	default:
	}
	select {
	case old := <-sub:
		if old.Kind == ChangeDashboard && ch.Kind == ChangeStatus {
			ch.Kind = ChangeDashboard
		}
	default:
	}
	select {
	case sub <- ch:
	default:
		// A concurrent notify refilled the slot with a later change.
	}
}
