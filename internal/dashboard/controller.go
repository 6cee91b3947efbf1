// Package dashboard owns the server-side dashboard state. All mutation goes
// through a reducer with a fixed action set, so every state transition is
// enumerable and the loading flags cannot drift out of sync with the data.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"pulseboard.org/internal/obs"
)

// ErrRefreshInFlight is returned when a load or refresh is requested while
// another one is still running. Requests are dropped, never queued.
var ErrRefreshInFlight = errors.New("dashboard: refresh already in flight")

// DefaultStaleAfter is how old a snapshot may get before the auto-refresh
// loop fetches again.
const DefaultStaleAfter = 30 * time.Second

type actionType int

const (
	actionSetLoading actionType = iota
	actionSetRefreshing
	actionSetError
	actionSetMetrics
	actionSetFinancial
	actionSetTraffic
	actionSetKPICards
	actionSetBarChart
	actionSetMonthly
	actionSetStatic
	actionComplete
)

type action struct {
	typ     actionType
	flag    bool
	msg     string
	metrics Metrics
	fin     FinancialData
	traffic []TrafficSource
	cards   []KPICard
	bars    []BarChartPoint
	monthly []MonthlyPoint
	perf    PerformanceMetrics
	acts    []Activity
	notes   []Notification
	at      time.Time
}

// reduce is the single place state transitions happen. It is pure: the
// returned state shares no mutable references with the action payload
// beyond the slices, which callers hand over and never touch again.
func reduce(s State, a action) State {
	switch a.typ {
	case actionSetLoading:
		s.IsLoading = a.flag
		if a.flag {
			s.Error = ""
		}
	case actionSetRefreshing:
		s.IsRefreshing = a.flag
		if a.flag {
			s.Error = ""
		}
	case actionSetError:
		s.Error = a.msg
		s.IsLoading = false
		s.IsRefreshing = false
	case actionSetMetrics:
		m := a.metrics
		s.Metrics = &m
	case actionSetFinancial:
		f := a.fin
		s.Financial = &f
	case actionSetTraffic:
		s.TrafficSources = a.traffic
	case actionSetKPICards:
		s.KPICards = a.cards
	case actionSetBarChart:
		s.BarChart = a.bars
	case actionSetMonthly:
		s.Monthly = a.monthly
	case actionSetStatic:
		s.Performance = a.perf
		s.Activities = a.acts
		s.Notifications = a.notes
	case actionComplete:
		s.IsLoading = false
		s.IsRefreshing = false
		s.Error = ""
		s.LastUpdated = a.at
	}
	return s
}

// Controller coordinates fetches against a Source and publishes state
// changes to subscribers. Exactly one fetch runs at a time.
type Controller struct {
	mu         sync.Mutex
	state      State
	source     Source
	now        func() time.Time
	staleAfter time.Duration

	subs    map[int]chan State
	nextSub int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithStaleAfter overrides the staleness threshold for auto-refresh.
func WithStaleAfter(d time.Duration) ControllerOption {
	return func(c *Controller) { c.staleAfter = d }
}

func NewController(source Source, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:     source,
		now:        time.Now,
		staleAfter: DefaultStaleAfter,
		subs:       make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// begin flips the in-flight flag for a fetch, or reports that one is
// already running. The check and the flip are a single critical section.
func (c *Controller) begin(refreshing bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsLoading || c.state.IsRefreshing {
		return false
	}
	if refreshing {
		c.state = reduce(c.state, action{typ: actionSetRefreshing, flag: true})
	} else {
		c.state = reduce(c.state, action{typ: actionSetLoading, flag: true})
	}
	return true
}

func (c *Controller) dispatch(actions ...action) State {
	c.mu.Lock()
	for _, a := range actions {
		c.state = reduce(c.state, a)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return snap
}

func (c *Controller) fail(err error) {
	c.dispatch(action{typ: actionSetError, msg: "Failed to fetch dashboard data"})
	obs.LogError("dashboard_fetch_failed", map[string]any{"error": err.Error()})
}

// Start performs the initial load, including the sections that only change
// on full loads. Idle only; a concurrent load returns ErrRefreshInFlight.
func (c *Controller) Start(ctx context.Context) error {
	if !c.begin(false) {
		return ErrRefreshInFlight
	}
	actions, err := c.fetchAll(ctx, true)
	if err != nil {
		c.fail(err)
		obs.ObserveDashboardRefresh("initial", "error")
		return err
	}
	c.publish(c.dispatch(actions...))
	obs.ObserveDashboardRefresh("initial", "ok")
	return nil
}

// Refresh re-fetches the dynamic sections while existing data stays
// visible. A refresh requested while one is running is dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refresh(ctx, "manual")
}

func (c *Controller) refresh(ctx context.Context, trigger string) error {
	if !c.begin(true) {
		return ErrRefreshInFlight
	}
	actions, err := c.fetchAll(ctx, false)
	if err != nil {
		c.fail(err)
		obs.ObserveDashboardRefresh(trigger, "error")
		return err
	}
	c.publish(c.dispatch(actions...))
	obs.ObserveDashboardRefresh(trigger, "ok")
	return nil
}

// RefreshMetrics re-fetches only the headline metrics and their cards.
func (c *Controller) RefreshMetrics(ctx context.Context) error {
	return c.refreshPartial(ctx, "metrics", func(ctx context.Context) ([]action, error) {
		m, err := c.source.Metrics(ctx)
		if err != nil {
			return nil, err
		}
		cards, err := c.source.KPICards(ctx)
		if err != nil {
			return nil, err
		}
		return []action{
			{typ: actionSetMetrics, metrics: m},
			{typ: actionSetKPICards, cards: cards},
		}, nil
	})
}

// RefreshFinancial re-fetches only the financial summary.
func (c *Controller) RefreshFinancial(ctx context.Context) error {
	return c.refreshPartial(ctx, "financial", func(ctx context.Context) ([]action, error) {
		f, err := c.source.Financial(ctx)
		if err != nil {
			return nil, err
		}
		return []action{{typ: actionSetFinancial, fin: f}}, nil
	})
}

// RefreshCharts re-fetches only the chart series.
func (c *Controller) RefreshCharts(ctx context.Context) error {
	return c.refreshPartial(ctx, "charts", func(ctx context.Context) ([]action, error) {
		bars, err := c.source.BarChart(ctx)
		if err != nil {
			return nil, err
		}
		monthly, err := c.source.Monthly(ctx)
		if err != nil {
			return nil, err
		}
		traffic, err := c.source.TrafficSources(ctx)
		if err != nil {
			return nil, err
		}
		return []action{
			{typ: actionSetBarChart, bars: bars},
			{typ: actionSetMonthly, monthly: monthly},
			{typ: actionSetTraffic, traffic: traffic},
		}, nil
	})
}

func (c *Controller) refreshPartial(ctx context.Context, trigger string, fetch func(context.Context) ([]action, error)) error {
	if !c.begin(true) {
		return ErrRefreshInFlight
	}
	actions, err := fetch(ctx)
	if err != nil {
		c.fail(err)
		obs.ObserveDashboardRefresh(trigger, "error")
		return err
	}
	actions = append(actions, action{typ: actionComplete, at: c.now()})
	c.publish(c.dispatch(actions...))
	obs.ObserveDashboardRefresh(trigger, "ok")
	return nil
}

// fetchAll gathers every dynamic section. withStatic additionally loads the
// sections that only matter on the initial mount.
func (c *Controller) fetchAll(ctx context.Context, withStatic bool) ([]action, error) {
	m, err := c.source.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	f, err := c.source.Financial(ctx)
	if err != nil {
		return nil, err
	}
	traffic, err := c.source.TrafficSources(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := c.source.KPICards(ctx)
	if err != nil {
		return nil, err
	}
	bars, err := c.source.BarChart(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := c.source.Monthly(ctx)
	if err != nil {
		return nil, err
	}
	actions := []action{
		{typ: actionSetMetrics, metrics: m},
		{typ: actionSetFinancial, fin: f},
		{typ: actionSetTraffic, traffic: traffic},
		{typ: actionSetKPICards, cards: cards},
		{typ: actionSetBarChart, bars: bars},
		{typ: actionSetMonthly, monthly: monthly},
	}
	if withStatic {
		perf, err := c.source.Performance(ctx)
		if err != nil {
			return nil, err
		}
		acts, err := c.source.Activities(ctx)
		if err != nil {
			return nil, err
		}
		notes, err := c.source.Notifications(ctx)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action{typ: actionSetStatic, perf: perf, acts: acts, notes: notes})
	}
	actions = append(actions, action{typ: actionComplete, at: c.now()})
	return actions, nil
}

// ClearError drops the error without touching data or flags.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state. Slices are copied so the
// caller cannot mutate controller-owned data.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	if s.Metrics != nil {
		m := *s.Metrics
		s.Metrics = &m
	}
	if s.Financial != nil {
		f := *s.Financial
		s.Financial = &f
	}
	s.TrafficSources = append([]TrafficSource(nil), s.TrafficSources...)
	s.KPICards = append([]KPICard(nil), s.KPICards...)
	s.BarChart = append([]BarChartPoint(nil), s.BarChart...)
	s.Monthly = append([]MonthlyPoint(nil), s.Monthly...)
	s.Activities = append([]Activity(nil), s.Activities...)
	s.Notifications = append([]Notification(nil), s.Notifications...)
	return s
}

// Stale reports whether the data is old enough for the auto-refresh loop
// to fetch again. Never-loaded state is always stale.
func (c *Controller) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.LastUpdated.IsZero() {
		return true
	}
	return c.now().Sub(c.state.LastUpdated) > c.staleAfter
}

// AutoRefresh starts the background polling loop and returns a stop
// function. Each tick refreshes only when the data is stale and nothing is
// in flight; a tick that lands mid-fetch is skipped, not queued.
func (c *Controller) AutoRefresh(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultStaleAfter
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !c.Stale() {
					continue
				}
				if err := c.refresh(ctx, "auto"); err != nil && !errors.Is(err, ErrRefreshInFlight) {
					obs.LogError("dashboard_auto_refresh_failed", map[string]any{"error": err.Error()})
				}
			}
		}
	}()
	return cancel
}

// Subscribe registers for state snapshots published after each successful
// fetch. The channel closes when ctx is done. Slow subscribers miss
// intermediate snapshots rather than blocking the controller.
func (c *Controller) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 8)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (c *Controller) publish(snap State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
