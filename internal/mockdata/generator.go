// Package mockdata implements the dashboard data source with generated
// values. Numbers vary around fixed baselines so the dashboard looks alive
// without any upstream dependency.
package mockdata

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"pulseboard.org/internal/dashboard"
)

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Generator produces dashboard data. It satisfies dashboard.Source and is
// safe for concurrent use. An optional artificial delay emulates upstream
// latency so loading states are observable in the demo deployment.
type Generator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	now      func() time.Time
	minDelay time.Duration
	maxDelay time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generated values deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithDelay adds a random per-call delay in [min, max].
func WithDelay(min, max time.Duration) Option {
	return func(g *Generator) { g.minDelay, g.maxDelay = min, max }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// jitter returns base shifted by a uniform value in [-spread/2, spread/2].
func (g *Generator) jitter(base, spread float64) float64 {
	return base + (g.rnd.Float64()-0.5)*spread
}

func (g *Generator) delay(ctx context.Context) error {
	if g.maxDelay <= 0 {
		return nil
	}
	g.mu.Lock()
	d := g.minDelay + time.Duration(g.rnd.Int63n(int64(g.maxDelay-g.minDelay)+1))
	g.mu.Unlock()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Metrics generates the four headline numbers. Values dip overnight and on
// weekends to resemble real activity curves.
func (g *Generator) Metrics(ctx context.Context) (dashboard.Metrics, error) {
	if err := g.delay(ctx); err != nil {
		return dashboard.Metrics{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	timeMult := 1 + math.Sin(float64(now.Hour())/24*2*math.Pi)*0.1
	dayMult := 1.0
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dayMult = 0.7
	}

	return dashboard.Metrics{
		Accounts: dashboard.KPIMetric{
			Current:    math.Floor(1250 * timeMult * dayMult),
			Previous:   1180,
			Change:     g.jitter(5.9, 2),
			ChangeType: dashboard.ChangePositive,
		},
		Expenses: dashboard.KPIMetric{
			Current:    math.Floor(45000 * timeMult),
			Previous:   48000,
			Change:     g.jitter(-6.25, 3),
			ChangeType: dashboard.ChangeNegative,
		},
		CompanyValue: dashboard.KPIMetric{
			Current:    math.Floor(2500000 * (1 + (g.rnd.Float64()-0.5)*0.05)),
			Previous:   2300000,
			Change:     g.jitter(8.7, 4),
			ChangeType: dashboard.ChangePositive,
		},
		Employees: dashboard.KPIMetric{
			Current:    156 + float64(g.rnd.Intn(5)),
			Previous:   152,
			Change:     g.jitter(2.6, 1),
			ChangeType: dashboard.ChangePositive,
		},
	}, nil
}

func (g *Generator) Financial(ctx context.Context) (dashboard.FinancialData, error) {
	if err := g.delay(ctx); err != nil {
		return dashboard.FinancialData{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	income := g.jitter(125000, 20000)
	expenses := g.jitter(45000, 10000)
	spendings := g.jitter(32000, 8000)
	return dashboard.FinancialData{
		Income:          int64(income),
		Expenses:        int64(expenses),
		Spendings:       int64(spendings),
		Totals:          int64(income - expenses - spendings),
		IncomeChange:    g.jitter(12.5, 10),
		ExpensesChange:  g.jitter(-8.2, 6),
		SpendingsChange: g.jitter(-5.1, 4),
		TotalsChange:    g.jitter(15.3, 12),
	}, nil
}

func (g *Generator) TrafficSources(ctx context.Context) ([]dashboard.TrafficSource, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	bases := []dashboard.TrafficSource{
		{Name: "Organic Search", Value: 45, Color: "#3b82f6"},
		{Name: "Direct", Value: 25, Color: "#10b981"},
		{Name: "Social Media", Value: 20, Color: "#f59e0b"},
		{Name: "Email", Value: 10, Color: "#ef4444"},
		{Name: "Referral", Value: 8, Color: "#8b5cf6"},
		{Name: "Paid Search", Value: 12, Color: "#06b6d4"},
	}
	out := make([]dashboard.TrafficSource, len(bases))
	for i, s := range bases {
		s.Value = math.Max(1, g.jitter(s.Value, 10))
		out[i] = s
	}
	return out, nil
}

func (g *Generator) KPICards(ctx context.Context) ([]dashboard.KPICard, error) {
	m, err := g.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	return []dashboard.KPICard{
		{Title: "Total Accounts", Value: m.Accounts.Current, Change: m.Accounts.Change, ChangeType: m.Accounts.ChangeType, Subtitle: "Active user accounts"},
		{Title: "Monthly Expenses", Value: m.Expenses.Current, Change: m.Expenses.Change, ChangeType: m.Expenses.ChangeType, Subtitle: "Operating costs"},
		{Title: "Company Value", Value: m.CompanyValue.Current, Change: m.CompanyValue.Change, ChangeType: m.CompanyValue.ChangeType, Subtitle: "Market valuation"},
		{Title: "Employees", Value: m.Employees.Current, Change: m.Employees.Change, ChangeType: m.Employees.ChangeType, Subtitle: "Team members"},
	}, nil
}

// BarChart covers January through the current month with a mild upward trend.
func (g *Generator) BarChart(ctx context.Context) ([]dashboard.BarChartPoint, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	months := int(g.now().Month())
	out := make([]dashboard.BarChartPoint, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, dashboard.BarChartPoint{
			Month:    monthNames[i],
			Revenue:  40000 + g.rnd.Float64()*30000 + float64(i)*2000,
			Expenses: 25000 + g.rnd.Float64()*15000 + float64(i)*1000,
			Profit:   15000 + g.rnd.Float64()*20000 + float64(i)*1500,
		})
	}
	return out, nil
}

func (g *Generator) Monthly(ctx context.Context) ([]dashboard.MonthlyPoint, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]dashboard.MonthlyPoint, 0, 6)
	for i := 0; i < 6; i++ {
		out = append(out, dashboard.MonthlyPoint{
			Name:        monthNames[i],
			Users:       2000 + g.rnd.Float64()*3000 + float64(i)*200,
			Sessions:    1000 + g.rnd.Float64()*4000 + float64(i)*300,
			PageViews:   1500 + g.rnd.Float64()*2000 + float64(i)*150,
			Conversions: 50 + g.rnd.Float64()*200 + float64(i)*10,
		})
	}
	return out, nil
}

func (g *Generator) Performance(ctx context.Context) (dashboard.PerformanceMetrics, error) {
	if err := g.delay(ctx); err != nil {
		return dashboard.PerformanceMetrics{}, err
	}
	return dashboard.PerformanceMetrics{
		Overall:     75,
		Sales:       85,
		Marketing:   65,
		Support:     92,
		Development: 78,
	}, nil
}

func (g *Generator) Activities(ctx context.Context) ([]dashboard.Activity, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	now := g.now()
	return []dashboard.Activity{
		{ID: 1, Action: "New user registered", Timestamp: now.Add(-5 * time.Minute), Type: "user"},
		{ID: 2, Action: "Payment processed", Timestamp: now.Add(-15 * time.Minute), Type: "payment"},
		{ID: 3, Action: "Report generated", Timestamp: now.Add(-30 * time.Minute), Type: "system"},
		{ID: 4, Action: "Data backup completed", Timestamp: now.Add(-45 * time.Minute), Type: "system"},
	}, nil
}

func (g *Generator) Notifications(ctx context.Context) ([]dashboard.Notification, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	return []dashboard.Notification{
		{ID: 1, Title: "System Update", Message: "New features available", Type: "info"},
		{ID: 2, Title: "Payment Alert", Message: "Monthly payment due soon", Type: "warning"},
		{ID: 3, Title: "Backup Complete", Message: "Data backup finished successfully", Type: "success", Read: true},
	}, nil
}
