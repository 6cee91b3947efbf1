package dashboard

import (
	"context"
	"time"
)

// ChangeType classifies the direction of a metric delta.
type ChangeType string

const (
	ChangePositive ChangeType = "positive"
	ChangeNegative ChangeType = "negative"
	ChangeNeutral  ChangeType = "neutral"
)

// KPIMetric is a single headline number with its previous period value.
type KPIMetric struct {
	Current    float64    `json:"current"`
	Previous   float64    `json:"previous"`
	Change     float64    `json:"change"`
	ChangeType ChangeType `json:"changeType"`
}

// Metrics are the four headline dashboard numbers.
type Metrics struct {
	Accounts     KPIMetric `json:"accounts"`
	Expenses     KPIMetric `json:"expenses"`
	CompanyValue KPIMetric `json:"companyValue"`
	Employees    KPIMetric `json:"employees"`
}

// FinancialData is the income/expense summary card.
type FinancialData struct {
	Income          int64   `json:"income"`
	Expenses        int64   `json:"expenses"`
	Spendings       int64   `json:"spendings"`
	Totals          int64   `json:"totals"`
	IncomeChange    float64 `json:"incomeChange"`
	ExpensesChange  float64 `json:"expensesChange"`
	SpendingsChange float64 `json:"spendingsChange"`
	TotalsChange    float64 `json:"totalsChange"`
}

// TrafficSource is one slice of the acquisition breakdown chart.
type TrafficSource struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// KPICard is the presentational projection of one metric.
type KPICard struct {
	Title      string     `json:"title"`
	Value      float64    `json:"value"`
	Change     float64    `json:"change"`
	ChangeType ChangeType `json:"changeType"`
	Subtitle   string     `json:"subtitle,omitempty"`
}

// BarChartPoint is one month of the revenue/expense bar chart.
type BarChartPoint struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// MonthlyPoint is one month of the engagement line chart.
type MonthlyPoint struct {
	Name        string  `json:"name"`
	Users       float64 `json:"users"`
	Sessions    float64 `json:"sessions"`
	PageViews   float64 `json:"pageViews"`
	Conversions float64 `json:"conversions"`
}

// PerformanceMetrics are the per-department gauge values (0..100).
type PerformanceMetrics struct {
	Overall     int `json:"overall"`
	Sales       int `json:"sales"`
	Marketing   int `json:"marketing"`
	Support     int `json:"support"`
	Development int `json:"development"`
}

// Activity is one row of the recent-activity feed.
type Activity struct {
	ID        int       `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// Notification is one entry of the notification tray.
type Notification struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Read    bool   `json:"read"`
}

// State is the full dashboard state owned by the controller. Consumers get
// copies via Snapshot and never mutate it directly. The state is
// field-granular: partial refreshes replace individual sections without
// swapping the whole value.
type State struct {
	Metrics        *Metrics           `json:"metrics"`
	Financial      *FinancialData     `json:"financialData"`
	TrafficSources []TrafficSource    `json:"trafficSources"`
	KPICards       []KPICard          `json:"kpiCards"`
	BarChart       []BarChartPoint    `json:"barChartData"`
	Monthly        []MonthlyPoint     `json:"monthlyData"`
	Performance    PerformanceMetrics `json:"performanceMetrics"`
	Activities     []Activity         `json:"recentActivities"`
	Notifications  []Notification     `json:"notifications"`
	IsLoading      bool               `json:"isLoading"`
	IsRefreshing   bool               `json:"isRefreshing"`
	Error          string             `json:"error,omitempty"`
	LastUpdated    time.Time          `json:"lastUpdated"`
}

// Source supplies dashboard data. The demo deployment backs it with the
// mock generator; a real one would call upstream services.
type Source interface {
	Metrics(ctx context.Context) (Metrics, error)
	Financial(ctx context.Context) (FinancialData, error)
	TrafficSources(ctx context.Context) ([]TrafficSource, error)
	KPICards(ctx context.Context) ([]KPICard, error)
	BarChart(ctx context.Context) ([]BarChartPoint, error)
	Monthly(ctx context.Context) ([]MonthlyPoint, error)
	Performance(ctx context.Context) (PerformanceMetrics, error)
	Activities(ctx context.Context) ([]Activity, error)
	Notifications(ctx context.Context) ([]Notification, error)
}
