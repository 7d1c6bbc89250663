package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardOverview summarises orders, income and users.
type DashboardOverview struct {
	TotalOrder         int64           `json:"totalOrder"`
	TotalPendingOrder  int64           `json:"totalPendingOrder"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	CurrentMonthIncome decimal.Decimal `json:"currentMonthIncome"`
	TotalUser          int64           `json:"totalUser"`
}

// RecentOrders lists the newest orders.
type RecentOrders struct {
	Orders []Order `json:"orders"`
}

// CategoryProductCount is one row of the per-category rollup.
type CategoryProductCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DashboardStatistics is the catalogue and completion summary.
type DashboardStatistics struct {
	TotalProduct           int64                  `json:"totalProduct"`
	TotalCategory          int64                  `json:"totalCategory"`
	OrderCompletionRate    float64                `json:"orderCompletionRate"`
	ProductTypePerCategory []CategoryProductCount `json:"productTypePerCategory"`
}

// TimeWindow is a half-open [From, To) interval.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// MonthWindow returns the calendar month containing now in loc.
func MonthWindow(now time.Time, loc *time.Location) TimeWindow {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return TimeWindow{From: start, To: start.AddDate(0, 1, 0)}
}
