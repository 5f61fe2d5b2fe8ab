package models

import "github.com/shopspring/decimal"

// DashboardStats is the landing-page summary.
type DashboardStats struct {
	TodayRevenue     decimal.Decimal `json:"todayRevenue"`
	MonthRevenue     decimal.Decimal `json:"monthRevenue"`
	LastMonthRevenue decimal.Decimal `json:"lastMonthRevenue"`
	TotalBills       int64           `json:"totalBills"`
	TodayBills       int64           `json:"todayBills"`
}

// MonthlySummary aggregates all bills created within one calendar month.
type MonthlySummary struct {
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	TotalBills        int             `json:"totalBills"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalRoomCharges  decimal.Decimal `json:"totalRoomCharges"`
	TotalFoodCharges  decimal.Decimal `json:"totalFoodCharges"`
	TotalOtherCharges decimal.Decimal `json:"totalOtherCharges"`
	TotalTax          decimal.Decimal `json:"totalTax"`
	PaidCount         int             `json:"paidCount"`
	PendingCount      int             `json:"pendingCount"`
	Bills             []Bill          `json:"bills"`
}
