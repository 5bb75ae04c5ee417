package model

import "github.com/shopspring/decimal"

// SummaryStats holds the top-level aggregate across all ledger records.
type SummaryStats struct {
	Records     int
	Periods     int
	Categories  int
	FirstPeriod string
	LastPeriod  string

	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Net     decimal.Decimal

	RevenuePerMonth decimal.Decimal
	CostPerMonth    decimal.Decimal
	Margin          float64 // net / revenue, 0 when revenue is zero
}

// MonthlyStats holds totals for a single period.
type MonthlyStats struct {
	Period  string
	Records int
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Net     decimal.Decimal
}

// CategoryStats holds totals for one category within a flow type.
type CategoryStats struct {
	Category     string
	FlowType     FlowType
	Records      int
	Total        decimal.Decimal
	SharePercent float64
}
