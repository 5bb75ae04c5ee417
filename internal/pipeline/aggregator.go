// Package pipeline orchestrates import loading, file tracking, and report
// aggregation over ledger records.
package pipeline

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"
)

// Summarize computes totals across records.
func Summarize(records []model.Record) model.SummaryStats {
	var stats model.SummaryStats
	periods := make(map[string]struct{})
	categories := make(map[string]struct{})

	for _, r := range records {
		stats.Records++
		periods[r.Period] = struct{}{}
		categories[string(r.FlowType)+"/"+r.Category] = struct{}{}

		switch r.FlowType {
		case model.Revenue:
			stats.Revenue = stats.Revenue.Add(r.Amount)
		case model.Cost:
			stats.Cost = stats.Cost.Add(r.Amount)
		}

		if stats.FirstPeriod == "" || r.Period < stats.FirstPeriod {
			stats.FirstPeriod = r.Period
		}
		if r.Period > stats.LastPeriod {
			stats.LastPeriod = r.Period
		}
	}

	stats.Periods = len(periods)
	stats.Categories = len(categories)
	stats.Net = stats.Revenue.Sub(stats.Cost)

	if stats.Periods > 0 {
		n := decimal.NewFromInt(int64(stats.Periods))
		stats.RevenuePerMonth = stats.Revenue.Div(n)
		stats.CostPerMonth = stats.Cost.Div(n)
	}
	if stats.Revenue.IsPositive() {
		stats.Margin = stats.Net.Div(stats.Revenue).InexactFloat64()
	}

	return stats
}

// AggregateMonths computes per-period totals, most recent first.
func AggregateMonths(records []model.Record) []model.MonthlyStats {
	monthMap := make(map[string]*model.MonthlyStats)

	for _, r := range records {
		ms, ok := monthMap[r.Period]
		if !ok {
			ms = &model.MonthlyStats{Period: r.Period}
			monthMap[r.Period] = ms
		}
		ms.Records++
		switch r.FlowType {
		case model.Revenue:
			ms.Revenue = ms.Revenue.Add(r.Amount)
		case model.Cost:
			ms.Cost = ms.Cost.Add(r.Amount)
		}
	}

	months := make([]model.MonthlyStats, 0, len(monthMap))
	for _, ms := range monthMap {
		ms.Net = ms.Revenue.Sub(ms.Cost)
		months = append(months, *ms)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Period > months[j].Period
	})

	return months
}

// AggregateCategories computes per-category totals within each flow type,
// sorted by total descending. SharePercent is relative to the flow total.
func AggregateCategories(records []model.Record) []model.CategoryStats {
	type key struct {
		flow     model.FlowType
		category string
	}
	catMap := make(map[key]*model.CategoryStats)
	flowTotals := make(map[model.FlowType]decimal.Decimal)

	for _, r := range records {
		k := key{r.FlowType, r.Category}
		cs, ok := catMap[k]
		if !ok {
			cs = &model.CategoryStats{Category: r.Category, FlowType: r.FlowType}
			catMap[k] = cs
		}
		cs.Records++
		cs.Total = cs.Total.Add(r.Amount)
		flowTotals[r.FlowType] = flowTotals[r.FlowType].Add(r.Amount)
	}

	cats := make([]model.CategoryStats, 0, len(catMap))
	for _, cs := range catMap {
		if total := flowTotals[cs.FlowType]; total.IsPositive() {
			cs.SharePercent = cs.Total.Div(total).InexactFloat64() * 100
		}
		cats = append(cats, *cs)
	}
	sort.Slice(cats, func(i, j int) bool {
		if !cats[i].Total.Equal(cats[j].Total) {
			return cats[i].Total.GreaterThan(cats[j].Total)
		}
		if cats[i].FlowType != cats[j].FlowType {
			return cats[i].FlowType == model.Revenue
		}
		return cats[i].Category < cats[j].Category
	})

	return cats
}

// LatestPeriod returns the most recent period in records, or "".
func LatestPeriod(records []model.Record) string {
	latest := ""
	for _, r := range records {
		if r.Period > latest {
			latest = r.Period
		}
	}
	return latest
}

// FilterByRange returns records whose period falls within [from, to].
// Empty bounds are open.
func FilterByRange(records []model.Record, from, to string) []model.Record {
	if from == "" && to == "" {
		return records
	}

	var result []model.Record
	for _, r := range records {
		if from != "" && r.Period < from {
			continue
		}
		if to != "" && r.Period > to {
			continue
		}
		result = append(result, r)
	}
	return result
}

// FilterByFlow returns records of one flow type. An empty flow keeps all.
func FilterByFlow(records []model.Record, flow model.FlowType) []model.Record {
	if flow == "" {
		return records
	}
	var result []model.Record
	for _, r := range records {
		if r.FlowType == flow {
			result = append(result, r)
		}
	}
	return result
}

// FilterByCategory returns records whose category contains the substring.
func FilterByCategory(records []model.Record, category string) []model.Record {
	if category == "" {
		return records
	}
	var result []model.Record
	for _, r := range records {
		if containsIgnoreCase(r.Category, category) {
			result = append(result, r)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
