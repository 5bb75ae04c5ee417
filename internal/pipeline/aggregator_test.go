package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/model"
)

func rec(period string, flow model.FlowType, category, amount string) model.Record {
	return model.Record{Period: period, FlowType: flow, Category: category, Amount: decimal.RequireFromString(amount)}
}

var sample = []model.Record{
	rec("2024-01", model.Revenue, "sales", "1000"),
	rec("2024-01", model.Revenue, "consulting", "500"),
	rec("2024-01", model.Cost, "rent", "400"),
	rec("2024-02", model.Revenue, "sales", "1100"),
	rec("2024-02", model.Cost, "rent", "400"),
	rec("2024-02", model.Cost, "Payroll", "300.50"),
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample)
	assert.Equal(t, 6, s.Records)
	assert.Equal(t, 2, s.Periods)
	assert.Equal(t, 4, s.Categories)
	assert.Equal(t, "2024-01", s.FirstPeriod)
	assert.Equal(t, "2024-02", s.LastPeriod)
	assert.Equal(t, "2600", s.Revenue.String())
	assert.Equal(t, "1100.5", s.Cost.String())
	assert.Equal(t, "1499.5", s.Net.String())
	assert.Equal(t, "1300", s.RevenuePerMonth.String())
	assert.InDelta(t, 1499.5/2600, s.Margin, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Records)
	assert.True(t, s.Net.IsZero())
	assert.Equal(t, 0.0, s.Margin)
}

func TestAggregateMonths(t *testing.T) {
	months := AggregateMonths(sample)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-02", months[0].Period)
	assert.Equal(t, "1100", months[0].Revenue.String())
	assert.Equal(t, "700.5", months[0].Cost.String())
	assert.Equal(t, "399.5", months[0].Net.String())
	assert.Equal(t, 3, months[1].Records)
}

func TestAggregateCategories(t *testing.T) {
	cats := AggregateCategories(sample)
	require.Len(t, cats, 4)
	assert.Equal(t, "sales", cats[0].Category)
	assert.Equal(t, "2100", cats[0].Total.String())
	assert.InDelta(t, 2100.0/2600*100, cats[0].SharePercent, 1e-9)
	assert.Equal(t, "rent", cats[1].Category)
	assert.InDelta(t, 800/1100.5*100, cats[1].SharePercent, 1e-9)
}

func TestFilters(t *testing.T) {
	assert.Len(t, FilterByRange(sample, "2024-02", ""), 3)
	assert.Len(t, FilterByRange(sample, "", "2024-01"), 3)
	assert.Len(t, FilterByRange(sample, "2024-03", "2024-12"), 0)
	assert.Len(t, FilterByFlow(sample, model.Cost), 3)
	assert.Len(t, FilterByFlow(sample, ""), 6)
	assert.Len(t, FilterByCategory(sample, "payroll"), 1)
	assert.Equal(t, "2024-02", LatestPeriod(sample))
	assert.Empty(t, LatestPeriod(nil))
}
