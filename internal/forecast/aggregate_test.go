package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/model"
)

func TestAggregate_Partition(t *testing.T) {
	records := []model.Record{
		rec("2024-02", model.Revenue, "sales", 700),
		rec("2024-01", model.Cost, "rent", 300),
		rec("2024-01", model.Revenue, "sales", 1000),
		rec("2024-01", model.Revenue, "consulting", 250),
		rec("2024-02", model.Cost, "rent", 300),
		rec("2024-02", model.Cost, "payroll", 120),
	}
	var b FeatureBuilder
	vectors, err := b.Build(records, model.Period{Year: 2024, Month: time.January})
	require.NoError(t, err)

	rows := Aggregate(records, vectors)
	require.Len(t, rows, 4)

	for _, flow := range model.FlowTypes {
		want := decimal.Zero
		for _, r := range records {
			if r.FlowType == flow {
				want = want.Add(r.Amount)
			}
		}
		got := decimal.Zero
		for _, row := range rowsFor(rows, flow) {
			got = got.Add(row.Total)
		}
		assert.True(t, want.Equal(got), "%s total = %s, want %s", flow, got, want)
	}
}

func TestAggregate_DeterministicOrder(t *testing.T) {
	records := []model.Record{
		rec("2024-03", model.Cost, "x", 1),
		rec("2024-01", model.Cost, "x", 1),
		rec("2024-03", model.Revenue, "x", 1),
		rec("2024-01", model.Revenue, "x", 1),
	}
	var b FeatureBuilder
	vectors, err := b.Build(records, model.Period{Year: 2024, Month: time.January})
	require.NoError(t, err)

	rows := Aggregate(records, vectors)
	var got []string
	for _, r := range rows {
		got = append(got, r.Period.String()+"/"+string(r.FlowType))
	}
	assert.Equal(t, []string{
		"2024-01/revenue", "2024-01/cost",
		"2024-03/revenue", "2024-03/cost",
	}, got)
}

func TestAggregate_OneRowPerGroup(t *testing.T) {
	records := []model.Record{
		rec("2024-01", model.Revenue, "a", 10),
		rec("2024-01", model.Revenue, "b", 20),
		rec("2024-01", model.Revenue, "c", 30),
	}
	var b FeatureBuilder
	vectors, err := b.Build(records, model.Period{Year: 2024, Month: time.January})
	require.NoError(t, err)

	rows := Aggregate(records, vectors)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Records)
	assert.Equal(t, "60", rows[0].Total.String())
	assert.Equal(t, 2024, rows[0].Features.Year)
}

func TestAggregate_MisalignedPanics(t *testing.T) {
	records := []model.Record{rec("2024-01", model.Revenue, "sales", 10), rec("2024-02", model.Revenue, "sales", 20)}
	var b FeatureBuilder
	vectors, err := b.Build(records[:1], model.Period{Year: 2024, Month: time.January})
	require.NoError(t, err)

	assert.Panics(t, func() { Aggregate(records, vectors) })
	assert.Empty(t, Aggregate(nil, nil))
}
