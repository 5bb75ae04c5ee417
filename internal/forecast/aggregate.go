package forecast

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"
)

// AggregatedRow is the total of one flow type in one period.
type AggregatedRow struct {
	Period   model.Period
	FlowType model.FlowType
	Total    decimal.Decimal
	Records  int
	Features FeatureVector
}

type aggKey struct {
	period model.Period
	flow   model.FlowType
}

// Aggregate groups records by (period, flow type). vectors must be aligned
// with records, as returned by FeatureBuilder.Build; Aggregate panics
// otherwise. Rows are ordered by period, then revenue before cost.
func Aggregate(records []model.Record, vectors []FeatureVector) []AggregatedRow {
	if len(records) != len(vectors) {
		panic(fmt.Sprintf("forecast: Aggregate got %d records and %d vectors", len(records), len(vectors)))
	}
	groups := make(map[aggKey]*AggregatedRow)

	for i, r := range records {
		v := vectors[i]
		key := aggKey{period: v.Period, flow: r.FlowType}
		row, ok := groups[key]
		if !ok {
			row = &AggregatedRow{
				Period:   v.Period,
				FlowType: r.FlowType,
				Features: v,
			}
			groups[key] = row
		}
		row.Total = row.Total.Add(r.Amount)
		row.Records++
	}

	rows := make([]AggregatedRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period.Before(rows[j].Period)
		}
		return flowOrder(rows[i].FlowType) < flowOrder(rows[j].FlowType)
	})
	return rows
}

func flowOrder(f model.FlowType) int {
	for i, ft := range model.FlowTypes {
		if ft == f {
			return i
		}
	}
	return len(model.FlowTypes)
}

// rowsFor filters rows to one flow type.
func rowsFor(rows []AggregatedRow, flow model.FlowType) []AggregatedRow {
	var out []AggregatedRow
	for _, r := range rows {
		if r.FlowType == flow {
			out = append(out, r)
		}
	}
	return out
}
