package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"
)

// Column aliases. The Portuguese names match exports from the legacy tool.
var columnAliases = map[string]string{
	"period":      "period",
	"competencia": "period",
	"flow_type":   "flow_type",
	"type":        "flow_type",
	"tipo":        "flow_type",
	"category":    "category",
	"categoria":   "category",
	"amount":      "amount",
	"valor":       "amount",
	"note":        "note",
	"description": "note",
	"descricao":   "note",
}

var requiredColumns = []string{"period", "flow_type", "category", "amount"}

// ParseCSV reads ledger rows from r. The first line must be a header.
// Rows missing any required cell are skipped and counted; any other bad
// row aborts the parse with its line number.
func ParseCSV(r io.Reader) ([]model.Record, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("%w: file is empty", ErrInvalidFile)
		}
		return nil, 0, fmt.Errorf("%w: reading header: %v", ErrInvalidFile, err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := columnAliases[name]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: missing required columns: %s", ErrInvalidFile, strings.Join(missing, ", "))
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		records []model.Record
		skipped int
		line    = 1
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, skipped, fmt.Errorf("%w: line %d: %v", ErrInvalidFile, line, err)
		}

		period := cell(row, "period")
		flow := cell(row, "flow_type")
		category := cell(row, "category")
		amount := cell(row, "amount")
		if period == "" || flow == "" || category == "" || amount == "" {
			skipped++
			continue
		}

		ft, err := model.ParseFlowType(flow)
		if err != nil {
			return nil, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, skipped, fmt.Errorf("line %d: %w: amount %q is not a number", line, model.ErrInvalidRecord, amount)
		}

		rec := model.Record{
			Period:   period,
			FlowType: ft,
			Category: category,
			Amount:   amt,
			Note:     cell(row, "note"),
		}
		if err := rec.Validate(); err != nil {
			return nil, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("%w: no data rows", ErrInvalidFile)
	}
	return records, skipped, nil
}
