// Package model defines domain types for ledger entries, reports, and forecasts.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when a ledger record fails validation.
var ErrInvalidRecord = errors.New("invalid ledger record")

// FlowType distinguishes inflows from outflows.
type FlowType string

const (
	Revenue FlowType = "revenue"
	Cost    FlowType = "cost"
)

// FlowTypes lists every flow type in reporting order.
var FlowTypes = []FlowType{Revenue, Cost}

// Valid reports whether f is a known flow type.
func (f FlowType) Valid() bool {
	return f == Revenue || f == Cost
}

// ParseFlowType accepts the English names and the Portuguese labels used by
// older exports (receita, custo).
func ParseFlowType(s string) (FlowType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "revenue", "receita":
		return Revenue, nil
	case "cost", "custo":
		return Cost, nil
	}
	return "", fmt.Errorf("%w: flow type %q must be revenue or cost", ErrInvalidRecord, s)
}

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return Period{}, fmt.Errorf("period %q is not in YYYY-MM format", s)
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("period %q has month out of range", s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Time returns midnight UTC on the first day of the period.
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts the period by n months (n may be negative).
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Time().AddDate(0, n, 0))
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Quarter returns 1-4.
func (p Period) Quarter() int {
	return (int(p.Month)-1)/3 + 1
}

// Record is one ledger line item.
type Record struct {
	Period   string          `json:"period"`
	FlowType FlowType        `json:"flow_type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
}

// Validate checks the record invariants: well-formed period, known flow
// type, non-empty category and a strictly positive amount.
func (r Record) Validate() error {
	if _, err := ParsePeriod(r.Period); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !r.FlowType.Valid() {
		return fmt.Errorf("%w: flow type %q must be revenue or cost", ErrInvalidRecord, r.FlowType)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRecord)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero, got %s", ErrInvalidRecord, r.Amount)
	}
	return nil
}
