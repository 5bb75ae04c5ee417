package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/theirongolddev/fincast/internal/model"
)

// daysPerMonth is the average Gregorian month length.
const daysPerMonth = 30.44

// FeatureVector is the derived numeric view of one ledger record.
type FeatureVector struct {
	Period           model.Period
	Year             int
	Month            int
	Quarter          int
	MonthsSinceStart int
	MonthSin         float64
	MonthCos         float64
	Category         int
}

// Values returns the regression columns in fixed order:
// year, month, quarter, monthsSinceStart, month_sin, month_cos.
func (v FeatureVector) Values() []float64 {
	return []float64{
		float64(v.Year),
		float64(v.Month),
		float64(v.Quarter),
		float64(v.MonthsSinceStart),
		v.MonthSin,
		v.MonthCos,
	}
}

// PeriodFeatures computes the calendar features of p relative to anchor.
// Category is left at the sentinel code.
func PeriodFeatures(p, anchor model.Period) FeatureVector {
	angle := 2 * math.Pi * float64(p.Month) / 12
	return FeatureVector{
		Period:           p,
		Year:             p.Year,
		Month:            int(p.Month),
		Quarter:          p.Quarter(),
		MonthsSinceStart: monthsBetween(anchor, p),
		MonthSin:         math.Sin(angle),
		MonthCos:         math.Cos(angle),
	}
}

func monthsBetween(from, to model.Period) int {
	days := to.Time().Sub(from.Time()).Hours() / 24
	return int(math.Round(days / daysPerMonth))
}

// CategoryEncoder maps category labels to stable integer codes.
// Codes start at 1; 0 is reserved for labels not seen when the encoder was fit.
type CategoryEncoder struct {
	codes map[string]int
}

// Fitted reports whether the encoder has been fit.
func (e *CategoryEncoder) Fitted() bool {
	return e.codes != nil
}

// Fit builds the mapping from the sorted set of unique labels.
func (e *CategoryEncoder) Fit(labels []string) {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	uniq := make([]string, 0, len(seen))
	for l := range seen {
		uniq = append(uniq, l)
	}
	sort.Strings(uniq)

	e.codes = make(map[string]int, len(uniq))
	for i, l := range uniq {
		e.codes[l] = i + 1
	}
}

// Encode returns the code for label, or 0 when the label is unknown.
func (e *CategoryEncoder) Encode(label string) int {
	return e.codes[label]
}

// Len returns the number of known labels.
func (e *CategoryEncoder) Len() int {
	return len(e.codes)
}

// FeatureBuilder turns ledger records into feature vectors. The encoder is
// fit on the first Build call and only transforms afterwards.
type FeatureBuilder struct {
	Encoder CategoryEncoder
}

// Build returns one FeatureVector per record, in input order.
func (b *FeatureBuilder) Build(records []model.Record, anchor model.Period) ([]FeatureVector, error) {
	periods := make([]model.Period, len(records))
	for i, r := range records {
		p, err := model.ParsePeriod(r.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrValidation, i, err)
		}
		periods[i] = p
	}

	if !b.Encoder.Fitted() {
		labels := make([]string, len(records))
		for i, r := range records {
			labels[i] = r.Category
		}
		b.Encoder.Fit(labels)
	}

	vectors := make([]FeatureVector, len(records))
	for i, r := range records {
		v := PeriodFeatures(periods[i], anchor)
		v.Category = b.Encoder.Encode(r.Category)
		vectors[i] = v
	}
	return vectors, nil
}
