// Package forecast trains per-flow-type models on monthly ledger totals and
// projects them 30 and 60 days ahead.
package forecast

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fincast/internal/model"
	"go.uber.org/zap"
)

// State is a read-only view of the engine for status reporting.
type State struct {
	Trained      bool                              `json:"trained"`
	LastTraining *time.Time                        `json:"last_training,omitempty"`
	Accuracy     map[model.FlowType]model.Accuracy `json:"accuracy"`
	Anchor       string                            `json:"anchor,omitempty"`
	Models       map[model.FlowType]string         `json:"models"`
	Categories   int                               `json:"categories"`
}

// Engine holds the model bank and encoder state. It does no locking;
// callers sharing an Engine must serialize Train and PredictFuture.
type Engine struct {
	opts     Options
	log      *zap.Logger
	features FeatureBuilder

	bank         map[model.FlowType]Slot
	accuracy     map[model.FlowType]model.Accuracy
	anchor       *model.Period
	trained      bool
	lastTraining time.Time
}

// New returns an untrained engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.MinPeriods < 2 {
		o.MinPeriods = DefaultMinPeriods
	}
	if o.RidgeLambda <= 0 {
		o.RidgeLambda = DefaultRidgeLambda
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	e := &Engine{
		opts:     o,
		log:      o.Logger,
		bank:     make(map[model.FlowType]Slot),
		accuracy: make(map[model.FlowType]model.Accuracy),
	}
	if o.Anchor != nil {
		a := *o.Anchor
		e.anchor = &a
	}
	return e
}

// Train fits one slot per flow type from records and returns the in-sample
// accuracy of each. Both slots and the category encoder are committed
// together on success; on error the engine is left untouched.
func (e *Engine) Train(records []model.Record) (map[model.FlowType]model.Accuracy, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to train on", ErrValidation)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrValidation, i, err)
		}
	}

	anchor, err := e.resolveAnchor(records)
	if err != nil {
		return nil, err
	}

	features := e.features
	vectors, err := features.Build(records, anchor)
	if err != nil {
		return nil, err
	}
	rows := Aggregate(records, vectors)

	bank := make(map[model.FlowType]Slot, len(model.FlowTypes))
	accuracy := make(map[model.FlowType]model.Accuracy, len(model.FlowTypes))
	for _, flow := range model.FlowTypes {
		slot, acc, err := e.fitSlot(rowsFor(rows, flow))
		if err != nil {
			return nil, fmt.Errorf("training %s: %w", flow, err)
		}
		bank[flow] = slot
		accuracy[flow] = acc
	}

	if e.anchor != nil && *e.anchor != anchor {
		e.log.Info("forecast anchor moved",
			zap.Stringer("from", *e.anchor),
			zap.Stringer("to", anchor))
	}

	e.features = features
	e.bank = bank
	e.accuracy = accuracy
	e.anchor = &anchor
	e.trained = true
	e.lastTraining = e.opts.Now()

	for _, flow := range model.FlowTypes {
		e.log.Debug("trained slot",
			zap.String("flow_type", string(flow)),
			zap.String("model", bank[flow].Label()),
			zap.Float64("r2", accuracy[flow].R2),
			zap.Float64("mape", accuracy[flow].MAPE))
	}
	e.log.Info("training complete",
		zap.Int("records", len(records)),
		zap.Int("rows", len(rows)),
		zap.Stringer("anchor", anchor))

	return copyAccuracy(accuracy), nil
}

// resolveAnchor returns the configured anchor, or the earliest period seen
// in this batch or any earlier one.
func (e *Engine) resolveAnchor(records []model.Record) (model.Period, error) {
	if e.opts.Anchor != nil {
		return *e.opts.Anchor, nil
	}

	var earliest model.Period
	for i, r := range records {
		p, err := model.ParsePeriod(r.Period)
		if err != nil {
			return model.Period{}, fmt.Errorf("%w: record %d: %v", ErrValidation, i, err)
		}
		if i == 0 || p.Before(earliest) {
			earliest = p
		}
	}
	if e.anchor != nil && e.anchor.Before(earliest) {
		return *e.anchor, nil
	}
	return earliest, nil
}

func (e *Engine) fitSlot(rows []AggregatedRow) (Slot, model.Accuracy, error) {
	if len(rows) < e.opts.MinPeriods {
		if len(rows) == 0 {
			return ConstantSlot(0), model.Accuracy{}, nil
		}
		var sum float64
		for _, r := range rows {
			sum += r.Total.InexactFloat64()
		}
		return ConstantSlot(sum / float64(len(rows))), model.Accuracy{}, nil
	}

	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Features.Values()
		y[i] = r.Total.InexactFloat64()
	}

	ridge, err := FitRidge(x, y, e.opts.RidgeLambda)
	if err != nil {
		return Slot{}, model.Accuracy{}, err
	}

	fitted := ridge.PredictAll(x)
	return FittedSlot(ridge), model.Accuracy{
		R2:   r2Score(y, fitted),
		MAPE: 1 - mapeScore(y, fitted),
	}, nil
}

// PredictFuture projects every flow type to base + horizon/30 months for
// each horizon. An empty horizon list means DefaultHorizons. Results are
// keyed "<flow>_<horizon>d".
func (e *Engine) PredictFuture(basePeriod string, horizons []int) (map[string]model.Prediction, error) {
	if !e.trained || e.anchor == nil {
		return nil, ErrNotTrained
	}
	base, err := model.ParsePeriod(basePeriod)
	if err != nil {
		return nil, fmt.Errorf("%w: base period: %v", ErrValidation, err)
	}
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	for _, h := range horizons {
		if err := ValidateHorizon(h); err != nil {
			return nil, err
		}
	}

	out := make(map[string]model.Prediction, len(horizons)*len(model.FlowTypes))
	for _, h := range horizons {
		target := base.AddMonths(h / 30)
		fv := PeriodFeatures(target, *e.anchor)
		for _, flow := range model.FlowTypes {
			slot := e.bank[flow]
			est, band := slot.project(fv)
			out[Key(flow, h)] = model.Prediction{
				FlowType:     flow,
				HorizonDays:  h,
				TargetPeriod: target.String(),
				Predicted:    est,
				Confidence:   band,
				Accuracy:     e.accuracy[flow],
				Model:        slot.Label(),
			}
		}
	}
	return out, nil
}

// ValidateHorizon accepts only 30 and 60 days.
func ValidateHorizon(h int) error {
	if h != 30 && h != 60 {
		return fmt.Errorf("%w: horizon %d must be 30 or 60 days", ErrValidation, h)
	}
	return nil
}

// Key builds the result key for a flow type and horizon.
func Key(flow model.FlowType, horizon int) string {
	return fmt.Sprintf("%s_%dd", flow, horizon)
}

// Slot returns the current slot for flow.
func (e *Engine) Slot(flow model.FlowType) (Slot, bool) {
	s, ok := e.bank[flow]
	return s, ok
}

// State reports training status.
func (e *Engine) State() State {
	st := State{
		Trained:    e.trained,
		Accuracy:   copyAccuracy(e.accuracy),
		Models:     make(map[model.FlowType]string, len(e.bank)),
		Categories: e.features.Encoder.Len(),
	}
	if e.trained {
		t := e.lastTraining
		st.LastTraining = &t
	}
	if e.anchor != nil {
		st.Anchor = e.anchor.String()
	}
	for flow, s := range e.bank {
		st.Models[flow] = s.Label()
	}
	return st
}

// EncodeCategory returns the encoder code for label, 0 when unseen.
func (e *Engine) EncodeCategory(label string) int {
	return e.features.Encoder.Encode(label)
}

func copyAccuracy(m map[model.FlowType]model.Accuracy) map[model.FlowType]model.Accuracy {
	out := make(map[model.FlowType]model.Accuracy, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
