package forecast

import (
	"math"

	"github.com/theirongolddev/fincast/internal/model"
)

// SlotKind identifies the variant held by a Slot.
type SlotKind int

const (
	SlotConstant SlotKind = iota
	SlotFitted
)

func (k SlotKind) String() string {
	if k == SlotFitted {
		return "fitted"
	}
	return "constant"
}

// Slot is the per-flow-type model: either a fitted regressor or a
// constant mean.
type Slot struct {
	kind  SlotKind
	value float64
	ridge *Ridge
}

// ConstantSlot returns a slot that always predicts v.
func ConstantSlot(v float64) Slot {
	return Slot{kind: SlotConstant, value: v}
}

// FittedSlot wraps a trained regressor.
func FittedSlot(r *Ridge) Slot {
	return Slot{kind: SlotFitted, ridge: r}
}

// Kind returns the slot variant.
func (s Slot) Kind() SlotKind { return s.kind }

// Constant returns the held value when the slot is a constant.
func (s Slot) Constant() (float64, bool) {
	return s.value, s.kind == SlotConstant
}

// Regressor returns the fitted model when the slot can predict from features.
func (s Slot) Regressor() (*Ridge, bool) {
	return s.ridge, s.kind == SlotFitted && s.ridge != nil
}

// Label is the model identifier reported with predictions.
func (s Slot) Label() string {
	if s.kind == SlotFitted {
		return model.ModelFitted
	}
	return model.ModelAverage
}

// project returns the clamped point estimate and its heuristic band.
func (s Slot) project(v FeatureVector) (float64, model.Interval) {
	var est float64
	var band model.Interval
	if r, ok := s.Regressor(); ok {
		est = r.Predict(v.Values())
		band = model.Interval{Lower: est * 0.85, Upper: est * 1.15}
	} else {
		est = s.value
		band = model.Interval{Lower: est * 0.9, Upper: est * 1.1}
	}
	est = math.Max(0, est)
	band.Lower = math.Max(0, band.Lower)
	return est, band
}
