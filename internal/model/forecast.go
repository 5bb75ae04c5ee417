package model

import "time"

// Model labels reported alongside predictions.
const (
	ModelFitted  = "fitted_model"
	ModelAverage = "simple_average"
)

// Accuracy is the in-sample fit quality of one flow type's model.
// MAPE holds 1 - mean absolute percentage error, so higher is better.
type Accuracy struct {
	R2   float64 `json:"r2"`
	MAPE float64 `json:"mape"`
}

// Interval is a [Lower, Upper] confidence band.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Prediction is one forecast value for a flow type and horizon.
type Prediction struct {
	FlowType     FlowType `json:"flow_type"`
	HorizonDays  int      `json:"horizon_days"`
	TargetPeriod string   `json:"target_period"`
	Predicted    float64  `json:"predicted"`
	Confidence   Interval `json:"confidence_interval"`
	Accuracy     Accuracy `json:"accuracy"`
	Model        string   `json:"model"`
}

// Forecast is the result of one prediction run.
type Forecast struct {
	RunID       string                `json:"run_id"`
	BasePeriod  string                `json:"base_period"`
	GeneratedAt time.Time             `json:"generated_at"`
	Records     int                   `json:"records"`
	Predictions map[string]Prediction `json:"predictions"`
}

// HistoryEntry is a persisted prediction.
type HistoryEntry struct {
	RunID       string    `json:"run_id"`
	BasePeriod  string    `json:"base_period"`
	FlowType    FlowType  `json:"flow_type"`
	HorizonDays int       `json:"horizon_days"`
	Predicted   float64   `json:"predicted"`
	Confidence  Interval  `json:"confidence_interval"`
	Accuracy    Accuracy  `json:"accuracy"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}
