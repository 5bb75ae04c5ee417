package forecast

import (
	"time"

	"github.com/theirongolddev/fincast/internal/model"
	"go.uber.org/zap"
)

// Defaults used when no option overrides them.
const (
	DefaultMinPeriods  = 3
	DefaultRidgeLambda = 1e-6
)

// DefaultHorizons are the supported forecast distances in days.
var DefaultHorizons = []int{30, 60}

// Options controls engine behavior.
type Options struct {
	// MinPeriods is the number of distinct periods a flow type needs
	// before a regressor is fitted instead of the mean fallback.
	MinPeriods int

	// RidgeLambda is the L2 penalty of the regressor. Must be positive.
	RidgeLambda float64

	// Anchor pins the months-since-start origin. When nil the engine uses
	// the earliest period it has seen across all training calls.
	Anchor *model.Period

	Now    func() time.Time
	Logger *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithMinPeriods sets the fitted-model threshold.
func WithMinPeriods(n int) Option {
	return func(o *Options) { o.MinPeriods = n }
}

// WithRidgeLambda sets the regularization strength.
func WithRidgeLambda(l float64) Option {
	return func(o *Options) { o.RidgeLambda = l }
}

// WithAnchor fixes the months-since-start origin.
func WithAnchor(p model.Period) Option {
	return func(o *Options) { o.Anchor = &p }
}

// WithClock overrides the time source used for training timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func defaultOptions() Options {
	return Options{
		MinPeriods:  DefaultMinPeriods,
		RidgeLambda: DefaultRidgeLambda,
		Now:         time.Now,
		Logger:      zap.NewNop(),
	}
}
