package forecast

import "errors"

var (
	// ErrValidation marks bad input: malformed periods, empty training sets,
	// unsupported horizons or records that fail validation.
	ErrValidation = errors.New("validation error")

	// ErrNotTrained is returned when a forecast is requested before any
	// successful training pass.
	ErrNotTrained = errors.New("model not trained")
)
