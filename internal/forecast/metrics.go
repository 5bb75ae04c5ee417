package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

var epsilon = math.Nextafter(1, 2) - 1

// r2Score is the coefficient of determination. A constant target scores 1
// when reproduced exactly and 0 otherwise.
func r2Score(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := stat.Mean(actual, nil)
	var ssTot, ssRes float64
	for i, y := range actual {
		ssTot += (y - mean) * (y - mean)
		ssRes += (y - predicted[i]) * (y - predicted[i])
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// mapeScore is the mean absolute percentage error as a fraction. Each
// divisor is floored at machine epsilon so zero targets do not fault.
func mapeScore(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i, y := range actual {
		sum += math.Abs(y-predicted[i]) / math.Max(math.Abs(y), epsilon)
	}
	return sum / float64(len(actual))
}
