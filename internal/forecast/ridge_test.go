package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRidge_RecoversLinearRelation(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 1}, {3, 5}, {4, 3}, {5, 8}}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 10 + 3*row[0] - 2*row[1]
	}

	r, err := FitRidge(x, y, 1e-9)
	require.NoError(t, err)

	coef := r.Coefficients()
	assert.InDelta(t, 3, coef[0], 1e-6)
	assert.InDelta(t, -2, coef[1], 1e-6)
	assert.InDelta(t, 10+3*6-2*4, r.Predict([]float64{6, 4}), 1e-6)
}

func TestFitRidge_PenaltyShrinks(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}

	loose, err := FitRidge(x, y, 1e-9)
	require.NoError(t, err)
	tight, err := FitRidge(x, y, 100)
	require.NoError(t, err)

	assert.InDelta(t, 2, loose.Coefficients()[0], 1e-6)
	assert.Less(t, tight.Coefficients()[0], loose.Coefficients()[0])
	// Centered fit keeps predictions at the mean of y for the mean of x.
	assert.InDelta(t, 5, tight.Predict([]float64{2.5}), 1e-9)
}

func TestFitRidge_ConstantColumn(t *testing.T) {
	x := [][]float64{{2024, 1}, {2024, 2}, {2024, 3}}
	y := []float64{10, 20, 30}

	r, err := FitRidge(x, y, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 0, r.Coefficients()[0], 1e-9)
	assert.InDelta(t, 40, r.Predict([]float64{2024, 4}), 1e-3)
}

func TestFitRidge_BadInput(t *testing.T) {
	_, err := FitRidge(nil, nil, 1)
	assert.Error(t, err)

	_, err = FitRidge([][]float64{{1}, {2}}, []float64{1}, 1)
	assert.Error(t, err)

	_, err = FitRidge([][]float64{{1}, {2}}, []float64{1, 2}, 0)
	assert.Error(t, err)

	_, err = FitRidge([][]float64{{1, 2}, {2}}, []float64{1, 2}, 1)
	assert.Error(t, err)
}

func TestScores(t *testing.T) {
	assert.InDelta(t, 1, r2Score([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0, mapeScore([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0.1, mapeScore([]float64{100, 200}, []float64{110, 180}), 1e-12)

	// Zero-variance target.
	assert.Equal(t, 1.0, r2Score([]float64{5, 5}, []float64{5, 5}))
	assert.Equal(t, 0.0, r2Score([]float64{5, 5}, []float64{4, 6}))

	// Zero target does not fault.
	m := mapeScore([]float64{0, 1}, []float64{0, 1})
	assert.Equal(t, 0.0, m)
}
