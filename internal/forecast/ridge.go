package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ridge is an L2-regularized linear regressor fit in closed form.
// Columns and target are centered before solving, so the intercept is
// not penalized.
type Ridge struct {
	Lambda float64

	coef      []float64
	means     []float64
	intercept float64
}

// FitRidge solves (XcᵀXc + λI)β = Xcᵀyc for centered X and y.
func FitRidge(x [][]float64, y []float64, lambda float64) (*Ridge, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("ridge: %d rows for %d targets", n, len(y))
	}
	p := len(x[0])
	if p == 0 {
		return nil, errors.New("ridge: no feature columns")
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("ridge: lambda must be positive, got %g", lambda)
	}

	means := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			if len(x[i]) != p {
				return nil, fmt.Errorf("ridge: row %d has %d columns, want %d", i, len(x[i]), p)
			}
			col[i] = x[i][j]
		}
		means[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, x[i][j]-means[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, errors.New("ridge: normal equations are not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		return nil, fmt.Errorf("ridge: solving normal equations: %w", err)
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}

	return &Ridge{
		Lambda:    lambda,
		coef:      coef,
		means:     means,
		intercept: yMean,
	}, nil
}

// Predict evaluates the model at x.
func (r *Ridge) Predict(x []float64) float64 {
	out := r.intercept
	for j, c := range r.coef {
		out += (x[j] - r.means[j]) * c
	}
	return out
}

// PredictAll evaluates the model at every row of x.
func (r *Ridge) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = r.Predict(row)
	}
	return out
}

// Coefficients returns a copy of the fitted weights in column order.
func (r *Ridge) Coefficients() []float64 {
	return append([]float64(nil), r.coef...)
}
