package lime

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// singularJitter is added to the diagonal when the normal equations are not
// positive definite (e.g. alpha=0 with collinear columns).
const singularJitter = 1e-8

// ridgeModel is a weighted ridge regression with an unpenalised intercept.
type ridgeModel struct {
	coef      []float64
	intercept float64
}

// fitRidge solves (XcᵀWXc + αI)β = XcᵀWyc where Xc and yc are centred on
// their weighted means.
func fitRidge(X [][]float64, y, w []float64, alpha float64) (ridgeModel, error) {
	n := len(X)
	if n == 0 || n != len(y) || n != len(w) {
		return ridgeModel{}, errors.Errorf("ridge: bad shapes rows=%d targets=%d weights=%d", n, len(y), len(w))
	}
	p := len(X[0])
	var wsum float64
	for _, v := range w {
		wsum += v
	}
	if wsum <= 0 {
		return ridgeModel{}, errors.New("ridge: sample weights sum to zero")
	}

	xOff := make([]float64, p)
	var yOff float64
	for i, row := range X {
		for j, v := range row {
			xOff[j] += w[i] * v
		}
		yOff += w[i] * y[i]
	}
	for j := range xOff {
		xOff[j] /= wsum
	}
	yOff /= wsum
	if p == 0 {
		return ridgeModel{intercept: yOff}, nil
	}

	a := mat.NewSymDense(p, nil)
	b := mat.NewVecDense(p, nil)
	for i, row := range X {
		yc := y[i] - yOff
		for j := 0; j < p; j++ {
			xj := row[j] - xOff[j]
			b.SetVec(j, b.AtVec(j)+w[i]*xj*yc)
			for k := j; k < p; k++ {
				a.SetSym(j, k, a.At(j, k)+w[i]*xj*(row[k]-xOff[k]))
			}
		}
	}

	beta, err := solveSymmetric(a, b, alpha)
	if err != nil {
		return ridgeModel{}, err
	}
	model := ridgeModel{coef: beta, intercept: yOff}
	for j := range beta {
		model.intercept -= xOff[j] * beta[j]
	}
	return model, nil
}

func solveSymmetric(a *mat.SymDense, b *mat.VecDense, alpha float64) ([]float64, error) {
	p := a.SymmetricDim()
	for _, ridge := range []float64{alpha, alpha + singularJitter} {
		reg := mat.NewSymDense(p, nil)
		reg.CopySym(a)
		for j := 0; j < p; j++ {
			reg.SetSym(j, j, reg.At(j, j)+ridge)
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(reg); !ok {
			continue
		}
		var beta mat.VecDense
		if err := chol.SolveVecTo(&beta, b); err != nil {
			continue
		}
		out := make([]float64, p)
		for j := range out {
			out[j] = beta.AtVec(j)
		}
		return out, nil
	}
	return nil, errors.New("ridge: normal equations are singular")
}

func (m ridgeModel) predict(row []float64) float64 {
	out := m.intercept
	for j, c := range m.coef {
		out += c * row[j]
	}
	return out
}

// score returns the weighted coefficient of determination.
func (m ridgeModel) score(X [][]float64, y, w []float64) float64 {
	var wsum, ymean float64
	for i := range y {
		wsum += w[i]
		ymean += w[i] * y[i]
	}
	if wsum == 0 {
		return 0
	}
	ymean /= wsum
	var num, den float64
	for i, row := range X {
		r := y[i] - m.predict(row)
		num += w[i] * r * r
		d := y[i] - ymean
		den += w[i] * d * d
	}
	if den == 0 {
		if num == 0 {
			return 1
		}
		return 0
	}
	return 1 - num/den
}

func selectColumns(X [][]float64, cols []int) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		sub := make([]float64, len(cols))
		for j, c := range cols {
			sub[j] = row[c]
		}
		out[i] = sub
	}
	return out
}
