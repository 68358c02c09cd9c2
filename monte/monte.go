package monte

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// GMM is a Gaussian mixture with a single covariance shared by all
// components ("tied" covariance). It models the input uncertainty of the
// push experiments: the robot never executes exactly the input it was given.
type GMM struct {
	// Weights are the mixing weights; they are normalized on use.
	Weights []float64

	// Means[k] is the mean of component k.
	Means [][]float64

	// Covariance is the shared covariance matrix, dim x dim.
	Covariance [][]float64
}

// Dim returns the dimensionality of the mixture.
func (g GMM) Dim() int {
	if len(g.Means) == 0 {
		return 0
	}
	return len(g.Means[0])
}

// Validate checks that the mixture is well formed.
func (g GMM) Validate() error {
	if len(g.Means) == 0 {
		return errors.New("gmm needs at least one component")
	}
	if len(g.Weights) != len(g.Means) {
		return fmt.Errorf("gmm has %d weights for %d components", len(g.Weights), len(g.Means))
	}
	total := 0.0
	for i, w := range g.Weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("gmm weight %d is invalid: %v", i, w)
		}
		total += w
	}
	if total <= 0 {
		return errors.New("gmm weights sum to zero")
	}
	dim := g.Dim()
	if dim == 0 {
		return errors.New("gmm means are empty")
	}
	for i, m := range g.Means {
		if len(m) != dim {
			return fmt.Errorf("gmm mean %d has %d dims, expected %d", i, len(m), dim)
		}
	}
	if len(g.Covariance) != dim {
		return fmt.Errorf("gmm covariance has %d rows, expected %d", len(g.Covariance), dim)
	}
	for i, row := range g.Covariance {
		if len(row) != dim {
			return fmt.Errorf("gmm covariance row %d has %d cols, expected %d", i, len(row), dim)
		}
	}
	return nil
}

// cholesky returns the lower triangular factor L with L*L^T = cov. A
// non-positive pivot is clamped to zero together with the rest of its
// column, so an indefinite covariance yields a degenerate distribution
// along that direction.
func cholesky(cov [][]float64) [][]float64 {
	n := len(cov)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for j := 0; j < n; j++ {
		d := cov[j][j]
		for k := 0; k < j; k++ {
			d -= l[j][k] * l[j][k]
		}
		if d <= 0 {
			continue
		}
		l[j][j] = math.Sqrt(d)
		for i := j + 1; i < n; i++ {
			s := cov[i][j]
			for k := 0; k < j; k++ {
				s -= l[i][k] * l[j][k]
			}
			l[i][j] = s / l[j][j]
		}
	}
	return l
}

// Perturber draws noisy copies of final outcomes.
type Perturber struct {
	GMM GMM

	// Workers bounds the number of goroutines; 0 means runtime.NumCPU().
	Workers int

	chol [][]float64
	cum  []float64

	// rng only hands out per-sample seeds.
	rng *rand.Rand
}

// NewPerturber validates gmm and prepares a Perturber. A zero seed uses the
// current time.
func NewPerturber(gmm GMM, seed int64) (*Perturber, error) {
	if err := gmm.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	total := 0.0
	for _, w := range gmm.Weights {
		total += w
	}
	cum := make([]float64, len(gmm.Weights))
	acc := 0.0
	for i, w := range gmm.Weights {
		acc += w / total
		cum[i] = acc
	}

	return &Perturber{
		GMM:  gmm,
		chol: cholesky(gmm.Covariance),
		cum:  cum,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// SetWorkers sets the maximum number of sampling goroutines.
func (p *Perturber) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.Workers = n
}

// sample draws one noise vector.
func (p *Perturber) sample(rng *rand.Rand) []float64 {
	u := rng.Float64()
	k := len(p.cum) - 1
	for i, c := range p.cum {
		if u <= c {
			k = i
			break
		}
	}

	dim := p.GMM.Dim()
	z := make([]float64, dim)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	out := make([]float64, dim)
	for i := 0; i < dim; i++ {
		v := p.GMM.Means[k][i]
		for j := 0; j <= i; j++ {
			v += p.chol[i][j] * z[j]
		}
		out[i] = v
	}
	return out
}

// Perturb returns `samples` noisy copies of every outcome, grouped by
// outcome: result[i*samples+s] is sample s of outcomes[i]. Noise is added to
// the leading min(len(outcome), GMM.Dim()) components; the remaining
// components are copied unchanged.
//
// Per-sample seeds are drawn serially from the Perturber's RNG, so the
// result only depends on the seed given to NewPerturber and the number of
// previous calls.
func (p *Perturber) Perturb(outcomes [][]float64, samples int) ([][]float64, error) {
	if p == nil {
		return nil, errors.New("Perturber is nil")
	}
	if samples <= 0 {
		return nil, fmt.Errorf("samples must be > 0, got %d", samples)
	}

	n := len(outcomes) * samples
	results := make([][]float64, n)
	if n == 0 {
		return results, nil
	}

	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = p.rng.Int63()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	wp := pool.New().WithMaxGoroutines(workers)
	for i, outcome := range outcomes {
		for s := 0; s < samples; s++ {
			slot := i*samples + s
			wp.Go(func() {
				rng := rand.New(rand.NewSource(seeds[slot]))
				noise := p.sample(rng)
				x := append([]float64(nil), outcome...)
				for d := 0; d < len(x) && d < len(noise); d++ {
					x[d] += noise[d]
				}
				results[slot] = x
			})
		}
	}
	wp.Wait()

	return results, nil
}
