package neuralnet

import "math/rand"

// WeightSource supplies initial connection weights.  It is only consulted
// while layers are being connected.
type WeightSource interface {
	Next() float64
}

// UniformSource draws weights uniformly from [Min, Max).
type UniformSource struct {
	Min, Max float64

	r *rand.Rand
}

var _ WeightSource = (*UniformSource)(nil)

func NewUniformSource(r *rand.Rand, min, max float64) *UniformSource {
	if r == nil {
		panic("nil random source")
	}
	if max < min {
		panic("max < min")
	}
	return &UniformSource{Min: min, Max: max, r: r}
}

// UnitRangeSource draws from [-1, 1).
func UnitRangeSource(r *rand.Rand) *UniformSource {
	return NewUniformSource(r, -1, 1)
}

// HalfUnitRangeSource draws from [-0.5, 0.5).
func HalfUnitRangeSource(r *rand.Rand) *UniformSource {
	return NewUniformSource(r, -0.5, 0.5)
}

func (u *UniformSource) Next() float64 {
	return u.Min + u.r.Float64()*(u.Max-u.Min)
}
