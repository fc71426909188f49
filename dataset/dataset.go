// Package dataset holds ordered collections of training samples.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/ahmedtd/ffnet/neuralnet"
)

// Set is an ordered list of samples.
type Set struct {
	Samples []neuralnet.Sample
}

func (s *Set) Add(inputs, outputs []float64) {
	s.Samples = append(s.Samples, neuralnet.Sample{Inputs: inputs, Outputs: outputs})
}

func (s *Set) Len() int {
	return len(s.Samples)
}

// Split partitions s into a training set and a test set.  The test set holds
// floor(Len()*testRatio) samples and the training set holds the rest.
//
// If r is non-nil the samples are shuffled with it first; otherwise both
// parts keep the original order, training samples first.  s is not modified.
func (s *Set) Split(testRatio float64, r *rand.Rand) (train, test *Set, err error) {
	if !(testRatio > 0 && testRatio < 1) {
		return nil, nil, fmt.Errorf("test ratio %v not in (0, 1): %w", testRatio, neuralnet.ErrInvalidArgument)
	}

	order := make([]neuralnet.Sample, len(s.Samples))
	copy(order, s.Samples)
	if r != nil {
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	testCount := int(float64(len(order)) * testRatio)
	trainCount := len(order) - testCount

	train = &Set{Samples: order[:trainCount:trainCount]}
	test = &Set{Samples: order[trainCount:]}
	return train, test, nil
}

// XOR is the four-row truth table of exclusive or.
func XOR() *Set {
	s := &Set{}
	s.Add([]float64{0, 0}, []float64{0})
	s.Add([]float64{0, 1}, []float64{1})
	s.Add([]float64{1, 0}, []float64{1})
	s.Add([]float64{1, 1}, []float64{0})
	return s
}

// CopyLastInput generates n samples of three inputs whose expected output is
// the last input.  The first two inputs are integers in [1, 25) and act as
// noise; the last is 0 or 1.
func CopyLastInput(n int, r *rand.Rand) *Set {
	s := &Set{Samples: make([]neuralnet.Sample, 0, n)}
	for i := 0; i < n; i++ {
		label := float64(r.Intn(2))
		s.Add(
			[]float64{float64(r.Intn(24) + 1), float64(r.Intn(24) + 1), label},
			[]float64{label},
		)
	}
	return s
}
