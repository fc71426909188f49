package neuralnet

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

// sequenceSource hands out a fixed list of weights, cycling when exhausted.
type sequenceSource struct {
	weights []float64
	next    int
}

func (s *sequenceSource) Next() float64 {
	w := s.weights[s.next%len(s.weights)]
	s.next++
	return w
}

func mustAppend(t *testing.T, net *Network, size int, activation ActivationType) {
	t.Helper()
	if err := net.AppendLayer(size, activation, WeightedSum); err != nil {
		t.Fatalf("AppendLayer(%d, %v): %v", size, activation, err)
	}
}

func TestFullyConnected(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	net := New(3, UnitRangeSource(r))
	mustAppend(t, net, 4, Sigmoid)
	mustAppend(t, net, 2, ReLU)
	mustAppend(t, net, 1, Identity)

	if got, want := len(net.synapses), 3*4+4*2+2*1; got != want {
		t.Fatalf("got %d synapses, want %d", got, want)
	}

	for l := 1; l < net.NumLayers(); l++ {
		prev := net.layers[l-1]
		lay := net.layers[l]
		pairs := map[[2]int]int{}
		for _, src := range prev.neurons {
			for _, s := range net.neurons[src].outgoing {
				syn := net.synapses[s]
				if syn.src != src {
					t.Errorf("synapse %d listed as outgoing of %d but has src %d", s, src, syn.src)
				}
				pairs[[2]int{syn.src, syn.dst}]++
			}
		}
		for _, src := range prev.neurons {
			for _, dst := range lay.neurons {
				if pairs[[2]int{src, dst}] != 1 {
					t.Errorf("layer %d: %d synapses from %d to %d, want 1", l, pairs[[2]int{src, dst}], src, dst)
				}
			}
		}
		for _, dst := range lay.neurons {
			if got := len(net.neurons[dst].comp.incoming); got != len(prev.neurons) {
				t.Errorf("neuron %d has %d incoming synapses, want %d", dst, got, len(prev.neurons))
			}
		}
	}

	if net.InputSize() != 3 || net.OutputSize() != 1 || net.LayerSize(2) != 2 {
		t.Errorf("wrong sizes: input=%d output=%d layer2=%d", net.InputSize(), net.OutputSize(), net.LayerSize(2))
	}
	if net.LayerActivation(2) != ReLU {
		t.Errorf("layer 2 activation = %v, want relu", net.LayerActivation(2))
	}
	for _, w := range net.Parameters().Weights {
		if w < -1 || w >= 1 {
			t.Errorf("weight %v outside [-1, 1)", w)
		}
	}
}

func TestPredictHandComputed(t *testing.T) {
	// Source-major order: x0->h0, x0->h1, x1->h0, x1->h1, then h0->o, h1->o.
	src := &sequenceSource{weights: []float64{0.5, -1, 0.25, 2, 1.5, -0.75}}
	net := New(2, src)
	mustAppend(t, net, 2, Sigmoid)
	mustAppend(t, net, 1, Identity)

	x0, x1 := 0.8, -0.4
	h0 := 1 / (1 + math.Exp(-(0.5*x0 + 0.25*x1)))
	h1 := 1 / (1 + math.Exp(-(-1*x0 + 2*x1)))
	want := []float64{1.5*h0 - 0.75*h1}

	got, err := net.Predict([]float64{x0, x1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Wrong output; diff (-got +want)\n%s", diff)
	}

	wantW := mat.NewDense(2, 2, []float64{
		0.5, 0.25,
		-1, 2,
	})
	if !mat.Equal(net.WeightMatrix(1), wantW) {
		t.Errorf("WeightMatrix(1) = %v, want %v", mat.Formatted(net.WeightMatrix(1)), mat.Formatted(wantW))
	}
	if !mat.Equal(net.WeightMatrix(2), mat.NewDense(1, 2, []float64{1.5, -0.75})) {
		t.Errorf("WeightMatrix(2) = %v", mat.Formatted(net.WeightMatrix(2)))
	}
	if diff := cmp.Diff(net.Biases(1), []float64{0, 0}); diff != "" {
		t.Errorf("Wrong initial biases; diff (-got +want)\n%s", diff)
	}
}

func TestPredictDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	net := New(4, UnitRangeSource(r))
	mustAppend(t, net, 5, Sigmoid)
	mustAppend(t, net, 3, Identity)

	inputs := [][]float64{
		{0, 0, 0, 0},
		{1, -2, 3, -4},
		{0.1, 0.2, 0.3, 0.4},
	}
	for _, in := range inputs {
		first, err := net.Predict(in)
		if err != nil {
			t.Fatalf("Predict(%v): %v", in, err)
		}
		// A different input in between must not leak into the next result.
		if _, err := net.Predict([]float64{9, 9, 9, 9}); err != nil {
			t.Fatalf("Predict: %v", err)
		}
		second, err := net.Predict(in)
		if err != nil {
			t.Fatalf("Predict(%v): %v", in, err)
		}
		if diff := cmp.Diff(second, first); diff != "" {
			t.Errorf("Predict(%v) not deterministic; diff (-second +first)\n%s", in, diff)
		}
	}
}

func TestPredictInvalidatesCache(t *testing.T) {
	src := &sequenceSource{weights: []float64{1}}
	net := New(1, src)
	mustAppend(t, net, 1, Identity)

	got, err := net.Predict([]float64{2})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got[0] != 2 {
		t.Fatalf("Predict(2) = %v, want 2", got[0])
	}

	// The cached activation is served until new inputs are set.
	net.synapses[0].weight = 3
	out := net.layers[1].neurons[0]
	if a, _ := net.computeActivation(out); a != 2 {
		t.Errorf("cached activation = %v, want 2", a)
	}

	got, err = net.Predict([]float64{2})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got[0] != 6 {
		t.Errorf("Predict(2) after weight change = %v, want 6", got[0])
	}
}

func TestPredictWrongArity(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	net := New(3, UnitRangeSource(r))
	mustAppend(t, net, 1, Sigmoid)

	for _, in := range [][]float64{nil, {1, 2}, {1, 2, 3, 4}} {
		if _, err := net.Predict(in); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Predict(%v) error = %v, want ErrInvalidArgument", in, err)
		}
	}
}

func TestPredictWithoutComputingLayer(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	net := New(2, UnitRangeSource(r))
	if _, err := net.Predict([]float64{1, 2}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Predict error = %v, want ErrInvalidState", err)
	}
}

func TestInputNeuronUnset(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	net := New(2, UnitRangeSource(r))
	mustAppend(t, net, 1, Sigmoid)

	if _, err := net.activation(net.layers[0].neurons[0]); !errors.Is(err, ErrInvalidState) {
		t.Errorf("activation of unset input error = %v, want ErrInvalidState", err)
	}
	if _, err := net.computeActivation(net.layers[1].neurons[0]); !errors.Is(err, ErrInvalidState) {
		t.Errorf("computeActivation before inputs error = %v, want ErrInvalidState", err)
	}
}

func TestAppendLayerOnZeroNetwork(t *testing.T) {
	var net Network
	if err := net.AppendLayer(1, Sigmoid, WeightedSum); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AppendLayer error = %v, want ErrInvalidState", err)
	}
}

func TestUniformSourceRanges(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	sources := map[string]*UniformSource{
		"unit":      UnitRangeSource(r),
		"half-unit": HalfUnitRangeSource(r),
		"custom":    NewUniformSource(r, 2, 2.5),
	}
	for name, src := range sources {
		for i := 0; i < 1000; i++ {
			if w := src.Next(); w < src.Min || w >= src.Max {
				t.Fatalf("%s: %v outside [%v, %v)", name, w, src.Min, src.Max)
			}
		}
	}

	// Two sources seeded alike produce the same network.
	a := New(2, UnitRangeSource(rand.New(rand.NewSource(99))))
	b := New(2, UnitRangeSource(rand.New(rand.NewSource(99))))
	mustAppend(t, a, 3, Sigmoid)
	mustAppend(t, b, 3, Sigmoid)
	if diff := cmp.Diff(a.Parameters(), b.Parameters()); diff != "" {
		t.Errorf("identically seeded networks differ; diff (-a +b)\n%s", diff)
	}
}
