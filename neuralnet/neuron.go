package neuralnet

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// optional holds a value that may not have been computed yet.  Empty means
// "not computed for the current pass", never "failed".
type optional[T any] struct {
	v  T
	ok bool
}

func (o *optional[T]) set(v T) {
	o.v = v
	o.ok = true
}

func (o *optional[T]) clear() {
	*o = optional[T]{}
}

func (o optional[T]) get() (T, bool) {
	return o.v, o.ok
}

type neuronKind int

const (
	inputNeuron neuronKind = iota
	computeNeuron
)

// neuron is a tagged variant.  Exactly one of in and comp is non-nil,
// selected by kind.
type neuron struct {
	kind neuronKind
	in   *inputState
	comp *computeState

	// Indices into Network.synapses.
	outgoing []int
}

type inputState struct {
	value optional[float64]
}

type computeState struct {
	activation ActivationType
	inputFn    InputFunctionType

	// Indices into Network.synapses, in connection order.
	incoming []int

	bias float64

	// Valid between a forward pass and the next call to setInputs.
	cached optional[float64]

	// Valid only after the backward pass for the current sample.
	err optional[float64]

	// One entry per sample seen this epoch.
	biasDeltas []float64
}

// synapse is a weighted edge from neuron src to computing neuron dst.  Both
// ends are indices into Network.neurons.
type synapse struct {
	weight float64
	src    int
	dst    int

	// One entry per sample seen this epoch.
	weightDeltas []float64
}

// activation returns the output of neuron n: the externally set value for an
// input neuron, the (possibly cached) computed activation otherwise.
func (net *Network) activation(n int) (float64, error) {
	nr := &net.neurons[n]
	switch nr.kind {
	case inputNeuron:
		v, ok := nr.in.value.get()
		if !ok {
			return 0, fmt.Errorf("input neuron %d has no value: %w", n, ErrInvalidState)
		}
		return v, nil
	case computeNeuron:
		return net.computeActivation(n)
	default:
		panic("unhandled neuron kind")
	}
}

// netInput evaluates the input function over the incoming synapses of
// computing neuron n and adds its bias.  Nothing is cached.
func (net *Network) netInput(n int) (float64, error) {
	c := net.neurons[n].comp

	weights := make([]float64, len(c.incoming))
	outputs := make([]float64, len(c.incoming))
	for i, s := range c.incoming {
		syn := &net.synapses[s]
		out, err := net.activation(syn.src)
		if err != nil {
			return 0, err
		}
		weights[i] = syn.weight
		outputs[i] = out
	}

	return c.inputFn.Reduce(weights, outputs) + c.bias, nil
}

func (net *Network) computeActivation(n int) (float64, error) {
	c := net.neurons[n].comp
	if a, ok := c.cached.get(); ok {
		return a, nil
	}

	z, err := net.netInput(n)
	if err != nil {
		return 0, err
	}
	a := c.activation.Output(z)
	c.cached.set(a)
	return a, nil
}

func (net *Network) computeDerivative(n int) (float64, error) {
	c := net.neurons[n].comp
	z, err := net.netInput(n)
	if err != nil {
		return 0, err
	}
	d, err := c.activation.Derivative(z)
	if err != nil {
		return 0, fmt.Errorf("neuron %d: %w", n, err)
	}
	return d, nil
}

func (net *Network) neuronError(n int) (float64, error) {
	e, ok := net.neurons[n].comp.err.get()
	if !ok {
		return 0, fmt.Errorf("neuron %d has no error for this sample: %w", n, ErrInvalidState)
	}
	return e, nil
}

func (net *Network) setNeuronError(n int, e float64) {
	net.neurons[n].comp.err.set(e)
}

// prepareForTraining empties the bias accumulator of computing neuron n and
// the weight accumulators of its incoming synapses.
func (net *Network) prepareForTraining(n int) {
	c := net.neurons[n].comp
	c.biasDeltas = c.biasDeltas[:0]
	for _, s := range c.incoming {
		net.synapses[s].weightDeltas = net.synapses[s].weightDeltas[:0]
	}
}

// commitTraining adds the mean accumulated bias delta (only if applyBias) and
// the mean accumulated weight delta of every incoming synapse.  Accumulators
// are empty afterwards.
func (net *Network) commitTraining(n int, applyBias bool) error {
	c := net.neurons[n].comp
	if applyBias {
		mean, err := average(c.biasDeltas)
		if err != nil {
			return fmt.Errorf("while committing bias of neuron %d: %w", n, err)
		}
		c.bias += mean
	}
	c.biasDeltas = c.biasDeltas[:0]

	for _, s := range c.incoming {
		syn := &net.synapses[s]
		mean, err := average(syn.weightDeltas)
		if err != nil {
			return fmt.Errorf("while committing weight of synapse %d: %w", s, err)
		}
		syn.weight += mean
		syn.weightDeltas = syn.weightDeltas[:0]
	}

	return nil
}

func average(deltas []float64) (float64, error) {
	if len(deltas) == 0 {
		return 0, ErrEmptyAccumulation
	}
	return floats.Sum(deltas) / float64(len(deltas)), nil
}
