package neuralnet

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Sample is one training or test example.
type Sample struct {
	Inputs  []float64
	Outputs []float64
}

type TrainingTimings struct {
	Overall         time.Duration
	Forward         time.Duration
	Backpropagation time.Duration
	Accumulate      time.Duration
	Commit          time.Duration
}

func (t *TrainingTimings) Reset() {
	t.Overall = 0 * time.Second
	t.Forward = 0 * time.Second
	t.Backpropagation = 0 * time.Second
	t.Accumulate = 0 * time.Second
	t.Commit = 0 * time.Second
}

// EpochFunc is called once per epoch with the summed cost of every sample in
// it.  It runs before the epoch's update is committed and cannot affect
// training.
type EpochFunc func(epoch int, costSum float64)

// Trainer runs full-batch gradient descent on a Network: every sample of an
// epoch contributes one delta per weight and bias, and the mean delta is
// applied once at the end of the epoch.
type Trainer struct {
	net           *Network
	learningRate  float64
	errorFunction ErrorFunctionType
	trainBiases   bool

	Timings TrainingTimings
}

// NewTrainer returns a Trainer for net.  If trainBiases is false biases keep
// their initial value of zero.
func NewTrainer(net *Network, learningRate float64, errorFunction ErrorFunctionType, trainBiases bool) *Trainer {
	return &Trainer{
		net:           net,
		learningRate:  learningRate,
		errorFunction: errorFunction,
		trainBiases:   trainBiases,
	}
}

func (t *Trainer) Network() *Network {
	return t.net
}

// Train runs epochs passes over samples, in order.  onEpoch may be nil.
//
// Training with no samples fails with ErrEmptyAccumulation at the end of the
// first epoch.
func (t *Trainer) Train(samples []Sample, epochs int, onEpoch EpochFunc) error {
	for epoch := 0; epoch < epochs; epoch++ {
		start := time.Now()

		t.prepare()

		costSum := float64(0)
		for k := range samples {
			cost, err := t.accumulate(samples[k])
			if err != nil {
				return fmt.Errorf("while training on sample %d of epoch %d: %w", k, epoch, err)
			}
			costSum += cost
		}

		if onEpoch != nil {
			onEpoch(epoch, costSum)
		}

		commitStart := time.Now()
		if err := t.commit(); err != nil {
			return fmt.Errorf("while committing epoch %d: %w", epoch, err)
		}
		t.Timings.Commit += time.Since(commitStart)

		t.Timings.Overall += time.Since(start)
	}

	return nil
}

// Test returns the mean per-sample cost over samples.  Only cached
// activations are touched.
func (t *Trainer) Test(samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("no samples to test: %w", ErrInvalidArgument)
	}

	costs := make([]float64, len(samples))
	for k := range samples {
		outputs, err := t.net.Predict(samples[k].Inputs)
		if err != nil {
			return 0, fmt.Errorf("while testing sample %d: %w", k, err)
		}
		cost, err := t.cost(outputs, samples[k].Outputs)
		if err != nil {
			return 0, fmt.Errorf("while testing sample %d: %w", k, err)
		}
		costs[k] = cost
	}

	return floats.Sum(costs) / float64(len(costs)), nil
}

// cost sums the error function over the output neurons.
func (t *Trainer) cost(outputs, expected []float64) (float64, error) {
	if len(outputs) != len(expected) {
		return 0, fmt.Errorf("got %d expected outputs, output layer has %d neurons: %w", len(expected), len(outputs), ErrInvalidArgument)
	}
	sum := float64(0)
	for i := range outputs {
		sum += t.errorFunction.Cost(expected[i], outputs[i])
	}
	return sum, nil
}

func (t *Trainer) prepare() {
	for l := 1; l < len(t.net.layers); l++ {
		for _, n := range t.net.layers[l].neurons {
			t.net.prepareForTraining(n)
		}
	}
}

// accumulate runs the forward and backward pass for one sample and appends
// one bias delta per computing neuron and one weight delta per synapse.
func (t *Trainer) accumulate(s Sample) (float64, error) {
	forwardStart := time.Now()
	outputs, err := t.net.Predict(s.Inputs)
	if err != nil {
		return 0, err
	}
	cost, err := t.cost(outputs, s.Outputs)
	if err != nil {
		return 0, err
	}
	t.Timings.Forward += time.Since(forwardStart)

	backpropStart := time.Now()
	if err := t.computeOutputErrors(s.Outputs); err != nil {
		return 0, fmt.Errorf("while computing output layer error: %w", err)
	}
	if err := t.computeHiddenErrors(); err != nil {
		return 0, fmt.Errorf("while computing hidden layer error: %w", err)
	}
	t.Timings.Backpropagation += time.Since(backpropStart)

	accumulateStart := time.Now()
	if err := t.collectBiasDeltas(); err != nil {
		return 0, err
	}
	if err := t.collectWeightDeltas(); err != nil {
		return 0, err
	}
	t.Timings.Accumulate += time.Since(accumulateStart)

	return cost, nil
}

func (t *Trainer) computeOutputErrors(expected []float64) error {
	net := t.net
	out := net.layers[len(net.layers)-1]
	for i, n := range out.neurons {
		computed, err := net.computeActivation(n)
		if err != nil {
			return err
		}
		derivative, err := net.computeDerivative(n)
		if err != nil {
			return err
		}
		net.setNeuronError(n, derivative*t.errorFunction.Derivative(expected[i], computed))
	}
	return nil
}

// computeHiddenErrors walks the hidden layers from last to first.  Each
// neuron's error needs the errors of every neuron it feeds, so the order is
// not negotiable.
func (t *Trainer) computeHiddenErrors() error {
	net := t.net
	for l := len(net.layers) - 2; l >= 1; l-- {
		for _, n := range net.layers[l].neurons {
			errorSum := float64(0)
			for _, s := range net.neurons[n].outgoing {
				syn := &net.synapses[s]
				e, err := net.neuronError(syn.dst)
				if err != nil {
					return err
				}
				errorSum += syn.weight * e
			}
			derivative, err := net.computeDerivative(n)
			if err != nil {
				return fmt.Errorf("layer %d: %w", l, err)
			}
			net.setNeuronError(n, derivative*errorSum)
		}
	}
	return nil
}

func (t *Trainer) collectBiasDeltas() error {
	net := t.net
	for l := 1; l < len(net.layers); l++ {
		for _, n := range net.layers[l].neurons {
			e, err := net.neuronError(n)
			if err != nil {
				return err
			}
			c := net.neurons[n].comp
			c.biasDeltas = append(c.biasDeltas, t.learningRate*e)
		}
	}
	return nil
}

// collectWeightDeltas covers every synapse, including those leaving the
// input layer.
func (t *Trainer) collectWeightDeltas() error {
	net := t.net
	for l := 0; l < len(net.layers)-1; l++ {
		for _, n := range net.layers[l].neurons {
			output, err := net.activation(n)
			if err != nil {
				return err
			}
			for _, s := range net.neurons[n].outgoing {
				syn := &net.synapses[s]
				e, err := net.neuronError(syn.dst)
				if err != nil {
					return err
				}
				syn.weightDeltas = append(syn.weightDeltas, t.learningRate*output*e)
			}
		}
	}
	return nil
}

func (t *Trainer) commit() error {
	net := t.net
	for l := 1; l < len(net.layers); l++ {
		for _, n := range net.layers[l].neurons {
			if err := net.commitTraining(n, t.trainBiases); err != nil {
				return err
			}
		}
	}
	return nil
}
