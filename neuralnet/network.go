// Package neuralnet implements a small fully-connected feedforward network
// trained with full-batch backpropagation.
//
// A network is built once, left to right:
//
//	net := neuralnet.New(2, neuralnet.UnitRangeSource(r))
//	net.AppendLayer(2, neuralnet.Sigmoid, neuralnet.WeightedSum)
//	net.AppendLayer(1, neuralnet.Sigmoid, neuralnet.WeightedSum)
//
// Neurons and synapses live in two arenas owned by the Network and refer to
// each other by index.  Only weights and biases change after construction.
package neuralnet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type layer struct {
	// Indices into Network.neurons.  Neurons of one layer are contiguous.
	neurons []int

	// Unused for the input layer.
	activation ActivationType
	inputFn    InputFunctionType
}

// Network is an input layer followed by computing layers.  The last
// computing layer is the output layer; the others are hidden layers.
//
// A Network is not safe for concurrent use, including concurrent calls to
// Predict, because every forward pass rewrites the cached activations.
type Network struct {
	source WeightSource

	neurons  []neuron
	synapses []synapse

	// layers[0] is the input layer.
	layers []layer
}

// New creates a network holding only an input layer of inputCount neurons.
// Weights of later connections are drawn from source.
func New(inputCount int, source WeightSource) *Network {
	if inputCount <= 0 {
		panic(fmt.Sprintf("invalid input count: %d", inputCount))
	}
	if source == nil {
		panic("nil weight source")
	}

	net := &Network{source: source}

	in := layer{neurons: make([]int, inputCount)}
	for i := range in.neurons {
		in.neurons[i] = len(net.neurons)
		net.neurons = append(net.neurons, neuron{
			kind: inputNeuron,
			in:   &inputState{},
		})
	}
	net.layers = append(net.layers, in)

	return net
}

// AppendLayer adds a computing layer after the current last layer and fully
// connects the two, drawing one weight per connection.  Connections are made
// source-major: every connection of the first source neuron, then the second,
// and so on.
func (net *Network) AppendLayer(neuronCount int, activation ActivationType, inputFn InputFunctionType) error {
	if neuronCount <= 0 {
		panic(fmt.Sprintf("invalid neuron count: %d", neuronCount))
	}
	if len(net.layers) == 0 {
		return fmt.Errorf("no layer to connect from: %w", ErrInvalidState)
	}
	prev := net.layers[len(net.layers)-1]

	lay := layer{
		neurons:    make([]int, neuronCount),
		activation: activation,
		inputFn:    inputFn,
	}
	for i := range lay.neurons {
		lay.neurons[i] = len(net.neurons)
		net.neurons = append(net.neurons, neuron{
			kind: computeNeuron,
			comp: &computeState{
				activation: activation,
				inputFn:    inputFn,
			},
		})
	}

	for _, src := range prev.neurons {
		for _, dst := range lay.neurons {
			net.connect(src, dst)
		}
	}

	net.layers = append(net.layers, lay)
	return nil
}

func (net *Network) connect(src, dst int) {
	s := len(net.synapses)
	net.synapses = append(net.synapses, synapse{
		weight: net.source.Next(),
		src:    src,
		dst:    dst,
	})
	net.neurons[src].outgoing = append(net.neurons[src].outgoing, s)
	net.neurons[dst].comp.incoming = append(net.neurons[dst].comp.incoming, s)
}

// Predict runs a forward pass and returns the output layer's activations in
// neuron order.  It rewrites every cached activation but never touches
// weights or biases.
func (net *Network) Predict(inputs []float64) ([]float64, error) {
	if err := net.setInputs(inputs); err != nil {
		return nil, err
	}
	if err := net.feedForward(); err != nil {
		return nil, fmt.Errorf("while feeding forward: %w", err)
	}
	return net.outputs()
}

// setInputs assigns the input layer and invalidates every per-sample value
// derived from the previous inputs.
func (net *Network) setInputs(inputs []float64) error {
	in := net.layers[0]
	if len(inputs) != len(in.neurons) {
		return fmt.Errorf("got %d inputs, input layer has %d neurons: %w", len(inputs), len(in.neurons), ErrInvalidArgument)
	}

	for i, n := range in.neurons {
		net.neurons[n].in.value.set(inputs[i])
	}

	for l := 1; l < len(net.layers); l++ {
		for _, n := range net.layers[l].neurons {
			c := net.neurons[n].comp
			c.cached.clear()
			c.err.clear()
		}
	}

	return nil
}

func (net *Network) feedForward() error {
	for l := 1; l < len(net.layers); l++ {
		for _, n := range net.layers[l].neurons {
			if _, err := net.computeActivation(n); err != nil {
				return fmt.Errorf("layer %d: %w", l, err)
			}
		}
	}
	return nil
}

func (net *Network) outputs() ([]float64, error) {
	if len(net.layers) < 2 {
		return nil, fmt.Errorf("network has no output layer: %w", ErrInvalidState)
	}
	out := net.layers[len(net.layers)-1]

	result := make([]float64, len(out.neurons))
	for i, n := range out.neurons {
		a, err := net.computeActivation(n)
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// NumLayers counts the input layer too.
func (net *Network) NumLayers() int {
	return len(net.layers)
}

func (net *Network) InputSize() int {
	return len(net.layers[0].neurons)
}

// OutputSize is the size of the last layer, which is the input layer until a
// computing layer has been appended.
func (net *Network) OutputSize() int {
	return len(net.layers[len(net.layers)-1].neurons)
}

func (net *Network) LayerSize(l int) int {
	return len(net.layers[l].neurons)
}

func (net *Network) LayerActivation(l int) ActivationType {
	if l == 0 {
		panic("the input layer has no activation")
	}
	return net.layers[l].activation
}

// WeightMatrix returns a copy of the weights feeding layer l.  Shape
// (LayerSize(l), LayerSize(l-1)); entry (i, j) is the weight from neuron j of
// layer l-1 to neuron i of layer l.
func (net *Network) WeightMatrix(l int) *mat.Dense {
	if l < 1 || l >= len(net.layers) {
		panic(fmt.Sprintf("layer %d has no incoming weights", l))
	}
	lay := net.layers[l]
	prev := net.layers[l-1]

	w := mat.NewDense(len(lay.neurons), len(prev.neurons), nil)
	for i, n := range lay.neurons {
		for _, s := range net.neurons[n].comp.incoming {
			syn := net.synapses[s]
			w.Set(i, syn.src-prev.neurons[0], syn.weight)
		}
	}
	return w
}

// Biases returns a copy of the biases of layer l in neuron order.
func (net *Network) Biases(l int) []float64 {
	if l < 1 || l >= len(net.layers) {
		panic(fmt.Sprintf("layer %d has no biases", l))
	}
	lay := net.layers[l]
	b := make([]float64, len(lay.neurons))
	for i, n := range lay.neurons {
		b[i] = net.neurons[n].comp.bias
	}
	return b
}

// Parameters is a snapshot of every trainable value in a Network.
type Parameters struct {
	// In connection order.
	Weights []float64

	// Computing neurons in layer order, then neuron order.
	Biases []float64
}

func (net *Network) Parameters() Parameters {
	p := Parameters{
		Weights: make([]float64, len(net.synapses)),
	}
	for s := range net.synapses {
		p.Weights[s] = net.synapses[s].weight
	}
	for l := 1; l < len(net.layers); l++ {
		for _, n := range net.layers[l].neurons {
			p.Biases = append(p.Biases, net.neurons[n].comp.bias)
		}
	}
	return p
}
