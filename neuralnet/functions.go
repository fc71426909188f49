package neuralnet

import (
	"fmt"
	"math"
	"strings"
)

type ActivationType int

const (
	Identity ActivationType = iota
	Sigmoid
	ReLU
)

func (a ActivationType) String() string {
	switch a {
	case Identity:
		return "identity"
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	default:
		return fmt.Sprintf("ActivationType(%d)", int(a))
	}
}

// ParseActivation maps a configuration name to an activation.  "linear" is
// accepted as an alias for identity.
func ParseActivation(name string) (ActivationType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "linear":
		return Identity, nil
	case "sigmoid", "logistic":
		return Sigmoid, nil
	case "relu":
		return ReLU, nil
	default:
		return 0, fmt.Errorf("unknown activation %q: %w", name, ErrInvalidArgument)
	}
}

// Output applies the activation function to z.
func (a ActivationType) Output(z float64) float64 {
	switch a {
	case Identity:
		return z
	case Sigmoid:
		return 1 / (1 + math.Exp(-z))
	case ReLU:
		return math.Max(0, z)
	default:
		panic("unhandled activation function")
	}
}

// Derivative returns the derivative of the activation function at z.
//
// ReLU has no derivative at exactly zero; that case returns
// ErrUndefinedDerivative rather than picking a subgradient.
func (a ActivationType) Derivative(z float64) (float64, error) {
	switch a {
	case Identity:
		return 1, nil
	case Sigmoid:
		s := a.Output(z)
		return s * (1 - s), nil
	case ReLU:
		if z > 0 {
			return 1, nil
		}
		if z < 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("relu at %v: %w", z, ErrUndefinedDerivative)
	default:
		panic("unhandled activation function")
	}
}

// InputFunctionType reduces a neuron's incoming connections to one scalar.
type InputFunctionType int

const (
	WeightedSum InputFunctionType = iota
)

func (f InputFunctionType) String() string {
	switch f {
	case WeightedSum:
		return "weighted-sum"
	default:
		return fmt.Sprintf("InputFunctionType(%d)", int(f))
	}
}

func ParseInputFunction(name string) (InputFunctionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "weighted-sum", "weighted_sum", "weightedsum":
		return WeightedSum, nil
	default:
		return 0, fmt.Errorf("unknown input function %q: %w", name, ErrInvalidArgument)
	}
}

// Reduce combines the weights of the incoming connections with the outputs of
// their source neurons.  weights[i] pairs with outputs[i].
func (f InputFunctionType) Reduce(weights, outputs []float64) float64 {
	if len(weights) != len(outputs) {
		panic("len(weights) != len(outputs)")
	}
	switch f {
	case WeightedSum:
		var sum float64
		for i := range weights {
			sum += weights[i] * outputs[i]
		}
		return sum
	default:
		panic("unhandled input function")
	}
}

type ErrorFunctionType int

const (
	MeanSquaredError ErrorFunctionType = iota
)

func (e ErrorFunctionType) String() string {
	switch e {
	case MeanSquaredError:
		return "mean-squared-error"
	default:
		return fmt.Sprintf("ErrorFunctionType(%d)", int(e))
	}
}

// Cost is the per-output cost of predicting actual when expected was wanted.
func (e ErrorFunctionType) Cost(expected, actual float64) float64 {
	switch e {
	case MeanSquaredError:
		diff := expected - actual
		return 0.5 * diff * diff
	default:
		panic("unimplemented error function type")
	}
}

// Derivative is the negated derivative of Cost with respect to actual, so
// that adding a positive multiple of it moves actual toward expected.
func (e ErrorFunctionType) Derivative(expected, actual float64) float64 {
	switch e {
	case MeanSquaredError:
		return expected - actual
	default:
		panic("unimplemented error function type")
	}
}
