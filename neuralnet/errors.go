package neuralnet

import "errors"

// Every failure returned by this package wraps one of these.  They abort the
// operation in progress; nothing is retried.
var (
	// ErrInvalidArgument reports a vector whose length does not match the
	// layer it is meant for, or a parameter outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUndefinedDerivative reports an activation derivative requested at a
	// point where it does not exist (ReLU at zero).
	ErrUndefinedDerivative = errors.New("undefined derivative")

	// ErrInvalidState reports a read of per-pass state that has not been
	// computed yet: an unset input value, or a neuron error before the
	// backward pass.
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyAccumulation reports an attempt to average an update
	// accumulator that holds no samples.
	ErrEmptyAccumulation = errors.New("empty accumulation")
)
