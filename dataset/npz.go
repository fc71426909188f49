package dataset

import (
	"fmt"

	"github.com/ahmedtd/ffnet/neuralnet"
	"github.com/chewxy/math32"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// Default array names used by SaveNPZ and the train command.
const (
	InputsKey  = "inputs.npy"
	OutputsKey = "outputs.npy"
)

// LoadNPZ reads a set from two 2-D arrays in an npz archive, one row per
// sample.  Both arrays must have the same number of rows.  Arrays may be
// float64 or float32; float32 data must be finite.
func LoadNPZ(path, inputsKey, outputsKey string) (*Set, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening data file: %w", err)
	}
	defer r.Close()

	inputs, inRows, inCols, err := loadMatrix(r, inputsKey)
	if err != nil {
		return nil, fmt.Errorf("while reading %s: %w", inputsKey, err)
	}
	outputs, outRows, outCols, err := loadMatrix(r, outputsKey)
	if err != nil {
		return nil, fmt.Errorf("while reading %s: %w", outputsKey, err)
	}
	if inRows != outRows {
		return nil, fmt.Errorf("%s has %d rows but %s has %d: %w", inputsKey, inRows, outputsKey, outRows, neuralnet.ErrInvalidArgument)
	}

	s := &Set{Samples: make([]neuralnet.Sample, 0, inRows)}
	for k := 0; k < inRows; k++ {
		s.Add(
			inputs[k*inCols:(k+1)*inCols:(k+1)*inCols],
			outputs[k*outCols:(k+1)*outCols:(k+1)*outCols],
		)
	}
	return s, nil
}

// loadMatrix returns the row-major contents of a 2-D array.  A 1-D array is
// read as a single column.
func loadMatrix(r *npz.Reader, name string) ([]float64, int, int, error) {
	header := r.Header(name)
	if header == nil {
		return nil, 0, 0, fmt.Errorf("no array named %q: %w", name, neuralnet.ErrInvalidArgument)
	}
	if header.Descr.Fortran {
		return nil, 0, 0, fmt.Errorf("fortran-ordered arrays are not supported: %w", neuralnet.ErrInvalidArgument)
	}

	var rows, cols int
	switch shape := header.Descr.Shape; len(shape) {
	case 1:
		rows, cols = shape[0], 1
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return nil, 0, 0, fmt.Errorf("array has shape %v, want 1 or 2 dimensions: %w", shape, neuralnet.ErrInvalidArgument)
	}

	var values []float64
	switch header.Descr.Type {
	case "<f8", "float64":
		if err := r.Read(name, &values); err != nil {
			return nil, 0, 0, fmt.Errorf("while reading float64 array: %w", err)
		}
	case "<f4", "float32":
		var raw []float32
		if err := r.Read(name, &raw); err != nil {
			return nil, 0, 0, fmt.Errorf("while reading float32 array: %w", err)
		}
		values = make([]float64, len(raw))
		for i, v := range raw {
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return nil, 0, 0, fmt.Errorf("element %d is %v: %w", i, v, neuralnet.ErrInvalidArgument)
			}
			values[i] = float64(v)
		}
	default:
		return nil, 0, 0, fmt.Errorf("unsupported element type %q: %w", header.Descr.Type, neuralnet.ErrInvalidArgument)
	}

	if len(values) != rows*cols {
		return nil, 0, 0, fmt.Errorf("got %d elements for shape (%d, %d)", len(values), rows, cols)
	}
	return values, rows, cols, nil
}

// SaveNPZ writes s as two float64 matrices under InputsKey and OutputsKey.
// Every sample must have the same input and output lengths.
func (s *Set) SaveNPZ(path string) error {
	if len(s.Samples) == 0 {
		return fmt.Errorf("empty set: %w", neuralnet.ErrInvalidArgument)
	}
	inCols := len(s.Samples[0].Inputs)
	outCols := len(s.Samples[0].Outputs)
	if inCols == 0 || outCols == 0 {
		return fmt.Errorf("sample 0 has %d inputs and %d outputs: %w", inCols, outCols, neuralnet.ErrInvalidArgument)
	}

	inputs := mat.NewDense(len(s.Samples), inCols, nil)
	outputs := mat.NewDense(len(s.Samples), outCols, nil)
	for k, sample := range s.Samples {
		if len(sample.Inputs) != inCols || len(sample.Outputs) != outCols {
			return fmt.Errorf("sample %d has shape (%d, %d), want (%d, %d): %w",
				k, len(sample.Inputs), len(sample.Outputs), inCols, outCols, neuralnet.ErrInvalidArgument)
		}
		inputs.SetRow(k, sample.Inputs)
		outputs.SetRow(k, sample.Outputs)
	}

	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("while creating data file: %w", err)
	}
	if err := w.Write(InputsKey, inputs); err != nil {
		w.Close()
		return fmt.Errorf("while writing %s: %w", InputsKey, err)
	}
	if err := w.Write(OutputsKey, outputs); err != nil {
		w.Close()
		return fmt.Errorf("while writing %s: %w", OutputsKey, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing data file: %w", err)
	}
	return nil
}
