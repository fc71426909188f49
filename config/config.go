// Package config describes a training run of the generic train command.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/ahmedtd/ffnet/dataset"
	"github.com/ahmedtd/ffnet/neuralnet"
	"gopkg.in/yaml.v3"
)

// Config captures the topology, hyperparameters and data of a training run.
type Config struct {
	Seed   int64         `yaml:"seed"`
	Inputs int           `yaml:"inputs"`
	Layers []LayerConfig `yaml:"layers"`

	WeightInit   WeightInit `yaml:"weight_init"`
	LearningRate float64    `yaml:"learning_rate"`
	TrainBiases  bool       `yaml:"train_biases"`
	Epochs       int        `yaml:"epochs"`

	TestRatio    float64 `yaml:"test_ratio"`
	ShuffleSplit bool    `yaml:"shuffle_split"`
	LogEvery     int     `yaml:"log_every"`

	DataFile   string `yaml:"data_file"`
	InputsKey  string `yaml:"inputs_key"`
	OutputsKey string `yaml:"outputs_key"`
}

// LayerConfig is one computing layer.
type LayerConfig struct {
	Size          int    `yaml:"size"`
	Activation    string `yaml:"activation"`
	InputFunction string `yaml:"input_function"`
}

// WeightInit is the range initial weights are drawn from.
type WeightInit struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataFile     string
	Epochs       int
	LearningRate float64
	Seed         int64
	LogEvery     int
}

// Load reads and validates a Config from YAML.  Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataFile != "" {
		c.DataFile = o.DataFile
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable and fills in defaults for the
// optional fields.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Inputs <= 0 {
		return fmt.Errorf("inputs must be > 0 (got %d)", c.Inputs)
	}
	if len(c.Layers) == 0 {
		return errors.New("at least one layer is required")
	}
	for i, l := range c.Layers {
		if l.Size <= 0 {
			return fmt.Errorf("layers[%d]: size must be > 0 (got %d)", i, l.Size)
		}
		if _, err := neuralnet.ParseActivation(l.Activation); err != nil {
			return fmt.Errorf("layers[%d]: %w", i, err)
		}
		if _, err := neuralnet.ParseInputFunction(l.InputFunction); err != nil {
			return fmt.Errorf("layers[%d]: %w", i, err)
		}
	}
	if c.WeightInit == (WeightInit{}) {
		c.WeightInit = WeightInit{Min: -1, Max: 1}
	}
	if !(c.WeightInit.Min < c.WeightInit.Max) {
		return fmt.Errorf("weight_init: min %v must be below max %v", c.WeightInit.Min, c.WeightInit.Max)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if !(c.TestRatio > 0 && c.TestRatio < 1) {
		return fmt.Errorf("test_ratio must be in (0, 1) (got %v)", c.TestRatio)
	}
	if c.DataFile == "" {
		return errors.New("data_file must be set")
	}
	if c.InputsKey == "" {
		c.InputsKey = dataset.InputsKey
	}
	if c.OutputsKey == "" {
		c.OutputsKey = dataset.OutputsKey
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}

// Outputs is the size of the output layer.
func (c *Config) Outputs() int {
	return c.Layers[len(c.Layers)-1].Size
}

// Build constructs the network described by c, drawing its weights from r.
// c must have passed Validate.
func (c *Config) Build(r *rand.Rand) (*neuralnet.Network, error) {
	net := neuralnet.New(c.Inputs, neuralnet.NewUniformSource(r, c.WeightInit.Min, c.WeightInit.Max))
	for i, l := range c.Layers {
		activation, err := neuralnet.ParseActivation(l.Activation)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		inputFn, err := neuralnet.ParseInputFunction(l.InputFunction)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		if err := net.AppendLayer(l.Size, activation, inputFn); err != nil {
			return nil, fmt.Errorf("while appending layer %d: %w", i, err)
		}
	}
	return net, nil
}
