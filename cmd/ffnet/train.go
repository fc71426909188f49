package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime/pprof"

	"github.com/ahmedtd/ffnet/config"
	"github.com/ahmedtd/ffnet/dataset"
	"github.com/ahmedtd/ffnet/neuralnet"
	"github.com/google/subcommands"
	"gonum.org/v1/gonum/mat"
)

type TrainCommand struct {
	configFile string
	overrides  config.Overrides

	cpuProfileFile string
}

var _ subcommands.Command = (*TrainCommand)(nil)

func (*TrainCommand) Name() string {
	return "train"
}

func (*TrainCommand) Synopsis() string {
	return "Train a network described by a YAML config on an npz data set"
}

func (*TrainCommand) Usage() string {
	return `train --config=run.yaml [--data-file=...] [--epochs=N]
`
}

func (c *TrainCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "run.yaml", "Path to the run config")

	f.StringVar(&c.overrides.DataFile, "data-file", "", "Override data_file")
	f.IntVar(&c.overrides.Epochs, "epochs", 0, "Override epochs")
	f.Float64Var(&c.overrides.LearningRate, "learning-rate", 0, "Override learning_rate")
	f.Int64Var(&c.overrides.Seed, "seed", 0, "Override seed")
	f.IntVar(&c.overrides.LogEvery, "log-every", 0, "Override log_every")

	f.StringVar(&c.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
}

func (c *TrainCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *TrainCommand) executeErr(ctx context.Context) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("while loading config: %w", err)
	}
	cfg.ApplyOverrides(c.overrides)

	if c.cpuProfileFile != "" {
		f, err := os.Create(c.cpuProfileFile)
		if err != nil {
			return fmt.Errorf("while creating CPU profile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("while starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	data, err := dataset.LoadNPZ(cfg.DataFile, cfg.InputsKey, cfg.OutputsKey)
	if err != nil {
		return fmt.Errorf("while loading data set: %w", err)
	}
	if data.Len() > 0 {
		s := data.Samples[0]
		if len(s.Inputs) != cfg.Inputs || len(s.Outputs) != cfg.Outputs() {
			return fmt.Errorf("data set has %d inputs and %d outputs, config wants %d and %d",
				len(s.Inputs), len(s.Outputs), cfg.Inputs, cfg.Outputs())
		}
	}

	r := rand.New(rand.NewSource(cfg.Seed))
	var shuffle *rand.Rand
	if cfg.ShuffleSplit {
		shuffle = r
	}
	train, test, err := data.Split(cfg.TestRatio, shuffle)
	if err != nil {
		return fmt.Errorf("while splitting data set: %w", err)
	}
	log.Printf("Loaded %d samples, %d for training and %d for testing", data.Len(), train.Len(), test.Len())

	net, err := cfg.Build(r)
	if err != nil {
		return fmt.Errorf("while building network: %w", err)
	}

	tr := neuralnet.NewTrainer(net, cfg.LearningRate, neuralnet.MeanSquaredError, cfg.TrainBiases)

	var before float64
	if test.Len() > 0 {
		before, err = tr.Test(test.Samples)
		if err != nil {
			return fmt.Errorf("while testing untrained network: %w", err)
		}
		log.Printf("untrained test-cost=%v", before)
	}

	if err := tr.Train(train.Samples, cfg.Epochs, progressLogger(tr, cfg.Epochs, cfg.LogEvery)); err != nil {
		return fmt.Errorf("while training: %w", err)
	}

	if test.Len() > 0 {
		after, err := tr.Test(test.Samples)
		if err != nil {
			return fmt.Errorf("while testing trained network: %w", err)
		}
		log.Printf("trained test-cost=%v untrained test-cost=%v", after, before)
	}

	for l := 1; l < net.NumLayers(); l++ {
		log.Printf("layer=%d activation=%v biases=%v", l, net.LayerActivation(l), net.Biases(l))
		log.Printf("layer=%d weights=\n%v", l, mat.Formatted(net.WeightMatrix(l), mat.Prefix("  "), mat.Squeeze()))
	}
	return nil
}
