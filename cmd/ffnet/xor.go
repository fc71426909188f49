package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ahmedtd/ffnet/dataset"
	"github.com/ahmedtd/ffnet/neuralnet"
	"github.com/google/subcommands"
)

type XORCommand struct {
	seed         int64
	epochs       int
	learningRate float64
	logEvery     int
}

var _ subcommands.Command = (*XORCommand)(nil)

func (*XORCommand) Name() string {
	return "xor"
}

func (*XORCommand) Synopsis() string {
	return "Learn exclusive or with a 2-2-1 sigmoid network"
}

func (*XORCommand) Usage() string {
	return `xor [--seed=N] [--epochs=N]
`
}

func (c *XORCommand) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.seed, "seed", 1, "Seed for the initial weights")
	f.IntVar(&c.epochs, "epochs", 10000, "Number of full passes over the truth table")
	f.Float64Var(&c.learningRate, "learning-rate", 5, "Learning rate")
	f.IntVar(&c.logEvery, "log-every", 1000, "Log progress every N epochs")
}

func (c *XORCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *XORCommand) executeErr(ctx context.Context) error {
	if c.epochs <= 0 || c.logEvery <= 0 {
		return fmt.Errorf("epochs and log-every must be positive")
	}

	r := rand.New(rand.NewSource(c.seed))
	net := neuralnet.New(2, neuralnet.UnitRangeSource(r))
	if err := net.AppendLayer(2, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
		return fmt.Errorf("while building hidden layer: %w", err)
	}
	if err := net.AppendLayer(1, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
		return fmt.Errorf("while building output layer: %w", err)
	}

	data := dataset.XOR()
	tr := neuralnet.NewTrainer(net, c.learningRate, neuralnet.MeanSquaredError, true)
	if err := tr.Train(data.Samples, c.epochs, progressLogger(tr, c.epochs, c.logEvery)); err != nil {
		return fmt.Errorf("while training: %w", err)
	}

	for _, s := range data.Samples {
		out, err := net.Predict(s.Inputs)
		if err != nil {
			return fmt.Errorf("while predicting %v: %w", s.Inputs, err)
		}
		fmt.Printf("%v xor %v = %.4f\n", s.Inputs[0], s.Inputs[1], out[0])
	}
	return nil
}
