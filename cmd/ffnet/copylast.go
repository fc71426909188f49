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

type CopyLastCommand struct {
	seed     int64
	samples  int
	epochs   int
	logEvery int
}

var _ subcommands.Command = (*CopyLastCommand)(nil)

func (*CopyLastCommand) Name() string {
	return "copylast"
}

func (*CopyLastCommand) Synopsis() string {
	return "Learn to copy the last of three inputs past two noise inputs"
}

func (*CopyLastCommand) Usage() string {
	return `copylast [--seed=N] [--samples=N] [--epochs=N]
`
}

func (c *CopyLastCommand) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.seed, "seed", 0, "Seed for the data set, split and initial weights")
	f.IntVar(&c.samples, "samples", 1000, "Number of synthetic samples")
	f.IntVar(&c.epochs, "epochs", 3000, "Number of full passes over the training set")
	f.IntVar(&c.logEvery, "log-every", 100, "Log progress every N epochs")
}

func (c *CopyLastCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *CopyLastCommand) executeErr(ctx context.Context) error {
	if c.epochs <= 0 || c.logEvery <= 0 || c.samples <= 0 {
		return fmt.Errorf("samples, epochs and log-every must be positive")
	}

	r := rand.New(rand.NewSource(c.seed))
	data := dataset.CopyLastInput(c.samples, r)
	train, test, err := data.Split(0.3, r)
	if err != nil {
		return fmt.Errorf("while splitting data set: %w", err)
	}
	log.Printf("Generated %d samples, %d for training and %d for testing", data.Len(), train.Len(), test.Len())

	net := neuralnet.New(3, neuralnet.HalfUnitRangeSource(r))
	if err := net.AppendLayer(3, neuralnet.ReLU, neuralnet.WeightedSum); err != nil {
		return fmt.Errorf("while building hidden layer: %w", err)
	}
	if err := net.AppendLayer(1, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
		return fmt.Errorf("while building output layer: %w", err)
	}

	tr := neuralnet.NewTrainer(net, 0.1, neuralnet.MeanSquaredError, false)
	before, err := tr.Test(test.Samples)
	if err != nil {
		return fmt.Errorf("while testing untrained network: %w", err)
	}
	log.Printf("untrained test-cost=%v", before)

	if err := tr.Train(train.Samples, c.epochs, progressLogger(tr, c.epochs, c.logEvery)); err != nil {
		return fmt.Errorf("while training: %w", err)
	}

	after, err := tr.Test(test.Samples)
	if err != nil {
		return fmt.Errorf("while testing trained network: %w", err)
	}
	fmt.Printf("test cost: %v (untrained %v)\n", after, before)

	for _, in := range [][]float64{{5, 10, 0}, {25, 2, 1}} {
		out, err := net.Predict(in)
		if err != nil {
			return fmt.Errorf("while predicting %v: %w", in, err)
		}
		fmt.Printf("%v -> %.4f\n", in, out[0])
	}
	return nil
}
