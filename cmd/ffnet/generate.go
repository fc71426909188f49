package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ahmedtd/ffnet/dataset"
	"github.com/google/subcommands"
)

type GenerateCommand struct {
	out     string
	samples int
	seed    int64
}

var _ subcommands.Command = (*GenerateCommand)(nil)

func (*GenerateCommand) Name() string {
	return "generate"
}

func (*GenerateCommand) Synopsis() string {
	return "Write the synthetic copy-last data set to an npz file"
}

func (*GenerateCommand) Usage() string {
	return `generate --out=copylast.npz [--n=N] [--seed=N]
`
}

func (c *GenerateCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "copylast.npz", "Path of the npz file to write")
	f.IntVar(&c.samples, "n", 1000, "Number of samples")
	f.Int64Var(&c.seed, "seed", 0, "Seed for the generator")
}

func (c *GenerateCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *GenerateCommand) executeErr(ctx context.Context) error {
	if c.samples <= 0 {
		return fmt.Errorf("n must be positive (got %d)", c.samples)
	}

	data := dataset.CopyLastInput(c.samples, rand.New(rand.NewSource(c.seed)))
	if err := data.SaveNPZ(c.out); err != nil {
		return fmt.Errorf("while saving data set: %w", err)
	}
	log.Printf("Wrote %d samples to %s (%s, %s)", data.Len(), c.out, dataset.InputsKey, dataset.OutputsKey)
	return nil
}
