// Command ffnet trains small feedforward networks.
//
// Demo scenarios: `go run ./cmd/ffnet xor` and `go run ./cmd/ffnet copylast`.
//
// To train from a config: `go run ./cmd/ffnet generate --out=copylast.npz`
// then `go run ./cmd/ffnet train --config=run.yaml`.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/ahmedtd/ffnet/neuralnet"
	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&XORCommand{}, "demos")
	subcommands.Register(&CopyLastCommand{}, "demos")
	subcommands.Register(&TrainCommand{}, "")
	subcommands.Register(&GenerateCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// progressLogger returns an epoch callback that logs every logEvery epochs
// and on the last one.
func progressLogger(tr *neuralnet.Trainer, epochs, logEvery int) neuralnet.EpochFunc {
	return func(epoch int, costSum float64) {
		if epoch%logEvery != 0 && epoch != epochs-1 {
			return
		}
		log.Printf("epoch=%d cost-sum=%v", epoch, costSum)
		log.Printf("epoch=%d timings overall=%.3f forward=%.3f backprop=%.3f accumulate=%.3f commit=%.3f",
			epoch,
			tr.Timings.Overall.Seconds(),
			tr.Timings.Forward.Seconds(),
			tr.Timings.Backpropagation.Seconds(),
			tr.Timings.Accumulate.Seconds(),
			tr.Timings.Commit.Seconds(),
		)
		tr.Timings.Reset()
	}
}
