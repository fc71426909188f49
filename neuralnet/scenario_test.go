package neuralnet_test

import (
	"math/rand"
	"testing"

	"github.com/ahmedtd/ffnet/dataset"
	"github.com/ahmedtd/ffnet/neuralnet"
)

// Some initial weights leave XOR in a local minimum, so several seeds are
// tried and one full solve is enough.
func TestXOR(t *testing.T) {
	data := dataset.XOR()

	solved := 0
	for seed := int64(1); seed <= 8; seed++ {
		net := neuralnet.New(2, neuralnet.UnitRangeSource(rand.New(rand.NewSource(seed))))
		if err := net.AppendLayer(2, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
			t.Fatalf("AppendLayer: %v", err)
		}
		if err := net.AppendLayer(1, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
			t.Fatalf("AppendLayer: %v", err)
		}

		tr := neuralnet.NewTrainer(net, 5, neuralnet.MeanSquaredError, true)
		var first, last float64
		err := tr.Train(data.Samples, 10000, func(epoch int, costSum float64) {
			if epoch == 0 {
				first = costSum
			}
			last = costSum
		})
		if err != nil {
			t.Fatalf("seed %d: Train: %v", seed, err)
		}
		if last >= first {
			t.Errorf("seed %d: cost went from %v to %v", seed, first, last)
		}

		correct := true
		for _, s := range data.Samples {
			out, err := net.Predict(s.Inputs)
			if err != nil {
				t.Fatalf("seed %d: Predict: %v", seed, err)
			}
			if (out[0] > 0.5) != (s.Outputs[0] == 1) {
				correct = false
			}
		}
		if correct {
			solved++
		}
	}

	if solved == 0 {
		t.Errorf("no seed learned XOR")
	}
}

func TestCopyLastInput(t *testing.T) {
	best := 1.0
	for seed := int64(1); seed <= 5; seed++ {
		r := rand.New(rand.NewSource(seed))
		data := dataset.CopyLastInput(200, r)
		train, test, err := data.Split(0.3, r)
		if err != nil {
			t.Fatalf("Split: %v", err)
		}

		net := neuralnet.New(3, neuralnet.HalfUnitRangeSource(r))
		if err := net.AppendLayer(3, neuralnet.ReLU, neuralnet.WeightedSum); err != nil {
			t.Fatalf("AppendLayer: %v", err)
		}
		if err := net.AppendLayer(1, neuralnet.Sigmoid, neuralnet.WeightedSum); err != nil {
			t.Fatalf("AppendLayer: %v", err)
		}

		tr := neuralnet.NewTrainer(net, 0.1, neuralnet.MeanSquaredError, false)
		baseline, err := tr.Test(test.Samples)
		if err != nil {
			t.Fatalf("Test: %v", err)
		}
		if err := tr.Train(train.Samples, 3000, nil); err != nil {
			t.Fatalf("seed %d: Train: %v", seed, err)
		}
		trained, err := tr.Test(test.Samples)
		if err != nil {
			t.Fatalf("Test: %v", err)
		}

		if trained >= baseline {
			t.Errorf("seed %d: test cost %v not below untrained %v", seed, trained, baseline)
		}
		if trained < best {
			best = trained
		}
	}

	if best >= 0.05 {
		t.Errorf("best test cost %v, want < 0.05", best)
	}
}
