// xor trains a network on the XOR truth table and prints its
// predictions.
package main

import (
	"flag"
	"math/rand"
	"os"

	. "github.com/stevegt/goadapt"
	"github.com/stevegt/simplenn"
)

func main() {
	epochs := flag.Int("epochs", 100000, "training epochs")
	seed := flag.Int64("seed", 1, "random seed")
	shapeTxt := flag.String("shape", "(xor a b (sigmoid 3) (sigmoid 3) (sigmoid y))", "network shape")
	learningRate := flag.Float64("rate", 0.5, "learning rate")
	momentum := flag.Float64("momentum", 0.6, "bias momentum")
	dotFn := flag.String("dot", "", "write a graphviz file of the trained network")
	verbose := flag.Bool("v", false, "print the cost while training")
	flag.Parse()

	err := run(*epochs, *seed, *shapeTxt, *learningRate, *momentum, *dotFn, *verbose)
	if err != nil {
		Pl(err)
		os.Exit(1)
	}
}

func run(epochs int, seed int64, shapeTxt string, learningRate, momentum float64, dotFn string, verbose bool) (err error) {
	defer Return(&err)

	cfg := simplenn.DefaultConfig(0, nil, 0)
	cfg.LearningRate = learningRate
	cfg.Momentum = momentum
	net, err := simplenn.NewFromShape(shapeTxt, cfg, rand.New(rand.NewSource(seed)))
	Ck(err)
	Pl(net.Shape())

	ts := simplenn.NewTrainingSet()
	ts.Add([]float64{0, 0}, []float64{0})
	ts.Add([]float64{0, 1}, []float64{1})
	ts.Add([]float64{1, 0}, []float64{1})
	ts.Add([]float64{1, 1}, []float64{0})

	if verbose {
		cost, err := net.Train(ts, simplenn.TrainingParms{
			MaxEpochs: epochs,
			MaxCost:   0.0001,
			Verbose:   true,
			LogEvery:  epochs / 10,
		})
		if err != nil {
			Pl(err)
		}
		Pf("final cost %f\n", cost)
	} else {
		Ck(net.Fit(ts, epochs))
	}

	for _, tc := range ts.Cases {
		outputs, err := net.Predict(tc.Inputs)
		Ck(err)
		Pf("%v -> %.4f (want %v)\n", tc.Inputs, outputs[0], tc.Targets[0])
	}

	if dotFn != "" {
		err = os.WriteFile(dotFn, []byte(net.Draw()), 0644)
		Ck(err)
		Pf("wrote %s\n", dotFn)
	}

	return net.Validate(ts, 0.1)
}
