package simplenn

import (
	"errors"
	"math"
	"testing"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/diff/fd"
)

func xorSet() (ts *TrainingSet) {
	ts = NewTrainingSet()
	ts.Add([]float64{0, 0}, []float64{0})
	ts.Add([]float64{0, 1}, []float64{1})
	ts.Add([]float64{1, 0}, []float64{1})
	ts.Add([]float64{1, 1}, []float64{0})
	return
}

func TestOutputGradient(t *testing.T) {
	n := newTestNet(t, 3, []int{4}, 2)
	ts := NewTrainingSet()
	ts.Add([]float64{0.2, -0.7, 1.1}, []float64{0.25, 0.9})
	err := n.Fit(ts, 1)
	Tassert(t, err == nil, err)
	targets := ts.Cases[0].Targets
	for i := 0; i < 2; i++ {
		node := n.Neuron(NeuronID{2, i})
		v := node.Value
		want := v * (1 - v) * (targets[i] - v)
		Tassert(t, near(node.Gradient, want, 1e-12), "output %d: want %v got %v", i, want, node.Gradient)
	}
}

func TestOutputGradientModes(t *testing.T) {
	cfg := DefaultConfig(2, []int{2}, 1)
	cfg.Activation = Linear
	for _, mode := range []OutputGradientMode{SigmoidOutputGradient, ActivationOutputGradient} {
		cfg.OutputGradient = mode
		n, err := New(cfg, newRand(3))
		Tassert(t, err == nil, err)
		err = n.ForwardPropagate([]float64{0.5, 0.25})
		Tassert(t, err == nil, err)
		n.backpropagate([]float64{2})
		node := n.Neuron(NeuronID{2, 0})
		v := node.Value
		var want float64
		switch mode {
		case SigmoidOutputGradient:
			want = v * (1 - v) * (2 - v)
		case ActivationOutputGradient:
			want = 2 - v
		}
		Tassert(t, near(node.Gradient, want, 1e-12), "mode %d: want %v got %v", mode, want, node.Gradient)
	}
}

// TestBackprop checks one training step against the worked example at
// https://mattmazur.com/2015/03/17/a-step-by-step-backpropagation-example/
func TestBackprop(t *testing.T) {
	n := mazurNet(t)
	ts := NewTrainingSet()
	ts.Add([]float64{0.05, 0.1}, []float64{0.01, 0.99})

	cost, err := n.Cost(ts)
	Tassert(t, err == nil, err)
	Tassert(t, near(cost, 0.298371109, 1e-6), cost)

	err = n.Fit(ts, 1)
	Tassert(t, err == nil, err)

	// gradients
	for _, c := range []struct {
		id   NeuronID
		want float64
	}{
		{NeuronID{2, 0}, -0.138498562},
		{NeuronID{2, 1}, 0.038098236},
		{NeuronID{1, 0}, -0.008771354},
		{NeuronID{1, 1}, -0.009954254},
	} {
		got := n.Neuron(c.id).Gradient
		Tassert(t, near(got, c.want, 1e-6), "%v: want %v got %v", c.id, c.want, got)
	}

	// output layer weights and biases
	for nodenum, wb := range [][]float64{{0.35891648, 0.408666186, 0.530750719}, {0.511301270, 0.561370121, 0.619049118}} {
		id := NeuronID{2, nodenum}
		for i, w := range wb[:2] {
			got := n.inputWeight(id, i)
			Tassert(t, near(got, w, 1e-6), "%v weight %d: want %v got %v", id, i, w, got)
		}
		bias := n.Neuron(id).Bias
		Tassert(t, near(bias, wb[2], 1e-6), "%v bias: want %v got %v", id, wb[2], bias)
	}

	// hidden layer weights and biases
	for nodenum, wb := range [][]float64{{0.149780716, 0.19956143, 0.345614323}, {0.24975114, 0.29950229, 0.345022873}} {
		id := NeuronID{1, nodenum}
		for i, w := range wb[:2] {
			got := n.inputWeight(id, i)
			Tassert(t, near(got, w, 1e-6), "%v weight %d: want %v got %v", id, i, w, got)
		}
		bias := n.Neuron(id).Bias
		Tassert(t, near(bias, wb[2], 1e-6), "%v bias: want %v got %v", id, wb[2], bias)
	}
}

// TestUpdateWeights checks the bias momentum term and the absence of
// a weight momentum term over two consecutive updates.
func TestUpdateWeights(t *testing.T) {
	n := newTestNet(t, 1, []int{1}, 1)
	in := NeuronID{0, 0}
	id := NeuronID{1, 0}
	n.neuron(in).Value = 0.5
	n.neuron(id).Bias = 0.1
	n.setWeights(1, [][]float64{{0.3}})
	syn := n.neuron(id).Inputs[0]

	n.neuron(id).Gradient = 0.2
	n.updateWeights(id, 0.5, 0.9)
	node := n.Neuron(id)
	Tassert(t, near(node.BiasDelta, 0.1, 1e-12), node.BiasDelta)
	Tassert(t, near(node.Bias, 0.2, 1e-12), node.Bias)
	Tassert(t, near(n.synapses[syn].WeightDelta, 0.05, 1e-12), n.synapses[syn].WeightDelta)
	Tassert(t, near(n.synapses[syn].Weight, 0.35, 1e-12), n.synapses[syn].Weight)

	n.neuron(id).Gradient = 0.4
	n.updateWeights(id, 0.5, 0.9)
	node = n.Neuron(id)
	// bias += 0.5*0.4 + 0.9*0.1
	Tassert(t, near(node.BiasDelta, 0.2, 1e-12), node.BiasDelta)
	Tassert(t, near(node.Bias, 0.49, 1e-12), node.Bias)
	// weight += 0.5*0.4*0.5, no momentum
	Tassert(t, near(n.synapses[syn].WeightDelta, 0.1, 1e-12), n.synapses[syn].WeightDelta)
	Tassert(t, near(n.synapses[syn].Weight, 0.45, 1e-12), n.synapses[syn].Weight)
}

// TestGradientNumeric compares the backpropagated gradients with
// numeric derivatives of the cost with respect to each bias.
func TestGradientNumeric(t *testing.T) {
	n := newTestNet(t, 2, []int{3, 2}, 2)
	x := []float64{0.4, -0.6}
	targets := []float64{0.2, 0.7}
	err := n.ForwardPropagate(x)
	Tassert(t, err == nil, err)
	n.backpropagate(targets)

	for layerNum := 1; layerNum < len(n.layers); layerNum++ {
		for i := range n.layers[layerNum] {
			id := NeuronID{layerNum, i}
			gradient := n.neuron(id).Gradient
			bias := n.neuron(id).Bias
			cost := func(b float64) float64 {
				n.neuron(id).Bias = b
				z, err := n.predict(x)
				Ck(err)
				c := 0.0
				for j := range z {
					c += 0.5 * (targets[j] - z[j]) * (targets[j] - z[j])
				}
				return c
			}
			d := fd.Derivative(cost, bias, &fd.Settings{Formula: fd.Central})
			n.neuron(id).Bias = bias
			Tassert(t, near(-d, gradient, 1e-7), "%v: numeric %v backprop %v", id, -d, gradient)
		}
	}
}

func TestFitShapeMismatch(t *testing.T) {
	n := newTestNet(t, 2, []int{3}, 1)
	before := n.Weights()

	ts := xorSet()
	ts.Cases[2].Targets = []float64{1, 0}
	err := n.Fit(ts, 5)
	var serr *ShapeError
	Tassert(t, errors.As(err, &serr), err)
	Tassert(t, serr.What == "target" && serr.Case == 2 && serr.Want == 1 && serr.Got == 2, serr)

	ts = xorSet()
	ts.Cases[3].Inputs = []float64{1}
	err = n.Fit(ts, 5)
	Tassert(t, errors.As(err, &serr), err)
	Tassert(t, serr.What == "input" && serr.Case == 3, serr)

	after := n.Weights()
	for i := range before {
		Tassert(t, before[i] == after[i], "weight %d changed", i)
	}
	Tassert(t, n.Get()[0] == 0, n.Get())
}

func TestFitZeroEpochs(t *testing.T) {
	n := newTestNet(t, 2, []int{3}, 1)
	before := n.Weights()
	err := n.Fit(xorSet(), 0)
	Tassert(t, err == nil, err)
	after := n.Weights()
	for i := range before {
		Tassert(t, before[i] == after[i], "weight %d changed", i)
	}
}

// Use two hidden layers to learn XOR.
func TestNetworkXor(t *testing.T) {
	cfg := Config{
		InputSize:      2,
		HiddenSizes:    []int{3, 3},
		OutputSize:     1,
		Activation:     Sigmoid,
		LearningRate:   0.5,
		Momentum:       0.6,
		OutputGradient: SigmoidOutputGradient,
	}
	n, err := New(cfg, newRand(1))
	Tassert(t, err == nil, err)
	ts := xorSet()
	err = n.Fit(ts, 100000)
	Tassert(t, err == nil, err)
	for _, tc := range ts.Cases {
		z, err := n.Predict(tc.Inputs)
		Tassert(t, err == nil, err)
		Tassert(t, near(z[0], tc.Targets[0], 0.1), "%v: want %v got %v", tc.Inputs, tc.Targets, z)
	}
	err = n.Validate(ts, 0.1)
	Tassert(t, err == nil, err)
}

func TestTrain(t *testing.T) {
	n := newTestNet(t, 2, []int{4}, 1)
	n.LearningRate = 1
	ts := NewTrainingSet()
	ts.Add([]float64{0, 0}, []float64{0})
	ts.Add([]float64{0, 1}, []float64{1})
	ts.Add([]float64{1, 0}, []float64{1})
	ts.Add([]float64{1, 1}, []float64{1})
	before, err := n.Cost(ts)
	Tassert(t, err == nil, err)
	cost, err := n.Train(ts, TrainingParms{MaxEpochs: 20000, MaxCost: 0.01})
	Tassert(t, err == nil, "cost too high: %v", cost)
	Tassert(t, cost < before, before, cost)
	Tassert(t, cost < 0.01, cost)

	// an unreachable target runs out of epochs
	_, err = n.Train(ts, TrainingParms{MaxEpochs: 3, MaxCost: 0})
	Tassert(t, err != nil, "expected max epochs error")
}

func TestValidate(t *testing.T) {
	n := newTestNet(t, 2, []int{3}, 1)
	ts := xorSet()
	// an untrained network can't get all four cases within 0.01
	err := n.Validate(ts, 0.01)
	Tassert(t, err != nil, "expected validation failure")
	err = n.Validate(ts, 1)
	Tassert(t, err == nil, err)

	n.setBiases(2, []float64{math.NaN()})
	err = n.Validate(ts, 1)
	Tassert(t, err != nil, "expected NaN failure")
}

func TestTrainingSet(t *testing.T) {
	a := xorSet()
	b := NewTrainingSet()
	b.Add([]float64{0.5, 0.5}, []float64{0.5})
	c := a.Append(b)
	Tassert(t, len(c.Cases) == 5, len(c.Cases))
	Tassert(t, len(a.Cases) == 4, len(a.Cases))
	Tassert(t, c.Cases[4].Inputs[0] == 0.5, c.Cases[4])
}

func BenchmarkLearn(b *testing.B) {
	cfg := DefaultConfig(10, []int{50, 50}, 10)
	n, err := New(cfg, newRand(1))
	Ck(err)
	tc := NewTrainingCase(make([]float64, 10), make([]float64, 10))
	for i := range tc.Inputs {
		tc.Inputs[i] = float64(i) / 10
		tc.Targets[i] = float64(i%2) * 0.8
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.learn(tc)
	}
}

func TestNilTrainingSet(t *testing.T) {
	n := newTestNet(t, 2, []int{3}, 1)
	before := n.Weights()
	err := n.Fit(nil, 3)
	Tassert(t, err == nil, err)
	cost, err := n.Cost(nil)
	Tassert(t, err == nil && cost == 0, cost, err)
	err = n.Validate(nil, 0.1)
	Tassert(t, err == nil, err)
	cost, err = n.Train(nil, TrainingParms{MaxEpochs: 2, MaxCost: 0.1})
	Tassert(t, err == nil && cost == 0, cost, err)
	after := n.Weights()
	for i := range before {
		Tassert(t, before[i] == after[i], "weight %d changed", i)
	}
}
