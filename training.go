package simplenn

import (
	"fmt"
	"math"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrainingCase is a single input vector and its target output vector.
type TrainingCase struct {
	Inputs  []float64
	Targets []float64
}

// NewTrainingCase creates a new training case.
func NewTrainingCase(inputs, targets []float64) (c *TrainingCase) {
	c = &TrainingCase{}
	c.Inputs = inputs
	c.Targets = targets
	return
}

// TrainingSet is an ordered set of training cases.  Training visits
// the cases in this order every epoch.
type TrainingSet struct {
	Cases []*TrainingCase
}

// NewTrainingSet creates a new training set.
func NewTrainingSet() (ts *TrainingSet) {
	ts = &TrainingSet{}
	return
}

// Add adds a training case to the set.
func (ts *TrainingSet) Add(inputs, targets []float64) {
	ts.Cases = append(ts.Cases, NewTrainingCase(inputs, targets))
}

// Append returns a new training set holding the cases of ts followed
// by the cases of other.
func (ts *TrainingSet) Append(other *TrainingSet) (newSet *TrainingSet) {
	newSet = NewTrainingSet()
	newSet.Cases = append(newSet.Cases, ts.Cases...)
	newSet.Cases = append(newSet.Cases, other.Cases...)
	return
}

// cases returns the set's cases.  A nil set has none.
func (ts *TrainingSet) cases() []*TrainingCase {
	if ts == nil {
		return nil
	}
	return ts.Cases
}

// check verifies every case against the network's input and output
// layer sizes.
func (n *Network) check(ts *TrainingSet) error {
	outputSize := len(n.outputLayer())
	for i, tc := range ts.cases() {
		if len(tc.Inputs) != n.inputSize() {
			return &ShapeError{What: "input", Want: n.inputSize(), Got: len(tc.Inputs), Case: i}
		}
		if len(tc.Targets) != outputSize {
			return &ShapeError{What: "target", Want: outputSize, Got: len(tc.Targets), Case: i}
		}
	}
	return nil
}

// Fit trains the network for the given number of epochs, visiting
// every case of the training set in order and updating weights after
// each case.  The whole set is checked before any training happens,
// so a mismatched case leaves the network untouched.  A nil set is
// treated as empty.
func (n *Network) Fit(ts *TrainingSet, epochs int) (err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	err = n.check(ts)
	if err != nil {
		return
	}
	for epoch := 0; epoch < epochs; epoch++ {
		for _, tc := range ts.cases() {
			n.learn(tc)
		}
	}
	return
}

// learn runs one forward pass, one backward pass, and one update pass
// for a single case.  The case must already have been checked.
func (n *Network) learn(tc *TrainingCase) {
	err := n.forwardPropagate(tc.Inputs)
	Ck(err)
	n.backpropagate(tc.Targets)
	n.update()
}

// backpropagate sets every non-input neuron's gradient, starting from
// the output layer's targets and working back toward the input layer.
func (n *Network) backpropagate(targets []float64) {
	last := len(n.layers) - 1
	for i := range n.layers[last] {
		node := &n.layers[last][i]
		node.Gradient = n.outputGradient(node.Value, targets[i])
	}
	for layerNum := last - 1; layerNum > 0; layerNum-- {
		for i := range n.layers[layerNum] {
			n.computeGradient(NeuronID{layerNum, i})
		}
	}
}

// update applies the current gradients to the hidden layers, output
// side first, and then to the output layer.
func (n *Network) update() {
	last := len(n.layers) - 1
	for layerNum := last - 1; layerNum > 0; layerNum-- {
		for i := range n.layers[layerNum] {
			n.updateWeights(NeuronID{layerNum, i}, n.LearningRate, n.Momentum)
		}
	}
	for i := range n.layers[last] {
		n.updateWeights(NeuronID{last, i}, n.LearningRate, n.Momentum)
	}
}

func (n *Network) outputGradient(value, target float64) float64 {
	switch n.OutputGradient {
	case ActivationOutputGradient:
		return n.activation.Derivative(value) * (target - value)
	default:
		return sigmoidD1(value) * (target - value)
	}
}

// TrainingParms contains the parameters for Train.
type TrainingParms struct {
	// MaxEpochs is the most epochs Train will run.
	MaxEpochs int
	// MaxCost stops training once the mean cost over the set drops
	// below it.
	MaxCost float64
	// Verbose prints the cost every LogEvery epochs.
	Verbose  bool
	LogEvery int
}

// Train fits the network one epoch at a time until the mean cost of
// the training set is below parms.MaxCost or parms.MaxEpochs is
// reached.  It returns the final mean cost, and an error if the cost
// target was not met.
func (n *Network) Train(ts *TrainingSet, parms TrainingParms) (cost float64, err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	err = n.check(ts)
	if err != nil {
		return
	}
	for epoch := 0; epoch < parms.MaxEpochs; epoch++ {
		for _, tc := range ts.cases() {
			n.learn(tc)
		}
		cost = n.cost(ts)
		if parms.Verbose && parms.LogEvery > 0 && epoch%parms.LogEvery == 0 {
			Pf("epoch %d cost %f\n", epoch, cost)
		}
		if cost < parms.MaxCost {
			return cost, nil
		}
	}
	return cost, fmt.Errorf("max epochs reached, cost %v", cost)
}

// Cost returns the mean over all cases of half the squared distance
// between outputs and targets.  It runs a forward pass per case.
func (n *Network) Cost(ts *TrainingSet) (cost float64, err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	err = n.check(ts)
	if err != nil {
		return
	}
	return n.cost(ts), nil
}

func (n *Network) cost(ts *TrainingSet) float64 {
	if len(ts.cases()) == 0 {
		return 0
	}
	costs := make([]float64, len(ts.cases()))
	for i, tc := range ts.cases() {
		outputs, err := n.predict(tc.Inputs)
		Ck(err)
		d := floats.Distance(outputs, tc.Targets, 2)
		costs[i] = 0.5 * d * d
	}
	return stat.Mean(costs, nil)
}

// Validate checks that every output is within maxErr of its target
// for every case in the training set.
func (n *Network) Validate(ts *TrainingSet, maxErr float64) (err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	err = n.check(ts)
	if err != nil {
		return
	}
	for _, tc := range ts.cases() {
		outputs, err := n.predict(tc.Inputs)
		Ck(err)
		for i, output := range outputs {
			if math.IsNaN(output) {
				return fmt.Errorf("output %d is NaN for inputs: %v", i, tc.Inputs)
			}
		}
		if d := floats.Distance(outputs, tc.Targets, math.Inf(1)); d > maxErr {
			return fmt.Errorf("error too high for inputs: %v, expected: %v, got: %v", tc.Inputs, tc.Targets, outputs)
		}
	}
	return
}
