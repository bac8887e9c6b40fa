// Package simplenn implements a fully-connected feedforward neural
// network built from individual neurons and synapses, trained one
// sample at a time with backpropagation.
//
// The network owns two arenas: a slice of layers of Neuron records,
// and a slice of Synapse records.  Neurons refer to their synapses by
// index, and synapses refer to their endpoint neurons by NeuronID, so
// the whole graph can be copied without pointer fixups.
package simplenn

import (
	"math/rand"
	"sync"

	. "github.com/stevegt/goadapt"
)

// OutputGradientMode selects how the training loop derives the
// gradient of an output neuron from its target.
type OutputGradientMode int

const (
	// SigmoidOutputGradient uses value*(1-value)*(target-value) no
	// matter which activation the network is configured with.
	SigmoidOutputGradient OutputGradientMode = iota
	// ActivationOutputGradient uses the configured activation's
	// derivative: d(value)*(target-value).
	ActivationOutputGradient
)

// Config enumerates every construction parameter.  New does not fill
// in missing fields; use DefaultConfig for the usual values.
type Config struct {
	InputSize      int
	HiddenSizes    []int
	OutputSize     int
	Activation     Activation
	LearningRate   float64
	Momentum       float64
	OutputGradient OutputGradientMode
}

// DefaultConfig returns a sigmoid network configuration with a
// learning rate of 0.25 and momentum of 0.9.
func DefaultConfig(inputSize int, hiddenSizes []int, outputSize int) Config {
	return Config{
		InputSize:      inputSize,
		HiddenSizes:    append([]int(nil), hiddenSizes...),
		OutputSize:     outputSize,
		Activation:     Sigmoid,
		LearningRate:   0.25,
		Momentum:       0.9,
		OutputGradient: SigmoidOutputGradient,
	}
}

// Validate checks the configuration, returning a *ConfigError naming
// the first bad field.
func (c Config) Validate() error {
	if c.InputSize <= 0 {
		return &ConfigError{Field: "InputSize", Msg: Spf("must be positive, got %d", c.InputSize)}
	}
	if len(c.HiddenSizes) == 0 {
		return &ConfigError{Field: "HiddenSizes", Msg: "at least one hidden layer is required"}
	}
	for i, size := range c.HiddenSizes {
		if size <= 0 {
			return &ConfigError{Field: "HiddenSizes", Msg: Spf("layer %d must be positive, got %d", i, size)}
		}
	}
	if c.OutputSize <= 0 {
		return &ConfigError{Field: "OutputSize", Msg: Spf("must be positive, got %d", c.OutputSize)}
	}
	if !c.Activation.valid() {
		return &ConfigError{Field: "Activation", Msg: Spf("unknown activation %d", int(c.Activation))}
	}
	switch c.OutputGradient {
	case SigmoidOutputGradient, ActivationOutputGradient:
	default:
		return &ConfigError{Field: "OutputGradient", Msg: Spf("unknown mode %d", int(c.OutputGradient))}
	}
	return nil
}

// Network is a dense feedforward network.  Exported methods lock the
// network, so a Network may be shared between goroutines, but calls
// are serialized.
type Network struct {
	Name           string
	LearningRate   float64
	Momentum       float64
	OutputGradient OutputGradientMode
	InputNames     []string
	OutputNames    []string
	activation     Activation
	layers         [][]Neuron
	synapses       []Synapse
	lock           sync.Mutex
}

// New builds a network from cfg, drawing every initial weight and
// bias from rng.  Two networks built from the same configuration and
// an identically seeded rng are identical.
func New(cfg Config, rng *rand.Rand) (n *Network, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}
	if rng == nil {
		return nil, &ConfigError{Field: "rng", Msg: "a random source is required"}
	}
	sizes := make([]int, 0, len(cfg.HiddenSizes)+2)
	sizes = append(sizes, cfg.InputSize)
	sizes = append(sizes, cfg.HiddenSizes...)
	sizes = append(sizes, cfg.OutputSize)

	synapseCount := 0
	for i := 1; i < len(sizes); i++ {
		synapseCount += sizes[i-1] * sizes[i]
	}

	n = &Network{
		LearningRate:   cfg.LearningRate,
		Momentum:       cfg.Momentum,
		OutputGradient: cfg.OutputGradient,
		activation:     cfg.Activation,
		layers:         make([][]Neuron, len(sizes)),
		synapses:       make([]Synapse, 0, synapseCount),
	}
	for layerNum, size := range sizes {
		n.layers[layerNum] = make([]Neuron, size)
		for i := range n.layers[layerNum] {
			node := &n.layers[layerNum][i]
			node.Activation = cfg.Activation
			node.Bias = uniform(rng)
			if layerNum == 0 {
				continue
			}
			// connect to every neuron of the upstream layer
			to := NeuronID{layerNum, i}
			node.Inputs = make([]int, 0, sizes[layerNum-1])
			for j := range n.layers[layerNum-1] {
				from := NeuronID{layerNum - 1, j}
				idx := len(n.synapses)
				n.synapses = append(n.synapses, newSynapse(from, to, rng))
				node.Inputs = append(node.Inputs, idx)
				upstream := n.neuron(from)
				upstream.Outputs = append(upstream.Outputs, idx)
			}
		}
	}
	n.checkTopology()
	Debug("simplenn: built %v network with %d synapses\n", sizes, len(n.synapses))
	return
}

// checkTopology asserts that every neuron is densely connected to its
// neighboring layers and that every synapse is registered exactly
// once at each end.
func (n *Network) checkTopology() {
	seenIn := make([]int, len(n.synapses))
	seenOut := make([]int, len(n.synapses))
	for layerNum, layer := range n.layers {
		for i, node := range layer {
			id := NeuronID{layerNum, i}
			if layerNum > 0 {
				Assert(len(node.Inputs) == len(n.layers[layerNum-1]), "%v: %d inputs", id, len(node.Inputs))
			}
			if layerNum < len(n.layers)-1 {
				Assert(len(node.Outputs) == len(n.layers[layerNum+1]), "%v: %d outputs", id, len(node.Outputs))
			}
			for _, s := range node.Inputs {
				Assert(n.synapses[s].To == id, "%v: synapse %d goes to %v", id, s, n.synapses[s].To)
				seenIn[s]++
			}
			for _, s := range node.Outputs {
				Assert(n.synapses[s].From == id, "%v: synapse %d comes from %v", id, s, n.synapses[s].From)
				seenOut[s]++
			}
		}
	}
	for s := range n.synapses {
		Assert(seenIn[s] == 1 && seenOut[s] == 1, "synapse %d registered %d/%d times", s, seenIn[s], seenOut[s])
	}
}

// Activation returns the network's activation function.
func (n *Network) Activation() Activation {
	return n.activation
}

// LayerSizes returns the number of neurons in each layer, input layer
// first.
func (n *Network) LayerSizes() (sizes []int) {
	n.lock.Lock()
	defer n.lock.Unlock()
	for _, layer := range n.layers {
		sizes = append(sizes, len(layer))
	}
	return
}

func (n *Network) inputSize() int {
	return len(n.layers[0])
}

func (n *Network) outputLayer() []Neuron {
	return n.layers[len(n.layers)-1]
}

// Neuron returns a copy of the neuron at id.
func (n *Network) Neuron(id NeuronID) (node Neuron) {
	n.lock.Lock()
	defer n.lock.Unlock()
	Assert(id.Layer >= 0 && id.Layer < len(n.layers), "no layer %d", id.Layer)
	Assert(id.Index >= 0 && id.Index < len(n.layers[id.Layer]), "no neuron %v", id)
	node = *n.neuron(id)
	node.Inputs = append([]int(nil), node.Inputs...)
	node.Outputs = append([]int(nil), node.Outputs...)
	return
}

// Synapse returns a copy of the synapse with the given index.
func (n *Network) Synapse(i int) Synapse {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.synapses[i]
}

// SynapseCount returns the number of synapses in the network.
func (n *Network) SynapseCount() int {
	return len(n.synapses)
}

// Weights returns every synapse weight, grouped by the layer of the
// upstream neuron and ordered by upstream neuron.
func (n *Network) Weights() (weights []float64) {
	n.lock.Lock()
	defer n.lock.Unlock()
	for _, layer := range n.layers {
		for _, node := range layer {
			for _, s := range node.Outputs {
				weights = append(weights, n.synapses[s].Weight)
			}
		}
	}
	return
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() (clone *Network) {
	n.lock.Lock()
	defer n.lock.Unlock()
	clone = &Network{
		Name:           n.Name,
		LearningRate:   n.LearningRate,
		Momentum:       n.Momentum,
		OutputGradient: n.OutputGradient,
		InputNames:     append([]string(nil), n.InputNames...),
		OutputNames:    append([]string(nil), n.OutputNames...),
		activation:     n.activation,
		layers:         make([][]Neuron, len(n.layers)),
		synapses:       append([]Synapse(nil), n.synapses...),
	}
	for i, layer := range n.layers {
		clone.layers[i] = make([]Neuron, len(layer))
		for j, node := range layer {
			node.Inputs = append([]int(nil), node.Inputs...)
			node.Outputs = append([]int(nil), node.Outputs...)
			clone.layers[i][j] = node
		}
	}
	return
}

// ForwardPropagate loads the input vector into the input layer and
// computes every downstream neuron's value in layer order.
func (n *Network) ForwardPropagate(inputs []float64) (err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.forwardPropagate(inputs)
}

func (n *Network) forwardPropagate(inputs []float64) (err error) {
	if len(inputs) != n.inputSize() {
		return &ShapeError{What: "input", Want: n.inputSize(), Got: len(inputs), Case: -1}
	}
	for i, input := range inputs {
		n.layers[0][i].Value = input
	}
	for layerNum := 1; layerNum < len(n.layers); layerNum++ {
		for i := range n.layers[layerNum] {
			n.computeValue(NeuronID{layerNum, i})
		}
	}
	return
}

// Get returns the output layer's values from the most recent forward
// pass.  Before any forward pass the outputs are all zero.
func (n *Network) Get() (outputs []float64) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.get()
}

func (n *Network) get() (outputs []float64) {
	outputLayer := n.outputLayer()
	outputs = make([]float64, len(outputLayer))
	for i, node := range outputLayer {
		outputs[i] = node.Value
	}
	return
}

// Predict executes the forward pass and returns the output values.
func (n *Network) Predict(inputs []float64) (outputs []float64, err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.predict(inputs)
}

func (n *Network) predict(inputs []float64) (outputs []float64, err error) {
	err = n.forwardPropagate(inputs)
	if err != nil {
		return
	}
	return n.get(), nil
}

// PredictNamed returns named outputs for the given named inputs.  It
// ignores named inputs which are not in the network, and sets to zero
// named inputs which are in the network but not in the given map.
func (n *Network) PredictNamed(inputMap map[string]float64) (outputMap map[string]float64, err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if len(n.InputNames) != n.inputSize() || len(n.OutputNames) != len(n.outputLayer()) {
		return nil, &ConfigError{Field: "InputNames", Msg: "network inputs and outputs are not named"}
	}
	inputs := make([]float64, len(n.InputNames))
	for i, name := range n.InputNames {
		inputs[i] = inputMap[name]
	}
	outputs, err := n.predict(inputs)
	if err != nil {
		return
	}
	outputMap = make(map[string]float64, len(outputs))
	for i, name := range n.OutputNames {
		outputMap[name] = outputs[i]
	}
	return
}
