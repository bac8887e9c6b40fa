package simplenn

// Neuron is a computation unit in the network arena.  Inputs and
// Outputs are indices into the network's synapse slice, in upstream
// and downstream neuron order respectively.
type Neuron struct {
	Value      float64
	Bias       float64
	BiasDelta  float64 // most recent learning-rate-scaled bias step
	Gradient   float64
	Activation Activation
	Inputs     []int
	Outputs    []int
}

// neuron returns a pointer into the arena.
func (n *Network) neuron(id NeuronID) *Neuron {
	return &n.layers[id.Layer][id.Index]
}

// computeValue sets the neuron's value to the activation of its
// weighted inputs plus bias, and returns it.  Input-layer neurons have
// no input synapses and are assigned directly instead.
func (n *Network) computeValue(id NeuronID) float64 {
	node := n.neuron(id)
	weightedSum := 0.0
	for _, s := range node.Inputs {
		syn := &n.synapses[s]
		weightedSum += syn.Weight * n.neuron(syn.From).Value
	}
	weightedSum += node.Bias
	node.Value = node.Activation.Forward(weightedSum)
	return node.Value
}

// computeGradient sets a hidden neuron's gradient from the gradients
// of the downstream neurons it feeds:
//
//	gradient = d(value) * sum(weight * downstream gradient)
//
// Output neurons get their gradient from the training loop instead.
func (n *Network) computeGradient(id NeuronID) float64 {
	node := n.neuron(id)
	sum := 0.0
	for _, s := range node.Outputs {
		syn := &n.synapses[s]
		sum += syn.Weight * n.neuron(syn.To).Gradient
	}
	node.Gradient = node.Activation.Derivative(node.Value) * sum
	return node.Gradient
}

// updateWeights applies the neuron's gradient to its bias and to the
// weights of its input synapses.  Momentum carries the previous bias
// step into the bias update; weight updates carry no momentum.
func (n *Network) updateWeights(id NeuronID, learningRate, momentum float64) {
	node := n.neuron(id)
	step := learningRate * node.Gradient
	prevBiasDelta := node.BiasDelta
	node.BiasDelta = step
	node.Bias += step + momentum*prevBiasDelta
	for _, s := range node.Inputs {
		syn := &n.synapses[s]
		syn.WeightDelta = step * n.neuron(syn.From).Value
		syn.Weight += syn.WeightDelta
	}
}
