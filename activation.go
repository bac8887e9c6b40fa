package simplenn

import (
	"math"

	. "github.com/stevegt/goadapt"
)

// Activation selects one of the supported activation functions.  The
// zero value is Sigmoid.
type Activation int

const (
	Sigmoid Activation = iota
	HyperbolicTangent
	Linear
	// keep this last
	activationLast
)

// activationEntry is one row of the activation table.  The
// derivative takes the neuron's output value, not the weighted sum.
type activationEntry struct {
	name       string
	forward    func(x float64) float64
	derivative func(v float64) float64
}

var activations = [activationLast]activationEntry{
	Sigmoid:           {"sigmoid", sigmoid, sigmoidD1},
	HyperbolicTangent: {"tanh", tanh, tanhD1},
	Linear:            {"linear", linear, linearD1},
}

// sigmoid activation function
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// sigmoid derivative, given the sigmoid output
func sigmoidD1(v float64) float64 {
	return v * (1 - v)
}

// tanh activation function
func tanh(x float64) float64 {
	return math.Tanh(x)
}

// tanh derivative, given the tanh output
func tanhD1(v float64) float64 {
	return 1 - v*v
}

// linear activation function
func linear(x float64) float64 {
	return x
}

// linear derivative
func linearD1(v float64) float64 {
	return 1
}

func (a Activation) valid() bool {
	return a >= 0 && a < activationLast
}

func (a Activation) entry() activationEntry {
	Assert(a.valid(), "unknown activation %d", int(a))
	return activations[a]
}

// Forward applies the activation function to a weighted sum.
func (a Activation) Forward(x float64) float64 {
	return a.entry().forward(x)
}

// Derivative returns the derivative of the activation function
// expressed in terms of the function's own output v.
func (a Activation) Derivative(v float64) float64 {
	return a.entry().derivative(v)
}

// String returns the activation's name as used in shape strings.
func (a Activation) String() string {
	if !a.valid() {
		return Spf("Activation(%d)", int(a))
	}
	return activations[a].name
}

// ParseActivation returns the activation with the given name.
func ParseActivation(name string) (a Activation, err error) {
	for i, entry := range activations {
		if entry.name == name {
			return Activation(i), nil
		}
	}
	return 0, &ConfigError{Field: "Activation", Msg: Spf("unknown activation function: %q", name)}
}
