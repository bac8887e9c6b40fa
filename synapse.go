package simplenn

import (
	"math/rand"

	. "github.com/stevegt/goadapt"
)

// NeuronID locates a neuron in the network by layer number and
// position within the layer.  Layer 0 is the input layer.
type NeuronID struct {
	Layer int
	Index int
}

func (id NeuronID) String() string {
	return Spf("L%dN%d", id.Layer, id.Index)
}

// Synapse is a directed, weighted edge from one neuron to a neuron in
// the next layer.  The endpoints are arena coordinates; the network
// owns the neurons.
type Synapse struct {
	Weight      float64
	WeightDelta float64 // most recent weight update
	From        NeuronID
	To          NeuronID
}

func newSynapse(from, to NeuronID, rng *rand.Rand) Synapse {
	return Synapse{
		Weight: uniform(rng),
		From:   from,
		To:     to,
	}
}

// uniform returns a value drawn uniformly from [-1, 1).
func uniform(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}
