package simplenn

import (
	"math/rand"

	. "github.com/stevegt/goadapt"
	"github.com/stevegt/simplenn/shape"
)

// NewFromShape builds a network described by a shape string such as
// "(xor a b (sigmoid 3) (sigmoid 3) (sigmoid y))".  Layer sizes,
// activation, and input and output names come from the shape; the
// learning rate, momentum, and output gradient mode come from cfg,
// whose size and activation fields are ignored.  Every layer in the
// shape must use the same activation.
func NewFromShape(txt string, cfg Config, rng *rand.Rand) (n *Network, err error) {
	s, err := shape.Parse(txt)
	if err != nil {
		return nil, &ConfigError{Field: "shape", Msg: err.Error()}
	}
	actName := s.LayerShapes[0].ActivationName
	for _, layer := range s.LayerShapes {
		if layer.ActivationName != actName {
			return nil, &ConfigError{Field: "shape", Msg: Spf("mixed activations %s and %s", actName, layer.ActivationName)}
		}
	}
	cfg.Activation, err = ParseActivation(actName)
	if err != nil {
		return
	}
	cfg.InputSize = s.InputCount
	cfg.HiddenSizes = s.HiddenSizes()
	cfg.OutputSize = s.Output().Size
	n, err = New(cfg, rng)
	if err != nil {
		return
	}
	n.Name = s.Name
	n.InputNames = s.InputNames
	n.OutputNames = s.OutputNames()
	return
}

// SetNames names the network's inputs and outputs for use with
// PredictNamed.
func (n *Network) SetNames(inputNames, outputNames []string) (err error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if len(inputNames) != n.inputSize() {
		return &ShapeError{What: "input names", Want: n.inputSize(), Got: len(inputNames), Case: -1}
	}
	if len(outputNames) != len(n.outputLayer()) {
		return &ShapeError{What: "output names", Want: len(n.outputLayer()), Got: len(outputNames), Case: -1}
	}
	n.InputNames = append([]string(nil), inputNames...)
	n.OutputNames = append([]string(nil), outputNames...)
	return
}

// Shape returns the network's shape as a shape string.
func (n *Network) Shape() string {
	n.lock.Lock()
	defer n.lock.Unlock()
	name := n.Name
	if name == "" {
		name = "net"
	}
	s := &shape.Shape{
		Name:       name,
		InputNames: n.InputNames,
		InputCount: n.inputSize(),
	}
	last := len(n.layers) - 1
	for layerNum := 1; layerNum <= last; layerNum++ {
		layer := &shape.LayerShape{
			ActivationName: n.activation.String(),
			Size:           len(n.layers[layerNum]),
		}
		if layerNum == last {
			layer.Names = n.OutputNames
		}
		s.LayerShapes = append(s.LayerShapes, layer)
	}
	return s.String()
}
