package simplenn

import (
	"github.com/emicklei/dot"
	. "github.com/stevegt/goadapt"
)

// Graph returns a graphviz graph of the network: one cluster per
// layer, one node per neuron labeled with its bias, and one edge per
// synapse labeled with its weight.
func (n *Network) Graph() (g *dot.Graph) {
	n.lock.Lock()
	defer n.lock.Unlock()

	g = dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")
	if n.Name != "" {
		g.Label(n.Name)
	}
	last := len(n.layers) - 1
	nodes := make([][]dot.Node, len(n.layers))
	for layerNum, layer := range n.layers {
		var title string
		switch layerNum {
		case 0:
			title = "input"
		case last:
			title = "output"
		default:
			title = Spf("hidden %d", layerNum)
		}
		sub := g.Subgraph(title, dot.ClusterOption{})
		nodes[layerNum] = make([]dot.Node, len(layer))
		for i, node := range layer {
			id := NeuronID{layerNum, i}
			label := id.String()
			switch {
			case layerNum == 0 && i < len(n.InputNames):
				label = n.InputNames[i]
			case layerNum == last && i < len(n.OutputNames):
				label = n.OutputNames[i]
			}
			if layerNum > 0 {
				label = Spf("%s\n%s b=%.3f", label, n.activation, node.Bias)
			}
			nodes[layerNum][i] = sub.Node(id.String()).Label(label)
		}
	}
	for _, syn := range n.synapses {
		from := nodes[syn.From.Layer][syn.From.Index]
		to := nodes[syn.To.Layer][syn.To.Index]
		g.Edge(from, to, Spf("%.3f", syn.Weight))
	}
	return
}

// Draw returns the network in graphviz dot notation.
func (n *Network) Draw() string {
	return n.Graph().String()
}
