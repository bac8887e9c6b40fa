// Package shape parses and prints the s-expression shape language
// used to describe a dense network:
//
//	(name input... (activation size)... (activation output...))
//
// Inputs are either symbols naming each input or a single integer
// input count.  Each following expression is a layer: an activation
// name followed by either a neuron count or one name per neuron.  The
// last layer is the output layer.  For example:
//
//	(xor a b (sigmoid 3) (sigmoid 3) (sigmoid y))
package shape

import (
	"strconv"
	"strings"

	. "github.com/stevegt/goadapt"
	"github.com/xiam/sexpr/ast"
	"github.com/xiam/sexpr/parser"
)

// Shape is a representation of the network's shape.
type Shape struct {
	Name        string
	InputNames  []string
	InputCount  int
	LayerShapes []*LayerShape
}

// LayerShape describes one layer: its activation and either a neuron
// count or the names of its neurons.
type LayerShape struct {
	ActivationName string
	Size           int
	Names          []string
}

func (s *Shape) String() (out string) {
	parts := []string{s.Name}
	if len(s.InputNames) > 0 {
		parts = append(parts, s.InputNames...)
	} else {
		parts = append(parts, strconv.Itoa(s.InputCount))
	}
	for _, layer := range s.LayerShapes {
		parts = append(parts, layer.String())
	}
	out = Spf("(%s)", strings.Join(parts, " "))
	return
}

func (s *LayerShape) String() (out string) {
	if len(s.Names) > 0 {
		return Spf("(%s %s)", s.ActivationName, strings.Join(s.Names, " "))
	}
	return Spf("(%s %d)", s.ActivationName, s.Size)
}

// HiddenSizes returns the neuron counts of every layer but the last.
func (s *Shape) HiddenSizes() (sizes []int) {
	for i := 0; i < len(s.LayerShapes)-1; i++ {
		sizes = append(sizes, s.LayerShapes[i].Size)
	}
	return
}

// Output returns the output layer's shape.
func (s *Shape) Output() *LayerShape {
	return s.LayerShapes[len(s.LayerShapes)-1]
}

// OutputNames returns the output layer's neuron names, or nil if the
// outputs are unnamed.
func (s *Shape) OutputNames() []string {
	return s.Output().Names
}

// SyntaxError is a syntax error.
type SyntaxError struct {
	msg  string
	node *ast.Node
}

func (e *SyntaxError) Error() string {
	pos := "-"
	if tok := e.node.Token(); tok != nil {
		pos = tok.Pos().String()
	}
	return Spf("[shape:%s] %s:\n%s", pos, e.msg, e.node.String())
}

// synck raises a syntax err if cond is false.
func synck(node *ast.Node, cond bool, args ...interface{}) {
	if !cond {
		msg := FormatArgs(args...)
		panic(&SyntaxError{msg, node})
	}
}

// catch turns a *SyntaxError raised by synck into an error return.
// Anything else keeps panicking.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	serr, ok := r.(*SyntaxError)
	if !ok {
		panic(r)
	}
	*err = serr
}

// Parse parses a shape string.  Syntax problems are returned as a
// *SyntaxError.
func Parse(txt string) (s *Shape, err error) {
	defer Return(&err)
	defer catch(&err)
	root, err := parser.Parse([]byte(txt))
	Ck(err)

	// root is a list
	synck(root, root.Type() == ast.NodeTypeList, "root is not a list")
	// root has one child
	children := root.List()
	synck(root, len(children) == 1, "root has %d children", len(children))
	// root's child is an expression
	expr := children[0]
	synck(expr, expr.Type() == ast.NodeTypeExpression, "root's child is not an expression")
	s, err = parseShape(expr)
	Ck(err)
	return
}

// Expr is a parsed expression: an operator and its arguments.
type Expr struct {
	Op   string
	Args []Expr
	node *ast.Node
}

func parseShape(n *ast.Node) (s *Shape, err error) {
	defer Return(&err)

	s = &Shape{}

	expr, err := parseExpr(n)
	Ck(err)
	s.Name = expr.Op
	for _, arg := range expr.Args {
		if arg.node.Type() != ast.NodeTypeExpression {
			synck(arg.node, len(s.LayerShapes) == 0, "input %s follows a layer", arg.Op)
			count, err := strconv.Atoi(arg.Op)
			if err == nil {
				// unnamed inputs
				synck(arg.node, s.InputCount == 0, "input count after named inputs")
				synck(arg.node, count > 0, "input count must be positive")
				s.InputCount = count
				continue
			}
			synck(arg.node, s.InputCount == 0 || len(s.InputNames) > 0, "input name after input count")
			s.InputNames = append(s.InputNames, arg.Op)
			s.InputCount = len(s.InputNames)
		} else {
			s.LayerShapes = append(s.LayerShapes, parseLayer(arg))
		}
	}
	synck(n, s.InputCount > 0, "missing inputs")
	synck(n, len(s.LayerShapes) > 0, "missing layers")
	return
}

func parseLayer(arg Expr) (layerShape *LayerShape) {
	layerShape = &LayerShape{ActivationName: arg.Op}
	for _, nodeExpr := range arg.Args {
		synck(nodeExpr.node, nodeExpr.node.Type() != ast.NodeTypeExpression, "nested expression in layer")
		// nodeExpr.Op is either a node count or a node name
		count, err := strconv.Atoi(nodeExpr.Op)
		if err != nil {
			synck(nodeExpr.node, len(layerShape.Names) == layerShape.Size, "name %s after node count", nodeExpr.Op)
			layerShape.Names = append(layerShape.Names, nodeExpr.Op)
			layerShape.Size++
			continue
		}
		synck(nodeExpr.node, layerShape.Size == 0, "more than one node count")
		synck(nodeExpr.node, count > 0, "node count must be positive")
		layerShape.Size = count
	}
	synck(arg.node, layerShape.Size > 0, "layer %s has no nodes", arg.Op)
	return
}

func parseExpr(n *ast.Node) (expr *Expr, err error) {
	defer Return(&err)
	children := n.List()
	synck(n, len(children) > 0, "missing opcode")
	synck(n, children[0].Type() == ast.NodeTypeSymbol, "first word is not a symbol")
	expr = &Expr{node: n}
	expr.Op = children[0].Encode()
	for i := 1; i < len(children); i++ {
		switch children[i].Type() {
		case ast.NodeTypeSymbol, ast.NodeTypeInt, ast.NodeTypeFloat, ast.NodeTypeString:
			expr.Args = append(expr.Args, Expr{children[i].Encode(), nil, children[i]})
		case ast.NodeTypeExpression:
			arg, err := parseExpr(children[i])
			Ck(err)
			expr.Args = append(expr.Args, *arg)
		default:
			synck(children[i], false, "unknown node type %v", children[i].Type())
		}
	}
	return
}
