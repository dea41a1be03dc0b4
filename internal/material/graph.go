package material

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NodeKind names a shading node type independent of any backend.
type NodeKind string

// Node kinds.
const (
	KindUVReader     NodeKind = "uv_reader"
	KindImageTexture NodeKind = "image_texture"
	KindPrincipled   NodeKind = "principled"
	KindOutput       NodeKind = "output"
)

// Canonical socket names. Backends map them to their own input and output names.
const (
	SocketResult    = "result"     // uv_reader output
	SocketST        = "st"         // image_texture coordinate input
	SocketRGB       = "rgb"        // image_texture color output
	SocketBaseColor = "base_color" // principled input
	SocketEmission  = "emission"   // principled input
	SocketSurface   = "surface"    // principled output, output input
)

// ErrInvalidGraph is returned by Graph.Validate.
var ErrInvalidGraph = errors.New("invalid material graph")

// Node is one shading node. Only the fields relevant to Kind are set.
type Node struct {
	Name string
	Kind NodeKind

	// uv_reader
	Varname string

	// image_texture
	File       string
	ColorSpace ColorSpace
	Scale      float32 // multiplier applied to the sampled color

	// principled; constant values used when the matching input is not linked
	BaseColor RGB
	Emission  RGB
	Roughness float32
	Metallic  float32
}

// Link connects an output socket of one node to an input socket of another.
type Link struct {
	From       string
	FromSocket string
	To         string
	ToSocket   string
}

// String returns "from.socket -> to.socket".
func (l Link) String() string {
	return l.From + "." + l.FromSocket + " -> " + l.To + "." + l.ToSocket
}

// Graph is a declarative material network: nodes plus named connections.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Node returns the node called name.
func (g *Graph) Node(name string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// NodesOfKind returns the nodes of the given kind in declaration order.
func (g *Graph) NodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for i := range g.Nodes {
		if g.Nodes[i].Kind == kind {
			out = append(out, &g.Nodes[i])
		}
	}
	return out
}

// Input returns the link feeding socket on node, if any.
func (g *Graph) Input(node, socket string) (Link, bool) {
	for _, l := range g.Links {
		if l.To == node && l.ToSocket == socket {
			return l, true
		}
	}
	return Link{}, false
}

// Validate checks that node names are unique, links reference declared nodes,
// no input socket has two sources, and exactly one output node exists.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	outputs := 0
	for _, n := range g.Nodes {
		if n.Name == "" {
			return fmt.Errorf("%w: node of kind %s has no name", ErrInvalidGraph, n.Kind)
		}
		if seen[n.Name] {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidGraph, n.Name)
		}
		seen[n.Name] = true
		if n.Kind == KindOutput {
			outputs++
		}
	}
	if outputs != 1 {
		return fmt.Errorf("%w: want one output node, have %d", ErrInvalidGraph, outputs)
	}

	fed := make(map[string]bool, len(g.Links))
	for _, l := range g.Links {
		if !seen[l.From] || !seen[l.To] {
			return fmt.Errorf("%w: link %s references an undeclared node", ErrInvalidGraph, l)
		}
		key := l.To + "." + l.ToSocket
		if fed[key] {
			return fmt.Errorf("%w: input %s has more than one source", ErrInvalidGraph, key)
		}
		fed[key] = true
	}
	return nil
}

// Shape returns a canonical description of node kinds and connections that ignores
// constant values. Two graphs built from the same options have the same shape.
func (g *Graph) Shape() string {
	kind := make(map[string]NodeKind, len(g.Nodes))
	kinds := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		kind[n.Name] = n.Kind
		kinds = append(kinds, string(n.Kind))
	}
	sort.Strings(kinds)

	links := make([]string, 0, len(g.Links))
	for _, l := range g.Links {
		links = append(links, fmt.Sprintf("%s.%s>%s.%s", kind[l.From], l.FromSocket, kind[l.To], l.ToSocket))
	}
	sort.Strings(links)

	return strings.Join(kinds, ",") + "|" + strings.Join(links, ",")
}
