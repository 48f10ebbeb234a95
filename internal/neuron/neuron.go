// Package neuron holds the tabular representation of a neuron
// reconstruction: treenodes, connectors and tags, plus the structural
// operations (segments, classification, validation) the SWC codec and the
// scene builder depend on.
package neuron

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Connector relation codes.
const (
	RelPresynaptic  = 0
	RelPostsynaptic = 1
	RelGapJunction  = 2
	RelAbutting     = 3
)

// SWC structural labels.
const (
	LabelUndefined   = 0
	LabelSoma        = 1
	LabelFork        = 5
	LabelEnd         = 6
	LabelPresynapse  = 7
	LabelPostsynapse = 8
)

// NoParent marks a root node, NoConnector a connector without a CATMAID
// connector ID (e.g. one extracted from an SWC label column).
const (
	NoParent    int64 = -1
	NoConnector int64 = -1
)

// Node is one row of a neuron's treenode table.
type Node struct {
	TreenodeID int64   `json:"treenode_id"`
	ParentID   int64   `json:"parent_id"` // NoParent for roots
	Label      int     `json:"label"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Radius     float64 `json:"radius"`
	Confidence int     `json:"confidence"`
	CreatorID  int     `json:"creator_id"`
}

// Connector is one row of a neuron's connector table. Connectors reference
// nodes by treenode ID; there is no reverse ownership.
type Connector struct {
	TreenodeID  int64   `json:"treenode_id"`
	ConnectorID int64   `json:"connector_id"` // NoConnector if unknown
	Relation    int     `json:"relation"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
}

// Neuron is a single reconstructed neuron: its node forest, connectors and
// tag table. Tags map a tag name to the treenode IDs carrying it; the
// "soma" tag marks the cell body.
type Neuron struct {
	SkeletonID int64
	Name       string
	Nodes      []Node
	Connectors []Connector
	Tags       map[string][]int64

	// SWCHeader preserves the comment block of the SWC file this neuron
	// was imported from, verbatim.
	SWCHeader string
	Filename  string
}

// NodeType classifies a node by its structural role in the forest.
type NodeType int

const (
	TypeSlab NodeType = iota
	TypeRoot
	TypeBranch
	TypeEnd
)

func (t NodeType) String() string {
	switch t {
	case TypeRoot:
		return "root"
	case TypeBranch:
		return "branch"
	case TypeEnd:
		return "end"
	default:
		return "slab"
	}
}

// Index returns a treenode ID -> position lookup into n.Nodes.
func (n *Neuron) Index() map[int64]int {
	ix := make(map[int64]int, len(n.Nodes))
	for i, nd := range n.Nodes {
		ix[nd.TreenodeID] = i
	}
	return ix
}

// children returns a parent -> child IDs adjacency. Children are sorted by
// ID so downstream ordering is deterministic.
func (n *Neuron) children() map[int64][]int64 {
	ch := make(map[int64][]int64, len(n.Nodes))
	for _, nd := range n.Nodes {
		if nd.ParentID >= 0 {
			ch[nd.ParentID] = append(ch[nd.ParentID], nd.TreenodeID)
		}
	}
	for _, c := range ch {
		sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	}
	return ch
}

// Roots returns the IDs of all root nodes, sorted.
func (n *Neuron) Roots() []int64 {
	var roots []int64
	for _, nd := range n.Nodes {
		if nd.ParentID < 0 {
			roots = append(roots, nd.TreenodeID)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// Classify returns the structural type of every node. Roots are classified
// as roots even when they branch; ends are nodes without children; branches
// are internal nodes with more than one child.
func (n *Neuron) Classify() map[int64]NodeType {
	ch := n.children()
	types := make(map[int64]NodeType, len(n.Nodes))
	for _, nd := range n.Nodes {
		switch {
		case nd.ParentID < 0:
			types[nd.TreenodeID] = TypeRoot
		case len(ch[nd.TreenodeID]) == 0:
			types[nd.TreenodeID] = TypeEnd
		case len(ch[nd.TreenodeID]) > 1:
			types[nd.TreenodeID] = TypeBranch
		default:
			types[nd.TreenodeID] = TypeSlab
		}
	}
	return types
}

// Leaves returns the IDs of all nodes without children, sorted.
func (n *Neuron) Leaves() []int64 {
	ch := n.children()
	var leaves []int64
	for _, nd := range n.Nodes {
		if len(ch[nd.TreenodeID]) == 0 {
			leaves = append(leaves, nd.TreenodeID)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	return leaves
}

// BranchPoints returns the IDs of all nodes with more than one child,
// sorted. Roots with multiple children are included.
func (n *Neuron) BranchPoints() []int64 {
	ch := n.children()
	var branches []int64
	for id, c := range ch {
		if len(c) > 1 {
			branches = append(branches, id)
		}
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i] < branches[j] })
	return branches
}

// Soma returns the treenode IDs tagged as soma, or nil.
func (n *Neuron) Soma() []int64 {
	return n.Tags["soma"]
}

// Presynapses returns all connectors with a presynaptic relation.
func (n *Neuron) Presynapses() []Connector {
	return n.connectorsByRelation(RelPresynaptic)
}

// Postsynapses returns all connectors with a postsynaptic relation.
func (n *Neuron) Postsynapses() []Connector {
	return n.connectorsByRelation(RelPostsynaptic)
}

func (n *Neuron) connectorsByRelation(rel int) []Connector {
	var out []Connector
	for _, c := range n.Connectors {
		if c.Relation == rel {
			out = append(out, c)
		}
	}
	return out
}

// CableLength returns the summed Euclidean length of all parent-child
// edges.
func (n *Neuron) CableLength() float64 {
	ix := n.Index()
	var total float64
	for _, nd := range n.Nodes {
		if nd.ParentID < 0 {
			continue
		}
		pi, ok := ix[nd.ParentID]
		if !ok {
			continue
		}
		p := n.Nodes[pi]
		total += math.Sqrt((nd.X-p.X)*(nd.X-p.X) + (nd.Y-p.Y)*(nd.Y-p.Y) + (nd.Z-p.Z)*(nd.Z-p.Z))
	}
	return total
}

// Validate checks the forest invariant: treenode IDs are unique, every
// non-root parent reference resolves to a node in the table, and every
// parent chain terminates at a root.
func (n *Neuron) Validate() error {
	seen := make(map[int64]bool, len(n.Nodes))
	for _, nd := range n.Nodes {
		if seen[nd.TreenodeID] {
			return fmt.Errorf("duplicate treenode ID %d", nd.TreenodeID)
		}
		seen[nd.TreenodeID] = true
	}
	for _, nd := range n.Nodes {
		if nd.ParentID >= 0 && !seen[nd.ParentID] {
			return fmt.Errorf("node %d references missing parent %d", nd.TreenodeID, nd.ParentID)
		}
	}

	// Follow every parent chain once; a chain that revisits itself before
	// reaching a root is a cycle.
	ix := n.Index()
	reachesRoot := make(map[int64]bool, len(n.Nodes))
	for _, nd := range n.Nodes {
		var path []int64
		onPath := make(map[int64]bool)
		id := nd.TreenodeID
		for !reachesRoot[id] {
			if onPath[id] {
				return fmt.Errorf("cycle in parent references at node %d", id)
			}
			onPath[id] = true
			path = append(path, id)
			p := n.Nodes[ix[id]].ParentID
			if p < 0 {
				break
			}
			id = p
		}
		for _, v := range path {
			reachesRoot[v] = true
		}
	}
	return nil
}

// Components returns the number of connected components in the node
// forest. A fully connected neuron has exactly one.
func (n *Neuron) Components() int {
	if len(n.Nodes) == 0 {
		return 0
	}
	ids := make([]int64, len(n.Nodes))
	for i, nd := range n.Nodes {
		ids[i] = nd.TreenodeID
	}
	uf := NewUnionFind(ids)
	ix := n.Index()
	for _, nd := range n.Nodes {
		if nd.ParentID < 0 {
			continue
		}
		if _, ok := ix[nd.ParentID]; ok {
			uf.Union(nd.TreenodeID, nd.ParentID)
		}
	}
	return len(uf.Components())
}

// TagLabel records a tag for the given treenode IDs. Numeric SWC labels are
// tagged under their decimal string.
func (n *Neuron) TagLabel(label int, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if n.Tags == nil {
		n.Tags = make(map[string][]int64)
	}
	key := strconv.Itoa(label)
	n.Tags[key] = append(n.Tags[key], ids...)
}
