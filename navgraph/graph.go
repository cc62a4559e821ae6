// Package navgraph exposes read-only access to a navigation graph.
//
// The planner works in centimeters; Graph implementations return node
// coordinates in meters so that nothing downstream has to convert.
package navgraph

import (
	"fmt"
	"os"
	"sort"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/naverr"
	"gopkg.in/yaml.v3"
)

// CentimetersPerMeter is the scale between planner and map units.
const CentimetersPerMeter = 100.0

// Node is one graph vertex, already converted to meters.
type Node struct {
	Index          int
	X              float64
	Y              float64
	Radius         float64
	IntersectionID int
}

// Point returns the node position.
func (n Node) Point() geometry.Point {
	return geometry.Point{X: n.X, Y: n.Y}
}

// Region returns the disc around the node.
func (n Node) Region() geometry.Region {
	return geometry.Region{Center: n.Point(), Radius: n.Radius}
}

// Edge connects two nodes. Path is stored in the direction From -> To.
type Edge struct {
	From int
	To   int
	Cost float64
	Path []geometry.Point
}

// Graph is the read-only accessor consumed by the plan builder.
// Implementations must be safe for concurrent readers.
type Graph interface {
	// Node returns the node with the given index.
	Node(index int) (Node, error)

	// Edge returns the edge between i and j in whichever direction it was
	// stored. The returned path is a copy.
	Edge(i, j int) (Edge, error)
}

// Memory is an immutable in-memory Graph. Build one with a MemoryBuilder or
// load it from YAML with Load.
type Memory struct {
	nodes map[int]Node
	edges map[[2]int]Edge
}

// Node implements Graph.
func (g *Memory) Node(index int) (Node, error) {
	n, ok := g.nodes[index]
	if !ok {
		return Node{}, naverr.NewNotFoundError("Graph.Node", fmt.Errorf("node %d", index)).
			WithContext(map[string]any{"index": index})
	}
	return n, nil
}

// Edge implements Graph.
func (g *Memory) Edge(i, j int) (Edge, error) {
	e, ok := g.edges[[2]int{i, j}]
	if !ok {
		e, ok = g.edges[[2]int{j, i}]
	}
	if !ok {
		return Edge{}, naverr.NewNotFoundError("Graph.Edge", fmt.Errorf("edge %d-%d", i, j)).
			WithContext(map[string]any{"from": i, "to": j})
	}
	path := make([]geometry.Point, len(e.Path))
	copy(path, e.Path)
	e.Path = path
	return e, nil
}

// Len returns the number of nodes.
func (g *Memory) Len() int {
	return len(g.nodes)
}

// Indices returns the node indices in ascending order.
func (g *Memory) Indices() []int {
	out := make([]int, 0, len(g.nodes))
	for i := range g.nodes {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// PathCost sums the edge costs along indices. Missing edges fall back to
// the straight-line distance between the nodes, in centimeters.
func (g *Memory) PathCost(indices []int) float64 {
	var total float64
	for k := 0; k+1 < len(indices); k++ {
		if e, err := g.Edge(indices[k], indices[k+1]); err == nil {
			total += e.Cost
			continue
		}
		a, errA := g.Node(indices[k])
		b, errB := g.Node(indices[k+1])
		if errA == nil && errB == nil {
			total += a.Point().Distance(b.Point()) * CentimetersPerMeter
		}
	}
	return total
}

// MemoryBuilder accumulates nodes and edges for a Memory graph.
type MemoryBuilder struct {
	g   *Memory
	err error
}

// NewMemoryBuilder returns an empty builder.
func NewMemoryBuilder() *MemoryBuilder {
	return &MemoryBuilder{g: &Memory{
		nodes: make(map[int]Node),
		edges: make(map[[2]int]Edge),
	}}
}

// AddNode adds a node given in planner units (centimeters). Radius is in meters.
func (b *MemoryBuilder) AddNode(index int, xCm, yCm, radius float64, intersectionID int) *MemoryBuilder {
	if _, dup := b.g.nodes[index]; dup && b.err == nil {
		b.err = naverr.NewValidationError("MemoryBuilder.AddNode", fmt.Errorf("duplicate node %d", index))
	}
	b.g.nodes[index] = Node{
		Index:          index,
		X:              xCm / CentimetersPerMeter,
		Y:              yCm / CentimetersPerMeter,
		Radius:         radius,
		IntersectionID: intersectionID,
	}
	return b
}

// AddEdge adds an edge with a path in meters.
func (b *MemoryBuilder) AddEdge(from, to int, cost float64, path []geometry.Point) *MemoryBuilder {
	cp := make([]geometry.Point, len(path))
	copy(cp, path)
	b.g.edges[[2]int{from, to}] = Edge{From: from, To: to, Cost: cost, Path: cp}
	return b
}

// Build validates edges against nodes and returns the graph.
func (b *MemoryBuilder) Build() (*Memory, error) {
	if b.err != nil {
		return nil, b.err
	}
	for key, e := range b.g.edges {
		if _, ok := b.g.nodes[key[0]]; !ok {
			return nil, naverr.NewValidationError("MemoryBuilder.Build", fmt.Errorf("edge %d-%d: unknown node %d", e.From, e.To, key[0]))
		}
		if _, ok := b.g.nodes[key[1]]; !ok {
			return nil, naverr.NewValidationError("MemoryBuilder.Build", fmt.Errorf("edge %d-%d: unknown node %d", e.From, e.To, key[1]))
		}
		if len(e.Path) == 0 {
			return nil, naverr.NewValidationError("MemoryBuilder.Build", fmt.Errorf("edge %d-%d has an empty path", e.From, e.To))
		}
	}
	return b.g, nil
}

// File is the YAML layout of a graph file.
type File struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// NodeSpec is one node in a graph file. Coordinates are centimeters.
type NodeSpec struct {
	Index          int     `yaml:"index"`
	XCm            float64 `yaml:"x_cm"`
	YCm            float64 `yaml:"y_cm"`
	Radius         float64 `yaml:"radius"`
	IntersectionID int     `yaml:"intersection,omitempty"`
}

// EdgeSpec is one edge in a graph file. Path points are meters.
type EdgeSpec struct {
	From int              `yaml:"from"`
	To   int              `yaml:"to"`
	Cost float64          `yaml:"cost"`
	Path []geometry.Point `yaml:"path"`
}

// Parse decodes a YAML graph document.
func Parse(data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse graph YAML: %w", err)
	}
	return f.Build()
}

// Build turns the decoded file into a graph.
func (f File) Build() (*Memory, error) {
	b := NewMemoryBuilder()
	for _, n := range f.Nodes {
		b.AddNode(n.Index, n.XCm, n.YCm, n.Radius, n.IntersectionID)
	}
	for _, e := range f.Edges {
		b.AddEdge(e.From, e.To, e.Cost, e.Path)
	}
	return b.Build()
}

// Load reads and parses a YAML graph file.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	return Parse(data)
}
