// Package toonmap provides the location graph the toon travels on.
// Locations are named nodes connected by tunnels; a subset are playgrounds,
// which are safe hubs and respawn points.
package toonmap

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// ErrNotEnoughNodes is returned when a random sample asks for more
// locations than are eligible.
var ErrNotEnoughNodes = errors.New("toonmap: not enough eligible locations")

// Node is a single location on the map.
type Node struct {
	name       string
	playground bool
	neighbors  []*Node
}

// Name returns the location name. Names are unique within a Map.
func (n *Node) Name() string {
	return n.name
}

// IsPlayground reports whether the location is a playground.
func (n *Node) IsPlayground() bool {
	return n.playground
}

// Neighbors returns the locations one tunnel away, in insertion order.
// The returned slice must not be modified.
func (n *Node) Neighbors() []*Node {
	return n.neighbors
}

// IsNeighbor reports whether other is one tunnel away from n.
func (n *Node) IsNeighbor(other *Node) bool {
	if other == nil {
		return false
	}
	for _, nb := range n.neighbors {
		if nb.name == other.name {
			return true
		}
	}
	return false
}

// InfoTip returns the neighbor listing shown to the player, e.g.
// "--- Silly Street - Loopy Lane".
func (n *Node) InfoTip() string {
	names := make([]string, len(n.neighbors))
	for i, nb := range n.neighbors {
		names[i] = nb.name
	}
	return "--- " + strings.Join(names, " - ")
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.name
}

func (n *Node) addNeighbor(nb *Node) {
	if n.IsNeighbor(nb) {
		return
	}
	n.neighbors = append(n.neighbors, nb)
}

// Map is the fixed graph of locations. It is built once and never
// mutated afterwards.
type Map struct {
	name     string
	start    *Node
	cogStart *Node
	nodes    map[string]*Node
	order    []*Node // insertion order, keeps sampling deterministic
}

func newMap(name string) *Map {
	return &Map{
		name:  name,
		nodes: make(map[string]*Node),
	}
}

// Name returns the display name of the map.
func (m *Map) Name() string {
	return m.name
}

// Start returns the location the toon starts in.
func (m *Map) Start() *Node {
	return m.start
}

// CogStart returns the street the cog starts on, or nil when the map has
// no streets.
func (m *Map) CogStart() *Node {
	return m.cogStart
}

// Node returns the location with the exact given name, or nil.
func (m *Map) Node(name string) *Node {
	return m.nodes[name]
}

// Neighbors returns the locations adjacent to n.
func (m *Map) Neighbors(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return n.Neighbors()
}

// Nodes returns every location in insertion order.
func (m *Map) Nodes() []*Node {
	out := make([]*Node, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of locations.
func (m *Map) Len() int {
	return len(m.order)
}

// Playgrounds returns the playground locations in insertion order.
func (m *Map) Playgrounds() []*Node {
	var out []*Node
	for _, n := range m.order {
		if n.playground {
			out = append(out, n)
		}
	}
	return out
}

// addNode returns the existing node for name or creates it.
func (m *Map) addNode(name string, playground bool) (*Node, error) {
	if name == "" {
		return nil, errors.New("toonmap: empty location name")
	}
	if n, ok := m.nodes[name]; ok {
		if n.playground != playground {
			return nil, fmt.Errorf("toonmap: location %q declared both as playground and street", name)
		}
		return n, nil
	}
	n := &Node{name: name, playground: playground}
	m.nodes[name] = n
	m.order = append(m.order, n)
	return n, nil
}

// addEdge creates both endpoints on demand and links from -> to.
// With undirected set the reverse link is added too.
func (m *Map) addEdge(from, to Endpoint, undirected bool) error {
	src, err := m.addNode(from.Name, from.Playground)
	if err != nil {
		return err
	}
	dst, err := m.addNode(to.Name, to.Playground)
	if err != nil {
		return err
	}
	src.addNeighbor(dst)
	if undirected {
		dst.addNeighbor(src)
	}
	return nil
}

// RandomNodes samples count distinct non-playground locations that are not
// in exclude, uniformly and without replacement. A zero-value exclude set
// excludes nothing.
func (m *Map) RandomNodes(rng *rand.Rand, count int, exclude mapset.Set[string]) ([]*Node, error) {
	if count < 0 {
		return nil, fmt.Errorf("toonmap: negative sample size %d", count)
	}

	eligible := make([]*Node, 0, len(m.order))
	for _, n := range m.order {
		if n.playground {
			continue
		}
		if exclude.Has(n.name) {
			continue
		}
		eligible = append(eligible, n)
	}

	if count > len(eligible) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughNodes, count, len(eligible))
	}

	// Partial Fisher-Yates over the eligible slice
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}

	return eligible[:count], nil
}

// Reachable returns the names of all locations reachable from start by
// following tunnels.
func (m *Map) Reachable(start *Node) mapset.Set[string] {
	visited := mapset.New[string]()
	if start == nil {
		return visited
	}
	queue := []*Node{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited.Has(current.name) {
			continue
		}
		visited.Put(current.name)

		for _, nb := range current.neighbors {
			if !visited.Has(nb.name) {
				queue = append(queue, nb)
			}
		}
	}

	return visited
}

// IsSymmetric reports whether every tunnel can be walked both ways.
func (m *Map) IsSymmetric() bool {
	for _, n := range m.order {
		for _, nb := range n.neighbors {
			if !nb.IsNeighbor(n) {
				return false
			}
		}
	}
	return true
}
