package toonmap

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed maps/toontown.yaml
var defaultTopologyYAML []byte

// Endpoint names one end of a tunnel.
type Endpoint struct {
	Name       string `yaml:"name"`
	Playground bool   `yaml:"playground,omitempty"`
}

// LocationSpec is one row of the topology table: a source location and
// the tunnels leaving it.
type LocationSpec struct {
	Endpoint `yaml:",inline"`
	Tunnels  []Endpoint `yaml:"tunnels"`
}

// Topology is the YAML description of a map.
type Topology struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	// CogStart is the street the cog starts on. Empty picks the first
	// street listed.
	CogStart string `yaml:"cog_start,omitempty"`
	// Undirected adds the reverse of every listed tunnel. Without it a
	// tunnel only leads from the source row to its targets.
	Undirected bool           `yaml:"undirected"`
	Locations  []LocationSpec `yaml:"locations"`
}

// ParseTopology parses a YAML topology.
func ParseTopology(data []byte) (Topology, error) {
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("toonmap: yaml unmarshal: %w", err)
	}
	return t, nil
}

// DefaultTopology returns the embedded Toontown topology.
func DefaultTopology() (Topology, error) {
	return ParseTopology(defaultTopologyYAML)
}

// LoadTopology reads a topology file from disk.
func LoadTopology(path string) (Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("toonmap: reading %s: %w", path, err)
	}
	t, err := ParseTopology(data)
	if err != nil {
		return Topology{}, fmt.Errorf("toonmap: parsing %s: %w", path, err)
	}
	return t, nil
}

// Build constructs a Map from a topology and checks that every location is
// reachable from the start.
func Build(t Topology) (*Map, error) {
	m := newMap(t.Name)

	for _, loc := range t.Locations {
		if _, err := m.addNode(loc.Name, loc.Playground); err != nil {
			return nil, err
		}
		for _, target := range loc.Tunnels {
			if err := m.addEdge(loc.Endpoint, target, t.Undirected); err != nil {
				return nil, err
			}
		}
	}

	if m.Len() == 0 {
		return nil, fmt.Errorf("toonmap: topology %q has no locations", t.Name)
	}

	start := m.Node(t.Start)
	if start == nil {
		return nil, fmt.Errorf("toonmap: start location %q not on map", t.Start)
	}
	if !start.IsPlayground() {
		return nil, fmt.Errorf("toonmap: start location %q is not a playground", t.Start)
	}
	m.start = start

	if err := m.setCogStart(t.CogStart); err != nil {
		return nil, err
	}

	reachable := m.Reachable(start)
	if reachable.Size() != m.Len() {
		for _, n := range m.order {
			if !reachable.Has(n.name) {
				return nil, fmt.Errorf("toonmap: %q is unreachable from %q", n.name, start.name)
			}
		}
	}

	return m, nil
}

func (m *Map) setCogStart(name string) error {
	if name == "" {
		for _, n := range m.order {
			if !n.IsPlayground() {
				m.cogStart = n
				break
			}
		}
		return nil
	}

	n := m.Node(name)
	if n == nil {
		return fmt.Errorf("toonmap: cog start %q not on map", name)
	}
	if n.IsPlayground() {
		return fmt.Errorf("toonmap: cog start %q is a playground", name)
	}
	m.cogStart = n
	return nil
}
