package draw

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Description is a serializable snapshot of a Draw, used for diagnostics.
type Description struct {
	NodeCount int               `yaml:"node_count" json:"node_count"`
	LiveCount int               `yaml:"live_count" json:"live_count"`
	Nodes     []NodeDescription `yaml:"nodes" json:"nodes"`
}

// NodeDescription describes a single node, listed in topological order.
type NodeDescription struct {
	ID           int               `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Root         bool              `yaml:"root,omitempty" json:"root,omitempty"`
	Live         bool              `yaml:"live" json:"live"`
	Tags         []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Interceptors int               `yaml:"interceptors,omitempty" json:"interceptors,omitempty"`
	Dependencies []EdgeDescription `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// EdgeDescription describes one dependency edge.
type EdgeDescription struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
}

// Describe builds the diagnostic snapshot of d.
func (d *Draw) Describe() Description {
	desc := Description{
		NodeCount: d.Len(),
		LiveCount: d.LiveCount(),
		Nodes:     make([]NodeDescription, 0, d.Len()),
	}
	for _, id := range d.order {
		n := d.nodes[id]
		nd := NodeDescription{
			ID:           int(n.ID),
			Name:         n.Name,
			Root:         n.Root,
			Live:         d.live[id],
			Tags:         n.Tags,
			Interceptors: len(n.Interceptors) + len(n.InterceptorNodes),
		}
		for _, dep := range n.Edges() {
			nd.Dependencies = append(nd.Dependencies, EdgeDescription{
				Name: d.nodes[dep.ID].Name,
				Kind: dep.Kind.String(),
			})
		}
		desc.Nodes = append(desc.Nodes, nd)
	}
	return desc
}

// YAML renders the description as a YAML document.
func (desc Description) YAML() ([]byte, error) {
	out, err := yaml.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to render blueprint as YAML: %w", err)
	}
	return out, nil
}
