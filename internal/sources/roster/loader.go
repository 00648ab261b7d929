package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the node roster file.
type Loader struct {
	filePath string
}

// NewLoader creates a roster loader for the given path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the roster file, validating every entry. An empty
// node list is a configuration error: the pool must be non-empty, enforced
// before anything tries to connect.
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw roster YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster yaml: %w", err)
	}

	if len(f.Nodes) == 0 {
		return nil, fmt.Errorf("roster declares no nodes")
	}

	seen := make(map[string]bool, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("roster node #%d has no id", i+1)
		}
		if n.Address == "" {
			return nil, fmt.Errorf("roster node %q has no address", n.ID)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("roster node id %q declared twice", n.ID)
		}
		seen[n.ID] = true
	}

	for i, r := range f.Regions.Rules {
		if r.Prefix == "" || r.Region == "" {
			return nil, fmt.Errorf("region rule #%d needs both prefix and region", i+1)
		}
	}

	return &f, nil
}
