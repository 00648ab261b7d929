package roster

import (
	"github.com/soundlink/conductor/internal/node"
	"github.com/soundlink/conductor/internal/voice"
)

// NodeConfigs maps roster entries to link configurations, preserving the
// file order: it becomes the pool's registration order and therefore the
// deterministic tie-break for selection.
func (f *File) NodeConfigs() []node.Config {
	out := make([]node.Config, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		out = append(out, node.Config{
			ID:       n.ID,
			Address:  n.Address,
			Password: n.Password,
			Region:   n.Region,
		})
	}
	return out
}

// RegionTable builds the endpoint-prefix region table from the roster.
func (f *File) RegionTable() *voice.RegionTable {
	rules := make([]voice.RegionRule, 0, len(f.Regions.Rules))
	for _, r := range f.Regions.Rules {
		rules = append(rules, voice.RegionRule{Prefix: r.Prefix, Region: r.Region})
	}
	return voice.NewRegionTable(rules, f.Regions.Default)
}
