package roster

// File is the top-level structure of nodes.yaml.
type File struct {
	Nodes   []NodeEntry `yaml:"nodes"`
	Regions RegionsSpec `yaml:"regions,omitempty"`
}

// NodeEntry declares one remote audio node.
type NodeEntry struct {
	ID       string `yaml:"id"`
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	Region   string `yaml:"region,omitempty"`
}

// RegionsSpec maps voice endpoint host prefixes to region labels.
type RegionsSpec struct {
	Rules   []RegionRuleEntry `yaml:"rules,omitempty"`
	Default string            `yaml:"default,omitempty"`
}

// RegionRuleEntry is one prefix -> region mapping.
type RegionRuleEntry struct {
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}
