package voice

import "strings"

// RegionRule maps an endpoint host prefix to a region label.
type RegionRule struct {
	Prefix string
	Region string
}

// RegionTable infers a region label from a voice endpoint host. The rules
// are configuration data, not logic: extending coverage means adding rules,
// never touching the session state machine.
type RegionTable struct {
	rules    []RegionRule
	fallback string
}

// NewRegionTable builds a table from ordered rules and a fallback label used
// when no prefix matches. An empty fallback means "no opinion": Infer returns
// "" and migration is skipped.
func NewRegionTable(rules []RegionRule, fallback string) *RegionTable {
	return &RegionTable{rules: rules, fallback: fallback}
}

// Infer returns the region label implied by an endpoint such as
// "frankfurt1234.example.gg:443". First matching prefix wins.
func (t *RegionTable) Infer(endpoint string) string {
	if t == nil || endpoint == "" {
		return ""
	}
	host := strings.ToLower(endpoint)
	if idx := strings.IndexByte(host, ':'); idx != -1 {
		host = host[:idx]
	}
	for _, r := range t.rules {
		if strings.HasPrefix(host, strings.ToLower(r.Prefix)) {
			return r.Region
		}
	}
	return t.fallback
}
