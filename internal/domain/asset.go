package domain

import "sort"

// AssetRegistry tracks the asset symbols seen in a batch. Assets are
// implicitly registered when they appear on any leg, and the sorted list
// drives deterministic iteration order in snapshots and reports.
type AssetRegistry struct {
	assets map[string]bool
}

// NewAssetRegistry creates an empty AssetRegistry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		assets: make(map[string]bool),
	}
}

// Register adds an asset symbol to the registry.
func (r *AssetRegistry) Register(asset string) {
	r.assets[asset] = true
}

// Exists returns true if the asset has been registered.
func (r *AssetRegistry) Exists(asset string) bool {
	return r.assets[asset]
}

// Sorted returns all registered assets in lexical order.
func (r *AssetRegistry) Sorted() []string {
	out := make([]string, 0, len(r.assets))
	for a := range r.assets {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
