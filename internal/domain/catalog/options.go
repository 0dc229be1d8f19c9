// Package catalog provides the static app risk profile lookup table.
package catalog

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithProfiles merges additional profiles into the curated table.
// Existing entries with the same app ID are replaced.
func WithProfiles(profiles map[string]Profile) Option {
	return func(c *Catalog) {
		for appID, p := range profiles {
			if appID != "" {
				c.profiles[appID] = p
			}
		}
	}
}

// WithDefaultProfile replaces the fallback profile used for unknown apps.
func WithDefaultProfile(p Profile) Option {
	return func(c *Catalog) {
		if len(p.RiskFactors) > 0 {
			c.defaultProfile = p
		}
	}
}
