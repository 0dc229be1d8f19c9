// Package catalog provides the static app risk profile lookup table.
//
// The catalog is built once at startup and is read-only afterwards, so it
// is safe for concurrent lookups from the detector and the extractor
// without locking.
package catalog

import (
	"github.com/okian/neuropulse/internal/domain/model"
)

// Profile describes the baseline addiction risk of a known app.
type Profile struct {
	Category       int      // 0..9, see model category constants
	BaseRisk       float64  // [0,1]
	PrimaryConcern string   // short description of the dominant risk
	RiskFactors    []string // ordered, most significant first
}

// Default profile values for apps not present in the catalog.
const (
	defaultCategory = model.CategoryShopping // 5, "other" bucket in the curated table
	defaultBaseRisk = 0.2
)

// Catalog maps app identifiers to risk profiles with a default fallback.
type Catalog struct {
	profiles       map[string]Profile
	defaultProfile Profile
}

// New creates a catalog populated with the curated profile table.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		profiles: curatedProfiles(),
		defaultProfile: Profile{
			Category:       defaultCategory,
			BaseRisk:       defaultBaseRisk,
			PrimaryConcern: "Unknown app - moderate caution",
			RiskFactors:    []string{"Unknown risk factors"},
		},
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the profile for appID, or the default profile when the
// app is unknown. Never fails.
func (c *Catalog) Lookup(appID string) Profile {
	if p, ok := c.profiles[appID]; ok {
		return p
	}
	return c.defaultProfile
}

// Known reports whether appID has a curated profile.
func (c *Catalog) Known(appID string) bool {
	_, ok := c.profiles[appID]
	return ok
}

// Category returns the category code for appID, falling back to the
// default profile's category for unknown apps.
func (c *Catalog) Category(appID string) int {
	return c.Lookup(appID).Category
}

// Size returns the number of curated profiles.
func (c *Catalog) Size() int {
	return len(c.profiles)
}

// curatedProfiles returns the built-in profile table covering high,
// medium, and low risk apps across categories.
func curatedProfiles() map[string]Profile {
	return map[string]Profile{
		// High-risk social media apps
		"com.instagram.android": {
			Category: model.CategorySocial, BaseRisk: 0.8,
			PrimaryConcern: "Infinite scroll addiction",
			RiskFactors:    []string{"Infinite scroll mechanism", "Dopamine-driven engagement", "Social comparison"},
		},
		"com.zhiliaoapp.musically": {
			Category: model.CategorySocial, BaseRisk: 0.9,
			PrimaryConcern: "Short-form video addiction",
			RiskFactors:    []string{"Algorithmic content delivery", "Endless video stream", "High dopamine triggers"},
		},
		"com.facebook.katana": {
			Category: model.CategorySocial, BaseRisk: 0.7,
			PrimaryConcern: "Social validation seeking",
			RiskFactors:    []string{"News feed algorithm", "Social interactions", "Notification triggers"},
		},
		"com.snapchat.android": {
			Category: model.CategorySocial, BaseRisk: 0.7,
			PrimaryConcern: "Streak maintenance compulsion",
			RiskFactors:    []string{"Streak pressure", "Instant gratification", "FOMO triggers"},
		},
		"com.twitter.android": {
			Category: model.CategorySocial, BaseRisk: 0.6,
			PrimaryConcern: "Information overload",
			RiskFactors:    []string{"Real-time updates", "Outrage engagement", "Infinite timeline"},
		},
		"com.reddit.frontpage": {
			Category: model.CategorySocial, BaseRisk: 0.6,
			PrimaryConcern: "Endless browsing",
			RiskFactors:    []string{"Infinite scroll", "Discussion addiction", "Time sink"},
		},
		"com.pinterest": {
			Category: model.CategorySocial, BaseRisk: 0.5,
			PrimaryConcern: "Endless visual browsing",
			RiskFactors:    []string{"Infinite scroll", "Collection compulsion"},
		},

		// Entertainment apps
		"com.google.android.youtube": {
			Category: model.CategoryEntertainment, BaseRisk: 0.7,
			PrimaryConcern: "Binge-watching tendency",
			RiskFactors:    []string{"Autoplay feature", "Recommendation algorithm", "Endless content"},
		},
		"com.netflix.mediaclient": {
			Category: model.CategoryEntertainment, BaseRisk: 0.6,
			PrimaryConcern: "Episode binge-watching",
			RiskFactors:    []string{"Autoplay next episode", "Cliffhanger content", "Binge-friendly interface"},
		},
		"com.amazon.avod.thirdpartyclient": {
			Category: model.CategoryEntertainment, BaseRisk: 0.5,
			PrimaryConcern: "Video streaming",
			RiskFactors:    []string{"Autoplay content", "Recommendation system"},
		},
		"com.hulu.plus": {
			Category: model.CategoryEntertainment, BaseRisk: 0.5,
			PrimaryConcern: "Video streaming",
			RiskFactors:    []string{"Autoplay content", "Episodic content"},
		},

		// Gaming apps
		"com.king.candycrushsaga": {
			Category: model.CategoryGames, BaseRisk: 0.8,
			PrimaryConcern: "Reward schedule manipulation",
			RiskFactors:    []string{"Variable reward schedules", "In-app purchases", "Progress blocking"},
		},
		"com.supercell.clashofclans": {
			Category: model.CategoryGames, BaseRisk: 0.7,
			PrimaryConcern: "Time-gated progression",
			RiskFactors:    []string{"Wait timers", "Social pressure", "Collection mechanics"},
		},
		"com.roblox.client": {
			Category: model.CategoryGames, BaseRisk: 0.6,
			PrimaryConcern: "Gaming addiction",
			RiskFactors:    []string{"Social gaming", "Virtual rewards", "Time investment"},
		},

		// Communication apps (lower risk)
		"com.whatsapp": {
			Category: model.CategoryCommunication, BaseRisk: 0.3,
			PrimaryConcern: "Communication necessity",
			RiskFactors:    []string{"Social obligation", "Group pressure"},
		},
		"com.facebook.orca": {
			Category: model.CategoryCommunication, BaseRisk: 0.4,
			PrimaryConcern: "Messaging addiction",
			RiskFactors:    []string{"Constant messaging", "Social pressure"},
		},
		"com.discord": {
			Category: model.CategoryCommunication, BaseRisk: 0.4,
			PrimaryConcern: "Community engagement",
			RiskFactors:    []string{"Real-time chat", "Gaming communities"},
		},
		"org.telegram.messenger": {
			Category: model.CategoryCommunication, BaseRisk: 0.2,
			PrimaryConcern: "Basic messaging",
			RiskFactors:    []string{"Essential communication"},
		},

		// Productivity apps (very low risk)
		"com.google.android.apps.docs.editors.docs": {
			Category: model.CategoryProductivity, BaseRisk: 0.1,
			PrimaryConcern: "Document editing",
			RiskFactors:    []string{"Productive use"},
		},
		"com.microsoft.office.word": {
			Category: model.CategoryProductivity, BaseRisk: 0.1,
			PrimaryConcern: "Document creation",
			RiskFactors:    []string{"Work-related"},
		},
	}
}
