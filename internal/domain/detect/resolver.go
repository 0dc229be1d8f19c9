package detect

// MapResolver resolves display names from a static table. It is the
// default resolver, covering the apps in the curated risk catalog.
type MapResolver struct {
	names map[string]string
}

// NewMapResolver creates a resolver over the given table. A nil table
// uses the built-in display names.
func NewMapResolver(names map[string]string) *MapResolver {
	if names == nil {
		names = defaultDisplayNames()
	}
	return &MapResolver{names: names}
}

// DisplayName returns the curated name for appID.
func (r *MapResolver) DisplayName(appID string) (string, bool) {
	name, ok := r.names[appID]
	return name, ok
}

// defaultDisplayNames covers the curated catalog apps.
func defaultDisplayNames() map[string]string {
	return map[string]string{
		"com.instagram.android":                     "Instagram",
		"com.zhiliaoapp.musically":                  "TikTok",
		"com.facebook.katana":                       "Facebook",
		"com.snapchat.android":                      "Snapchat",
		"com.twitter.android":                       "Twitter",
		"com.reddit.frontpage":                      "Reddit",
		"com.pinterest":                             "Pinterest",
		"com.google.android.youtube":                "YouTube",
		"com.netflix.mediaclient":                   "Netflix",
		"com.amazon.avod.thirdpartyclient":          "Prime Video",
		"com.hulu.plus":                             "Hulu",
		"com.king.candycrushsaga":                   "Candy Crush",
		"com.supercell.clashofclans":                "Clash of Clans",
		"com.roblox.client":                         "Roblox",
		"com.whatsapp":                              "WhatsApp",
		"com.facebook.orca":                         "Messenger",
		"com.discord":                               "Discord",
		"org.telegram.messenger":                    "Telegram",
		"com.google.android.apps.docs.editors.docs": "Google Docs",
		"com.microsoft.office.word":                 "Word",
	}
}
