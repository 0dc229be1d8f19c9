// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// EventType distinguishes foreground and background usage transitions.
type EventType int

// Usage event types reported by the platform event source.
const (
	EventForeground EventType = iota + 1
	EventBackground
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventForeground:
		return "FOREGROUND"
	case EventBackground:
		return "BACKGROUND"
	default:
		return "UNKNOWN"
	}
}

// UsageEvent represents a single app usage transition supplied by the
// external event source. Events are ephemeral and not owned by the core.
type UsageEvent struct {
	EventID   string    // unique id for idempotency
	AppID     string    // package-style app identifier
	Type      EventType // foreground/background transition
	Timestamp int64     // milliseconds since epoch
}

// Time returns the event timestamp as a time.Time.
func (e UsageEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// UnknownApp is the sentinel app identifier used when detection fails.
const UnknownApp = "unknown"

// Bounds for clamped session record fields.
const (
	maxCategory      = 9
	maxNotifResponse = 2
	maxAddictionFlag = 2
)

// App categories. The numeric values are part of the persisted record
// format and must not be reordered.
const (
	CategorySocial        = 0
	CategoryProductivity  = 1
	CategoryEntertainment = 2
	CategoryGames         = 3
	CategoryNews          = 4
	CategoryShopping      = 5
	CategoryCommunication = 6
	CategoryHealth        = 7
	CategoryFinance       = 8
	CategoryUtilities     = 9
)

// categoryNames maps category codes to display names.
var categoryNames = [...]string{
	"Social Media", "Productivity", "Entertainment", "Games",
	"News", "Shopping", "Communication", "Health", "Finance", "Utilities",
}

// CategoryName returns the display name for a category code.
func CategoryName(category int) string {
	if category >= 0 && category < len(categoryNames) {
		return categoryNames[category]
	}
	return "Other"
}

// SessionRecord is the normalized feature record describing one observed
// usage session. All fields are clamped to their documented ranges at
// construction time; malformed inputs are corrected, never rejected.
type SessionRecord struct {
	UserID             string  `json:"user_id"`              // anonymized user identifier, never empty
	AppName            string  `json:"app_name"`             // primary app for the session, never empty
	AppCategory        int     `json:"app_category"`         // 0..9
	SessionDurationMS  int64   `json:"session_duration_ms"`  // >= 0
	UnlockCount        int     `json:"unlock_count"`         // >= 0
	NotifCount         int     `json:"notif_count"`          // >= 0
	NotifResponse      int     `json:"notif_response"`       // 0=ignored, 1=dismissed, 2=acted upon
	AppSwitchCount     int     `json:"app_switch_count"`     // >= 0
	TimeOfDay          float64 `json:"time_of_day"`          // [0,1), fraction of day elapsed
	ConsecutiveSameApp int     `json:"consecutive_same_app"` // minutes in the same app, >= 0
	BingeFlag          int     `json:"binge_flag"`           // 0/1
	DopamineSpikeFlag  int     `json:"dopamine_spike_flag"`  // 0/1
	AddictionFlag      int     `json:"addiction_flag"`       // 0=healthy, 1=at risk, 2=high risk
	ScrollsPerMinute   float64 `json:"scrolls_per_minute"`   // >= 0
	UnlockFrequency    float64 `json:"unlock_frequency"`     // unlocks per hour, >= 0
	Timestamp          int64   `json:"timestamp"`            // milliseconds since epoch
}

// NewSessionRecord builds a clamped record from raw values. Every field is
// forced into its documented range so downstream consumers never observe an
// out-of-range value.
func NewSessionRecord(r SessionRecord) SessionRecord {
	if r.UserID == "" {
		r.UserID = UnknownApp
	}
	if r.AppName == "" {
		r.AppName = UnknownApp
	}
	r.AppCategory = clampInt(r.AppCategory, 0, maxCategory)
	r.SessionDurationMS = maxInt64(0, r.SessionDurationMS)
	r.UnlockCount = maxInt(0, r.UnlockCount)
	r.NotifCount = maxInt(0, r.NotifCount)
	r.NotifResponse = clampInt(r.NotifResponse, 0, maxNotifResponse)
	r.AppSwitchCount = maxInt(0, r.AppSwitchCount)
	r.TimeOfDay = clampFloat(r.TimeOfDay, 0, 1)
	r.ConsecutiveSameApp = maxInt(0, r.ConsecutiveSameApp)
	r.BingeFlag = boolFlag(r.BingeFlag)
	r.DopamineSpikeFlag = boolFlag(r.DopamineSpikeFlag)
	r.AddictionFlag = clampInt(r.AddictionFlag, 0, maxAddictionFlag)
	r.ScrollsPerMinute = maxFloat(0, r.ScrollsPerMinute)
	r.UnlockFrequency = maxFloat(0, r.UnlockFrequency)
	r.Timestamp = maxInt64(0, r.Timestamp)
	return r
}

// IsHighRisk reports whether the record carries a high-risk marker.
func (r SessionRecord) IsHighRisk() bool {
	return r.DopamineSpikeFlag == 1 || r.AddictionFlag >= maxAddictionFlag
}

// CategoryName returns the display name of the record's app category.
func (r SessionRecord) CategoryName() string {
	return CategoryName(r.AppCategory)
}

// FormattedDuration renders the session duration as "XmYs".
func (r SessionRecord) FormattedDuration() string {
	minutes := r.SessionDurationMS / 60000
	seconds := (r.SessionDurationMS % 60000) / 1000
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// Prediction holds the outcome of scoring one session record.
type Prediction struct {
	DopamineRisk    float64  `json:"dopamine_risk"`   // [0,1]
	AddictionLevel  int      `json:"addiction_level"` // 0=healthy, 1=at risk, 2=high risk
	Recommendations []string `json:"recommendations"` // never empty
	Insights        []string `json:"insights"`        // never empty
	Confidence      float64  `json:"confidence"`      // [0,1]
	PrimaryReason   string   `json:"primary_reason"`
}

// NewPrediction builds a clamped prediction. Empty recommendation or
// insight lists are replaced with placeholder text so consumers can rely
// on at least one entry being present.
func NewPrediction(p Prediction) Prediction {
	p.DopamineRisk = clampFloat(p.DopamineRisk, 0, 1)
	p.AddictionLevel = clampInt(p.AddictionLevel, 0, maxAddictionFlag)
	p.Confidence = clampFloat(p.Confidence, 0, 1)
	if len(p.Recommendations) == 0 {
		p.Recommendations = []string{"No recommendations available"}
	}
	if len(p.Insights) == 0 {
		p.Insights = []string{"No insights available"}
	}
	if p.PrimaryReason == "" {
		p.PrimaryReason = "Unknown"
	}
	return p
}

// RiskLevel buckets the dopamine risk into HIGH/MEDIUM/LOW.
func (p Prediction) RiskLevel() string {
	return RiskLevel(p.DopamineRisk)
}

// AddictionLevelName returns the display name for the addiction level.
func (p Prediction) AddictionLevelName() string {
	switch p.AddictionLevel {
	case 0:
		return "Healthy"
	case 1:
		return "At Risk"
	case maxAddictionFlag:
		return "High Risk"
	default:
		return "Unknown"
	}
}

// Risk bucketing thresholds shared by the detector and the predictor.
const (
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.4
)

// RiskLevel buckets a [0,1] risk value into HIGH/MEDIUM/LOW.
func RiskLevel(risk float64) string {
	switch {
	case risk >= HighRiskThreshold:
		return "HIGH"
	case risk >= MediumRiskThreshold:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// CurrentAppInfo describes the currently foregrounded app and its
// instantaneous composite risk. Recomputed on every detection call and
// never persisted by the core itself.
type CurrentAppInfo struct {
	AppID         string
	DisplayName   string
	Category      int
	AddictionRisk float64 // [0,1]
	RiskReason    string
}

// RiskLevel buckets the composite risk into HIGH/MEDIUM/LOW.
func (c CurrentAppInfo) RiskLevel() string {
	return RiskLevel(c.AddictionRisk)
}

// InstantAssessment is a lightweight real-time view of the current app
// with rule-based recommendation text. Pushed to display sinks.
type InstantAssessment struct {
	AppID           string   `json:"app_id"`
	AppName         string   `json:"app_name"`
	Risk            float64  `json:"risk"`
	RiskLevel       string   `json:"risk_level"`
	RiskReason      string   `json:"risk_reason"`
	Recommendations []string `json:"recommendations"`
	Timestamp       int64    `json:"timestamp"`
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolFlag(v int) int {
	if v == 1 {
		return 1
	}
	return 0
}

func maxInt(lo, v int) int {
	if v < lo {
		return lo
	}
	return v
}

func maxInt64(lo, v int64) int64 {
	if v < lo {
		return lo
	}
	return v
}

func maxFloat(lo, v float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
