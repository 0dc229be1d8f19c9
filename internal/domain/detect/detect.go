// Package detect identifies the current foreground app and computes its
// instantaneous composite addiction risk.
package detect

import (
	"context"
	"strings"
	"time"

	"github.com/okian/neuropulse/internal/adapters/source"
	"github.com/okian/neuropulse/internal/domain/catalog"
	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Detection and risk weighting constants.
const (
	foregroundLookback = time.Minute      // window scanned for the latest foreground event
	intensityLookback  = 30 * time.Minute // window used for usage intensity

	intensityWeight  = 0.3
	timeOfDayWeight  = 0.2
	continuousWeight = 0.3

	// Events per minute that saturate the intensity signal.
	intensitySaturation = 10.0

	// Fallback intensity when the event source cannot be read.
	defaultIntensity = 0.2

	lateNightRisk = 0.3
	eveningRisk   = 0.1

	// Continuous-usage risk is a flat per-category placeholder until true
	// session-length tracking lands. Social apps carry the higher value.
	continuousSocialRisk  = 0.3
	continuousDefaultRisk = 0.1
)

// Resolver maps an app identifier to a human-readable display name.
type Resolver interface {
	DisplayName(appID string) (string, bool)
}

// Detector determines the current foreground app and its composite risk.
type Detector struct {
	src      source.Source
	catalog  *catalog.Catalog
	resolver Resolver
	now      func() time.Time
	logger   logger.Logger
}

// New creates a detector with configuration options.
func New(src source.Source, cat *catalog.Catalog, opts ...Option) *Detector {
	d := &Detector{
		src:      src,
		catalog:  cat,
		resolver: NewMapResolver(nil),
		now:      time.Now,
		logger:   logger.Get().Named("detect"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// DetectForegroundApp returns the app of the newest foreground transition
// in the last minute. Falls back to the running-app strategy, then to the
// unknown sentinel. Never returns an error.
func (d *Detector) DetectForegroundApp(ctx context.Context) string {
	now := d.now()
	events, err := d.src.QueryEvents(ctx, now.Add(-foregroundLookback), now)
	if err != nil {
		d.logger.Debug(ctx, "foreground query failed, trying fallback", logger.Error(err))
		return d.fallbackApp(ctx)
	}

	var latest string
	var latestTS int64
	for _, e := range events {
		if e.Type == model.EventForeground && e.Timestamp > latestTS {
			latestTS = e.Timestamp
			latest = e.AppID
		}
	}
	if latest == "" {
		return d.fallbackApp(ctx)
	}
	return latest
}

// fallbackApp is the secondary detection strategy.
func (d *Detector) fallbackApp(ctx context.Context) string {
	app, err := d.src.RunningApp(ctx)
	if err != nil || app == "" {
		return model.UnknownApp
	}
	return app
}

// CurrentAppInfo detects the foreground app and computes its risk in one
// call. An undetectable app yields the zero-risk unknown info.
func (d *Detector) CurrentAppInfo(ctx context.Context) model.CurrentAppInfo {
	appID := d.DetectForegroundApp(ctx)
	if appID == model.UnknownApp {
		return model.CurrentAppInfo{
			AppID:       model.UnknownApp,
			DisplayName: "Unknown App",
			RiskReason:  "No active app detected",
		}
	}
	return d.ComputeRisk(ctx, appID)
}

// ComputeRisk combines baseline risk, recent usage intensity, time of day,
// and continuous-usage risk into a clamped [0,1] composite. Any internal
// failure degrades to the profile's baseline risk.
func (d *Detector) ComputeRisk(ctx context.Context, appID string) model.CurrentAppInfo {
	profile := d.catalog.Lookup(appID)

	risk := profile.BaseRisk +
		intensityWeight*d.usageIntensity(ctx, appID) +
		timeOfDayWeight*d.timeOfDayRisk() +
		continuousWeight*d.continuousUsageRisk(appID)
	if risk > 1 {
		risk = 1
	}
	if risk < 0 {
		risk = 0
	}

	return model.CurrentAppInfo{
		AppID:         appID,
		DisplayName:   d.displayName(appID),
		Category:      profile.Category,
		AddictionRisk: risk,
		RiskReason:    riskReason(profile, risk),
	}
}

// usageIntensity normalizes the app's event rate over the last 30 minutes
// to [0,1]. The source being unreadable yields a moderate default.
func (d *Detector) usageIntensity(ctx context.Context, appID string) float64 {
	now := d.now()
	events, err := d.src.QueryEvents(ctx, now.Add(-intensityLookback), now)
	if err != nil {
		metrics.RecordErrorByComponent("detect", "intensity_query_failed")
		return defaultIntensity
	}

	count := 0
	for _, e := range events {
		if e.AppID == appID {
			count++
		}
	}

	minutes := intensityLookback.Minutes()
	intensity := float64(count) / minutes / intensitySaturation
	if intensity > 1 {
		return 1
	}
	return intensity
}

// timeOfDayRisk is higher late at night and in the evening.
func (d *Detector) timeOfDayRisk() float64 {
	hour := d.now().Hour()
	switch {
	case hour >= 22 || hour <= 6:
		return lateNightRisk
	case hour >= 18:
		return eveningRisk
	default:
		return 0
	}
}

// continuousUsageRisk is the documented flat per-category placeholder.
func (d *Detector) continuousUsageRisk(appID string) float64 {
	if d.catalog.Lookup(appID).Category == model.CategorySocial {
		return continuousSocialRisk
	}
	return continuousDefaultRisk
}

// displayName resolves a human-readable name, falling back to the last
// package-path segment.
func (d *Detector) displayName(appID string) string {
	if d.resolver != nil {
		if name, ok := d.resolver.DisplayName(appID); ok {
			return name
		}
	}
	if idx := strings.LastIndex(appID, "."); idx >= 0 && idx < len(appID)-1 {
		return appID[idx+1:]
	}
	return appID
}

// riskReason renders the human-readable explanation for a risk score.
func riskReason(profile catalog.Profile, risk float64) string {
	switch {
	case risk >= model.HighRiskThreshold:
		return "High addiction risk - " + profile.RiskFactors[0]
	case risk >= model.MediumRiskThreshold:
		return "Moderate risk - " + profile.PrimaryConcern
	default:
		return "Low risk - healthy usage pattern"
	}
}
