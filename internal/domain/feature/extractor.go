// Package feature builds normalized session feature records from windowed
// usage data, optionally overlaid with real-time current-app detection.
package feature

import (
	"context"
	"strings"
	"time"

	"github.com/okian/neuropulse/internal/domain/aggregate"
	"github.com/okian/neuropulse/internal/domain/catalog"
	"github.com/okian/neuropulse/internal/domain/detect"
	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Extraction constants.
const (
	// Sessions shorter than this are noise and excluded.
	minSessionDuration = 5 * time.Second

	// Consecutive same-app time is normalized against 3 hours and scaled
	// to a 0..180 minute range.
	consecutiveNormalization = 3 * time.Hour
	consecutiveScaleMinutes  = 180

	// Current-app risk thresholds for overlaying flags.
	dopamineSpikeThreshold = 0.6
	bingeOverlayThreshold  = 0.7

	// Instant assessment recommendation thresholds.
	breakThreshold   = 0.8
	monitorThreshold = 0.5
)

// Safe default values used when the underlying data sources fail.
const (
	fallbackAppName            = "demo_app"
	fallbackUnlockFrequency    = 5
	fallbackScrollsPerMinute   = 10.0
	fallbackConsecutiveMinutes = 30
	fallbackTimeOfDay          = 0.5
)

// Extractor produces session feature records for a user and time range.
type Extractor struct {
	agg      *aggregate.Aggregator
	detector *detect.Detector
	catalog  *catalog.Catalog
	now      func() time.Time
	logger   logger.Logger
}

// New creates an extractor with configuration options.
func New(agg *aggregate.Aggregator, det *detect.Detector, cat *catalog.Catalog, opts ...Option) *Extractor {
	e := &Extractor{
		agg:      agg,
		detector: det,
		catalog:  cat,
		now:      time.Now,
		logger:   logger.Get().Named("feature"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract builds a session record for the window. Returns nil for an
// empty user id, an inverted window, or a window shorter than 5 seconds.
// Internal failures yield a record populated with safe defaults instead
// of an error so extraction can never crash the monitoring loop.
func (e *Extractor) Extract(ctx context.Context, userID string, start, end time.Time) *model.SessionRecord {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	if !start.Before(end) {
		return nil
	}
	duration := end.Sub(start)
	if duration < minSessionDuration {
		return nil
	}

	extractStart := time.Now()
	defer func() {
		metrics.RecordExtractionLatency(float64(time.Since(extractStart).Milliseconds()))
	}()

	agg := e.agg.Aggregate(ctx, start, end)
	if agg.Unavailable {
		e.logger.Warn(ctx, "usage data unavailable, using safe defaults",
			logger.String("userID", userID))
		metrics.RecordExtractionFallback()
		rec := e.fallbackRecord(userID, start, end)
		return &rec
	}

	primary := agg.PrimaryApp()
	category := e.catalog.Category(primary)

	// Time the primary app stayed active, measured from window start to
	// its last event, normalized and scaled to minutes.
	var consecutiveMinutes int
	if lastSeen, ok := agg.PerAppLastSeen[primary]; ok {
		consecutive := time.Duration(lastSeen-start.UnixMilli()) * time.Millisecond
		normalized := float64(consecutive) / float64(consecutiveNormalization)
		if normalized > 1 {
			normalized = 1
		}
		consecutiveMinutes = int(normalized * consecutiveScaleMinutes)
	}

	binge := 0
	if agg.BingeDetected {
		binge = 1
	}

	rec := model.NewSessionRecord(model.SessionRecord{
		UserID:             userID,
		AppName:            primary,
		AppCategory:        category,
		SessionDurationMS:  duration.Milliseconds(),
		UnlockCount:        agg.UnlockCount,
		AppSwitchCount:     appSwitches(agg),
		TimeOfDay:          timeOfDay(start),
		ConsecutiveSameApp: consecutiveMinutes,
		BingeFlag:          binge,
		UnlockFrequency:    float64(agg.UnlockCount) / duration.Hours(),
		Timestamp:          end.UnixMilli(),
	})
	return &rec
}

// ExtractWithCurrentApp extracts a session record and overlays the
// current-app detector's output: app identity, dopamine spike flag, and
// addiction flag follow the real-time risk rather than the windowed
// aggregate. When Extract declines the window, a record is synthesized
// entirely from current-app information.
func (e *Extractor) ExtractWithCurrentApp(ctx context.Context, userID string, start, end time.Time) model.SessionRecord {
	info := e.detector.CurrentAppInfo(ctx)

	rec := e.Extract(ctx, userID, start, end)
	if rec == nil {
		return e.recordFromCurrentApp(userID, start, end, info)
	}

	overlaid := *rec
	overlaid.AppName = info.DisplayName
	overlaid.AppCategory = info.Category
	overlaid.DopamineSpikeFlag = flag(info.AddictionRisk > dopamineSpikeThreshold)
	overlaid.AddictionFlag = addictionFlag(info.AddictionRisk)
	return model.NewSessionRecord(overlaid)
}

// recordFromCurrentApp synthesizes a record from current-app info alone,
// with documented defaults for fields detection cannot supply.
func (e *Extractor) recordFromCurrentApp(userID string, start, end time.Time, info model.CurrentAppInfo) model.SessionRecord {
	return model.NewSessionRecord(model.SessionRecord{
		UserID:             userID,
		AppName:            info.DisplayName,
		AppCategory:        info.Category,
		SessionDurationMS:  end.Sub(start).Milliseconds(),
		TimeOfDay:          timeOfDay(start),
		ConsecutiveSameApp: fallbackConsecutiveMinutes,
		UnlockFrequency:    fallbackUnlockFrequency,
		ScrollsPerMinute:   fallbackScrollsPerMinute,
		BingeFlag:          flag(info.AddictionRisk > bingeOverlayThreshold),
		DopamineSpikeFlag:  flag(info.AddictionRisk > dopamineSpikeThreshold),
		AddictionFlag:      addictionFlag(info.AddictionRisk),
		Timestamp:          end.UnixMilli(),
	})
}

// fallbackRecord carries the documented safe defaults for an unreadable
// event source.
func (e *Extractor) fallbackRecord(userID string, start, end time.Time) model.SessionRecord {
	return model.NewSessionRecord(model.SessionRecord{
		UserID:             userID,
		AppName:            fallbackAppName,
		AppCategory:        model.CategorySocial,
		SessionDurationMS:  end.Sub(start).Milliseconds(),
		UnlockFrequency:    fallbackUnlockFrequency,
		ScrollsPerMinute:   fallbackScrollsPerMinute,
		ConsecutiveSameApp: fallbackConsecutiveMinutes,
		TimeOfDay:          fallbackTimeOfDay,
		Timestamp:          end.UnixMilli(),
	})
}

// InstantAssessment is a thin read of the current-app detector with
// rule-based recommendation text.
func (e *Extractor) InstantAssessment(ctx context.Context) model.InstantAssessment {
	info := e.detector.CurrentAppInfo(ctx)
	metrics.RecordInstantAssessment()

	return model.InstantAssessment{
		AppID:           info.AppID,
		AppName:         info.DisplayName,
		Risk:            info.AddictionRisk,
		RiskLevel:       info.RiskLevel(),
		RiskReason:      info.RiskReason,
		Recommendations: instantRecommendations(info),
		Timestamp:       e.now().UnixMilli(),
	}
}

// instantRecommendations generates threshold-keyed advice plus
// app-specific hints for infinite-scroll and autoplay apps.
func instantRecommendations(info model.CurrentAppInfo) []string {
	var recs []string

	switch {
	case info.AddictionRisk >= breakThreshold:
		recs = append(recs,
			"Consider taking a break - high addiction risk detected",
			"Try the 20-20-20 rule: look away every 20 minutes",
			"Set a usage timer for this session",
		)
	case info.AddictionRisk >= monitorThreshold:
		recs = append(recs,
			"Monitor your usage time with this app",
			"Consider taking short breaks",
		)
	default:
		recs = append(recs, "Healthy usage pattern detected")
	}

	switch {
	case strings.Contains(info.AppID, "instagram") || strings.Contains(info.AppID, "tiktok") || strings.Contains(info.AppID, "musically"):
		recs = append(recs, "Avoid infinite scrolling - set specific viewing goals")
	case strings.Contains(info.AppID, "youtube"):
		recs = append(recs, "Disable autoplay to prevent binge-watching")
	case strings.Contains(info.AppID, "facebook"):
		recs = append(recs, "Limit news feed browsing time")
	}

	return recs
}

// appSwitches counts transitions between different apps in the window.
func appSwitches(agg aggregate.Result) int {
	if len(agg.PerAppCount) <= 1 {
		return 0
	}
	return len(agg.PerAppCount) - 1
}

// timeOfDay maps a timestamp to the fraction of the day elapsed, [0,1).
func timeOfDay(t time.Time) float64 {
	dayMS := 24 * time.Hour.Milliseconds()
	return float64(t.UnixMilli()%dayMS) / float64(dayMS)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// addictionFlag buckets a risk score into the 0/1/2 addiction flag.
func addictionFlag(risk float64) int {
	switch {
	case risk >= model.HighRiskThreshold:
		return 2
	case risk >= model.MediumRiskThreshold:
		return 1
	default:
		return 0
	}
}
