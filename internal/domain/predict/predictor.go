// Package predict applies fixed weighted rules to session feature records
// to produce dopamine-risk scores and addiction classifications.
//
// The predictor is a pure function of its input plus a bounded LRU result
// cache keyed by a coarsened fingerprint, so near-identical sessions share
// one cached result. Scoring never propagates errors: bad input degrades
// to a default result.
package predict

import (
	"context"
	"crypto/md5" //nolint:gosec // fingerprint for cache keying, not security
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Default predictor configuration constants.
const (
	defaultCacheCapacity = 100
	logEveryPredictions  = 50

	// Fixed confidence for any rule-based result.
	ruleConfidence = 0.8
	// Confidence attached to default (no data / error) results.
	defaultConfidence = 0.5

	millisPerHour   = 1000 * 60 * 60
	millisPerMinute = 1000 * 60

	// Fingerprint coarsening buckets.
	durationBucketMS  = 300_000 // 5 minutes
	consecutiveBucket = 10      // minutes
)

// Predictor scores session records with deterministic weighted rules.
type Predictor struct {
	cache            *lruCache
	totalPredictions atomic.Int64
	cacheHits        atomic.Int64
	logger           logger.Logger
}

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithCacheCapacity bounds the prediction result cache.
func WithCacheCapacity(capacity int) Option {
	return func(p *Predictor) {
		if capacity > 0 {
			p.cache = newLRUCache(capacity)
		}
	}
}

// WithLogger sets a custom logger for the predictor.
func WithLogger(l logger.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a predictor with configuration options.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		cache:  newLRUCache(defaultCacheCapacity),
		logger: logger.Get().Named("predict"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Predict scores one record. A nil record yields the "no data" default;
// any internal panic is converted to a "prediction error" default. The
// returned prediction always has risk in [0,1], level in {0,1,2}, and
// non-empty recommendation and insight lists.
func (p *Predictor) Predict(ctx context.Context, record *model.SessionRecord) (result model.Prediction) {
	if record == nil {
		return defaultPrediction("No data available")
	}

	p.totalPredictions.Add(1)
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
		if r := recover(); r != nil {
			p.logger.Error(ctx, "prediction failed", logger.Any("panic", r))
			metrics.RecordErrorByComponent("predict", "scoring_panic")
			result = defaultPrediction(fmt.Sprintf("Prediction error: %v", r))
		}
	}()

	key := fingerprint(record)
	if cached, ok := p.cache.Get(key); ok {
		p.cacheHits.Add(1)
		metrics.RecordPredictionCacheHit()
		return cached
	}
	metrics.RecordPredictionCacheMiss()

	result = model.NewPrediction(model.Prediction{
		DopamineRisk:    dopamineRisk(record),
		AddictionLevel:  addictionLevel(record),
		Recommendations: recommendations(record),
		Insights:        insights(record),
		Confidence:      ruleConfidence,
		PrimaryReason:   primaryReason(record),
	})

	p.cache.Put(key, result)
	metrics.RecordSessionScored()
	metrics.RecordDopamineRisk(result.DopamineRisk)

	if total := p.totalPredictions.Load(); total%logEveryPredictions == 0 {
		hitRate := float64(p.cacheHits.Load()) / float64(total)
		p.logger.Info(ctx, "predictor cache stats",
			logger.Int64("predictions", total),
			logger.Float64("hitRate", hitRate),
		)
	}

	return result
}

// Stats returns total prediction and cache hit counters.
func (p *Predictor) Stats() (total, hits int64) {
	return p.totalPredictions.Load(), p.cacheHits.Load()
}

// CacheLen returns the current number of cached results.
func (p *Predictor) CacheLen() int {
	return p.cache.Len()
}

// Reset clears the result cache and counters.
func (p *Predictor) Reset() {
	p.cache.Reset()
	p.totalPredictions.Store(0)
	p.cacheHits.Store(0)
}

// fingerprint derives the coarsened cache key: near-identical sessions
// bucket to the same key. First 16 hex characters of an MD5 digest.
func fingerprint(r *model.SessionRecord) string {
	keyData := fmt.Sprintf("%s_%d_%d_%d_%.2f_%d",
		r.AppName,
		r.SessionDurationMS/durationBucketMS,
		r.AppCategory,
		r.ConsecutiveSameApp/consecutiveBucket,
		math.Round(r.TimeOfDay*24)/24.0,
		r.BingeFlag,
	)
	sum := md5.Sum([]byte(keyData)) //nolint:gosec // cache key, not security
	return fmt.Sprintf("%x", sum)[:16]
}

// dopamineRisk sums four independently capped contributions and clamps
// the total to [0,1].
func dopamineRisk(r *model.SessionRecord) float64 {
	risk := 0.0

	// Session duration risk (0-0.3)
	hours := float64(r.SessionDurationMS) / millisPerHour
	switch {
	case hours > 3:
		risk += 0.3
	case hours > 1:
		risk += 0.2
	case hours > 0.5:
		risk += 0.1
	}

	// App category risk (0-0.3)
	switch r.AppCategory {
	case model.CategorySocial:
		risk += 0.3
	case model.CategoryEntertainment:
		risk += 0.25
	case model.CategoryGames:
		risk += 0.2
	}

	// Usage intensity risk (0-0.2)
	switch {
	case r.ScrollsPerMinute > 15:
		risk += 0.2
	case r.ScrollsPerMinute > 10:
		risk += 0.15
	case r.ScrollsPerMinute > 5:
		risk += 0.1
	}

	// Time of day risk (0-0.2)
	hour := r.TimeOfDay * 24
	switch {
	case hour > 22 || hour < 6:
		risk += 0.2
	case hour > 18:
		risk += 0.1
	}

	if risk > 1 {
		return 1
	}
	return risk
}

// addictionLevel buckets an integer usage-pattern score into 0/1/2.
func addictionLevel(r *model.SessionRecord) int {
	score := 0

	hours := float64(r.SessionDurationMS) / millisPerHour
	switch {
	case hours > 4:
		score += 3
	case hours > 2:
		score += 2
	case hours > 1:
		score++
	}

	switch r.AppCategory {
	case model.CategorySocial:
		score += 2
	case model.CategoryEntertainment, model.CategoryGames:
		score++
	}

	if r.BingeFlag == 1 {
		score += 2
	}
	if r.ScrollsPerMinute > 20 {
		score++
	}

	switch {
	case r.ConsecutiveSameApp > 120:
		score += 2
	case r.ConsecutiveSameApp > 60:
		score++
	}

	switch {
	case score >= 6:
		return 2
	case score >= 3:
		return 1
	default:
		return 0
	}
}

// recommendations generates deterministic advice from the same rule
// thresholds. Never empty: the healthy default fires when no rule does.
func recommendations(r *model.SessionRecord) []string {
	var recs []string

	level := addictionLevel(r)
	switch level {
	case 2:
		recs = append(recs,
			"Consider taking a break from this app",
			"Try setting app time limits",
		)
	case 1:
		recs = append(recs,
			"Monitor your usage time",
			"Consider taking short breaks",
		)
	}

	if dopamineRisk(r) > model.HighRiskThreshold {
		recs = append(recs, "High engagement detected - practice mindful usage")
	}

	hours := float64(r.SessionDurationMS) / millisPerHour
	if hours > 2 {
		recs = append(recs, "Long session detected - consider other activities")
	}

	hour := r.TimeOfDay * 24
	if hour > 22 || hour < 6 {
		recs = append(recs, "Late night usage may affect sleep quality")
	}

	if len(recs) == 0 {
		recs = append(recs, "Healthy usage pattern detected")
	}
	return recs
}

// insights summarizes the observed session characteristics.
func insights(r *model.SessionRecord) []string {
	out := []string{
		fmt.Sprintf("Session duration: %d minutes", r.SessionDurationMS/millisPerMinute),
		fmt.Sprintf("App category: %s", r.CategoryName()),
	}
	if r.ScrollsPerMinute > 10 {
		out = append(out, "High interaction rate detected")
	}
	if r.ConsecutiveSameApp > 60 {
		out = append(out, "Extended continuous usage")
	}
	return out
}

// primaryReason selects the dominant explanation in fixed priority order.
func primaryReason(r *model.SessionRecord) string {
	switch {
	case r.BingeFlag == 1:
		return "Binge usage detected"
	case r.SessionDurationMS > 3*millisPerHour:
		return "Extended session duration"
	case r.AppCategory == model.CategorySocial:
		return "High-stimulation social media usage"
	case r.ScrollsPerMinute > 15:
		return "High interaction rate"
	case r.ConsecutiveSameApp > 120:
		return "Prolonged continuous usage"
	default:
		return "Moderate usage pattern"
	}
}

// defaultPrediction is the degraded result for missing or unscorable
// input.
func defaultPrediction(message string) model.Prediction {
	return model.NewPrediction(model.Prediction{
		Recommendations: []string{message},
		Insights:        []string{message},
		Confidence:      defaultConfidence,
		PrimaryReason:   message,
	})
}
