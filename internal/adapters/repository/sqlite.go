package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Default SQLite store configuration constants.
const (
	defaultBusyTimeout = 5 * time.Second
	listSeparator      = "\n"
)

// schema mirrors the session table layout used by the mobile collector,
// extended with the prediction columns so a stored row is self-contained.
const schema = `
CREATE TABLE IF NOT EXISTS enhanced_session_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	app_name TEXT NOT NULL,
	app_category INTEGER NOT NULL,
	session_duration_ms INTEGER NOT NULL,
	unlock_count INTEGER NOT NULL,
	notif_count INTEGER NOT NULL,
	notif_response INTEGER NOT NULL,
	app_switch_count INTEGER NOT NULL,
	time_of_day REAL NOT NULL,
	consecutive_same_app INTEGER NOT NULL,
	binge_flag INTEGER NOT NULL,
	dopamine_spike_flag INTEGER NOT NULL,
	addiction_flag INTEGER NOT NULL,
	scrolls_per_minute REAL NOT NULL,
	unlock_frequency INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	dopamine_risk REAL NOT NULL DEFAULT 0,
	addiction_level INTEGER NOT NULL DEFAULT 0,
	confidence REAL NOT NULL DEFAULT 0,
	primary_reason TEXT NOT NULL DEFAULT '',
	recommendations TEXT NOT NULL DEFAULT '',
	insights TEXT NOT NULL DEFAULT '',
	is_marker INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_user_timestamp ON enhanced_session_data(user_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_app_category ON enhanced_session_data(app_category);
CREATE INDEX IF NOT EXISTS idx_dopamine_flag ON enhanced_session_data(dopamine_spike_flag);
CREATE INDEX IF NOT EXISTS idx_addiction_flag ON enhanced_session_data(addiction_flag);
CREATE INDEX IF NOT EXISTS idx_timestamp ON enhanced_session_data(timestamp);
`

const insertSQL = `
INSERT INTO enhanced_session_data (
	user_id, app_name, app_category, session_duration_ms, unlock_count,
	notif_count, notif_response, app_switch_count, time_of_day,
	consecutive_same_app, binge_flag, dopamine_spike_flag, addiction_flag,
	scrolls_per_minute, unlock_frequency, timestamp,
	dopamine_risk, addiction_level, confidence, primary_reason,
	recommendations, insights, is_marker
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRecentSQL = `
SELECT id, user_id, app_name, app_category, session_duration_ms, unlock_count,
	notif_count, notif_response, app_switch_count, time_of_day,
	consecutive_same_app, binge_flag, dopamine_spike_flag, addiction_flag,
	scrolls_per_minute, unlock_frequency, timestamp,
	dopamine_risk, addiction_level, confidence, primary_reason,
	recommendations, insights, is_marker
FROM enhanced_session_data
ORDER BY timestamp DESC, id DESC
LIMIT ?
`

// SQLiteStore implements Store on a local SQLite database. It is the
// durable backend for long-running deployments; writes go through the
// persistence queue so latency here never stalls scoring.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteLogger sets a custom logger for the store.
func WithSQLiteLogger(l logger.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLiteStore opens (and migrates) the database at path. An empty
// path opens an in-memory database, useful for tests.
func NewSQLiteStore(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, defaultBusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// modernc sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session schema: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.Get().Named("sqlite"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// InsertSession persists a scored session with its prediction.
func (s *SQLiteStore) InsertSession(ctx context.Context, record model.SessionRecord, prediction model.Prediction) error {
	return s.insert(ctx, record, prediction, false)
}

// InsertMarker persists a zero-duration high-risk marker.
func (s *SQLiteStore) InsertMarker(ctx context.Context, record model.SessionRecord) error {
	return s.insert(ctx, record, model.Prediction{}, true)
}

func (s *SQLiteStore) insert(ctx context.Context, record model.SessionRecord, prediction model.Prediction, marker bool) error {
	start := time.Now()

	_, err := s.db.ExecContext(ctx, insertSQL,
		record.UserID,
		record.AppName,
		record.AppCategory,
		record.SessionDurationMS,
		record.UnlockCount,
		record.NotifCount,
		record.NotifResponse,
		record.AppSwitchCount,
		record.TimeOfDay,
		record.ConsecutiveSameApp,
		record.BingeFlag,
		record.DopamineSpikeFlag,
		record.AddictionFlag,
		record.ScrollsPerMinute,
		record.UnlockFrequency,
		record.Timestamp,
		prediction.DopamineRisk,
		prediction.AddictionLevel,
		prediction.Confidence,
		prediction.PrimaryReason,
		strings.Join(prediction.Recommendations, listSeparator),
		strings.Join(prediction.Insights, listSeparator),
		boolToInt(marker),
	)

	metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("insert session row: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *SQLiteStore) RecentSessions(ctx context.Context, limit int) ([]StoredSession, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, selectRecentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]StoredSession, 0, limit)
	for rows.Next() {
		var (
			stored          StoredSession
			recommendations string
			insightText     string
			markerFlag      int
		)
		if err := rows.Scan(
			&stored.ID,
			&stored.Record.UserID,
			&stored.Record.AppName,
			&stored.Record.AppCategory,
			&stored.Record.SessionDurationMS,
			&stored.Record.UnlockCount,
			&stored.Record.NotifCount,
			&stored.Record.NotifResponse,
			&stored.Record.AppSwitchCount,
			&stored.Record.TimeOfDay,
			&stored.Record.ConsecutiveSameApp,
			&stored.Record.BingeFlag,
			&stored.Record.DopamineSpikeFlag,
			&stored.Record.AddictionFlag,
			&stored.Record.ScrollsPerMinute,
			&stored.Record.UnlockFrequency,
			&stored.Record.Timestamp,
			&stored.Prediction.DopamineRisk,
			&stored.Prediction.AddictionLevel,
			&stored.Prediction.Confidence,
			&stored.Prediction.PrimaryReason,
			&recommendations,
			&insightText,
			&markerFlag,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		stored.Prediction.Recommendations = splitList(recommendations)
		stored.Prediction.Insights = splitList(insightText)
		stored.Marker = markerFlag == 1
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return out, nil
}

// Count returns the number of persisted sessions. Returns zero on query
// failure since callers use it only for stats reporting.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM enhanced_session_data").Scan(&count)
	if err != nil {
		s.logger.Warn(ctx, "session count query failed", logger.Error(err))
		return 0
	}
	return count
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite database: %w", err)
	}
	return nil
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, listSeparator)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
