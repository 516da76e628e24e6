package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/khazidhea/jua-warnings-api/internal/alert"
)

const schema = `
CREATE TABLE IF NOT EXISTS warnings (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	name         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	parameter    TEXT NOT NULL,
	condition    TEXT NOT NULL,
	threshold    REAL NOT NULL,
	lon          REAL NOT NULL,
	lat          REAL NOT NULL,
	warning_at   TEXT NOT NULL,
	triggered    INTEGER,
	value        REAL,
	checked_at   TEXT
);
CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings(user_id);
CREATE INDEX IF NOT EXISTS idx_warnings_warning_at ON warnings(warning_at);
`

const ruleColumns = `id, user_id, name, location, email, phone_number,
	parameter, condition, threshold, lon, lat, warning_at,
	triggered, value, checked_at`

// SQLite persists rules in a single-file database. Timestamps are
// stored as RFC 3339 UTC text so warning hours compare exactly.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file with the pragmas the
// store needs and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?%s", path, strings.Join([]string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}, "&"))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLite applies the schema on an already open handle.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Create inserts a rule. Evaluation state starts empty.
func (s *SQLite) Create(ctx context.Context, rule alert.Rule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (id, user_id, name, location, email, phone_number,
			parameter, condition, threshold, lon, lat, warning_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.UserID, rule.Name, rule.Location, rule.Email, rule.PhoneNumber,
		rule.Parameter, string(rule.Condition), rule.Threshold, rule.Lon, rule.Lat,
		formatTime(rule.WarningAt))
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// List returns the rules owned by a user, ordered by warning time.
func (s *SQLite) List(ctx context.Context, userID string) ([]alert.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM warnings
		WHERE user_id = ?
		ORDER BY warning_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer closeRows(rows)

	return scanRules(rows)
}

// DueAt returns the rules whose warning hour equals any of the given
// instants.
func (s *SQLite) DueAt(ctx context.Context, times []time.Time) ([]alert.Rule, error) {
	if len(times) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(times)), ", ")
	args := make([]any, len(times))
	for i, at := range times {
		args[i] = formatTime(at)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM warnings
		WHERE warning_at IN (`+placeholders+`)
		ORDER BY warning_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due rules: %w", err)
	}
	defer closeRows(rows)

	return scanRules(rows)
}

// Delete removes one of the user's rules.
func (s *SQLite) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM warnings
		WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", id, alert.ErrRuleNotFound)
	}
	return nil
}

// RecordOutcome writes the evaluation state onto the stored rule.
func (s *SQLite) RecordOutcome(ctx context.Context, id string, outcome alert.Outcome) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE warnings
		SET triggered = ?, value = ?, checked_at = ?
		WHERE id = ?`,
		outcome.Triggered, outcome.Value, formatTime(outcome.CheckedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", id, alert.ErrRuleNotFound)
	}
	return nil
}

func scanRules(rows *sql.Rows) ([]alert.Rule, error) {
	var out []alert.Rule
	for rows.Next() {
		var (
			r         alert.Rule
			condition string
			warningAt string
			triggered sql.NullBool
			value     sql.NullFloat64
			checkedAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Location, &r.Email, &r.PhoneNumber,
			&r.Parameter, &condition, &r.Threshold, &r.Lon, &r.Lat, &warningAt,
			&triggered, &value, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		r.Condition = alert.Condition(condition)

		at, err := parseTime(warningAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse warning time: %w", err)
		}
		r.WarningAt = at

		if triggered.Valid {
			r.Triggered = &triggered.Bool
		}
		if value.Valid {
			r.Value = &value.Float64
		}
		if checkedAt.Valid {
			at, err := parseTime(checkedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse checked time: %w", err)
			}
			r.CheckedAt = &at
		}

		out = append(out, r)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
