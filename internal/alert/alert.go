// Package alert manages forecast warning rules: subscriptions that pin
// a parameter, a place and an hour, evaluated against the loaded
// forecast as the hour approaches.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRuleNotFound is returned when a rule id does not exist or belongs
// to another user.
var ErrRuleNotFound = errors.New("rule not found")

// Condition names the comparison a rule applies. The stored threshold
// is always the left operand: GREATER_THAN holds when the threshold is
// greater than the observed value.
type Condition string

const (
	GreaterThan      Condition = "GREATER_THAN"
	GreaterThanEqual Condition = "GREATER_THAN_E"
	LessThan         Condition = "LESS_THAN"
	LessThanEqual    Condition = "LESS_THAN_E"
)

// ParseCondition validates a condition name.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case GreaterThan, GreaterThanEqual, LessThan, LessThanEqual:
		return Condition(s), nil
	}
	return "", fmt.Errorf("unknown condition %q", s)
}

// Holds evaluates the condition with the threshold as left operand.
func (c Condition) Holds(threshold, value float64) bool {
	switch c {
	case GreaterThan:
		return threshold > value
	case GreaterThanEqual:
		return threshold >= value
	case LessThan:
		return threshold < value
	case LessThanEqual:
		return threshold <= value
	}
	return false
}

// Rule is one stored warning subscription. Thresholds are interpreted
// in SI units of the parameter.
type Rule struct {
	ID          string
	UserID      string
	Name        string
	Location    string
	Email       string
	PhoneNumber string
	Parameter   string
	Condition   Condition
	Threshold   float64
	Lon         float64
	Lat         float64
	WarningAt   time.Time

	// Evaluation state, written by the last sweep that covered the rule.
	Triggered *bool
	Value     *float64
	CheckedAt *time.Time
}

// Validate checks the fields that need no registry access.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.Parameter == "" {
		return fmt.Errorf("parameter is required")
	}
	if _, err := ParseCondition(string(r.Condition)); err != nil {
		return err
	}
	if r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if r.WarningAt.IsZero() {
		return fmt.Errorf("warning time is required")
	}
	return nil
}

// Outcome is the result of evaluating one rule against the forecast.
type Outcome struct {
	Triggered bool
	Value     float64
	CheckedAt time.Time
}

// Store persists warning rules.
type Store interface {
	Create(ctx context.Context, rule Rule) error
	List(ctx context.Context, userID string) ([]Rule, error)
	Delete(ctx context.Context, userID, id string) error
	DueAt(ctx context.Context, times []time.Time) ([]Rule, error)
	RecordOutcome(ctx context.Context, id string, outcome Outcome) error
}

// Notifier delivers evaluation outcomes to the rule owner.
type Notifier interface {
	Notify(ctx context.Context, rule Rule, outcome Outcome) error
}

// LogNotifier writes outcomes to the service log. Outbound channels
// such as SMS or email plug in behind the same interface.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a log backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the outcome.
func (n *LogNotifier) Notify(_ context.Context, rule Rule, outcome Outcome) error {
	n.logger.Info("warning evaluated",
		"rule", rule.ID,
		"name", rule.Name,
		"user", rule.UserID,
		"parameter", rule.Parameter,
		"condition", string(rule.Condition),
		"threshold", rule.Threshold,
		"value", outcome.Value,
		"triggered", outcome.Triggered,
		"warning_at", rule.WarningAt)
	return nil
}
