// Package rules persists warning rules behind alert.Store. The memory
// store backs tests and single node development, the sqlite store
// survives restarts.
package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/khazidhea/jua-warnings-api/internal/alert"
)

// Memory keeps rules in a map guarded by a read-write mutex.
type Memory struct {
	mu    sync.RWMutex
	rules map[string]alert.Rule
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rules: make(map[string]alert.Rule)}
}

// Create stores a rule under its id.
func (m *Memory) Create(_ context.Context, rule alert.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[rule.ID]; ok {
		return fmt.Errorf("rule %s already exists", rule.ID)
	}
	m.rules[rule.ID] = rule
	return nil
}

// List returns the rules owned by a user, ordered by warning time.
func (m *Memory) List(_ context.Context, userID string) ([]alert.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []alert.Rule
	for _, r := range m.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortRules(out)
	return out, nil
}

// Delete removes one of the user's rules.
func (m *Memory) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule, ok := m.rules[id]
	if !ok || rule.UserID != userID {
		return fmt.Errorf("rule %s: %w", id, alert.ErrRuleNotFound)
	}
	delete(m.rules, id)
	return nil
}

// DueAt returns the rules whose warning hour equals any of the given
// instants.
func (m *Memory) DueAt(_ context.Context, times []time.Time) ([]alert.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []alert.Rule
	for _, r := range m.rules {
		for _, at := range times {
			if r.WarningAt.Equal(at) {
				out = append(out, r)
				break
			}
		}
	}
	sortRules(out)
	return out, nil
}

// RecordOutcome writes the evaluation state onto the stored rule.
func (m *Memory) RecordOutcome(_ context.Context, id string, outcome alert.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule, ok := m.rules[id]
	if !ok {
		return fmt.Errorf("rule %s: %w", id, alert.ErrRuleNotFound)
	}

	triggered := outcome.Triggered
	value := outcome.Value
	checkedAt := outcome.CheckedAt
	rule.Triggered = &triggered
	rule.Value = &value
	rule.CheckedAt = &checkedAt
	m.rules[id] = rule
	return nil
}

func sortRules(rules []alert.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if !rules[i].WarningAt.Equal(rules[j].WarningAt) {
			return rules[i].WarningAt.Before(rules[j].WarningAt)
		}
		return rules[i].ID < rules[j].ID
	})
}
