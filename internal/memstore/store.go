// Package memstore keeps territories, rules and the assignment log in process
// memory behind a single RWMutex.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/territory_assign/backend/internal/models"
)

type Store struct {
	mu          sync.RWMutex
	territories []models.Territory
	rules       []models.AssignmentRule
	logs        []models.AssignmentLog
}

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateTerritory(ctx context.Context, t models.Territory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.territoryIndex(t.ID) >= 0 {
		return fmt.Errorf("territory %s: %w", t.ID, models.ErrDuplicate)
	}
	s.territories = append(s.territories, cloneTerritory(t))
	return nil
}

func (s *Store) GetTerritory(ctx context.Context, id string) (models.Territory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.territoryIndex(id)
	if idx < 0 {
		return models.Territory{}, fmt.Errorf("territory %s: %w", id, models.ErrNotFound)
	}
	return cloneTerritory(s.territories[idx]), nil
}

func (s *Store) ListTerritories(ctx context.Context) ([]models.Territory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Territory, 0, len(s.territories))
	for _, t := range s.territories {
		out = append(out, cloneTerritory(t))
	}
	return out, nil
}

func (s *Store) UpdateTerritory(ctx context.Context, id string, mutate func(*models.Territory) error) (models.Territory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.territoryIndex(id)
	if idx < 0 {
		return models.Territory{}, fmt.Errorf("territory %s: %w", id, models.ErrNotFound)
	}
	working := cloneTerritory(s.territories[idx])
	if err := mutate(&working); err != nil {
		return models.Territory{}, err
	}
	working.ID = s.territories[idx].ID
	working.CreatedAt = s.territories[idx].CreatedAt
	s.territories[idx] = working
	return cloneTerritory(working), nil
}

func (s *Store) DeleteTerritory(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.territoryIndex(id)
	if idx < 0 {
		return false, nil
	}
	s.territories = append(s.territories[:idx], s.territories[idx+1:]...)
	return true, nil
}

func (s *Store) CreateRule(ctx context.Context, r models.AssignmentRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ruleIndex(r.ID) >= 0 {
		return fmt.Errorf("rule %s: %w", r.ID, models.ErrDuplicate)
	}
	s.rules = append(s.rules, cloneRule(r))
	return nil
}

func (s *Store) GetRule(ctx context.Context, id string) (models.AssignmentRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.ruleIndex(id)
	if idx < 0 {
		return models.AssignmentRule{}, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	return cloneRule(s.rules[idx]), nil
}

func (s *Store) ListRules(ctx context.Context) ([]models.AssignmentRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AssignmentRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, cloneRule(r))
	}
	return out, nil
}

func (s *Store) UpdateRule(ctx context.Context, id string, mutate func(*models.AssignmentRule) error) (models.AssignmentRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.ruleIndex(id)
	if idx < 0 {
		return models.AssignmentRule{}, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	working := cloneRule(s.rules[idx])
	if err := mutate(&working); err != nil {
		return models.AssignmentRule{}, err
	}
	working.ID = s.rules[idx].ID
	working.CreatedAt = s.rules[idx].CreatedAt
	s.rules[idx] = working
	return cloneRule(working), nil
}

func (s *Store) DeleteRule(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.ruleIndex(id)
	if idx < 0 {
		return false, nil
	}
	s.rules = append(s.rules[:idx], s.rules[idx+1:]...)
	return true, nil
}

func (s *Store) AppendLog(ctx context.Context, entry models.AssignmentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *Store) ListLogs(ctx context.Context, limit int) ([]models.AssignmentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]models.AssignmentLog, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func (s *Store) ClearLogs(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
	return nil
}

func (s *Store) LastAssignmentAt(ctx context.Context, territoryID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last *time.Time
	for _, l := range s.logs {
		if !l.Success || l.TerritoryID() != territoryID {
			continue
		}
		if last == nil || l.Timestamp.After(*last) {
			ts := l.Timestamp
			last = &ts
		}
	}
	return last, nil
}

// CommitAssignment holds the write lock across the capacity check, the
// increment and the log append.
func (s *Store) CommitAssignment(ctx context.Context, territoryID, userID string, entry models.AssignmentLog) (models.Territory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.territoryIndex(territoryID)
	if idx < 0 {
		return models.Territory{}, fmt.Errorf("territory %s: %w", territoryID, models.ErrNotFound)
	}
	t := &s.territories[idx]
	mi := t.Member(userID)
	if !t.Active || mi < 0 || !t.TeamMembers[mi].Active {
		return models.Territory{}, fmt.Errorf("member %s in %s: %w", userID, territoryID, models.ErrMemberUnavailable)
	}
	m := &t.TeamMembers[mi]
	if !m.HasCapacity() {
		return models.Territory{}, fmt.Errorf("member %s: %w", userID, models.ErrCapacityExceeded)
	}
	m.CurrentClientCount++
	t.UpdatedAt = entry.Timestamp
	s.logs = append(s.logs, entry)
	return cloneTerritory(*t), nil
}

func (s *Store) territoryIndex(id string) int {
	for i, t := range s.territories {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ruleIndex(id string) int {
	for i, r := range s.rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneTerritory(t models.Territory) models.Territory {
	members := make([]models.TeamMemberAssignment, len(t.TeamMembers))
	for i, m := range t.TeamMembers {
		m.Specialties = append([]string(nil), m.Specialties...)
		members[i] = m
	}
	t.TeamMembers = members
	if t.Boundaries != nil {
		b := *t.Boundaries
		t.Boundaries = &b
	}
	return t
}

func cloneRule(r models.AssignmentRule) models.AssignmentRule {
	conds := make([]models.RuleCondition, len(r.Conditions))
	for i, c := range r.Conditions {
		c.Value = append([]string(nil), c.Value...)
		conds[i] = c
	}
	r.Conditions = conds
	return r
}
