package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/territory_assign/backend/internal/models"
)

type StatsService struct {
	territories TerritoryRepository
	rules       *RuleService
	logs        LogRepository
	unassigned  UnassignedCounter
	logger      zerolog.Logger
}

// NewStatsService accepts a nil counter; unassigned counts are then zero.
func NewStatsService(territories TerritoryRepository, ruleService *RuleService, logs LogRepository, unassigned UnassignedCounter, logger zerolog.Logger) *StatsService {
	return &StatsService{
		territories: territories,
		rules:       ruleService,
		logs:        logs,
		unassigned:  unassigned,
		logger:      logger,
	}
}

func (s *StatsService) TerritoryStats(ctx context.Context, id string) (models.TerritoryStats, error) {
	t, err := s.territories.GetTerritory(ctx, id)
	if err != nil {
		return models.TerritoryStats{}, err
	}
	active, err := s.rules.Active(ctx)
	if err != nil {
		return models.TerritoryStats{}, err
	}
	return s.build(ctx, t, active)
}

// CapacityUtilizationRanking covers active territories, highest utilization
// first.
func (s *StatsService) CapacityUtilizationRanking(ctx context.Context) ([]models.TerritoryStats, error) {
	territories, err := s.territories.ListTerritories(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.rules.Active(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TerritoryStats, 0, len(territories))
	for _, t := range activeTerritories(territories) {
		st, err := s.build(ctx, t, active)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapacityUtilization > out[j].CapacityUtilization
	})
	return out, nil
}

func (s *StatsService) build(ctx context.Context, t models.Territory, activeRules []models.AssignmentRule) (models.TerritoryStats, error) {
	st := models.TerritoryStats{
		TerritoryID:   t.ID,
		TerritoryName: t.Name,
		TotalMembers:  len(t.TeamMembers),
	}
	for _, m := range t.TeamMembers {
		if !m.Active {
			continue
		}
		st.ActiveMembers++
		st.TotalClients += m.CurrentClientCount
		st.TotalCapacity += m.MaxCapacity
	}
	if st.ActiveMembers > 0 {
		st.AverageLoad = float64(st.TotalClients) / float64(st.ActiveMembers)
	}
	if st.TotalCapacity > 0 {
		st.CapacityUtilization = float64(st.TotalClients) / float64(st.TotalCapacity) * 100
	}
	for _, r := range activeRules {
		if ruleTargets(r, t) {
			st.ActiveRules++
		}
	}

	if s.unassigned != nil {
		n, err := s.unassigned.CountUnassigned(ctx, t.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("territory_id", t.ID).Msg("unassigned client count unavailable")
		} else {
			st.UnassignedClients = n
		}
	}

	last, err := s.logs.LastAssignmentAt(ctx, t.ID)
	if err != nil {
		return models.TerritoryStats{}, fmt.Errorf("last assignment for %s: %w", t.ID, err)
	}
	st.LastAssignmentTime = last
	return st, nil
}

func ruleTargets(r models.AssignmentRule, t models.Territory) bool {
	switch a := r.Action.(type) {
	case models.AssignToTerritory:
		return a.TerritoryID == t.ID
	case models.AssignToUser:
		return t.Member(a.UserID) >= 0
	default:
		return false
	}
}
