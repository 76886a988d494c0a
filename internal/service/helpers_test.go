package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/territory_assign/backend/internal/memstore"
	"github.com/territory_assign/backend/internal/models"
)

type fixture struct {
	store       *memstore.Store
	territories *TerritoryService
	rules       *RuleService
	engine      *Engine
	logs        *LogService
	stats       *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	logger := zerolog.Nop()
	ruleSvc := NewRuleService(store, logger)
	return &fixture{
		store:       store,
		territories: NewTerritoryService(store, validator.New(), logger),
		rules:       ruleSvc,
		engine:      NewEngine(store, ruleSvc, logger),
		logs:        NewLogService(store, 50, 500, logger),
		stats:       NewStatsService(store, ruleSvc, store, nil, logger),
	}
}

func member(id string, count, max int, specialties ...string) models.TeamMemberAssignment {
	return models.TeamMemberAssignment{
		UserID:             id,
		UserName:           "user " + id,
		Role:               models.RoleMember,
		Specialties:        specialties,
		CurrentClientCount: count,
		MaxCapacity:        max,
		Active:             true,
	}
}

func (f *fixture) territory(t *testing.T, name string, members ...models.TeamMemberAssignment) models.Territory {
	t.Helper()
	terr, err := f.territories.Create(context.Background(), TerritoryInput{
		Name:        name,
		Type:        models.TerritoryRegional,
		TeamMembers: members,
	})
	require.NoError(t, err)
	return terr
}

func (f *fixture) rule(t *testing.T, name string, priority int, action models.Action, conds ...models.RuleCondition) models.AssignmentRule {
	t.Helper()
	r, err := f.rules.Create(context.Background(), RuleInput{
		Name:            name,
		Priority:        priority,
		Conditions:      conds,
		LogicalOperator: models.OperatorAnd,
		Action:          action,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) memberCount(t *testing.T, territoryID, userID string) int {
	t.Helper()
	terr, err := f.territories.Get(context.Background(), territoryID)
	require.NoError(t, err)
	idx := terr.Member(userID)
	require.GreaterOrEqual(t, idx, 0)
	return terr.TeamMembers[idx].CurrentClientCount
}

func packageIs(v string) models.RuleCondition {
	return models.RuleCondition{Field: models.FieldPackageType, Operator: models.OpEquals, Value: []string{v}}
}

func client(id string) models.ClientAssignmentRequest {
	return models.ClientAssignmentRequest{ClientID: id, ClientName: "Client " + id}
}
