package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/rules"
)

type RuleInput struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Priority        int                    `json:"priority"`
	Conditions      []models.RuleCondition `json:"conditions"`
	LogicalOperator models.LogicalOperator `json:"logical_operator"`
	Action          models.Action          `json:"-"`
	Active          *bool                  `json:"active"`
	CreatedBy       string                 `json:"created_by"`
}

// RulePatch replaces only the non-nil fields.
type RulePatch struct {
	Name            *string
	Description     *string
	Priority        *int
	Conditions      []models.RuleCondition
	LogicalOperator *models.LogicalOperator
	Action          models.Action
	Active          *bool
}

type RuleService struct {
	repo   RuleRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewRuleService(repo RuleRepository, logger zerolog.Logger) *RuleService {
	return &RuleService{repo: repo, logger: logger, now: utcNow}
}

func (s *RuleService) Create(ctx context.Context, in RuleInput) (models.AssignmentRule, error) {
	now := s.now()
	op := in.LogicalOperator
	if op == "" {
		op = models.OperatorAnd
	}
	rule := models.AssignmentRule{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		Priority:        in.Priority,
		Conditions:      in.Conditions,
		LogicalOperator: op,
		Action:          in.Action,
		Active:          in.Active == nil || *in.Active,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       in.CreatedBy,
	}
	if err := rules.Validate(rule); err != nil {
		return models.AssignmentRule{}, err
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return models.AssignmentRule{}, err
	}
	s.logger.Info().Str("rule_id", rule.ID).Int("priority", rule.Priority).Str("action", string(rule.Action.Type())).Msg("assignment rule created")
	return rule, nil
}

func (s *RuleService) Get(ctx context.Context, id string) (models.AssignmentRule, error) {
	return s.repo.GetRule(ctx, id)
}

func (s *RuleService) List(ctx context.Context) ([]models.AssignmentRule, error) {
	return s.repo.ListRules(ctx)
}

func (s *RuleService) Update(ctx context.Context, id string, patch RulePatch) (models.AssignmentRule, error) {
	return s.repo.UpdateRule(ctx, id, func(r *models.AssignmentRule) error {
		if patch.Name != nil {
			r.Name = *patch.Name
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Priority != nil {
			r.Priority = *patch.Priority
		}
		if patch.Conditions != nil {
			r.Conditions = patch.Conditions
		}
		if patch.LogicalOperator != nil {
			r.LogicalOperator = *patch.LogicalOperator
		}
		if patch.Action != nil {
			r.Action = patch.Action
		}
		if patch.Active != nil {
			r.Active = *patch.Active
		}
		if err := rules.Validate(*r); err != nil {
			return err
		}
		r.UpdatedAt = s.now()
		return nil
	})
}

func (s *RuleService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteRule(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete rule %s: %w", id, err)
	}
	return deleted, nil
}

// Active returns active rules by descending priority; equal priorities keep
// insertion order.
func (s *RuleService) Active(ctx context.Context) ([]models.AssignmentRule, error) {
	all, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AssignmentRule, 0, len(all))
	for _, r := range all {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}
