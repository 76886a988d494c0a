package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/territory_assign/backend/internal/metrics"
	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/rules"
)

const systemPrincipal = "system"

type AssignOptions struct {
	// ManualUserID is advisory: an unknown user falls through to rule
	// evaluation.
	ManualUserID string
	PerformedBy  string
}

type Engine struct {
	territories TerritoryRepository
	rules       *RuleService
	logs        LogRepository
	committer   AssignmentCommitter
	logger      zerolog.Logger
	now         func() time.Time
}

func NewEngine(store Store, ruleService *RuleService, logger zerolog.Logger) *Engine {
	return &Engine{
		territories: store,
		rules:       ruleService,
		logs:        store,
		committer:   store,
		logger:      logger,
		now:         utcNow,
	}
}

type decision struct {
	path     models.AssignmentPath
	rule     *models.AssignmentRule
	target   candidate
	reason   string
	conflict *models.Conflict
}

// Assign routes one client. Business failures come back as a result with
// Success=false; the error is reserved for store failures. Every returned
// result has exactly one log entry behind it.
func (e *Engine) Assign(ctx context.Context, req models.ClientAssignmentRequest, opts AssignOptions) (models.AssignmentResult, error) {
	start := time.Now()

	territories, err := e.territories.ListTerritories(ctx)
	if err != nil {
		return models.AssignmentResult{}, fmt.Errorf("list territories: %w", err)
	}

	d, err := e.decide(ctx, req, opts, territories)
	if err != nil {
		return models.AssignmentResult{}, err
	}

	result, err := e.commit(ctx, req, opts, d)
	if err != nil {
		return models.AssignmentResult{}, err
	}

	outcome := "success"
	if result.Conflict != nil {
		outcome = string(result.Conflict.Type)
	}
	metrics.ObserveAssignment(string(d.path), outcome, time.Since(start))
	return result, nil
}

func (e *Engine) decide(ctx context.Context, req models.ClientAssignmentRequest, opts AssignOptions, territories []models.Territory) (decision, error) {
	if opts.ManualUserID != "" {
		if c, ok := findMember(territories, opts.ManualUserID); ok {
			if !c.Member.HasCapacity() {
				return decision{
					path:     models.PathManual,
					conflict: capacityConflict(fmt.Sprintf("%s is at capacity (%d/%d)", c.Member.UserName, c.Member.CurrentClientCount, c.Member.MaxCapacity)),
				}, nil
			}
			return decision{
				path:   models.PathManual,
				target: c,
				reason: fmt.Sprintf("Manually assigned to %s", c.Member.UserName),
			}, nil
		}
		e.logger.Debug().Str("client_id", req.ClientID).Str("user_id", opts.ManualUserID).Msg("manual assignee not found, evaluating rules")
	}

	active, err := e.rules.Active(ctx)
	if err != nil {
		return decision{}, fmt.Errorf("load active rules: %w", err)
	}
	for i := range active {
		if rules.RuleMatches(active[i], req) {
			return e.execute(active[i], territories), nil
		}
	}

	d := loadBalance(territories)
	if d.conflict == nil {
		d.reason = fmt.Sprintf("No rule matched; load balanced to %s in %s", d.target.Member.UserName, d.target.Territory.Name)
	}
	return d, nil
}

// execute runs the action of the selected rule. Its outcome is final for the
// request; later rules are not tried.
func (e *Engine) execute(rule models.AssignmentRule, territories []models.Territory) decision {
	d := decision{path: models.PathRule, rule: &rule}

	switch a := rule.Action.(type) {
	case models.AssignToUser:
		c, ok := findMember(territories, a.UserID)
		if !ok {
			d.conflict = noMatchConflict(fmt.Sprintf("Rule %q targets user %s who is not in any active territory", rule.Name, a.UserID))
			return d
		}
		if !c.Member.HasCapacity() {
			d.conflict = capacityConflict(fmt.Sprintf("%s is at capacity (%d/%d)", c.Member.UserName, c.Member.CurrentClientCount, c.Member.MaxCapacity))
			return d
		}
		d.target = c
		d.reason = fmt.Sprintf("Matched rule %q; assigned to %s", rule.Name, c.Member.UserName)

	case models.AssignToTerritory:
		t, ok := findTerritory(territories, a.TerritoryID)
		if !ok || !t.Active {
			d.conflict = noMatchConflict(fmt.Sprintf("Rule %q targets territory %s which does not exist or is inactive", rule.Name, a.TerritoryID))
			return d
		}
		c, ok := leastLoaded(availableMembers([]models.Territory{t}, nil))
		if !ok {
			d.conflict = capacityConflict(fmt.Sprintf("No team member in %s has spare capacity", t.Name))
			return d
		}
		d.target = c
		d.reason = fmt.Sprintf("Matched rule %q; assigned to least-loaded member of %s", rule.Name, t.Name)

	case models.AssignBySpecialty:
		keep := func(m models.TeamMemberAssignment) bool { return hasAnySpecialty(m, a.RequiredSpecialties) }
		c, ok := leastLoaded(availableMembers(territories, keep))
		if !ok {
			d.conflict = specialtyConflict(fmt.Sprintf("No available team member has any of %v", a.RequiredSpecialties))
			return d
		}
		d.target = c
		d.reason = fmt.Sprintf("Matched rule %q; assigned to %s by specialty", rule.Name, c.Member.UserName)

	case models.LoadBalance:
		lb := loadBalance(territories)
		lb.path, lb.rule = models.PathRule, &rule
		if lb.conflict == nil {
			lb.reason = fmt.Sprintf("Matched rule %q; load balanced to %s in %s", rule.Name, lb.target.Member.UserName, lb.target.Territory.Name)
		}
		return lb

	case nil:
		d.conflict = noMatchConflict(fmt.Sprintf("Rule %q has no action", rule.Name))

	default:
		panic(fmt.Sprintf("unhandled assignment action %T", a))
	}
	return d
}

// loadBalance picks the globally least-loaded available member.
func loadBalance(territories []models.Territory) decision {
	d := decision{path: models.PathFallback}
	active := activeTerritories(territories)
	if len(active) == 0 {
		d.conflict = noMatchConflict("No active territories available")
		return d
	}
	c, ok := leastLoaded(availableMembers(active, nil))
	if !ok {
		d.conflict = capacityConflict("All active team members are at capacity")
		return d
	}
	d.target = c
	return d
}

func (e *Engine) commit(ctx context.Context, req models.ClientAssignmentRequest, opts AssignOptions, d decision) (models.AssignmentResult, error) {
	now := e.now()
	performedBy := opts.PerformedBy
	if performedBy == "" {
		performedBy = systemPrincipal
	}
	entry := models.AssignmentLog{
		ID:                 uuid.NewString(),
		ClientID:           req.ClientID,
		ClientName:         req.ClientName,
		PreviousAssignment: req.CurrentAssignment,
		Reason:             d.reason,
		PerformedBy:        performedBy,
		Path:               d.path,
		Timestamp:          now,
	}
	result := models.AssignmentResult{
		ClientID:  req.ClientID,
		Timestamp: now,
	}
	if d.rule != nil {
		entry.AppliedRuleID = d.rule.ID
		result.AppliedRuleID = d.rule.ID
	}

	if d.conflict == nil {
		entry.Success = true
		entry.NewAssignment = &models.AssignmentSnapshot{
			UserID:        d.target.Member.UserID,
			UserName:      d.target.Member.UserName,
			TerritoryID:   d.target.Territory.ID,
			TerritoryName: d.target.Territory.Name,
		}
		_, err := e.committer.CommitAssignment(ctx, d.target.Territory.ID, d.target.Member.UserID, entry)
		switch {
		case err == nil:
			result.Success = true
			result.AssignedToUserID = d.target.Member.UserID
			result.AssignedToUserName = d.target.Member.UserName
			result.TerritoryID = d.target.Territory.ID
			result.TerritoryName = d.target.Territory.Name
			result.Reason = d.reason
			e.logger.Info().
				Str("client_id", req.ClientID).
				Str("path", string(d.path)).
				Str("rule_id", result.AppliedRuleID).
				Str("territory_id", result.TerritoryID).
				Str("user_id", result.AssignedToUserID).
				Msg("client assigned")
			return result, nil
		case errors.Is(err, models.ErrCapacityExceeded):
			d.conflict = capacityConflict(fmt.Sprintf("%s reached capacity before the assignment was committed", d.target.Member.UserName))
		case errors.Is(err, models.ErrMemberUnavailable), errors.Is(err, models.ErrNotFound):
			d.conflict = noMatchConflict(fmt.Sprintf("%s is no longer available in %s", d.target.Member.UserName, d.target.Territory.Name))
		default:
			return models.AssignmentResult{}, fmt.Errorf("commit assignment: %w", err)
		}
	}

	entry.Success = false
	entry.NewAssignment = nil
	entry.Reason = d.conflict.Message
	entry.ConflictType = d.conflict.Type
	entry.ErrorMessage = d.conflict.Message
	if err := e.logs.AppendLog(ctx, entry); err != nil {
		return models.AssignmentResult{}, fmt.Errorf("append assignment log: %w", err)
	}

	result.Reason = d.conflict.Message
	result.Conflict = d.conflict
	e.logger.Warn().
		Str("client_id", req.ClientID).
		Str("path", string(d.path)).
		Str("rule_id", result.AppliedRuleID).
		Str("conflict", string(d.conflict.Type)).
		Msg(d.conflict.Message)
	return result, nil
}

func capacityConflict(msg string) *models.Conflict {
	return &models.Conflict{
		Type:    models.ConflictCapacityExceeded,
		Message: msg,
		Suggestions: []string{
			"Increase the team member's max capacity",
			"Assign the client manually to another team member",
			"Add team members to the territory",
		},
	}
}

func noMatchConflict(msg string) *models.Conflict {
	return &models.Conflict{
		Type:    models.ConflictNoMatch,
		Message: msg,
		Suggestions: []string{
			"Create or update an assignment rule that covers this client",
			"Activate a territory with available team members",
		},
	}
}

func specialtyConflict(msg string) *models.Conflict {
	return &models.Conflict{
		Type:    models.ConflictSpecialtyMismatch,
		Message: msg,
		Suggestions: []string{
			"Add the required specialty to an available team member",
			"Relax the rule's required specialties",
		},
	}
}
