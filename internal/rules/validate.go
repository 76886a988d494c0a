package rules

import (
	"fmt"
	"strings"

	"github.com/territory_assign/backend/internal/models"
)

var knownFields = map[models.ConditionField]struct{}{
	models.FieldLocation:    {},
	models.FieldPackageType: {},
	models.FieldClientType:  {},
	models.FieldSpecialty:   {},
	models.FieldLanguage:    {},
	models.FieldPostalCode:  {},
	models.FieldCountry:     {},
	models.FieldCustom:      {},
}

// Validate checks a rule before it is saved. Every failure wraps
// models.ErrInvalidRule.
func Validate(rule models.AssignmentRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidRule)
	}
	switch rule.LogicalOperator {
	case models.OperatorAnd, models.OperatorOr:
	default:
		return fmt.Errorf("%w: logical operator must be AND or OR, got %q", models.ErrInvalidRule, rule.LogicalOperator)
	}
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("%w: at least one condition is required", models.ErrInvalidRule)
	}
	for i, c := range rule.Conditions {
		if err := validateCondition(c); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return validateAction(rule.Action)
}

func validateCondition(c models.RuleCondition) error {
	if _, ok := knownFields[c.Field]; !ok {
		return fmt.Errorf("%w: unknown field %q", models.ErrInvalidRule, c.Field)
	}
	if c.Field == models.FieldCustom && strings.TrimSpace(c.CustomField) == "" {
		return fmt.Errorf("%w: custom field name is required", models.ErrInvalidRule)
	}
	switch c.Operator {
	case models.OpEquals, models.OpContains, models.OpStartsWith, models.OpIn:
	case models.OpRange:
		return fmt.Errorf("%w: range operator is not supported", models.ErrInvalidRule)
	default:
		return fmt.Errorf("%w: unknown operator %q", models.ErrInvalidRule, c.Operator)
	}
	if len(c.Value) == 0 {
		return fmt.Errorf("%w: condition value is required", models.ErrInvalidRule)
	}
	return nil
}

func validateAction(a models.Action) error {
	switch v := a.(type) {
	case models.AssignToUser:
		if v.UserID == "" {
			return fmt.Errorf("%w: assign_to_user requires user_id", models.ErrInvalidRule)
		}
	case models.AssignToTerritory:
		if v.TerritoryID == "" {
			return fmt.Errorf("%w: assign_to_territory requires territory_id", models.ErrInvalidRule)
		}
	case models.AssignBySpecialty:
		if len(v.RequiredSpecialties) == 0 {
			return fmt.Errorf("%w: assign_by_specialty requires specialties", models.ErrInvalidRule)
		}
	case models.LoadBalance:
	case nil:
		return fmt.Errorf("%w: action is required", models.ErrInvalidRule)
	default:
		return fmt.Errorf("%w: unsupported action %T", models.ErrInvalidRule, a)
	}
	return nil
}
