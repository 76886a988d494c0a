package rules

import (
	"strings"

	"github.com/territory_assign/backend/internal/models"
)

// Matches reports whether a single condition holds for the request.
func Matches(cond models.RuleCondition, req models.ClientAssignmentRequest) bool {
	values := fieldValues(cond, req)
	if len(values) == 0 {
		return false
	}

	fold := !cond.IsCaseSensitive()
	candidates := make([]string, 0, len(cond.Value))
	for _, v := range cond.Value {
		if fold {
			v = strings.ToLower(v)
		}
		candidates = append(candidates, v)
	}

	for _, value := range values {
		if fold {
			value = strings.ToLower(value)
		}
		if matchOperator(cond.Operator, value, candidates) {
			return true
		}
	}
	return false
}

// RuleMatches combines the rule's conditions with its logical operator.
// A rule without conditions never matches.
func RuleMatches(rule models.AssignmentRule, req models.ClientAssignmentRequest) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	if rule.LogicalOperator == models.OperatorOr {
		for _, c := range rule.Conditions {
			if Matches(c, req) {
				return true
			}
		}
		return false
	}
	for _, c := range rule.Conditions {
		if !Matches(c, req) {
			return false
		}
	}
	return true
}

func matchOperator(op models.ConditionOperator, value string, candidates []string) bool {
	for _, c := range candidates {
		switch op {
		case models.OpEquals, models.OpIn:
			if value == c {
				return true
			}
		case models.OpContains:
			if strings.Contains(value, c) {
				return true
			}
		case models.OpStartsWith:
			if strings.HasPrefix(value, c) {
				return true
			}
		case models.OpRange:
			// no numeric-range semantics; rejected at save time
			return false
		}
	}
	return false
}

func fieldValues(cond models.RuleCondition, req models.ClientAssignmentRequest) []string {
	switch cond.Field {
	case models.FieldLocation:
		return single(firstNonEmpty(req.Location, req.City, req.Region))
	case models.FieldPackageType:
		return single(req.PackageType)
	case models.FieldClientType:
		return single(req.ClientType)
	case models.FieldLanguage:
		return single(req.PreferredLanguage)
	case models.FieldPostalCode:
		return single(req.PostalCode)
	case models.FieldCountry:
		return single(req.Country)
	case models.FieldSpecialty:
		var out []string
		for _, s := range req.SpecialRequirements {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case models.FieldCustom:
		if req.Custom == nil || cond.CustomField == "" {
			return nil
		}
		return single(req.Custom[cond.CustomField])
	default:
		return nil
	}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
