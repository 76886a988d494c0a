package models

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionAssignToUser      ActionType = "assign_to_user"
	ActionAssignToTerritory ActionType = "assign_to_territory"
	ActionAssignBySpecialty ActionType = "assign_by_specialty"
	ActionLoadBalance       ActionType = "load_balance"
)

// Action is the closed set of rule actions. Only types in this package
// implement it.
type Action interface {
	Type() ActionType
	isAction()
}

type AssignToUser struct {
	UserID string
}

type AssignToTerritory struct {
	TerritoryID string
}

type AssignBySpecialty struct {
	RequiredSpecialties []string
}

// LoadBalance carries an advisory method; the fallback algorithm is fixed.
type LoadBalance struct {
	Method string
}

func (AssignToUser) Type() ActionType      { return ActionAssignToUser }
func (AssignToTerritory) Type() ActionType { return ActionAssignToTerritory }
func (AssignBySpecialty) Type() ActionType { return ActionAssignBySpecialty }
func (LoadBalance) Type() ActionType       { return ActionLoadBalance }

func (AssignToUser) isAction()      {}
func (AssignToTerritory) isAction() {}
func (AssignBySpecialty) isAction() {}
func (LoadBalance) isAction()       {}

// ActionDocument is the wire form of an Action.
type ActionDocument struct {
	Type                ActionType `json:"type"`
	UserID              string     `json:"user_id,omitempty"`
	TerritoryID         string     `json:"territory_id,omitempty"`
	RequiredSpecialties []string   `json:"required_specialties,omitempty"`
	Method              string     `json:"method,omitempty"`
}

func DocumentFromAction(a Action) (ActionDocument, error) {
	switch v := a.(type) {
	case AssignToUser:
		return ActionDocument{Type: ActionAssignToUser, UserID: v.UserID}, nil
	case AssignToTerritory:
		return ActionDocument{Type: ActionAssignToTerritory, TerritoryID: v.TerritoryID}, nil
	case AssignBySpecialty:
		return ActionDocument{Type: ActionAssignBySpecialty, RequiredSpecialties: v.RequiredSpecialties}, nil
	case LoadBalance:
		return ActionDocument{Type: ActionLoadBalance, Method: v.Method}, nil
	case nil:
		return ActionDocument{}, fmt.Errorf("%w: action is required", ErrInvalidRule)
	default:
		return ActionDocument{}, fmt.Errorf("%w: unsupported action %T", ErrInvalidRule, a)
	}
}

func (d ActionDocument) Action() (Action, error) {
	switch d.Type {
	case ActionAssignToUser:
		return AssignToUser{UserID: d.UserID}, nil
	case ActionAssignToTerritory:
		return AssignToTerritory{TerritoryID: d.TerritoryID}, nil
	case ActionAssignBySpecialty:
		return AssignBySpecialty{RequiredSpecialties: d.RequiredSpecialties}, nil
	case ActionLoadBalance:
		return LoadBalance{Method: d.Method}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidRule, d.Type)
	}
}

type ruleAlias AssignmentRule

type ruleJSON struct {
	ruleAlias
	Action *ActionDocument `json:"action"`
}

func (r AssignmentRule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{ruleAlias: ruleAlias(r)}
	if r.Action != nil {
		doc, err := DocumentFromAction(r.Action)
		if err != nil {
			return nil, err
		}
		out.Action = &doc
	}
	return json.Marshal(out)
}

func (r *AssignmentRule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = AssignmentRule(in.ruleAlias)
	if in.Action != nil {
		action, err := in.Action.Action()
		if err != nil {
			return err
		}
		r.Action = action
	}
	return nil
}
