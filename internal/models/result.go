package models

import "time"

type ConflictType string

const (
	// ConflictMultipleTerritories is part of the result vocabulary but not
	// produced by the current algorithm.
	ConflictMultipleTerritories ConflictType = "multiple_territories"
	ConflictCapacityExceeded    ConflictType = "capacity_exceeded"
	ConflictNoMatch             ConflictType = "no_match"
	ConflictSpecialtyMismatch   ConflictType = "specialty_mismatch"
)

type Conflict struct {
	Type        ConflictType `json:"type"`
	Message     string       `json:"message"`
	Suggestions []string     `json:"suggestions"`
}

type AssignmentPath string

const (
	PathManual   AssignmentPath = "manual"
	PathRule     AssignmentPath = "rule"
	PathFallback AssignmentPath = "fallback"
)

type AssignmentResult struct {
	Success            bool      `json:"success"`
	ClientID           string    `json:"client_id"`
	AssignedToUserID   string    `json:"assigned_to_user_id,omitempty"`
	AssignedToUserName string    `json:"assigned_to_user_name,omitempty"`
	TerritoryID        string    `json:"territory_id,omitempty"`
	TerritoryName      string    `json:"territory_name,omitempty"`
	Reason             string    `json:"reason"`
	AppliedRuleID      string    `json:"applied_rule_id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Conflict           *Conflict `json:"conflict,omitempty"`
}

// AssignmentLog is immutable once appended.
type AssignmentLog struct {
	ID                 string              `json:"id"`
	ClientID           string              `json:"client_id"`
	ClientName         string              `json:"client_name"`
	PreviousAssignment *AssignmentSnapshot `json:"previous_assignment,omitempty"`
	NewAssignment      *AssignmentSnapshot `json:"new_assignment,omitempty"`
	Reason             string              `json:"reason"`
	AppliedRuleID      string              `json:"applied_rule_id,omitempty"`
	PerformedBy        string              `json:"performed_by"`
	Path               AssignmentPath      `json:"path"`
	Timestamp          time.Time           `json:"timestamp"`
	Success            bool                `json:"success"`
	ConflictType       ConflictType        `json:"conflict_type,omitempty"`
	ErrorMessage       string              `json:"error_message,omitempty"`
}

// TerritoryID returns the territory of the new assignment, if any.
func (l AssignmentLog) TerritoryID() string {
	if l.NewAssignment == nil {
		return ""
	}
	return l.NewAssignment.TerritoryID
}

type TerritoryStats struct {
	TerritoryID         string     `json:"territory_id"`
	TerritoryName       string     `json:"territory_name"`
	TotalMembers        int        `json:"total_members"`
	ActiveMembers       int        `json:"active_members"`
	TotalClients        int        `json:"total_clients"`
	TotalCapacity       int        `json:"total_capacity"`
	AverageLoad         float64    `json:"average_load"`
	CapacityUtilization float64    `json:"capacity_utilization"`
	ActiveRules         int        `json:"active_rules"`
	UnassignedClients   int        `json:"unassigned_clients"`
	LastAssignmentTime  *time.Time `json:"last_assignment_time,omitempty"`
}
