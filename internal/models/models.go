package models

import "time"

type TerritoryType string

const (
	TerritoryGeographic TerritoryType = "geographic"
	TerritoryRegional   TerritoryType = "regional"
	TerritoryCustom     TerritoryType = "custom"
)

type MemberRole string

const (
	RoleLead   MemberRole = "lead"
	RoleMember MemberRole = "member"
	RoleJunior MemberRole = "junior"
)

// Boundaries are descriptive only; matching is driven by rule conditions.
type Boundaries struct {
	Cities      []string `json:"cities,omitempty"`
	Regions     []string `json:"regions,omitempty"`
	PostalCodes []string `json:"postal_codes,omitempty"`
	Countries   []string `json:"countries,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type Territory struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Type           TerritoryType          `json:"type"`
	Boundaries     *Boundaries            `json:"boundaries,omitempty"`
	Coordinates    *Coordinates           `json:"coordinates,omitempty"`
	Radius         *float64               `json:"radius,omitempty"`
	TeamMembers    []TeamMemberAssignment `json:"team_members"`
	Active         bool                   `json:"active"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
}

// Member returns the roster index of userID, or -1.
func (t Territory) Member(userID string) int {
	for i, m := range t.TeamMembers {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

type TeamMemberAssignment struct {
	UserID             string     `json:"user_id" validate:"required"`
	UserName           string     `json:"user_name" validate:"required"`
	Role               MemberRole `json:"role" validate:"required,oneof=lead member junior"`
	Specialties        []string   `json:"specialties"`
	CurrentClientCount int        `json:"current_client_count" validate:"gte=0"`
	MaxCapacity        int        `json:"max_capacity" validate:"gt=0"`
	Active             bool       `json:"active"`
	AssignedAt         time.Time  `json:"assigned_at"`
}

func (m TeamMemberAssignment) HasCapacity() bool {
	return m.CurrentClientCount < m.MaxCapacity
}

type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "AND"
	OperatorOr  LogicalOperator = "OR"
)

type ConditionField string

const (
	FieldLocation    ConditionField = "location"
	FieldPackageType ConditionField = "packageType"
	FieldClientType  ConditionField = "clientType"
	FieldSpecialty   ConditionField = "specialty"
	FieldLanguage    ConditionField = "language"
	FieldPostalCode  ConditionField = "postalCode"
	FieldCountry     ConditionField = "country"
	FieldCustom      ConditionField = "custom"
)

type ConditionOperator string

const (
	OpEquals     ConditionOperator = "equals"
	OpContains   ConditionOperator = "contains"
	OpStartsWith ConditionOperator = "startsWith"
	OpIn         ConditionOperator = "in"
	OpRange      ConditionOperator = "range"
)

type RuleCondition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    []string          `json:"value"`
	// CaseSensitive defaults to true when unset.
	CaseSensitive *bool  `json:"case_sensitive,omitempty"`
	CustomField   string `json:"custom_field,omitempty"`
}

func (c RuleCondition) IsCaseSensitive() bool {
	return c.CaseSensitive == nil || *c.CaseSensitive
}

type AssignmentRule struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Priority        int             `json:"priority"`
	Conditions      []RuleCondition `json:"conditions"`
	LogicalOperator LogicalOperator `json:"logical_operator"`
	Action          Action          `json:"-"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatedBy       string          `json:"created_by"`
}

// ClientAssignmentRequest is the projection of a client record the engine reads.
type ClientAssignmentRequest struct {
	ClientID            string              `json:"client_id" validate:"required"`
	ClientName          string              `json:"client_name" validate:"required"`
	Location            string              `json:"location,omitempty"`
	PostalCode          string              `json:"postal_code,omitempty"`
	City                string              `json:"city,omitempty"`
	Region              string              `json:"region,omitempty"`
	Country             string              `json:"country,omitempty"`
	PackageType         string              `json:"package_type,omitempty"`
	ClientType          string              `json:"client_type,omitempty"`
	SpecialRequirements []string            `json:"special_requirements,omitempty"`
	PreferredLanguage   string              `json:"preferred_language,omitempty"`
	Custom              map[string]string   `json:"custom,omitempty"`
	CurrentAssignment   *AssignmentSnapshot `json:"current_assignment,omitempty"`
}

type AssignmentSnapshot struct {
	UserID        string `json:"user_id,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	TerritoryID   string `json:"territory_id,omitempty"`
	TerritoryName string `json:"territory_name,omitempty"`
}
