package service

import (
	"context"
	"time"

	"github.com/territory_assign/backend/internal/models"
)

// TerritoryRepository lists territories in insertion order. UpdateTerritory
// runs mutate against the stored record and persists the result atomically;
// an error from mutate aborts the write.
type TerritoryRepository interface {
	CreateTerritory(ctx context.Context, t models.Territory) error
	GetTerritory(ctx context.Context, id string) (models.Territory, error)
	ListTerritories(ctx context.Context) ([]models.Territory, error)
	UpdateTerritory(ctx context.Context, id string, mutate func(*models.Territory) error) (models.Territory, error)
	DeleteTerritory(ctx context.Context, id string) (bool, error)
}

// RuleRepository lists rules in insertion order.
type RuleRepository interface {
	CreateRule(ctx context.Context, r models.AssignmentRule) error
	GetRule(ctx context.Context, id string) (models.AssignmentRule, error)
	ListRules(ctx context.Context) ([]models.AssignmentRule, error)
	UpdateRule(ctx context.Context, id string, mutate func(*models.AssignmentRule) error) (models.AssignmentRule, error)
	DeleteRule(ctx context.Context, id string) (bool, error)
}

type LogRepository interface {
	AppendLog(ctx context.Context, entry models.AssignmentLog) error
	// ListLogs returns the newest entries first.
	ListLogs(ctx context.Context, limit int) ([]models.AssignmentLog, error)
	ClearLogs(ctx context.Context) error
	LastAssignmentAt(ctx context.Context, territoryID string) (*time.Time, error)
}

// AssignmentCommitter re-checks the member inside one transaction, bumps its
// client count and appends entry. It returns models.ErrCapacityExceeded or
// models.ErrMemberUnavailable without writing anything when the re-check
// fails, and models.ErrNotFound when the territory is gone.
type AssignmentCommitter interface {
	CommitAssignment(ctx context.Context, territoryID, userID string, entry models.AssignmentLog) (models.Territory, error)
}

type Store interface {
	TerritoryRepository
	RuleRepository
	LogRepository
	AssignmentCommitter
	Ping(ctx context.Context) error
}

// UnassignedCounter is provided by the client-record system.
type UnassignedCounter interface {
	CountUnassigned(ctx context.Context, territoryID string) (int, error)
}
