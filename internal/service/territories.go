package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/territory_assign/backend/internal/models"
)

type TerritoryInput struct {
	Name        string                        `json:"name" validate:"required"`
	Description string                        `json:"description"`
	Type        models.TerritoryType          `json:"type" validate:"required,oneof=geographic regional custom"`
	Boundaries  *models.Boundaries            `json:"boundaries"`
	Coordinates *models.Coordinates           `json:"coordinates"`
	Radius      *float64                      `json:"radius" validate:"omitempty,gt=0"`
	TeamMembers []models.TeamMemberAssignment `json:"team_members" validate:"dive"`
	// Active defaults to true.
	Active    *bool  `json:"active"`
	CreatedBy string `json:"created_by"`
}

type TerritoryPatch struct {
	Name        *string               `json:"name" validate:"omitempty,min=1"`
	Description *string               `json:"description"`
	Type        *models.TerritoryType `json:"type" validate:"omitempty,oneof=geographic regional custom"`
	Boundaries  *models.Boundaries    `json:"boundaries"`
	Coordinates *models.Coordinates   `json:"coordinates"`
	Radius      *float64              `json:"radius" validate:"omitempty,gt=0"`
	Active      *bool                 `json:"active"`
	ModifiedBy  string                `json:"modified_by"`
}

type MemberPatch struct {
	UserName           *string            `json:"user_name" validate:"omitempty,min=1"`
	Role               *models.MemberRole `json:"role" validate:"omitempty,oneof=lead member junior"`
	Specialties        []string           `json:"specialties"`
	CurrentClientCount *int               `json:"current_client_count" validate:"omitempty,gte=0"`
	MaxCapacity        *int               `json:"max_capacity" validate:"omitempty,gt=0"`
	Active             *bool              `json:"active"`
	ModifiedBy         string             `json:"modified_by"`
}

type TerritoryService struct {
	repo     TerritoryRepository
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTerritoryService(repo TerritoryRepository, validate *validator.Validate, logger zerolog.Logger) *TerritoryService {
	return &TerritoryService{repo: repo, validate: validate, logger: logger, now: utcNow}
}

func (s *TerritoryService) Create(ctx context.Context, in TerritoryInput) (models.Territory, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.Territory{}, fmt.Errorf("%w: %v", models.ErrInvalidTerritory, err)
	}
	now := s.now()
	t := models.Territory{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		Type:           in.Type,
		Boundaries:     in.Boundaries,
		Coordinates:    in.Coordinates,
		Radius:         in.Radius,
		TeamMembers:    []models.TeamMemberAssignment{},
		Active:         in.Active == nil || *in.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      in.CreatedBy,
		LastModifiedBy: in.CreatedBy,
	}
	for _, m := range in.TeamMembers {
		if err := checkMember(m); err != nil {
			return models.Territory{}, err
		}
		if t.Member(m.UserID) >= 0 {
			return models.Territory{}, fmt.Errorf("team member %s: %w", m.UserID, models.ErrDuplicate)
		}
		if m.AssignedAt.IsZero() {
			m.AssignedAt = now
		}
		t.TeamMembers = append(t.TeamMembers, m)
	}
	if err := s.repo.CreateTerritory(ctx, t); err != nil {
		return models.Territory{}, err
	}
	s.logger.Info().Str("territory_id", t.ID).Str("name", t.Name).Int("members", len(t.TeamMembers)).Msg("territory created")
	return t, nil
}

func (s *TerritoryService) Get(ctx context.Context, id string) (models.Territory, error) {
	return s.repo.GetTerritory(ctx, id)
}

func (s *TerritoryService) List(ctx context.Context) ([]models.Territory, error) {
	return s.repo.ListTerritories(ctx)
}

// Update applies patch; ID and CreatedAt are never touched.
func (s *TerritoryService) Update(ctx context.Context, id string, patch TerritoryPatch) (models.Territory, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Territory{}, fmt.Errorf("%w: %v", models.ErrInvalidTerritory, err)
	}
	return s.repo.UpdateTerritory(ctx, id, func(t *models.Territory) error {
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.Boundaries != nil {
			t.Boundaries = patch.Boundaries
		}
		if patch.Coordinates != nil {
			t.Coordinates = patch.Coordinates
		}
		if patch.Radius != nil {
			t.Radius = patch.Radius
		}
		if patch.Active != nil {
			t.Active = *patch.Active
		}
		s.touch(t, patch.ModifiedBy)
		return nil
	})
}

// Delete leaves rules that reference the territory in place; the engine
// reports them as no_match when they fire.
func (s *TerritoryService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteTerritory(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().Str("territory_id", id).Msg("territory deleted")
	}
	return deleted, nil
}

func (s *TerritoryService) AddTeamMember(ctx context.Context, territoryID string, member models.TeamMemberAssignment, modifiedBy string) (models.Territory, error) {
	if err := s.validate.Struct(member); err != nil {
		return models.Territory{}, fmt.Errorf("%w: %v", models.ErrInvalidTerritory, err)
	}
	if err := checkMember(member); err != nil {
		return models.Territory{}, err
	}
	return s.repo.UpdateTerritory(ctx, territoryID, func(t *models.Territory) error {
		if t.Member(member.UserID) >= 0 {
			return fmt.Errorf("team member %s: %w", member.UserID, models.ErrDuplicate)
		}
		if member.AssignedAt.IsZero() {
			member.AssignedAt = s.now()
		}
		t.TeamMembers = append(t.TeamMembers, member)
		s.touch(t, modifiedBy)
		return nil
	})
}

func (s *TerritoryService) RemoveTeamMember(ctx context.Context, territoryID, userID, modifiedBy string) (models.Territory, error) {
	return s.repo.UpdateTerritory(ctx, territoryID, func(t *models.Territory) error {
		idx := t.Member(userID)
		if idx < 0 {
			return fmt.Errorf("team member %s: %w", userID, models.ErrNotFound)
		}
		t.TeamMembers = append(t.TeamMembers[:idx], t.TeamMembers[idx+1:]...)
		s.touch(t, modifiedBy)
		return nil
	})
}

func (s *TerritoryService) UpdateTeamMember(ctx context.Context, territoryID, userID string, patch MemberPatch) (models.Territory, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Territory{}, fmt.Errorf("%w: %v", models.ErrInvalidTerritory, err)
	}
	return s.repo.UpdateTerritory(ctx, territoryID, func(t *models.Territory) error {
		idx := t.Member(userID)
		if idx < 0 {
			return fmt.Errorf("team member %s: %w", userID, models.ErrNotFound)
		}
		m := t.TeamMembers[idx]
		if patch.UserName != nil {
			m.UserName = *patch.UserName
		}
		if patch.Role != nil {
			m.Role = *patch.Role
		}
		if patch.Specialties != nil {
			m.Specialties = patch.Specialties
		}
		if patch.CurrentClientCount != nil {
			m.CurrentClientCount = *patch.CurrentClientCount
		}
		if patch.MaxCapacity != nil {
			m.MaxCapacity = *patch.MaxCapacity
		}
		if patch.Active != nil {
			m.Active = *patch.Active
		}
		if err := checkMember(m); err != nil {
			return err
		}
		t.TeamMembers[idx] = m
		s.touch(t, patch.ModifiedBy)
		return nil
	})
}

func (s *TerritoryService) touch(t *models.Territory, modifiedBy string) {
	t.UpdatedAt = s.now()
	if modifiedBy != "" {
		t.LastModifiedBy = modifiedBy
	}
}

func checkMember(m models.TeamMemberAssignment) error {
	if m.MaxCapacity <= 0 {
		return fmt.Errorf("%w: member %s max capacity must be positive", models.ErrInvalidTerritory, m.UserID)
	}
	if m.CurrentClientCount < 0 || m.CurrentClientCount > m.MaxCapacity {
		return fmt.Errorf("%w: member %s client count %d outside 0..%d", models.ErrInvalidTerritory, m.UserID, m.CurrentClientCount, m.MaxCapacity)
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
