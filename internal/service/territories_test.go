package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/territory_assign/backend/internal/models"
)

func TestTerritoryCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.territories.Create(ctx, TerritoryInput{Name: "", Type: models.TerritoryCustom})
	require.ErrorIs(t, err, models.ErrInvalidTerritory)

	_, err = f.territories.Create(ctx, TerritoryInput{Name: "x", Type: "planet"})
	require.ErrorIs(t, err, models.ErrInvalidTerritory)

	_, err = f.territories.Create(ctx, TerritoryInput{
		Name:        "x",
		Type:        models.TerritoryCustom,
		TeamMembers: []models.TeamMemberAssignment{member("A", 6, 5)},
	})
	require.ErrorIs(t, err, models.ErrInvalidTerritory)

	_, err = f.territories.Create(ctx, TerritoryInput{
		Name:        "x",
		Type:        models.TerritoryCustom,
		TeamMembers: []models.TeamMemberAssignment{member("A", 0, 5), member("A", 1, 5)},
	})
	require.ErrorIs(t, err, models.ErrDuplicate)
}

func TestTerritoryCreateDefaults(t *testing.T) {
	f := newFixture(t)
	terr := f.territory(t, "T", member("A", 0, 5))
	require.NotEmpty(t, terr.ID)
	require.True(t, terr.Active)
	require.False(t, terr.TeamMembers[0].AssignedAt.IsZero())
	require.Equal(t, terr.CreatedAt, terr.UpdatedAt)
}

func TestTerritoryUpdateKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	terr := f.territory(t, "Old")

	name := "New"
	updated, err := f.territories.Update(ctx, terr.ID, TerritoryPatch{Name: &name, ModifiedBy: "ops"})
	require.NoError(t, err)
	require.Equal(t, terr.ID, updated.ID)
	require.Equal(t, terr.CreatedAt, updated.CreatedAt)
	require.Equal(t, "New", updated.Name)
	require.Equal(t, "ops", updated.LastModifiedBy)

	_, err = f.territories.Update(ctx, "missing", TerritoryPatch{Name: &name})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestTerritoryRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	terr := f.territory(t, "T", member("A", 0, 5))

	updated, err := f.territories.AddTeamMember(ctx, terr.ID, member("B", 0, 3), "ops")
	require.NoError(t, err)
	require.Len(t, updated.TeamMembers, 2)
	require.Equal(t, "ops", updated.LastModifiedBy)

	_, err = f.territories.AddTeamMember(ctx, terr.ID, member("B", 0, 3), "ops")
	require.ErrorIs(t, err, models.ErrDuplicate)

	_, err = f.territories.AddTeamMember(ctx, "missing", member("C", 0, 3), "ops")
	require.ErrorIs(t, err, models.ErrNotFound)

	capacity := 2
	_, err = f.territories.UpdateTeamMember(ctx, terr.ID, "B", MemberPatch{MaxCapacity: &capacity})
	require.NoError(t, err)

	count := 3
	_, err = f.territories.UpdateTeamMember(ctx, terr.ID, "B", MemberPatch{CurrentClientCount: &count})
	require.ErrorIs(t, err, models.ErrInvalidTerritory)

	_, err = f.territories.UpdateTeamMember(ctx, terr.ID, "ghost", MemberPatch{MaxCapacity: &capacity})
	require.ErrorIs(t, err, models.ErrNotFound)

	updated, err = f.territories.RemoveTeamMember(ctx, terr.ID, "A", "ops")
	require.NoError(t, err)
	require.Len(t, updated.TeamMembers, 1)
	require.Equal(t, "B", updated.TeamMembers[0].UserID)
	require.Equal(t, 2, updated.TeamMembers[0].MaxCapacity)

	_, err = f.territories.RemoveTeamMember(ctx, terr.ID, "A", "ops")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestTerritoryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	terr := f.territory(t, "T")

	deleted, err := f.territories.Delete(ctx, terr.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = f.territories.Get(ctx, terr.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	deleted, err = f.territories.Delete(ctx, terr.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}
