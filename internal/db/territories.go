package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/territory_assign/backend/internal/models"
)

func (s *Store) CreateTerritory(ctx context.Context, t models.Territory) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	query, args, err := s.sb.
		Insert("territories").
		Columns("id", "doc", "active", "created_at", "updated_at").
		Values(t.ID, doc, t.Active, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return mapError(err, "territory "+t.ID)
}

func (s *Store) GetTerritory(ctx context.Context, id string) (models.Territory, error) {
	return s.selectTerritory(ctx, s.pool, id, false)
}

func (s *Store) ListTerritories(ctx context.Context) ([]models.Territory, error) {
	query, args, err := s.sb.Select("doc").From("territories").OrderBy("seq").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Territory{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t models.Territory
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTerritory(ctx context.Context, id string, mutate func(*models.Territory) error) (models.Territory, error) {
	var out models.Territory
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.selectTerritory(ctx, tx, id, true)
		if err != nil {
			return err
		}
		createdAt := t.CreatedAt
		if err := mutate(&t); err != nil {
			return err
		}
		t.ID, t.CreatedAt = id, createdAt
		out = t
		return s.writeTerritory(ctx, tx, t)
	})
	if err != nil {
		return models.Territory{}, err
	}
	return out, nil
}

func (s *Store) DeleteTerritory(ctx context.Context, id string) (bool, error) {
	query, args, err := s.sb.Delete("territories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CommitAssignment locks the territory row for the capacity re-check, the
// increment and the log insert.
func (s *Store) CommitAssignment(ctx context.Context, territoryID, userID string, entry models.AssignmentLog) (models.Territory, error) {
	var out models.Territory
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.selectTerritory(ctx, tx, territoryID, true)
		if err != nil {
			return err
		}
		mi := t.Member(userID)
		if !t.Active || mi < 0 || !t.TeamMembers[mi].Active {
			return fmt.Errorf("member %s in %s: %w", userID, territoryID, models.ErrMemberUnavailable)
		}
		if !t.TeamMembers[mi].HasCapacity() {
			return fmt.Errorf("member %s: %w", userID, models.ErrCapacityExceeded)
		}
		t.TeamMembers[mi].CurrentClientCount++
		t.UpdatedAt = entry.Timestamp
		if err := s.writeTerritory(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return s.insertLog(ctx, tx, entry)
	})
	if err != nil {
		return models.Territory{}, err
	}
	return out, nil
}

func (s *Store) selectTerritory(ctx context.Context, q querier, id string, lock bool) (models.Territory, error) {
	b := s.sb.Select("doc").From("territories").Where(squirrel.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return models.Territory{}, err
	}
	var doc []byte
	if err := q.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		return models.Territory{}, mapError(err, "territory "+id)
	}
	var t models.Territory
	if err := json.Unmarshal(doc, &t); err != nil {
		return models.Territory{}, fmt.Errorf("decode territory %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) writeTerritory(ctx context.Context, q querier, t models.Territory) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	query, args, err := s.sb.
		Update("territories").
		Set("doc", doc).
		Set("active", t.Active).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, query, args...)
	return err
}
