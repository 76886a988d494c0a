package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/territory_assign/backend/internal/models"
)

func (s *Store) CreateRule(ctx context.Context, r models.AssignmentRule) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	query, args, err := s.sb.
		Insert("assignment_rules").
		Columns("id", "doc", "priority", "active", "created_at", "updated_at").
		Values(r.ID, doc, r.Priority, r.Active, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return mapError(err, "rule "+r.ID)
}

func (s *Store) GetRule(ctx context.Context, id string) (models.AssignmentRule, error) {
	return s.selectRule(ctx, s.pool, id, false)
}

func (s *Store) ListRules(ctx context.Context) ([]models.AssignmentRule, error) {
	query, args, err := s.sb.Select("doc").From("assignment_rules").OrderBy("seq").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AssignmentRule{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r models.AssignmentRule
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRule(ctx context.Context, id string, mutate func(*models.AssignmentRule) error) (models.AssignmentRule, error) {
	var out models.AssignmentRule
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		r, err := s.selectRule(ctx, tx, id, true)
		if err != nil {
			return err
		}
		createdAt := r.CreatedAt
		if err := mutate(&r); err != nil {
			return err
		}
		r.ID, r.CreatedAt = id, createdAt

		doc, err := json.Marshal(r)
		if err != nil {
			return err
		}
		query, args, err := s.sb.
			Update("assignment_rules").
			Set("doc", doc).
			Set("priority", r.Priority).
			Set("active", r.Active).
			Set("updated_at", r.UpdatedAt).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return models.AssignmentRule{}, err
	}
	return out, nil
}

func (s *Store) DeleteRule(ctx context.Context, id string) (bool, error) {
	query, args, err := s.sb.Delete("assignment_rules").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) selectRule(ctx context.Context, q querier, id string, lock bool) (models.AssignmentRule, error) {
	b := s.sb.Select("doc").From("assignment_rules").Where(squirrel.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return models.AssignmentRule{}, err
	}
	var doc []byte
	if err := q.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		return models.AssignmentRule{}, mapError(err, "rule "+id)
	}
	var r models.AssignmentRule
	if err := json.Unmarshal(doc, &r); err != nil {
		return models.AssignmentRule{}, fmt.Errorf("decode rule %s: %w", id, err)
	}
	return r, nil
}
