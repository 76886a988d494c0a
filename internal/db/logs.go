package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/territory_assign/backend/internal/models"
)

func (s *Store) AppendLog(ctx context.Context, entry models.AssignmentLog) error {
	return s.insertLog(ctx, s.pool, entry)
}

func (s *Store) ListLogs(ctx context.Context, limit int) ([]models.AssignmentLog, error) {
	b := s.sb.Select("doc").From("assignment_logs").OrderBy("seq DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AssignmentLog{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var entry models.AssignmentLog
		if err := json.Unmarshal(doc, &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) ClearLogs(ctx context.Context) error {
	query, args, err := s.sb.Delete("assignment_logs").ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return err
}

// LastAssignmentAt only considers successful assignments into the territory.
func (s *Store) LastAssignmentAt(ctx context.Context, territoryID string) (*time.Time, error) {
	query, args, err := s.sb.
		Select("MAX(created_at)").
		From("assignment_logs").
		Where(squirrel.Eq{"territory_id": territoryID, "success": true}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var last *time.Time
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&last); err != nil {
		return nil, err
	}
	return last, nil
}

func (s *Store) insertLog(ctx context.Context, q querier, entry models.AssignmentLog) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	var territoryID *string
	if id := entry.TerritoryID(); id != "" {
		territoryID = &id
	}
	query, args, err := s.sb.
		Insert("assignment_logs").
		Columns("id", "client_id", "territory_id", "success", "doc", "created_at").
		Values(entry.ID, entry.ClientID, territoryID, entry.Success, doc, entry.Timestamp).
		ToSql()
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, query, args...)
	return mapError(err, "assignment log "+entry.ID)
}
