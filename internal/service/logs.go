package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/territory_assign/backend/internal/models"
)

type LogService struct {
	repo         LogRepository
	defaultLimit int
	maxLimit     int
	logger       zerolog.Logger
}

func NewLogService(repo LogRepository, defaultLimit, maxLimit int, logger zerolog.Logger) *LogService {
	return &LogService{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit, logger: logger}
}

// List returns the newest entries first. A non-positive limit means the
// default; anything above the maximum is capped.
func (s *LogService) List(ctx context.Context, limit int) ([]models.AssignmentLog, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.repo.ListLogs(ctx, limit)
}

// Clear wipes the whole log. Administrative only.
func (s *LogService) Clear(ctx context.Context, performedBy string) error {
	if err := s.repo.ClearLogs(ctx); err != nil {
		return err
	}
	s.logger.Warn().Str("performed_by", performedBy).Msg("assignment log cleared")
	return nil
}
