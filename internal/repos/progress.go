package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/types"
)

type ProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error)
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.Progress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Progress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByAttemptID returns the attempt's progress history oldest first, the
// order the schedule expander consumes it in.
func (r *progressRepo) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Progress
	if attemptID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
