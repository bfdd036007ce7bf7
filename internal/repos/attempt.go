package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/types"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Attempt) ([]*types.Attempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attempt, error)
	GetNotifiableByManifestID(ctx context.Context, tx *gorm.DB, manifestID string) ([]*types.Attempt, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "AttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Attempt) ([]*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Attempt{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.Attempt
	err := transaction.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetNotifiableByManifestID returns the active attempts on a manifest whose
// learner has a validated email and a nonzero notification bitmask. These
// are the attempts a notification sweep visits.
func (r *attemptRepo) GetNotifiableByManifestID(ctx context.Context, tx *gorm.DB, manifestID string) ([]*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attempt
	if manifestID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Joins(`JOIN "user" u ON u.id = attempt.user_id`).
		Where("attempt.manifest_id = ?", manifestID).
		Where("attempt.active = ?", true).
		Where("u.active = ?", true).
		Where("u.notifications <> 0").
		Where("u.validation_code IS NULL").
		Preload("User").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
