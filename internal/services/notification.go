package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/notify"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/types"
)

// NotificationService runs reminder sweeps: all published manifests at
// once, or a single attempt on demand.
type NotificationService interface {
	RunSweep(ctx context.Context, params types.TestParams) (*notify.Result, error)
	RunForAttempt(ctx context.Context, attemptID uuid.UUID, params types.TestParams) (*notify.Result, error)
}

type notificationService struct {
	log      *logger.Logger
	attempts repos.AttemptRepo
	sweeper  *notify.Sweeper
}

func NewNotificationService(log *logger.Logger, attempts repos.AttemptRepo, sweeper *notify.Sweeper) NotificationService {
	return &notificationService{
		log:      log.With("service", "NotificationService"),
		attempts: attempts,
		sweeper:  sweeper,
	}
}

func (s *notificationService) RunSweep(ctx context.Context, params types.TestParams) (*notify.Result, error) {
	res, err := s.sweeper.Run(ctx, params)
	if err != nil {
		return res, err
	}
	s.log.Info("Notification sweep finished",
		"manifests", res.ManifestsSwept,
		"attempts", res.AttemptsProcessed,
		"attempt_errors", len(res.AttemptErrors),
		"emails_sent", res.EmailsSent,
		"send_errors", len(res.SendErrors),
	)
	return res, nil
}

func (s *notificationService) RunForAttempt(ctx context.Context, attemptID uuid.UUID, params types.TestParams) (*notify.Result, error) {
	attempt, err := s.attempts.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("load attempt %s: %w", attemptID, err)
	}
	if attempt == nil {
		return nil, scheduler.ErrAttemptNotFound
	}
	return s.sweeper.RunForAttempt(ctx, attempt, params)
}
