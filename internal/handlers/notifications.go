package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/services"
	"github.com/mocworks/curricula-backend/internal/types"
)

type NotificationHandler struct {
	log                 *logger.Logger
	notificationService services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		log:                 log.With("handler", "NotificationHandler"),
		notificationService: notificationService,
	}
}

// RunSweep triggers a reminder sweep across all published manifests.
func (h *NotificationHandler) RunSweep(c *gin.Context) {
	params := types.TestParams{
		TodayDate: c.Query("test_today_date"),
		Lang:      c.Query("test_lang"),
	}

	res, err := h.notificationService.RunSweep(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidTestDate) {
			RespondError(c, http.StatusBadRequest, "invalid_test_today_date", err)
			return
		}
		h.log.Error("RunSweep failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "sweep_failed", err)
		return
	}
	RespondOK(c, res)
}

// RunForAttempt triggers reminder selection and delivery for one attempt.
func (h *NotificationHandler) RunForAttempt(c *gin.Context) {
	attemptID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_attempt_id", err)
		return
	}
	params := types.TestParams{
		TodayDate: c.Query("test_today_date"),
		Lang:      c.Query("test_lang"),
	}

	res, err := h.notificationService.RunForAttempt(c.Request.Context(), attemptID, params)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrAttemptNotFound):
			RespondError(c, http.StatusNotFound, "attempt_not_found", err)
		case errors.Is(err, scheduler.ErrInvalidTestDate):
			RespondError(c, http.StatusBadRequest, "invalid_test_today_date", err)
		default:
			h.log.Error("RunForAttempt failed", "attempt_id", attemptID.String(), "error", err)
			RespondError(c, http.StatusInternalServerError, "notify_failed", err)
		}
		return
	}
	RespondOK(c, res)
}
