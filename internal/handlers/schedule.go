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

type ScheduleHandler struct {
	log             *logger.Logger
	scheduleService services.ScheduleService
}

func NewScheduleHandler(log *logger.Logger, scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		log:             log.With("handler", "ScheduleHandler"),
		scheduleService: scheduleService,
	}
}

// GetSchedule computes the schedule for one attempt. Query params:
// format (json), test_today_date, test_lang, test_manifest.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	attemptID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_attempt_id", err)
		return
	}

	opts := services.ScheduleOptions{
		Format: c.Query("format"),
		TestParams: types.TestParams{
			TodayDate: c.Query("test_today_date"),
			Lang:      c.Query("test_lang"),
			Manifest:  c.Query("test_manifest"),
		},
	}

	cm, err := h.scheduleService.GetSchedule(c.Request.Context(), attemptID, opts)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrAttemptNotFound):
			RespondError(c, http.StatusNotFound, "attempt_not_found", err)
		case errors.Is(err, scheduler.ErrInvalidTestDate):
			RespondError(c, http.StatusBadRequest, "invalid_test_today_date", err)
		default:
			h.log.Error("GetSchedule failed", "attempt_id", attemptID.String(), "error", err)
			RespondError(c, http.StatusInternalServerError, "schedule_failed", err)
		}
		return
	}
	RespondOK(c, cm)
}
