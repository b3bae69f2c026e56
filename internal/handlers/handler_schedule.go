package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// scheduleHandler handles HTTP requests related to scheduled transfers and their runs.
type scheduleHandler struct {
	scheduleService portssvc.ScheduleSvcFacade
	runLogService   portssvc.RunLogSvcFacade
}

func newScheduleHandler(ss portssvc.ScheduleSvcFacade, rs portssvc.RunLogSvcFacade) *scheduleHandler {
	return &scheduleHandler{scheduleService: ss, runLogService: rs}
}

// registerScheduleRoutes registers routes related to schedules.
func registerScheduleRoutes(rg *gin.RouterGroup, scheduleService portssvc.ScheduleSvcFacade, runLogService portssvc.RunLogSvcFacade) {
	h := newScheduleHandler(scheduleService, runLogService)

	schedules := rg.Group("/schedules")
	{
		schedules.POST("", h.createSchedule)
		schedules.GET("", h.listSchedules)
		schedules.GET("/:id", h.getSchedule)
		schedules.PUT("/:id", h.updateSchedule)
		schedules.POST("/:id/pause", h.pauseSchedule)
		schedules.POST("/:id/resume", h.resumeSchedule)
		schedules.POST("/:id/cancel", h.cancelSchedule)
		schedules.POST("/:id/run", h.runNow)
		schedules.GET("/:id/runs", h.listRuns)
		schedules.GET("/:id/failures", h.listFailures)
	}

	rg.GET("/accounts/:accountNumber/schedules", h.listSchedulesByAccount)
}

func parseScheduleID(c *gin.Context, logger *slog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("Invalid schedule id", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule id"})
		return 0, false
	}
	return id, true
}

// createSchedule godoc
// @Summary Create a scheduled transfer
// @Description Registers a recurring transfer from an owned account. CUSTOM frequency takes a
// @Description recurrence rule such as FREQ=WEEKLY;BYDAY=MO,FR
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   schedule body dto.CreateScheduleRequest true "Schedule details"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Account not owned by the caller"
// @Failure 409 {object} map[string]string "A live schedule already exists for the account pair"
// @Security BearerAuth
// @Router /schedules [post]
func (h *scheduleHandler) createSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSchedule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create schedule",
		slog.String("from_account", req.FromAccountNumber),
		slog.String("frequency", string(req.Frequency)))

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create schedule")
		return
	}

	logger.Info("Schedule created", slog.Int64("schedule_id", schedule.ScheduleID))
	c.JSON(http.StatusCreated, dto.ToScheduleResponse(schedule))
}

// listSchedules godoc
// @Summary List my schedules
// @Tags schedules
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListSchedulesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /schedules [get]
func (h *scheduleHandler) listSchedules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	var params dto.ListSchedulesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListSchedules", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list schedules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListScheduleResponse(schedules))
}

// listSchedulesByAccount godoc
// @Summary List schedules paying out of an account
// @Tags schedules
// @Produce  json
// @Param   accountNumber path string true "Source account number"
// @Success 200 {object} dto.ListSchedulesResponse
// @Failure 403 {object} map[string]string "Account not owned by the caller"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/schedules [get]
func (h *scheduleHandler) listSchedulesByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	accountNumber := c.Param("accountNumber")
	schedules, err := h.scheduleService.ListSchedulesByAccount(c.Request.Context(), userID, accountNumber)
	if err != nil {
		respondError(c, logger.With(slog.String("account", accountNumber)), err, "Failed to list schedules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListScheduleResponse(schedules))
}

// getSchedule godoc
// @Summary Get a schedule
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 403 {object} map[string]string "Schedule not owned by the caller"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Security BearerAuth
// @Router /schedules/{id} [get]
func (h *scheduleHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, logger.With(slog.Int64("schedule_id", id)), err, "Failed to retrieve schedule")
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// updateSchedule godoc
// @Summary Update a schedule
// @Description Changes amount, cadence, dates or memo and re-plans the next run
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Param   schedule body dto.UpdateScheduleRequest true "Fields to update"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Schedule not owned by the caller"
// @Failure 409 {object} map[string]string "Schedule already finished"
// @Security BearerAuth
// @Router /schedules/{id} [put]
func (h *scheduleHandler) updateSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSchedule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, logger.With(slog.Int64("schedule_id", id)), err, "Failed to update schedule")
		return
	}
	logger.Info("Schedule updated", slog.Int64("schedule_id", id))
	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

type scheduleTransition func(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error)

// transition runs one lifecycle change and renders the resulting schedule.
func (h *scheduleHandler) transition(c *gin.Context, action string, fn scheduleTransition) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.Int64("schedule_id", id), slog.String("action", action))

	schedule, err := fn(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, logger, err, "Failed to "+action+" schedule")
		return
	}
	logger.Info("Schedule status changed", slog.String("status", string(schedule.Status)))
	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// pauseSchedule godoc
// @Summary Pause a schedule
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 409 {object} map[string]string "Schedule is not ACTIVE"
// @Security BearerAuth
// @Router /schedules/{id}/pause [post]
func (h *scheduleHandler) pauseSchedule(c *gin.Context) {
	h.transition(c, "pause", h.scheduleService.PauseSchedule)
}

// resumeSchedule godoc
// @Summary Resume a paused schedule
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 409 {object} map[string]string "Schedule is not PAUSED or the pair already has a live schedule"
// @Security BearerAuth
// @Router /schedules/{id}/resume [post]
func (h *scheduleHandler) resumeSchedule(c *gin.Context) {
	h.transition(c, "resume", h.scheduleService.ResumeSchedule)
}

// cancelSchedule godoc
// @Summary Cancel a schedule
// @Description Canceling a canceled schedule is a no-op
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 409 {object} map[string]string "Schedule already completed"
// @Security BearerAuth
// @Router /schedules/{id}/cancel [post]
func (h *scheduleHandler) cancelSchedule(c *gin.Context) {
	h.transition(c, "cancel", h.scheduleService.CancelSchedule)
}

// runNow godoc
// @Summary Run a schedule now
// @Description Executes an ACTIVE schedule immediately and returns the run it recorded
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {object} dto.RunResponse
// @Failure 403 {object} map[string]string "Schedule not owned by the caller"
// @Failure 409 {object} map[string]string "Schedule is not ACTIVE"
// @Security BearerAuth
// @Router /schedules/{id}/run [post]
func (h *scheduleHandler) runNow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.Int64("schedule_id", id))

	run, err := h.scheduleService.RunNow(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, logger, err, "Failed to run schedule")
		return
	}
	logger.Info("Schedule run on demand", slog.String("result", string(run.Result)))
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// listRuns godoc
// @Summary List the runs of a schedule
// @Description Newest first. Pass nextToken from the previous page to continue.
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Param   result query string false "Filter by result"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListRunsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters or token"
// @Failure 403 {object} map[string]string "Schedule not owned by the caller"
// @Security BearerAuth
// @Router /schedules/{id}/runs [get]
func (h *scheduleHandler) listRuns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}

	var params dto.ListRunsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListRuns", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.runLogService.ListRuns(c.Request.Context(), userID, id, params)
	if err != nil {
		respondError(c, logger.With(slog.Int64("schedule_id", id)), err, "Failed to list runs")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listFailures godoc
// @Summary List the failed runs of a schedule
// @Tags schedules
// @Produce  json
// @Param   id path int true "Schedule ID"
// @Success 200 {array} dto.RunResponse
// @Failure 403 {object} map[string]string "Schedule not owned by the caller"
// @Security BearerAuth
// @Router /schedules/{id}/failures [get]
func (h *scheduleHandler) listFailures(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}
	id, ok := parseScheduleID(c, logger)
	if !ok {
		return
	}

	runs, err := h.runLogService.ListFailures(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, logger.With(slog.Int64("schedule_id", id)), err, "Failed to list failed runs")
		return
	}
	c.JSON(http.StatusOK, dto.ToRunResponses(runs))
}
