package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PlannerService is the scheduling core behind the schedule, daily task and progress routes
type PlannerService interface {
	MaterializeToday(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error)
	ListSchedules(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error)
	GetSchedule(ctx context.Context, userID, scheduleID uuid.UUID) (*models.DailySchedule, error)
	UpdateDailyTask(ctx context.Context, userID, dailyTaskID uuid.UUID, patch planner.DailyTaskPatch) (*models.DailyTask, error)
	EnsureStreak(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error)
	Stats(ctx context.Context, userID uuid.UUID) (*planner.ProgressReport, error)
}

var _ PlannerService = (*planner.Service)(nil)

// PlannerHandler serves schedules, daily tasks and progress
type PlannerHandler struct {
	planner PlannerService
	logger  *zap.Logger
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(svc PlannerService, logger *zap.Logger) *PlannerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerHandler{planner: svc, logger: logger}
}

// RegisterRoutes registers schedule, daily task and progress routes on the /api/v1 router
func (h *PlannerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/schedules", h.ListSchedules).Methods("GET")
	r.HandleFunc("/schedules", h.CreateTodaySchedule).Methods("POST")
	r.HandleFunc("/schedules/today", h.GetTodaySchedule).Methods("GET")
	r.HandleFunc("/schedules/{id}", h.GetSchedule).Methods("GET")
	r.HandleFunc("/daily-tasks/{id}", h.UpdateDailyTask).Methods("PATCH")
	r.HandleFunc("/progress/streak", h.GetStreak).Methods("GET")
	r.HandleFunc("/progress/stats", h.GetStats).Methods("GET")
}

// UpdateDailyTaskRequest represents a partial daily task update
type UpdateDailyTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Category    *string `json:"category,omitempty"`
	StartTime   *string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime     *string `json:"end_time,omitempty" validate:"omitempty,clock"`
	Priority    *string `json:"priority,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

func (req UpdateDailyTaskRequest) patch(w http.ResponseWriter) (planner.DailyTaskPatch, bool) {
	var p planner.DailyTaskPatch
	p.Title = req.Title
	p.IsCompleted = req.IsCompleted
	if req.Category != nil {
		c := models.CategoryName(*req.Category)
		p.Category = &c
	}
	if req.Priority != nil {
		pr := models.Priority(*req.Priority)
		p.Priority = &pr
	}
	if req.StartTime != nil {
		t, ok := parseClock(w, "start_time", *req.StartTime)
		if !ok {
			return p, false
		}
		p.StartTime = &t
	}
	if req.EndTime != nil {
		t, ok := parseClock(w, "end_time", *req.EndTime)
		if !ok {
			return p, false
		}
		p.EndTime = &t
	}
	return p, true
}

// GetTodaySchedule returns today's schedule, materializing it first
func (h *PlannerHandler) GetTodaySchedule(w http.ResponseWriter, r *http.Request) {
	h.respondTodaySchedule(w, r, http.StatusOK)
}

// CreateTodaySchedule materializes today's schedule. Repeating it returns the same schedule.
func (h *PlannerHandler) CreateTodaySchedule(w http.ResponseWriter, r *http.Request) {
	h.respondTodaySchedule(w, r, http.StatusCreated)
}

func (h *PlannerHandler) respondTodaySchedule(w http.ResponseWriter, r *http.Request, status int) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	schedule, err := h.planner.MaterializeToday(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Schedule not found")
		return
	}

	respondJSON(w, status, newScheduleView(schedule))
}

// ListSchedules lists the caller's schedules newest first
func (h *PlannerHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	schedules, err := h.planner.ListSchedules(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Schedule not found")
		return
	}

	views := make([]ScheduleView, 0, len(schedules))
	for _, s := range schedules {
		views = append(views, newScheduleView(s))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetSchedule returns one of the caller's schedules
func (h *PlannerHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}

	schedule, err := h.planner.GetSchedule(r.Context(), user.ID, id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Schedule not found")
		return
	}

	respondJSON(w, http.StatusOK, newScheduleView(schedule))
}

// UpdateDailyTask patches one of the caller's daily tasks
func (h *PlannerHandler) UpdateDailyTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "daily task")
	if !ok {
		return
	}

	var req UpdateDailyTaskRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	patch, ok := req.patch(w)
	if !ok {
		return
	}

	dt, err := h.planner.UpdateDailyTask(r.Context(), user.ID, id, patch)
	if err != nil {
		respondServiceError(w, h.logger, err, "Daily task not found")
		return
	}

	respondJSON(w, http.StatusOK, newDailyTaskView(dt))
}

// GetStreak returns the caller's streak, creating it on first access
func (h *PlannerHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	streak, err := h.planner.EnsureStreak(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Streak not found")
		return
	}

	respondJSON(w, http.StatusOK, newStreakView(streak))
}

// GetStats returns today's progress, the streak and the weekly average
func (h *PlannerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	report, err := h.planner.Stats(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Progress not found")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
