package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DailyTaskLookup resolves a daily task owned by a user
type DailyTaskLookup interface {
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailyTask, error)
}

// ReminderHandler handles reminder requests
type ReminderHandler struct {
	reminders  database.ReminderRepositoryInterface
	dailyTasks DailyTaskLookup
	logger     *zap.Logger
	now        func() time.Time
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminders database.ReminderRepositoryInterface, dailyTasks DailyTaskLookup, logger *zap.Logger) *ReminderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{
		reminders:  reminders,
		dailyTasks: dailyTasks,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRoutes registers reminder routes on the /api/v1 router
func (h *ReminderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/daily-tasks/{id}/reminders", h.CreateReminder).Methods("POST")
	r.HandleFunc("/reminders/due", h.ListDueReminders).Methods("GET")
}

// CreateReminderRequest represents a create reminder request
type CreateReminderRequest struct {
	ReminderType string    `json:"reminder_type" validate:"omitempty,reminder_type"`
	ReminderTime time.Time `json:"reminder_time" validate:"required"`
}

// CreateReminder schedules a reminder for one of the caller's daily tasks
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "daily task")
	if !ok {
		return
	}

	var req CreateReminderRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	if _, err := h.dailyTasks.GetByIDForUser(ctx, id, user.ID); err != nil {
		respondServiceError(w, h.logger, err, "Daily task not found")
		return
	}

	reminder := &models.Reminder{
		ID:           uuid.New(),
		UserID:       user.ID,
		DailyTaskID:  id,
		ReminderType: models.ReminderTypeNotification,
		ReminderTime: req.ReminderTime.UTC(),
	}
	if req.ReminderType != "" {
		reminder.ReminderType = models.ReminderType(req.ReminderType)
	}

	if err := h.reminders.Create(ctx, reminder); err != nil {
		respondServiceError(w, h.logger, err, "Daily task not found")
		return
	}

	respondJSON(w, http.StatusCreated, reminder)
}

// ListDueReminders lists the caller's reminders that should be sent now
func (h *ReminderHandler) ListDueReminders(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	reminders, err := h.reminders.ListDue(r.Context(), h.now(), &user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Reminder not found")
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}

	respondJSON(w, http.StatusOK, reminders)
}
