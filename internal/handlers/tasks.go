package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// MaxTaskTitleLength is the maximum length for task titles
	MaxTaskTitleLength = 200
	// MaxTaskDescriptionLength is the maximum length for task descriptions
	MaxTaskDescriptionLength = 10000
)

// TaskHandler handles task definition requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
	jobQueue queue.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// TaskHandlerOption configures a TaskHandler
type TaskHandlerOption func(*TaskHandler)

// WithTaskJobQueue publishes a materialize_schedule job whenever a recurring task is saved
func WithTaskJobQueue(q queue.Publisher) TaskHandlerOption {
	return func(h *TaskHandler) {
		h.jobQueue = q
	}
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface, logger *zap.Logger, opts ...TaskHandlerOption) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &TaskHandler{
		taskRepo: taskRepo,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers task routes on a router already carrying the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/today", h.ListTodayTasks).Methods("GET")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title             string `json:"title" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=10000"`
	Category          string `json:"category" validate:"required,category_name"`
	Date              string `json:"date" validate:"required,plandate"`
	StartTime         string `json:"start_time" validate:"required,clock"`
	EndTime           string `json:"end_time" validate:"required,clock"`
	Priority          string `json:"priority" validate:"omitempty,priority"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrencePattern string `json:"recurrence_pattern" validate:"omitempty,recurrence_pattern"`
	IsCompleted       bool   `json:"is_completed"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title             *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description       *string `json:"description,omitempty" validate:"omitempty,max=10000"`
	Category          *string `json:"category,omitempty" validate:"omitempty,category_name"`
	Date              *string `json:"date,omitempty" validate:"omitempty,plandate"`
	StartTime         *string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime           *string `json:"end_time,omitempty" validate:"omitempty,clock"`
	Priority          *string `json:"priority,omitempty" validate:"omitempty,priority"`
	IsRecurring       *bool   `json:"is_recurring,omitempty"`
	RecurrencePattern *string `json:"recurrence_pattern,omitempty" validate:"omitempty,recurrence_pattern"`
	IsCompleted       *bool   `json:"is_completed,omitempty"`
}

// ListTasks lists the caller's tasks with optional filters and ordering
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	tasks, err := h.taskRepo.List(r.Context(), user.ID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, newTaskViews(tasks))
}

// ListTodayTasks lists the caller's tasks dated today
func (h *TaskHandler) ListTodayTasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	today := models.DateOf(h.now())
	tasks, err := h.taskRepo.List(r.Context(), user.ID, database.TaskFilter{Date: &today})
	if err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, newTaskViews(tasks))
}

// CreateTask creates a task definition
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	title := validation.SanitizeText(req.Title)
	if title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	// Date format was checked by the validator
	date, _ := models.ParseDate(req.Date)
	start, ok := parseClock(w, "start_time", req.StartTime)
	if !ok {
		return
	}
	end, ok := parseClock(w, "end_time", req.EndTime)
	if !ok {
		return
	}

	task := &models.Task{
		ID:                uuid.New(),
		UserID:            user.ID,
		Category:          models.CategoryName(req.Category),
		Title:             title,
		Description:       validation.SanitizeText(req.Description),
		Date:              date,
		StartTime:         start,
		EndTime:           end,
		Priority:          models.PriorityMedium,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: models.RecurrenceNone,
		IsCompleted:       req.IsCompleted,
	}
	if req.Priority != "" {
		task.Priority = models.Priority(req.Priority)
	}
	if req.RecurrencePattern != "" {
		task.RecurrencePattern = models.RecurrencePattern(req.RecurrencePattern)
	}

	ctx := r.Context()
	if err := h.taskRepo.Create(ctx, task); err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	h.enqueueMaterialization(ctx, task)
	respondJSON(w, http.StatusCreated, newTaskView(task))
}

// GetTask retrieves one of the caller's tasks
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByIDForUser(r.Context(), id, user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, newTaskView(task))
}

// UpdateTask applies a partial update to one of the caller's tasks
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByIDForUser(ctx, id, user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = validation.SanitizeText(*req.Description)
	}
	if req.Category != nil {
		task.Category = models.CategoryName(*req.Category)
	}
	if req.Date != nil {
		task.Date, _ = models.ParseDate(*req.Date)
	}
	if req.StartTime != nil {
		if task.StartTime, ok = parseClock(w, "start_time", *req.StartTime); !ok {
			return
		}
	}
	if req.EndTime != nil {
		if task.EndTime, ok = parseClock(w, "end_time", *req.EndTime); !ok {
			return
		}
	}
	if req.Priority != nil {
		task.Priority = models.Priority(*req.Priority)
	}
	if req.IsRecurring != nil {
		task.IsRecurring = *req.IsRecurring
	}
	if req.RecurrencePattern != nil {
		task.RecurrencePattern = models.RecurrencePattern(*req.RecurrencePattern)
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	if err := h.taskRepo.Update(ctx, task); err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	h.enqueueMaterialization(ctx, task)
	respondJSON(w, http.StatusOK, newTaskView(task))
}

// DeleteTask deletes one of the caller's tasks. Daily tasks already materialized from it are kept.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(r.Context(), id, user.ID); err != nil {
		respondServiceError(w, h.logger, err, "Task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// enqueueMaterialization asks the worker to fold a recurring task into today's schedule.
// Failures are logged only; the next read of today's schedule materializes it anyway.
func (h *TaskHandler) enqueueMaterialization(ctx context.Context, task *models.Task) {
	if h.jobQueue == nil || !task.IsRecurring {
		return
	}

	job := queue.NewMaterializeScheduleJob(task.UserID, models.DateOf(h.now()))
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		h.logger.Error("failed_to_enqueue_materialize_job",
			zap.String("user_id", task.UserID.String()),
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		return
	}
	h.logger.Debug("enqueued_materialize_job",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", task.UserID.String()),
	)
}

// parseTaskFilter reads the list filters from the query string
func parseTaskFilter(r *http.Request) (database.TaskFilter, error) {
	q := r.URL.Query()
	var filter database.TaskFilter

	if v := q.Get("category"); v != "" {
		if err := validation.ValidateCategoryName(v); err != nil {
			return filter, err
		}
		c := models.CategoryName(v)
		filter.Category = &c
	}
	if v := q.Get("priority"); v != "" {
		if err := validation.ValidatePriority(v); err != nil {
			return filter, err
		}
		p := models.Priority(v)
		filter.Priority = &p
	}
	if v := q.Get("is_completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &validation.ValidationError{Field: "is_completed", Invariant: "must be a boolean"}
		}
		filter.IsCompleted = &b
	}

	for _, f := range []struct {
		key string
		dst **time.Time
	}{
		{"date", &filter.Date},
		{"date_from", &filter.DateFrom},
		{"date_to", &filter.DateTo},
	} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, err
		}
		*f.dst = &d
	}

	if v := q.Get("ordering"); v != "" {
		for _, field := range strings.Split(v, ",") {
			if field = strings.TrimSpace(field); field != "" {
				filter.Ordering = append(filter.Ordering, field)
			}
		}
	}

	return filter, nil
}
