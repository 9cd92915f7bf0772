package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func TestReminderHandler_CreateReminder(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	owned := uuid.New()
	lookup := &mockDailyTaskLookup{getByIDForUserFunc: func(_ context.Context, id, userID uuid.UUID) (*models.DailyTask, error) {
		if id == owned && userID == user.ID {
			return &models.DailyTask{ID: id}, nil
		}
		return nil, database.ErrNotFound
	}}

	tests := []struct {
		name       string
		dailyTask  uuid.UUID
		body       string
		wantStatus int
		wantType   models.ReminderType
	}{
		{name: "default type", dailyTask: owned, body: `{"reminder_time":"2024-04-02T08:45:00Z"}`, wantStatus: http.StatusCreated, wantType: models.ReminderTypeNotification},
		{name: "email", dailyTask: owned, body: `{"reminder_type":"email","reminder_time":"2024-04-02T08:45:00+02:00"}`, wantStatus: http.StatusCreated, wantType: models.ReminderTypeEmail},
		{name: "unknown type", dailyTask: owned, body: `{"reminder_type":"sms","reminder_time":"2024-04-02T08:45:00Z"}`, wantStatus: http.StatusBadRequest},
		{name: "missing time", dailyTask: owned, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "foreign daily task", dailyTask: uuid.New(), body: `{"reminder_time":"2024-04-02T08:45:00Z"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var created *models.Reminder
			repo := &mockReminderRepo{createFunc: func(_ context.Context, r *models.Reminder) error {
				created = r
				return nil
			}}
			h := NewReminderHandler(repo, lookup, nil)
			router := mux.NewRouter()
			h.RegisterRoutes(router)

			req := withUser(httptest.NewRequest("POST", "/daily-tasks/"+tt.dailyTask.String()+"/reminders", strings.NewReader(tt.body)), user)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if created != nil {
					t.Error("Expected nothing to be persisted")
				}
				return
			}
			if created.ReminderType != tt.wantType || created.DailyTaskID != owned || created.UserID != user.ID {
				t.Errorf("Unexpected reminder %+v", created)
			}
			if created.ReminderTime.Location() != time.UTC {
				t.Errorf("Expected reminder time stored in UTC, got %v", created.ReminderTime)
			}
		})
	}
}

func TestReminderHandler_ListDueReminders(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	now := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

	var gotUser *uuid.UUID
	var gotNow time.Time
	repo := &mockReminderRepo{listDueFunc: func(_ context.Context, at time.Time, userID *uuid.UUID) ([]*models.Reminder, error) {
		gotNow, gotUser = at, userID
		return nil, nil
	}}
	h := NewReminderHandler(repo, &mockDailyTaskLookup{}, nil)
	h.now = func() time.Time { return now }
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withUser(httptest.NewRequest("GET", "/reminders/due", nil), user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotUser == nil || *gotUser != user.ID || !gotNow.Equal(now) {
		t.Errorf("ListDue called with user %v at %v", gotUser, gotNow)
	}
	var reminders []models.Reminder
	decodeData(t, w, &reminders)
	if reminders == nil || len(reminders) != 0 {
		t.Errorf("Expected an empty list, got %v", reminders)
	}
}
