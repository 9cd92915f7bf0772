package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	// ErrValidation is wrapped by every ValidationError
	ErrValidation = errors.New("validation failed")
)

// InvariantEndAfterStart is reported when end_time <= start_time
const InvariantEndAfterStart = "end_time must be after start_time"

// ValidationError names the rule a write violated. It is returned before anything is persisted.
type ValidationError struct {
	Field     string
	Invariant string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Invariant
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Invariant)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("recurrence_pattern", validateRecurrencePattern); err != nil {
		panic(fmt.Sprintf("failed to register recurrence_pattern validator: %v", err))
	}
	if err := Validate.RegisterValidation("category_name", validateCategoryName); err != nil {
		panic(fmt.Sprintf("failed to register category_name validator: %v", err))
	}
	if err := Validate.RegisterValidation("reminder_type", validateReminderType); err != nil {
		panic(fmt.Sprintf("failed to register reminder_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register clock validator: %v", err))
	}
	if err := Validate.RegisterValidation("plandate", validatePlanDate); err != nil {
		panic(fmt.Sprintf("failed to register plandate validator: %v", err))
	}
}

func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

func validateRecurrencePattern(fl validator.FieldLevel) bool {
	return ValidateRecurrencePattern(fl.Field().String()) == nil
}

func validateCategoryName(fl validator.FieldLevel) bool {
	return ValidateCategoryName(fl.Field().String()) == nil
}

func validateReminderType(fl validator.FieldLevel) bool {
	switch models.ReminderType(fl.Field().String()) {
	case models.ReminderTypeNotification, models.ReminderTypeEmail:
		return true
	default:
		return false
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := models.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validatePlanDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

// ValidateTimeRange enforces end > start for tasks and daily tasks
func ValidateTimeRange(start, end models.TimeOfDay) error {
	if !end.After(start) {
		return &ValidationError{Field: "end_time", Invariant: InvariantEndAfterStart}
	}
	return nil
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'high', 'medium', or 'low')", value)
	}
}

// ValidateRecurrencePattern validates a RecurrencePattern string value
func ValidateRecurrencePattern(value string) error {
	switch models.RecurrencePattern(value) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return nil
	default:
		return fmt.Errorf("invalid recurrence_pattern: %s (must be 'none', 'daily', 'weekly', or 'monthly')", value)
	}
}

// ValidateCategoryName validates a CategoryName string value
func ValidateCategoryName(value string) error {
	if !models.CategoryName(value).IsValid() {
		return fmt.Errorf("invalid category: %s", value)
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
