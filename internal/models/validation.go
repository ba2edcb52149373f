package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidEntry indicates a mood entry failed ingestion validation
	ErrInvalidEntry = errors.New("invalid mood entry")
	// ErrInvalidGoal indicates a goal request failed validation
	ErrInvalidGoal = errors.New("invalid mood goal")
	// ErrInvalidPreferences indicates a preferences update failed validation
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// MaxFutureSkew is how far ahead of the server clock an entry timestamp may be
const MaxFutureSkew = time.Minute

// FieldViolation describes one invalid field
type FieldViolation struct {
	Field   string
	Message string
	Code    string
}

// ValidationError carries every field violation found in a request.
// It unwraps to ErrInvalidEntry or ErrInvalidGoal.
type ValidationError struct {
	kind   error
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%v: %s", e.kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func collectViolations(err error) []FieldViolation {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Field: "body", Message: err.Error(), Code: "invalid"}}
	}

	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		v := FieldViolation{Field: fe.Field(), Code: fe.Tag()}
		switch fe.Tag() {
		case "required":
			v.Message = "is required"
		case "min":
			v.Message = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			v.Message = fmt.Sprintf("must be at most %s", fe.Param())
		case "uuid":
			v.Message = "must be a valid UUID"
		case "timezone":
			v.Message = "must be an IANA time zone name"
		default:
			v.Message = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		out = append(out, v)
	}
	return out
}

// ValidateCreateEntry checks a create request at the ingestion boundary.
// now is the server clock used to reject timestamps in the future.
func ValidateCreateEntry(req *CreateMoodEntryRequest, now time.Time) error {
	var violations []FieldViolation

	if err := getValidator().Struct(req); err != nil {
		violations = append(violations, collectViolations(err)...)
	}

	if req.MoodLabel != "" && !req.MoodLabel.Valid() {
		violations = append(violations, FieldViolation{
			Field:   "mood_label",
			Message: "is not a known mood label",
			Code:    "invalid_enum",
		})
	}

	for _, a := range req.Activities {
		if !a.Valid() {
			violations = append(violations, FieldViolation{
				Field:   "activities",
				Message: fmt.Sprintf("contains unknown activity %q", a),
				Code:    "invalid_enum",
			})
			break
		}
	}

	if req.Timestamp != nil {
		if req.Timestamp.IsZero() {
			violations = append(violations, FieldViolation{
				Field:   "timestamp",
				Message: "must be a valid RFC3339 timestamp",
				Code:    "invalid_format",
			})
		} else if req.Timestamp.After(now.Add(MaxFutureSkew)) {
			violations = append(violations, FieldViolation{
				Field:   "timestamp",
				Message: "cannot be more than 1 minute in the future",
				Code:    "future_timestamp",
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{kind: ErrInvalidEntry, Fields: violations}
	}
	return nil
}

// ValidateEntry checks an already-built entry. Stores call this before writing so
// nothing out of range can reach the analyzers.
func ValidateEntry(e *MoodEntry) error {
	var violations []FieldViolation

	if e.MoodScore < MinMoodScore || e.MoodScore > MaxMoodScore {
		violations = append(violations, FieldViolation{Field: "mood_score", Message: "must be between 1 and 5", Code: "out_of_range"})
	}
	if e.Timestamp.IsZero() {
		violations = append(violations, FieldViolation{Field: "timestamp", Message: "is required", Code: "required"})
	}
	if !e.MoodLabel.Valid() {
		violations = append(violations, FieldViolation{Field: "mood_label", Message: "is not a known mood label", Code: "invalid_enum"})
	}
	for _, a := range e.Activities {
		if !a.Valid() {
			violations = append(violations, FieldViolation{Field: "activities", Message: fmt.Sprintf("contains unknown activity %q", a), Code: "invalid_enum"})
			break
		}
	}
	checkRange := func(field string, v *int) {
		if v != nil && (*v < 1 || *v > 10) {
			violations = append(violations, FieldViolation{Field: field, Message: "must be between 1 and 10", Code: "out_of_range"})
		}
	}
	checkRange("stress_level", e.StressLevel)
	checkRange("energy_level", e.EnergyLevel)
	checkRange("social_interaction", e.SocialInteraction)
	if e.SleepHours != nil && (*e.SleepHours < 0 || *e.SleepHours > 24) {
		violations = append(violations, FieldViolation{Field: "sleep_hours", Message: "must be between 0 and 24", Code: "out_of_range"})
	}
	if e.TextFeedback != nil && len([]rune(*e.TextFeedback)) > MaxTextFeedbackLength {
		violations = append(violations, FieldViolation{Field: "text_feedback", Message: "must be at most 1000 characters", Code: "too_long"})
	}

	if len(violations) > 0 {
		return &ValidationError{kind: ErrInvalidEntry, Fields: violations}
	}
	return nil
}

// ValidateCreateGoal checks a goal create request
func ValidateCreateGoal(req *CreateGoalRequest) error {
	var violations []FieldViolation

	if err := getValidator().Struct(req); err != nil {
		violations = append(violations, collectViolations(err)...)
	}
	if req.TargetFrequency != "" && !req.TargetFrequency.Valid() {
		violations = append(violations, FieldViolation{
			Field:   "target_frequency",
			Message: "must be one of daily, weekly, monthly",
			Code:    "invalid_enum",
		})
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		violations = append(violations, FieldViolation{
			Field:   "end_date",
			Message: "must not be before start_date",
			Code:    "invalid_range",
		})
	}

	if len(violations) > 0 {
		return &ValidationError{kind: ErrInvalidGoal, Fields: violations}
	}
	return nil
}

// NormalizeActivities collapses duplicate tags, keeping first-seen order
func NormalizeActivities(in []Activity) []Activity {
	out := make([]Activity, 0, len(in))
	seen := make(map[Activity]bool, len(in))
	for _, a := range in {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// InvalidEntryError builds an ErrInvalidEntry for violations found outside
// ValidateCreateEntry, e.g. an ID that parses but is not time-ordered
func InvalidEntryError(violations ...FieldViolation) error {
	return &ValidationError{kind: ErrInvalidEntry, Fields: violations}
}

// ValidateUpdateGoal checks a partial update against the goal it modifies
func ValidateUpdateGoal(req *UpdateGoalRequest, goal *MoodGoal) error {
	var violations []FieldViolation

	if req.Title.Set {
		if !req.Title.Valid || strings.TrimSpace(req.Title.Value) == "" {
			violations = append(violations, FieldViolation{Field: "title", Message: "cannot be empty", Code: "required"})
		} else if len([]rune(req.Title.Value)) > 200 {
			violations = append(violations, FieldViolation{Field: "title", Message: "must be at most 200", Code: "max"})
		}
	}
	if req.Description.Valid && len([]rune(req.Description.Value)) > 1000 {
		violations = append(violations, FieldViolation{Field: "description", Message: "must be at most 1000", Code: "max"})
	}
	if req.EndDate.Valid && req.EndDate.Value.Before(goal.StartDate) {
		violations = append(violations, FieldViolation{Field: "end_date", Message: "must not be before start_date", Code: "invalid_range"})
	}

	if len(violations) > 0 {
		return &ValidationError{kind: ErrInvalidGoal, Fields: violations}
	}
	return nil
}

// InvalidGoalError builds an ErrInvalidGoal from violations found by callers
func InvalidGoalError(violations ...FieldViolation) error {
	return &ValidationError{kind: ErrInvalidGoal, Fields: violations}
}

// ValidatePreferences checks a preferences update
func ValidatePreferences(req *UpdatePreferencesRequest) error {
	if err := getValidator().Struct(req); err != nil {
		return &ValidationError{kind: ErrInvalidPreferences, Fields: collectViolations(err)}
	}
	return nil
}
