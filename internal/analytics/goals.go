package analytics

import (
	"sync"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// PeriodIndex numbers the frequency period containing t, in loc. Consecutive periods
// have consecutive indexes. Weeks start on Sunday.
func PeriodIndex(t time.Time, freq models.TargetFrequency, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)

	switch freq {
	case models.FrequencyMonthly:
		return int64(local.Year())*12 + int64(local.Month()) - 1
	case models.FrequencyWeekly:
		// Unix day 0 (1970-01-01) was a Thursday, so Sundays fall on day = 3 mod 7
		sunday := dayIndex(local) - int64(local.Weekday())
		return floorDiv(sunday+4, 7)
	default:
		return dayIndex(local)
	}
}

// dayIndex counts calendar days since 1970-01-01 for the local date of t
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return floorDiv(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix(), 86400)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AdvanceGoal applies one new entry to a goal's progress and reports whether the goal
// changed. Inactive goals are never mutated; a goal whose end date is before now is
// marked inactive instead of progressing. Entries outside the goal's date range are
// ignored.
//
// A qualifying entry (score at or above target) extends the streak when it lands in the
// period right after the last qualifying one, keeps it when it lands in the same period,
// and restarts it at 1 after a gap. A non-qualifying entry resets the streak to 0.
func AdvanceGoal(goal *models.MoodGoal, entry models.MoodEntry, now time.Time, loc *time.Location) bool {
	if !goal.IsActive {
		return false
	}
	if ExpireGoal(goal, now) {
		return true
	}
	if entry.Timestamp.Before(goal.StartDate) {
		return false
	}
	if goal.EndDate != nil && entry.Timestamp.After(*goal.EndDate) {
		return false
	}

	p := &goal.Progress
	p.TotalEntries++
	ts := entry.Timestamp
	if p.LastEntryAt == nil || ts.After(*p.LastEntryAt) {
		p.LastEntryAt = &ts
	}

	if entry.MoodScore >= goal.TargetMoodScore {
		p.QualifyingEntries++
		current := PeriodIndex(ts, goal.TargetFrequency, loc)

		if p.LastQualifyingAt == nil {
			p.CurrentStreak = 1
			p.LastQualifyingAt = &ts
		} else {
			last := PeriodIndex(*p.LastQualifyingAt, goal.TargetFrequency, loc)
			switch {
			case current == last:
				// Already counted this period
				if p.CurrentStreak == 0 {
					p.CurrentStreak = 1
				}
			case current == last+1:
				p.CurrentStreak++
			case current > last+1:
				p.CurrentStreak = 1
			default:
				// Out-of-order entry for an earlier period leaves the streak alone
			}
			if current >= last {
				p.LastQualifyingAt = &ts
			}
		}
	} else {
		p.CurrentStreak = 0
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.SuccessRate = float64(p.QualifyingEntries) / float64(p.TotalEntries)
	goal.Status = GoalStatusOf(goal)
	return true
}

// ExpireGoal marks an active goal whose end date is before now as inactive and
// reports whether it did
func ExpireGoal(goal *models.MoodGoal, now time.Time) bool {
	if !goal.IsActive || goal.EndDate == nil || !goal.EndDate.Before(now) {
		return false
	}
	goal.IsActive = false
	goal.Status = models.GoalStatusInactive
	return true
}

// GoalStatusOf derives a goal's state from its fields. Achievement is left to callers;
// see Achieved.
func GoalStatusOf(goal *models.MoodGoal) models.GoalStatus {
	if !goal.IsActive {
		return models.GoalStatusInactive
	}
	if goal.Progress.CurrentStreak > 0 {
		return models.GoalStatusOnTrack
	}
	return models.GoalStatusBroken
}

// Achieved reports whether the goal's current streak has reached requiredStreak
func Achieved(goal *models.MoodGoal, requiredStreak int) bool {
	return requiredStreak > 0 && goal.Progress.CurrentStreak >= requiredStreak
}

// GoalLocker serializes read-modify-write cycles per goal ID
type GoalLocker struct {
	mu    sync.Mutex
	locks map[string]*goalLock
}

type goalLock struct {
	mu   sync.Mutex
	refs int
}

// NewGoalLocker creates an empty locker
func NewGoalLocker() *GoalLocker {
	return &GoalLocker{locks: make(map[string]*goalLock)}
}

// Lock blocks until the goal is free and returns the function that releases it
func (l *GoalLocker) Lock(goalID string) (unlock func()) {
	l.mu.Lock()
	gl, ok := l.locks[goalID]
	if !ok {
		gl = &goalLock{}
		l.locks[goalID] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()

	return func() {
		gl.mu.Unlock()

		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, goalID)
		}
		l.mu.Unlock()
	}
}
