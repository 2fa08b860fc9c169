package models

import "time"

// ExerciseOutcome records the most recent result of attempting one exercise,
// independent of scheduling state. Synced as the exercise_progress slice.
type ExerciseOutcome struct {
	Key         string    `json:"key"`
	Rating      Quality   `json:"rating"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastAttempt"` // Merge recency
}

// OutcomeTable maps exercise keys to their latest outcome.
type OutcomeTable map[string]ExerciseOutcome

// ActivityMap counts recorded reviews per calendar day. Keys are dates in
// "2006-01-02" form. A device that was offline on a day can only undercount,
// so merging takes the per-date max.
type ActivityMap map[string]int

// DayKey formats a timestamp as an ActivityMap key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StreakState tracks consecutive days with at least one review.
type StreakState struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"lastActive"` // Day key of the last counted day
}
