package srs

import (
	"time"

	"github.com/example/studysync/pkg/models"
)

// SM2 implements the SuperMemo-2 family algorithm for spaced repetition.
type SM2 struct {
	// Minimum easiness factor; repeated failures converge here
	MinEase float64
	// Easiness factor assigned on first review
	StartEase float64
	// Maximum repetition interval in days
	MaxInterval int
	// Fixed intervals (days) for the first repetitions, before the
	// multiplicative formula takes over
	FirstIntervals []int
	// Interval a record falls back to on a failing grade
	FailInterval int
}

// NewSM2 creates a scheduler with the default parameters.
func NewSM2() *SM2 {
	return &SM2{
		MinEase:        1.3,
		StartEase:      2.5,
		MaxInterval:    365,
		FirstIntervals: []int{1, 6},
		FailInterval:   1,
	}
}

// Schedule computes the next scheduling state for one exercise key.
// Pure function: persistence is the store's job. A nil record means this is
// the first-ever review of the key. The quality grade must already be
// validated at the boundary; Schedule defines a transition for every grade.
func (sm *SM2) Schedule(record *models.ScheduleRecord, key string, quality models.Quality, now time.Time) models.ScheduleRecord {
	next := models.ScheduleRecord{
		Key:        key,
		EaseFactor: sm.StartEase,
	}
	if record != nil {
		next = *record
		next.Key = key
	}

	next.EaseFactor = sm.adjustEase(next.EaseFactor, quality)

	if quality.Passing() {
		next.Repetitions++
		next.Interval = sm.nextInterval(next.Repetitions, next.Interval, next.EaseFactor)
	} else {
		next.Repetitions = 0
		next.Interval = sm.FailInterval
	}

	next.NextReview = now.AddDate(0, 0, next.Interval)
	next.LastQuality = quality
	next.ReviewCount++
	return next
}

// adjustEase applies the SM-2 easiness update for a 0-3 grade scale,
// clamped at the floor.
func (sm *SM2) adjustEase(ease float64, quality models.Quality) float64 {
	q := float64(quality)
	ease = ease + 0.1 - (3.0-q)*(0.08+(3.0-q)*0.02)
	if ease < sm.MinEase {
		ease = sm.MinEase
	}
	return ease
}

// nextInterval returns the interval in days after a passing review.
// repetitions is the count after the current review has been applied.
func (sm *SM2) nextInterval(repetitions, currentInterval int, ease float64) int {
	if repetitions <= len(sm.FirstIntervals) {
		return sm.FirstIntervals[repetitions-1]
	}
	interval := int(float64(currentInterval) * ease)
	if interval <= currentInterval {
		interval = currentInterval + 1
	}
	if interval > sm.MaxInterval {
		interval = sm.MaxInterval
	}
	return interval
}

// IsMastered determines if an exercise is considered mastered: reviewed at
// least 5 times in a row, last grade good or better, interval at least 30 days.
func (sm *SM2) IsMastered(record *models.ScheduleRecord) bool {
	return record.Repetitions >= 5 &&
		record.LastQuality >= models.QualityGood &&
		record.Interval >= 30
}
