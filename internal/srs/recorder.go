package srs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/studysync/internal/store"
	"github.com/example/studysync/pkg/models"
)

// Recorder applies one graded review to the local store: reschedules the key,
// updates its outcome entry, and bumps the day's activity counter and streak.
// Reviews are durable as they happen, not batched at session end.
type Recorder struct {
	algorithm *SM2
	gateway   *store.Gateway
	// Now supplies the clock; defaults to time.Now
	Now func() time.Time
}

// NewRecorder creates a recorder over the given gateway.
func NewRecorder(gateway *store.Gateway) *Recorder {
	return &Recorder{
		algorithm: NewSM2(),
		gateway:   gateway,
		Now:       time.Now,
	}
}

// RecordReview grades one exercise and persists every affected slice.
// The quality grade is validated here, at the boundary - the scheduler itself
// assumes valid input.
func (r *Recorder) RecordReview(key, label string, quality models.Quality) (models.ScheduleRecord, error) {
	if !quality.Valid() {
		return models.ScheduleRecord{}, fmt.Errorf("invalid quality grade %d for %s", quality, key)
	}
	now := r.Now()

	schedules, err := r.gateway.Schedules()
	if err != nil {
		return models.ScheduleRecord{}, err
	}

	var previous *models.ScheduleRecord
	if existing, ok := schedules[key]; ok {
		previous = &existing
	}
	record := r.algorithm.Schedule(previous, key, quality, now)
	if label != "" {
		record.Label = label
	}
	schedules[key] = record
	if err := r.gateway.SaveSchedules(schedules); err != nil {
		return models.ScheduleRecord{}, err
	}

	if err := r.recordOutcome(key, quality, now); err != nil {
		return models.ScheduleRecord{}, err
	}
	if err := r.recordActivity(now); err != nil {
		return models.ScheduleRecord{}, err
	}
	return record, nil
}

// recordOutcome updates the exercise_progress slice entry for the key.
func (r *Recorder) recordOutcome(key string, quality models.Quality, now time.Time) error {
	outcomes, err := r.gateway.Outcomes()
	if err != nil {
		return err
	}
	outcome := outcomes[key]
	outcome.Key = key
	outcome.Rating = quality
	outcome.Attempts++
	outcome.LastAttempt = now
	outcomes[key] = outcome
	return r.gateway.SaveOutcomes(outcomes)
}

// recordActivity bumps today's review counter and extends the streak.
func (r *Recorder) recordActivity(now time.Time) error {
	activity, err := r.gateway.Activity()
	if err != nil {
		return err
	}
	day := models.DayKey(now)
	activity[day]++
	if err := r.gateway.SaveActivity(activity); err != nil {
		return err
	}
	return r.updateStreak(day, now)
}

func (r *Recorder) updateStreak(day string, now time.Time) error {
	value, _, ok, err := r.gateway.Get(models.SliceStreak)
	if err != nil {
		return err
	}
	var streak models.StreakState
	if ok {
		// A corrupt streak slice restarts the count rather than failing the review
		_ = json.Unmarshal(value, &streak)
	}
	switch streak.LastActive {
	case day:
		// Already counted today
	case models.DayKey(now.AddDate(0, 0, -1)):
		streak.Current++
	default:
		streak.Current = 1
	}
	streak.LastActive = day
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	encoded, err := json.Marshal(streak)
	if err != nil {
		return fmt.Errorf("failed to encode streak: %v", err)
	}
	return r.gateway.Set(models.SliceStreak, encoded)
}
