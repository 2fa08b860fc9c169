package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/studysync/pkg/models"
)

// DirtyListener is notified when a user-driven write lands in a slice. The
// sync engine registers one to schedule a debounced push.
type DirtyListener func(slice string)

// Gateway is the single path for all local slice mutations within one course.
// User edits go through Set, which notifies dirty listeners; merge results go
// through SetFromMerge, which never does - that distinction replaces the
// suppression flag a write-interception design would need.
type Gateway struct {
	course    string
	repo      *SliceRepository
	listeners []DirtyListener
	now       func() time.Time
}

// NewGateway creates a gateway for one course's slices.
func NewGateway(course string) *Gateway {
	return &Gateway{
		course: course,
		repo:   NewSliceRepository(),
		now:    time.Now,
	}
}

// Course returns the course slug this gateway is bound to.
func (g *Gateway) Course() string {
	return g.course
}

// OnDirty registers a listener for user-driven writes.
func (g *Gateway) OnDirty(listener DirtyListener) {
	g.listeners = append(g.listeners, listener)
}

// Get returns a slice's raw payload and its local write time.
func (g *Gateway) Get(slice string) (json.RawMessage, time.Time, bool, error) {
	return g.repo.Get(g.course, slice)
}

// Set stores a user-driven write and marks the slice dirty.
func (g *Gateway) Set(slice string, value json.RawMessage) error {
	if err := g.repo.Set(g.course, slice, value, g.now()); err != nil {
		return err
	}
	for _, listener := range g.listeners {
		listener(slice)
	}
	return nil
}

// SetFromMerge stores a merge result without notifying dirty listeners, so a
// pull can never re-trigger a push of its own writes.
func (g *Gateway) SetFromMerge(slice string, value json.RawMessage, updatedAt time.Time) error {
	return g.repo.Set(g.course, slice, value, updatedAt)
}

// All returns every stored slice for the course.
func (g *Gateway) All() ([]Slice, error) {
	return g.repo.All(g.course)
}

// ClearProgress wipes the scheduling and outcome slices. The wipe is written
// as an empty table rather than a row deletion so it pushes to the remote
// store like any other edit; a deleted row would have nothing to push and the
// next pull would restore the old tables. Activity history and preferences
// survive.
func (g *Gateway) ClearProgress() error {
	for _, slice := range []string{models.SliceSchedule, models.SliceOutcomes} {
		if err := g.Set(slice, json.RawMessage(`{}`)); err != nil {
			return err
		}
	}
	return nil
}

// Schedules decodes the mastery table slice. A missing slice is an empty table.
func (g *Gateway) Schedules() (models.ScheduleTable, error) {
	value, _, ok, err := g.Get(models.SliceSchedule)
	if err != nil {
		return nil, err
	}
	table := models.ScheduleTable{}
	if !ok {
		return table, nil
	}
	if err := json.Unmarshal(value, &table); err != nil {
		return nil, fmt.Errorf("failed to decode schedule table: %v", err)
	}
	for key, record := range table {
		record.Key = key
		table[key] = record
	}
	return table, nil
}

// SaveSchedules encodes and stores the mastery table as a user-driven write.
func (g *Gateway) SaveSchedules(table models.ScheduleTable) error {
	value, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode schedule table: %v", err)
	}
	return g.Set(models.SliceSchedule, value)
}

// Outcomes decodes the exercise outcome slice.
func (g *Gateway) Outcomes() (models.OutcomeTable, error) {
	value, _, ok, err := g.Get(models.SliceOutcomes)
	if err != nil {
		return nil, err
	}
	table := models.OutcomeTable{}
	if !ok {
		return table, nil
	}
	if err := json.Unmarshal(value, &table); err != nil {
		return nil, fmt.Errorf("failed to decode outcome table: %v", err)
	}
	for key, outcome := range table {
		outcome.Key = key
		table[key] = outcome
	}
	return table, nil
}

// SaveOutcomes encodes and stores the outcome table as a user-driven write.
func (g *Gateway) SaveOutcomes(table models.OutcomeTable) error {
	value, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode outcome table: %v", err)
	}
	return g.Set(models.SliceOutcomes, value)
}

// Activity decodes the per-day review counter slice.
func (g *Gateway) Activity() (models.ActivityMap, error) {
	value, _, ok, err := g.Get(models.SliceActivity)
	if err != nil {
		return nil, err
	}
	activity := models.ActivityMap{}
	if !ok {
		return activity, nil
	}
	if err := json.Unmarshal(value, &activity); err != nil {
		return nil, fmt.Errorf("failed to decode activity map: %v", err)
	}
	return activity, nil
}

// SaveActivity encodes and stores the activity map as a user-driven write.
func (g *Gateway) SaveActivity(activity models.ActivityMap) error {
	value, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to encode activity map: %v", err)
	}
	return g.Set(models.SliceActivity, value)
}

// LastRating implements session.RatingSource over the outcome slice.
func (g *Gateway) LastRating(key string) (models.Quality, bool) {
	table, err := g.Outcomes()
	if err != nil {
		return 0, false
	}
	outcome, ok := table[key]
	if !ok {
		return 0, false
	}
	return outcome.Rating, true
}
