package models

import "encoding/json"

// Recognized slice names - the sync allow-list. A slice is one independently
// synced, independently merged blob of local state.
const (
	SliceSchedule   = "srs"
	SliceOutcomes   = "exercise_progress"
	SliceActivity   = "activity"
	SliceStreak     = "streak"
	SliceNotes      = "notes"
	SliceLastLesson = "last_lesson"
	SlicePrefs      = "prefs"
)

// SyncRecord is the remote-side shape: one record per (user, course, slice)
// triple. The payload mirrors one local slice wholesale.
type SyncRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Course    string          `json:"course"`
	Slice     string          `json:"slice"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt string          `json:"updated_at"` // Client-supplied, RFC3339
	DeviceID  string          `json:"device_id,omitempty"`
}

// SyncStatus is the engine's health indicator.
type SyncStatus string

const (
	// SyncStatusSynced - last push/pull round trip succeeded
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusSyncing - a push or pull is in flight
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusOffline - last network attempt failed; dirty slices retained
	SyncStatusOffline SyncStatus = "offline"
)
