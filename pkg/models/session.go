package models

// QueueItem is one entry of a practice queue: the exercise key plus the
// denormalized references the renderer needs. Built per session, never persisted.
type QueueItem struct {
	Key      string `json:"key"`
	Lesson   string `json:"lesson"`
	Category string `json:"category"`
	Problem  string `json:"problem"`
	Variant  string `json:"variant"`
	Label    string `json:"label"`
}

// SessionResult is the summary computed when a session completes.
type SessionResult struct {
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Skipped   int             `json:"skipped"`
	Ratings   map[Quality]int `json:"ratings"` // Per-grade tally over completed items
}
