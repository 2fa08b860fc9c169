package models

import "time"

// Quality is the self-reported outcome of a single review.
type Quality int

const (
	// QualityFail - could not solve the exercise
	QualityFail Quality = 0
	// QualityHard - solved with significant effort
	QualityHard Quality = 1
	// QualityGood - solved after some hesitation
	QualityGood Quality = 2
	// QualityEasy - solved immediately
	QualityEasy Quality = 3
)

// Valid reports whether q is one of the four defined grades.
// Out-of-range grades are a caller bug and must be rejected before scheduling.
func (q Quality) Valid() bool {
	return q >= QualityFail && q <= QualityEasy
}

// Passing reports whether the grade counts as a successful recall.
func (q Quality) Passing() bool {
	return q >= QualityHard
}

func (q Quality) String() string {
	switch q {
	case QualityFail:
		return "fail"
	case QualityHard:
		return "hard"
	case QualityGood:
		return "good"
	case QualityEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// ScheduleRecord tracks mastery of one exercise key using the SM-2 algorithm.
// A key uniquely identifies one drillable unit: course/category/problem/variant.
type ScheduleRecord struct {
	Key         string    `json:"key"`
	EaseFactor  float64   `json:"easeFactor"`  // SM-2 EF parameter, floor 1.3
	Interval    int       `json:"interval"`    // Days until next scheduled review
	Repetitions int       `json:"repetitions"` // Consecutive successful reviews
	NextReview  time.Time `json:"nextReview"`
	LastQuality Quality   `json:"lastQuality"`
	ReviewCount int       `json:"reviewCount"` // Total reviews ever; merge authority
	Label       string    `json:"label,omitempty"`
}

// Due reports whether the record is due for review at the given time.
func (r *ScheduleRecord) Due(now time.Time) bool {
	return !r.NextReview.After(now)
}

// ScheduleTable is the full per-course mastery table, one entry per exercise
// key. It is synced as a single slice.
type ScheduleTable map[string]ScheduleRecord
