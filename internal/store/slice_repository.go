package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Slice is one stored row: a named JSON blob for a course plus its local
// write time.
type Slice struct {
	Course    string    `db:"course"`
	Name      string    `db:"name"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SliceRepository handles database operations for local state slices
type SliceRepository struct{}

// NewSliceRepository creates a new repository instance
func NewSliceRepository() *SliceRepository {
	return &SliceRepository{}
}

// Get returns one slice's payload and write time. The second return value is
// false when the slice has never been written.
func (r *SliceRepository) Get(course, name string) (json.RawMessage, time.Time, bool, error) {
	var slice Slice
	err := DB.Get(&slice, "SELECT * FROM slices WHERE course = $1 AND name = $2", course, name)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to get slice %s: %v", name, err)
	}
	return json.RawMessage(slice.Value), slice.UpdatedAt, true, nil
}

// Set stores a slice payload, stamping it with the given write time.
func (r *SliceRepository) Set(course, name string, value json.RawMessage, updatedAt time.Time) error {
	// Upsert phrased portably for sqlite and postgres
	query := `
		INSERT INTO slices (course, name, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course, name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	_, err := DB.Exec(query, course, name, string(value), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to set slice %s: %v", name, err)
	}
	return nil
}

// All returns every stored slice for a course.
func (r *SliceRepository) All(course string) ([]Slice, error) {
	var slices []Slice
	err := DB.Select(&slices, "SELECT * FROM slices WHERE course = $1 ORDER BY name", course)
	if err != nil {
		return nil, fmt.Errorf("failed to list slices: %v", err)
	}
	return slices, nil
}
