package sync

import (
	"encoding/json"
	"time"

	"github.com/example/studysync/pkg/models"
)

// Side is one side of a merge: a slice payload that may be absent, plus the
// timestamp of its last write (local write time, or the remote record's
// client-supplied timestamp).
type Side struct {
	Present   bool
	Value     json.RawMessage
	UpdatedAt time.Time
}

// Strategy merges a local and remote version of one slice. Every strategy is
// total over the four presence combinations: both absent yields absent,
// one-sided input is returned wholesale, and only both-present invokes
// strategy-specific logic. A payload that fails to decode is treated as
// absent rather than aborting the merge pass.
type Strategy func(local, remote Side) (json.RawMessage, bool)

// StrategyFor returns the merge strategy for a slice name. Plugin-declared
// slices outside the allow-list default to last-writer-wins.
func StrategyFor(slice string) Strategy {
	switch slice {
	case models.SliceSchedule:
		return MergeScheduleTables
	case models.SliceOutcomes:
		return MergeOutcomeTables
	case models.SliceActivity:
		return MergeActivityMaps
	default:
		return MergeLastWriterWins
	}
}

// MergeLastWriterWins keeps whichever side was written later. Used for simple
// slices like the last-visited lesson or preference flags. The remote side
// wins only when its client timestamp is not older than the local write -
// presence of a remote timestamp alone is not proof of freshness, since the
// local device may hold an edit that never finished its round trip.
func MergeLastWriterWins(local, remote Side) (json.RawMessage, bool) {
	if !local.Present {
		return remote.Value, remote.Present
	}
	if !remote.Present {
		return local.Value, true
	}
	if remote.UpdatedAt.Before(local.UpdatedAt) {
		return local.Value, true
	}
	return remote.Value, true
}

// MergeScheduleTables merges two mastery tables per entry. Keys present on
// one side only are kept; for keys on both sides the entry with the higher
// reviewCount wins (more reviews, more authoritative), and an exact tie goes
// to the later nextReview.
func MergeScheduleTables(local, remote Side) (json.RawMessage, bool) {
	localTable, localOK := decodeScheduleTable(local)
	remoteTable, remoteOK := decodeScheduleTable(remote)
	if !localOK && !remoteOK {
		return nil, false
	}
	if !remoteOK {
		return local.Value, true
	}
	if !localOK {
		return remote.Value, true
	}

	merged := make(models.ScheduleTable, len(localTable))
	for key, record := range localTable {
		merged[key] = record
	}
	for key, theirs := range remoteTable {
		ours, ok := merged[key]
		if !ok {
			merged[key] = theirs
			continue
		}
		if theirs.ReviewCount > ours.ReviewCount {
			merged[key] = theirs
			continue
		}
		if theirs.ReviewCount == ours.ReviewCount && theirs.NextReview.After(ours.NextReview) {
			merged[key] = theirs
		}
	}
	return encode(merged)
}

// MergeOutcomeTables merges two exercise outcome tables per entry, preferring
// the entry whose own last-attempt timestamp is later.
func MergeOutcomeTables(local, remote Side) (json.RawMessage, bool) {
	localTable, localOK := decodeOutcomeTable(local)
	remoteTable, remoteOK := decodeOutcomeTable(remote)
	if !localOK && !remoteOK {
		return nil, false
	}
	if !remoteOK {
		return local.Value, true
	}
	if !localOK {
		return remote.Value, true
	}

	merged := make(models.OutcomeTable, len(localTable))
	for key, outcome := range localTable {
		merged[key] = outcome
	}
	for key, theirs := range remoteTable {
		ours, ok := merged[key]
		if !ok || theirs.LastAttempt.After(ours.LastAttempt) {
			merged[key] = theirs
		}
	}
	return encode(merged)
}

// MergeActivityMaps merges two per-day counters by taking the max for each
// date. An offline device can only undercount a day, never overcount, so max
// loses no information and merging a map with itself is a no-op.
func MergeActivityMaps(local, remote Side) (json.RawMessage, bool) {
	localMap, localOK := decodeActivityMap(local)
	remoteMap, remoteOK := decodeActivityMap(remote)
	if !localOK && !remoteOK {
		return nil, false
	}
	if !remoteOK {
		return local.Value, true
	}
	if !localOK {
		return remote.Value, true
	}

	merged := make(models.ActivityMap, len(localMap))
	for day, count := range localMap {
		merged[day] = count
	}
	for day, count := range remoteMap {
		if count > merged[day] {
			merged[day] = count
		}
	}
	return encode(merged)
}

func decodeScheduleTable(side Side) (models.ScheduleTable, bool) {
	if !side.Present {
		return nil, false
	}
	table := models.ScheduleTable{}
	if err := json.Unmarshal(side.Value, &table); err != nil {
		return nil, false
	}
	return table, true
}

func decodeOutcomeTable(side Side) (models.OutcomeTable, bool) {
	if !side.Present {
		return nil, false
	}
	table := models.OutcomeTable{}
	if err := json.Unmarshal(side.Value, &table); err != nil {
		return nil, false
	}
	return table, true
}

func decodeActivityMap(side Side) (models.ActivityMap, bool) {
	if !side.Present {
		return nil, false
	}
	activity := models.ActivityMap{}
	if err := json.Unmarshal(side.Value, &activity); err != nil {
		return nil, false
	}
	return activity, true
}

func encode(value interface{}) (json.RawMessage, bool) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return encoded, true
}
