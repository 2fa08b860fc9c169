package queue

import (
	"math/rand"
	"testing"
	"time"

	"github.com/example/studysync/pkg/models"
)

var queueNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testBuilder(schedules models.ScheduleTable, catalog []string) *Builder {
	b := NewBuilder(schedules, catalog)
	b.Now = func() time.Time { return queueNow }
	b.Rand = rand.New(rand.NewSource(1))
	return b
}

func dueRecord(key string, overdueDays int) models.ScheduleRecord {
	return models.ScheduleRecord{
		Key:         key,
		EaseFactor:  2.5,
		NextReview:  queueNow.AddDate(0, 0, -overdueDays),
		ReviewCount: 1,
	}
}

func futureRecord(key string, ease float64) models.ScheduleRecord {
	return models.ScheduleRecord{
		Key:         key,
		EaseFactor:  ease,
		NextReview:  queueNow.AddDate(0, 0, 30),
		ReviewCount: 1,
	}
}

func allEligible(string) bool { return true }

func TestReviewBelowMinimumPoolReturnsEmpty(t *testing.T) {
	schedules := models.ScheduleTable{
		"a": dueRecord("a", 1),
		"b": dueRecord("b", 2),
		"c": dueRecord("c", 3),
		"d": futureRecord("d", 2.5),
	}
	b := testBuilder(schedules, nil)

	if got := b.Build(PolicyReview, 10, allEligible); got != nil {
		t.Errorf("Build(review) with 3 due keys = %v, want empty", got)
	}
}

func TestReviewReturnsAllDueWhenUnderCount(t *testing.T) {
	schedules := models.ScheduleTable{}
	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		schedules[key] = dueRecord(key, 1)
	}
	b := testBuilder(schedules, nil)

	got := b.Build(PolicyReview, 10, allEligible)
	if len(got) != 6 {
		t.Fatalf("Build(review) = %v, want all 6 due keys", got)
	}
}

func TestReviewOrdersByOverdue(t *testing.T) {
	schedules := models.ScheduleTable{
		"fresh":   dueRecord("fresh", 0),
		"older":   dueRecord("older", 3),
		"oldest":  dueRecord("oldest", 9),
		"mid":     dueRecord("mid", 5),
		"mid2":    dueRecord("mid2", 4),
		"not_due": futureRecord("not_due", 2.5),
	}
	b := testBuilder(schedules, nil)

	got := b.Build(PolicyReview, 3, allEligible)
	want := []string{"oldest", "mid", "mid2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Build(review) = %v, want prefix %v", got, want)
		}
	}
}

func TestReviewRespectsEligibility(t *testing.T) {
	schedules := models.ScheduleTable{}
	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		schedules[key] = dueRecord(key, 1)
	}
	b := testBuilder(schedules, nil)

	got := b.Build(PolicyReview, 10, func(key string) bool { return key != "a" && key != "b" })
	if len(got) != 6 {
		t.Fatalf("Build(review) = %v, want 6 eligible keys", got)
	}
	for _, key := range got {
		if key == "a" || key == "b" {
			t.Fatalf("Build(review) returned ineligible key %q", key)
		}
	}
}

func TestWeakestRanksByAscendingEase(t *testing.T) {
	schedules := models.ScheduleTable{
		"strong":  futureRecord("strong", 2.8),
		"weak":    futureRecord("weak", 1.3),
		"mid":     futureRecord("mid", 2.0),
		"weak2":   futureRecord("weak2", 1.5),
		"strong2": futureRecord("strong2", 2.6),
		"mid2":    futureRecord("mid2", 2.2),
	}
	b := testBuilder(schedules, nil)

	got := b.Build(PolicyWeakest, 5, allEligible)
	if len(got) < MinPool {
		t.Fatalf("Build(weakest) = %v, want at least %d keys", got, MinPool)
	}
	if got[0] != "weak" || got[1] != "weak2" {
		t.Errorf("Build(weakest) = %v, want weakest keys first", got)
	}
}

func TestWeakestBelowMinimumPoolReturnsEmpty(t *testing.T) {
	schedules := models.ScheduleTable{
		"a": futureRecord("a", 1.5),
		"b": futureRecord("b", 1.8),
	}
	b := testBuilder(schedules, nil)

	if got := b.Build(PolicyWeakest, 10, allEligible); got != nil {
		t.Errorf("Build(weakest) with 2 records = %v, want empty", got)
	}
}

func TestMixedDeduplicatesAndHasNoMinimum(t *testing.T) {
	// One key both due and weak: must appear once, review side first
	schedules := models.ScheduleTable{
		"both": dueRecord("both", 2),
		"weak": futureRecord("weak", 1.3),
	}
	b := testBuilder(schedules, nil)

	got := b.Build(PolicyMixed, 10, allEligible)
	if len(got) != 2 {
		t.Fatalf("Build(mixed) = %v, want 2 unique keys", got)
	}
	if got[0] != "both" {
		t.Errorf("Build(mixed) = %v, want review candidate first", got)
	}
	seen := map[string]int{}
	for _, key := range got {
		seen[key]++
	}
	if seen["both"] != 1 {
		t.Errorf("Build(mixed) duplicated key: %v", got)
	}
}

func TestMixedEmptyUnion(t *testing.T) {
	b := testBuilder(models.ScheduleTable{}, nil)
	if got := b.Build(PolicyMixed, 10, allEligible); len(got) != 0 {
		t.Errorf("Build(mixed) over empty table = %v, want empty", got)
	}
}

func TestDiscoverNeverAttemptedComesFirst(t *testing.T) {
	schedules := models.ScheduleTable{
		"seen1": futureRecord("seen1", 2.5),
		"seen2": futureRecord("seen2", 2.5),
	}
	catalog := []string{"seen1", "new1", "seen2", "new2", "new3"}
	b := testBuilder(schedules, catalog)

	for trial := 0; trial < 20; trial++ {
		got := b.Build(PolicyDiscover, 5, allEligible)
		if len(got) != 5 {
			t.Fatalf("Build(discover) = %v, want all 5 keys", got)
		}
		seenAttempted := false
		for _, key := range got {
			_, attempted := schedules[key]
			if attempted {
				seenAttempted = true
			} else if seenAttempted {
				t.Fatalf("Build(discover) = %v: attempted key before unattempted key", got)
			}
		}
	}
}

func TestDiscoverReshufflesPerCall(t *testing.T) {
	catalog := make([]string, 30)
	for i := range catalog {
		catalog[i] = string(rune('a' + i))
	}
	b := testBuilder(models.ScheduleTable{}, catalog)

	first := b.Build(PolicyDiscover, 30, allEligible)
	for trial := 0; trial < 10; trial++ {
		next := b.Build(PolicyDiscover, 30, allEligible)
		for i := range first {
			if next[i] != first[i] {
				return
			}
		}
	}
	t.Error("Build(discover) produced the same order across repeated calls")
}

func TestBuildCapsAtCount(t *testing.T) {
	schedules := models.ScheduleTable{}
	for i := 0; i < 20; i++ {
		key := string(rune('a' + i))
		schedules[key] = dueRecord(key, i)
	}
	b := testBuilder(schedules, nil)

	if got := b.Build(PolicyReview, 7, allEligible); len(got) != 7 {
		t.Errorf("Build(review) returned %d keys, want 7", len(got))
	}
}

func TestBuildUnknownPolicy(t *testing.T) {
	b := testBuilder(models.ScheduleTable{}, nil)
	if got := b.Build(Policy("bogus"), 5, allEligible); got != nil {
		t.Errorf("Build(bogus) = %v, want nil", got)
	}
}
