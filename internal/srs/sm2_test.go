package srs

import (
	"testing"
	"time"

	"github.com/example/studysync/pkg/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestScheduleFirstReview(t *testing.T) {
	sm := NewSM2()

	record := sm.Schedule(nil, "m1_loop_v1", models.QualityGood, testNow)

	if record.Key != "m1_loop_v1" {
		t.Errorf("key = %q, want m1_loop_v1", record.Key)
	}
	if record.Repetitions != 1 {
		t.Errorf("repetitions = %d, want 1", record.Repetitions)
	}
	if record.Interval != sm.FirstIntervals[0] {
		t.Errorf("interval = %d, want first-repetition constant %d", record.Interval, sm.FirstIntervals[0])
	}
	if want := testNow.AddDate(0, 0, sm.FirstIntervals[0]); !record.NextReview.Equal(want) {
		t.Errorf("nextReview = %v, want %v", record.NextReview, want)
	}
	if record.ReviewCount != 1 {
		t.Errorf("reviewCount = %d, want 1", record.ReviewCount)
	}
	if record.LastQuality != models.QualityGood {
		t.Errorf("lastQuality = %v, want good", record.LastQuality)
	}
}

func TestScheduleFailAfterSuccess(t *testing.T) {
	sm := NewSM2()

	first := sm.Schedule(nil, "m1_loop_v1", models.QualityGood, testNow)
	second := sm.Schedule(&first, "m1_loop_v1", models.QualityFail, testNow.AddDate(0, 0, 1))

	if second.Repetitions != 0 {
		t.Errorf("repetitions after fail = %d, want 0", second.Repetitions)
	}
	if second.Interval != sm.FailInterval {
		t.Errorf("interval after fail = %d, want %d", second.Interval, sm.FailInterval)
	}
	if second.ReviewCount != 2 {
		t.Errorf("reviewCount = %d, want 2", second.ReviewCount)
	}
	if second.EaseFactor >= first.EaseFactor {
		t.Errorf("ease after fail = %v, want below %v", second.EaseFactor, first.EaseFactor)
	}
}

func TestSchedulePassingNeverShrinksInterval(t *testing.T) {
	sm := NewSM2()

	for _, quality := range []models.Quality{models.QualityHard, models.QualityGood, models.QualityEasy} {
		record := sm.Schedule(nil, "k", quality, testNow)
		for i := 0; i < 20; i++ {
			next := sm.Schedule(&record, "k", quality, testNow)
			if next.Interval < record.Interval {
				t.Fatalf("quality %v: interval shrank from %d to %d on repetition %d",
					quality, record.Interval, next.Interval, i)
			}
			record = next
		}
		if record.Interval > sm.MaxInterval {
			t.Errorf("quality %v: interval %d exceeds max %d", quality, record.Interval, sm.MaxInterval)
		}
	}
}

func TestScheduleEaseFloor(t *testing.T) {
	sm := NewSM2()

	record := sm.Schedule(nil, "k", models.QualityFail, testNow)
	for i := 0; i < 50; i++ {
		record = sm.Schedule(&record, "k", models.QualityFail, testNow)
		if record.EaseFactor < sm.MinEase {
			t.Fatalf("ease %v dropped below floor %v", record.EaseFactor, sm.MinEase)
		}
	}
	if record.EaseFactor != sm.MinEase {
		t.Errorf("ease after repeated failures = %v, want converged to %v", record.EaseFactor, sm.MinEase)
	}
}

func TestScheduleEaseAdjustsByGrade(t *testing.T) {
	sm := NewSM2()
	base := models.ScheduleRecord{EaseFactor: 2.0, Interval: 10, Repetitions: 5}

	hard := sm.Schedule(&base, "k", models.QualityHard, testNow)
	good := sm.Schedule(&base, "k", models.QualityGood, testNow)
	easy := sm.Schedule(&base, "k", models.QualityEasy, testNow)

	if !(hard.EaseFactor < good.EaseFactor && good.EaseFactor < easy.EaseFactor) {
		t.Errorf("ease ordering hard=%v good=%v easy=%v, want strictly increasing",
			hard.EaseFactor, good.EaseFactor, easy.EaseFactor)
	}
	if easy.EaseFactor <= base.EaseFactor {
		t.Errorf("easy grade should raise ease above %v, got %v", base.EaseFactor, easy.EaseFactor)
	}
}

func TestScheduleDeterminism(t *testing.T) {
	sm := NewSM2()
	base := models.ScheduleRecord{EaseFactor: 1.9, Interval: 7, Repetitions: 3, ReviewCount: 4}

	a := sm.Schedule(&base, "k", models.QualityGood, testNow)
	b := sm.Schedule(&base, "k", models.QualityGood, testNow)

	if a != b {
		t.Errorf("identical inputs produced different records:\n%+v\n%+v", a, b)
	}
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	sm := NewSM2()
	base := models.ScheduleRecord{Key: "k", EaseFactor: 2.5, Interval: 6, Repetitions: 2, ReviewCount: 2}
	snapshot := base

	sm.Schedule(&base, "k", models.QualityFail, testNow)

	if base != snapshot {
		t.Errorf("input record mutated: %+v", base)
	}
}

func TestIsMastered(t *testing.T) {
	sm := NewSM2()

	tests := []struct {
		name   string
		record models.ScheduleRecord
		want   bool
	}{
		{"well practiced", models.ScheduleRecord{Repetitions: 5, LastQuality: models.QualityGood, Interval: 30}, true},
		{"too few repetitions", models.ScheduleRecord{Repetitions: 4, LastQuality: models.QualityEasy, Interval: 60}, false},
		{"last grade hard", models.ScheduleRecord{Repetitions: 8, LastQuality: models.QualityHard, Interval: 60}, false},
		{"interval too short", models.ScheduleRecord{Repetitions: 8, LastQuality: models.QualityEasy, Interval: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sm.IsMastered(&tt.record); got != tt.want {
				t.Errorf("IsMastered() = %v, want %v", got, tt.want)
			}
		})
	}
}
