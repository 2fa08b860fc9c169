package queue

import (
	"math/rand"
	"sort"
	"time"

	"github.com/example/studysync/pkg/models"
)

// Policy selects how the next practice queue is assembled.
type Policy string

const (
	// PolicyReview - exercises whose next review time has passed
	PolicyReview Policy = "review"
	// PolicyWeakest - exercises ranked by ascending easiness factor
	PolicyWeakest Policy = "weakest"
	// PolicyMixed - review candidates first, then weakest, deduplicated
	PolicyMixed Policy = "mixed"
	// PolicyDiscover - never-attempted exercises first, shuffled
	PolicyDiscover Policy = "discover"
)

// MinPool is the smallest candidate pool the review and weakest policies will
// run a session with. Below it the builder returns an empty queue and the
// caller is expected to suggest a different policy.
const MinPool = 5

// Eligible filters candidate keys. The builder is agnostic to what a key
// means; callers encode module/content-type restrictions here.
type Eligible func(key string) bool

// Builder assembles ordered, bounded lists of exercise keys for a session.
type Builder struct {
	// Schedules is the current mastery table.
	Schedules models.ScheduleTable
	// Catalog lists every known exercise key, attempted or not. Only the
	// discover policy needs it.
	Catalog []string
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
	// Rand supplies shuffling for the discover policy; defaults to a
	// time-seeded source.
	Rand *rand.Rand
}

// NewBuilder creates a builder over the given mastery table and catalog.
func NewBuilder(schedules models.ScheduleTable, catalog []string) *Builder {
	return &Builder{
		Schedules: schedules,
		Catalog:   catalog,
		Now:       time.Now,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build returns up to count exercise keys for the given policy. An empty
// result is a valid outcome meaning "not enough material", never an error.
func (b *Builder) Build(policy Policy, count int, isEligible Eligible) []string {
	if count <= 0 {
		return nil
	}
	if isEligible == nil {
		isEligible = func(string) bool { return true }
	}

	var keys []string
	switch policy {
	case PolicyReview:
		keys = b.reviewCandidates(isEligible)
		if len(keys) < MinPool {
			return nil
		}
	case PolicyWeakest:
		keys = b.weakestCandidates(count, isEligible)
		if len(keys) < MinPool {
			return nil
		}
	case PolicyMixed:
		keys = dedupe(append(b.reviewCandidates(isEligible), b.weakestCandidates(count, isEligible)...))
	case PolicyDiscover:
		keys = b.discoverCandidates(isEligible)
	default:
		return nil
	}

	if len(keys) > count {
		keys = keys[:count]
	}
	return keys
}

// reviewCandidates returns due keys ordered by how overdue they are.
func (b *Builder) reviewCandidates(isEligible Eligible) []string {
	now := b.now()
	var due []models.ScheduleRecord
	for key, record := range b.Schedules {
		if record.Due(now) && isEligible(key) {
			due = append(due, record)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].Key < due[j].Key
	})
	keys := make([]string, len(due))
	for i, record := range due {
		keys[i] = record.Key
	}
	return keys
}

// weakestCandidates ranks all scheduled keys by ascending easiness factor,
// takes a pool of count*2 before filtering, then applies eligibility.
// Exact ease ties fall back to key order.
func (b *Builder) weakestCandidates(count int, isEligible Eligible) []string {
	ranked := make([]models.ScheduleRecord, 0, len(b.Schedules))
	for _, record := range b.Schedules {
		ranked = append(ranked, record)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EaseFactor != ranked[j].EaseFactor {
			return ranked[i].EaseFactor < ranked[j].EaseFactor
		}
		return ranked[i].Key < ranked[j].Key
	})
	if len(ranked) > count*2 {
		ranked = ranked[:count*2]
	}
	var keys []string
	for _, record := range ranked {
		if isEligible(record.Key) {
			keys = append(keys, record.Key)
		}
	}
	return keys
}

// discoverCandidates partitions the eligible catalog into never-attempted and
// previously-attempted keys, shuffles each partition independently, and
// concatenates never-attempted first.
func (b *Builder) discoverCandidates(isEligible Eligible) []string {
	var fresh, seen []string
	for _, key := range b.Catalog {
		if !isEligible(key) {
			continue
		}
		if _, ok := b.Schedules[key]; ok {
			seen = append(seen, key)
		} else {
			fresh = append(fresh, key)
		}
	}
	b.shuffle(fresh)
	b.shuffle(seen)
	return append(fresh, seen...)
}

func (b *Builder) shuffle(keys []string) {
	rng := b.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// dedupe removes repeated keys, keeping the first occurrence's position.
func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	var out []string
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
