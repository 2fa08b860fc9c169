package session

import (
	"github.com/example/studysync/pkg/models"
)

// Phase is the controller's position in the session lifecycle.
type Phase int

const (
	// Configuring - no queue yet; the UI is collecting policy/count/filter choices
	Configuring Phase = iota
	// Active - presenting queue items one at a time
	Active
	// Complete - queue exhausted; results summary rendered
	Complete
)

func (p Phase) String() string {
	switch p {
	case Configuring:
		return "configuring"
	case Active:
		return "active"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Outcome is the caller-reported disposition of one queue item.
type Outcome int

const (
	// OutcomeCompleted - the learner worked the exercise and graded it
	OutcomeCompleted Outcome = iota
	// OutcomeSkipped - the learner moved past without attempting
	OutcomeSkipped
)

// Renderer is implemented by the UI layer. The controller drives it; it never
// renders anything itself.
type Renderer interface {
	// RenderItem presents one exercise. index is zero-based; total is the
	// queue length.
	RenderItem(item models.QueueItem, index, total int)
	// RenderResults presents the end-of-session summary.
	RenderResults(result models.SessionResult)
}

// RatingSource looks up the latest recorded grade for a key, for the results
// summary. Typically backed by the exercise outcome store.
type RatingSource interface {
	LastRating(key string) (models.Quality, bool)
}

// Controller drives exactly one practice session from a pre-built queue to
// completion. Abandoning a session is just discarding the controller; reviews
// are durable as they happen, so cancellation needs no cleanup.
type Controller struct {
	renderer Renderer
	ratings  RatingSource

	phase         Phase
	queue         []models.QueueItem
	index         int
	completed     int
	skipped       int
	completedKeys []string
}

// New creates a controller in the Configuring phase. ratings may be nil, in
// which case the results summary carries no per-grade tally.
func New(renderer Renderer, ratings RatingSource) *Controller {
	return &Controller{
		renderer: renderer,
		ratings:  ratings,
		phase:    Configuring,
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Start begins a session over the given queue. An empty queue is declined:
// the controller stays in Configuring and nothing is rendered, so the caller
// can surface "not enough material" and offer a different policy. Returns
// whether the session actually started.
func (c *Controller) Start(queue []models.QueueItem) bool {
	if c.phase != Configuring || len(queue) == 0 {
		return false
	}
	c.queue = queue
	c.index = 0
	c.completed = 0
	c.skipped = 0
	c.completedKeys = nil
	c.phase = Active
	c.renderer.RenderItem(c.queue[0], 0, len(c.queue))
	return true
}

// Current returns the item being presented, if the session is active.
func (c *Controller) Current() (models.QueueItem, bool) {
	if c.phase != Active {
		return models.QueueItem{}, false
	}
	return c.queue[c.index], true
}

// Advance records the outcome for the current item and moves to the next one,
// re-rendering if the session is still active and rendering the results
// summary once the queue is exhausted.
func (c *Controller) Advance(outcome Outcome) {
	if c.phase != Active {
		return
	}
	switch outcome {
	case OutcomeSkipped:
		c.skipped++
	default:
		c.completed++
		c.completedKeys = append(c.completedKeys, c.queue[c.index].Key)
	}
	c.index++
	if c.index < len(c.queue) {
		c.renderer.RenderItem(c.queue[c.index], c.index, len(c.queue))
		return
	}
	c.phase = Complete
	c.renderer.RenderResults(c.Results())
}

// Results computes the session summary from the running tallies and the
// rating source.
func (c *Controller) Results() models.SessionResult {
	result := models.SessionResult{
		Total:     len(c.queue),
		Completed: c.completed,
		Skipped:   c.skipped,
		Ratings:   make(map[models.Quality]int),
	}
	if c.ratings == nil {
		return result
	}
	// Skipped items keep whatever rating an earlier session gave them; only
	// items actually worked this session belong in the tally
	for _, key := range c.completedKeys {
		if rating, ok := c.ratings.LastRating(key); ok {
			result.Ratings[rating]++
		}
	}
	return result
}
