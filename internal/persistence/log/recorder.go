package log

import (
	"glassbox/internal/sim/world"
)

// TickLogEntry is one line of the tick log: everything that happened on one
// tick plus the resulting state digest.
type TickLogEntry struct {
	Tick   uint64          `json:"tick"`
	Events []RecordedEvent `json:"events,omitempty"`
	Digest string          `json:"digest"`
	Agents int             `json:"agents"`
}

// RecordedEvent is a listener callback flattened for the log.
type RecordedEvent struct {
	Kind       string `json:"kind"`
	City       string `json:"city,omitempty"`
	EntityID   uint32 `json:"entity_id,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Recorder buffers listener callbacks between ticks. It runs on the
// simulation goroutine; the runner drains it after each tick.
type Recorder struct {
	events []RecordedEvent
}

var _ world.Listener = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) OnCityAdded(c *world.City) {
	r.events = append(r.events, RecordedEvent{Kind: "CITY_ADDED", City: c.Name()})
}

func (r *Recorder) OnUnitAdded(u *world.Unit) {
	r.events = append(r.events, RecordedEvent{
		Kind:       "UNIT_ADDED",
		EntityID:   u.ID(),
		EntityType: u.Type().Name,
	})
}

func (r *Recorder) OnAgentAdded(a *world.Agent) {
	r.events = append(r.events, RecordedEvent{
		Kind:       "AGENT_ADDED",
		EntityID:   a.ID(),
		EntityType: a.Type().Name,
	})
}

func (r *Recorder) OnAgentRemoved(a *world.Agent) {
	r.events = append(r.events, RecordedEvent{
		Kind:       "AGENT_REMOVED",
		EntityID:   a.ID(),
		EntityType: a.Type().Name,
	})
}

func (r *Recorder) OnWarning(c *world.City, msg string) {
	r.events = append(r.events, RecordedEvent{Kind: "WARNING", City: c.Name(), Detail: msg})
}

// Drain returns the buffered events and resets the buffer.
func (r *Recorder) Drain() []RecordedEvent {
	out := r.events
	r.events = nil
	return out
}
