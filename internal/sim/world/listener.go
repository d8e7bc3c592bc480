package world

// Listener is the single callback sink of a simulation. Callbacks fire
// synchronously from the tick loop; implementations must not mutate world
// state and should hand heavy work to their own goroutines.
type Listener interface {
	OnCityAdded(c *City)
	OnUnitAdded(u *Unit)
	OnAgentAdded(a *Agent)
	OnAgentRemoved(a *Agent)

	// OnWarning surfaces non-fatal runtime conditions, e.g. an agent
	// spawned with no reachable target. Warnings never halt the tick.
	OnWarning(c *City, msg string)
}

// NopListener discards every callback.
type NopListener struct{}

func (NopListener) OnCityAdded(*City)       {}
func (NopListener) OnUnitAdded(*Unit)       {}
func (NopListener) OnAgentAdded(*Agent)     {}
func (NopListener) OnAgentRemoved(*Agent)   {}
func (NopListener) OnWarning(*City, string) {}
