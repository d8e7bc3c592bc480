package observer

import (
	"glassbox/internal/protocol"
	"glassbox/internal/sim/world"
)

// EventListener adapts simulation callbacks to wire events. It runs on the
// simulation goroutine; PublishEvent never blocks.
type EventListener struct {
	sim *world.Simulation
	srv *Server
}

var _ world.Listener = (*EventListener)(nil)

func NewEventListener(sim *world.Simulation, srv *Server) *EventListener {
	return &EventListener{sim: sim, srv: srv}
}

func (l *EventListener) event(kind string) protocol.EventMsg {
	return protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Tick:            l.sim.Tick(),
		Kind:            kind,
	}
}

func (l *EventListener) OnCityAdded(c *world.City) {
	ev := l.event(protocol.EventCityAdded)
	ev.City = c.Name()
	pos := c.Position()
	ev.Position = [3]float32{pos.X, pos.Y, pos.Z}
	l.srv.PublishEvent(ev)
}

func (l *EventListener) OnUnitAdded(u *world.Unit) {
	ev := l.event(protocol.EventUnitAdded)
	ev.EntityID = u.ID()
	ev.EntityType = u.Type().Name
	pos := u.Position()
	ev.Position = [3]float32{pos.X, pos.Y, pos.Z}
	l.srv.PublishEvent(ev)
}

func (l *EventListener) OnAgentAdded(a *world.Agent) {
	ev := l.event(protocol.EventAgentAdded)
	ev.EntityID = a.ID()
	ev.EntityType = a.Type().Name
	pos := a.Position()
	ev.Position = [3]float32{pos.X, pos.Y, pos.Z}
	l.srv.PublishEvent(ev)
}

func (l *EventListener) OnAgentRemoved(a *world.Agent) {
	ev := l.event(protocol.EventAgentRemoved)
	ev.EntityID = a.ID()
	ev.EntityType = a.Type().Name
	l.srv.PublishEvent(ev)
}

func (l *EventListener) OnWarning(c *world.City, msg string) {
	ev := l.event(protocol.EventWarning)
	ev.City = c.Name()
	ev.Detail = msg
	l.srv.PublishEvent(ev)
}
