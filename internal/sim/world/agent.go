package world

// Agent is a mobile entity spawned by a unit rule. Its route is planned once
// at spawn time: Dijkstra to the nearest unit accepting (target, payload).
// Each tick it advances speed*TickInterval along the way sequence, delivers
// on arrival and self-destructs.
type Agent struct {
	id      uint32
	kind    *AgentType
	target  string
	payload *Resources

	nodes  []*Node
	ways   []*Way
	seg    int
	offset float32

	position Vec3
	routed   bool
}

func newAgent(id uint32, kind *AgentType, from *Node, target string, payload *Resources) *Agent {
	a := &Agent{
		id:       id,
		kind:     kind,
		target:   target,
		payload:  payload,
		position: from.position,
	}
	a.nodes, a.ways, a.routed = FindPath(from, func(n *Node) bool {
		for _, u := range n.units {
			if u.Accepts(target, payload) {
				return true
			}
		}
		return false
	})
	return a
}

func (a *Agent) ID() uint32          { return a.id }
func (a *Agent) Type() *AgentType    { return a.kind }
func (a *Agent) Target() string      { return a.target }
func (a *Agent) Payload() *Resources { return a.payload }
func (a *Agent) Position() Vec3      { return a.position }
func (a *Agent) Offset() float32     { return a.offset }

// CurrentWay returns the way being traversed, nil once the route is spent.
func (a *Agent) CurrentWay() *Way {
	if !a.routed || a.seg >= len(a.ways) {
		return nil
	}
	return a.ways[a.seg]
}

// update advances the agent one tick. It reports true when the agent is
// finished and must be removed from the city.
func (a *Agent) update(city *City) bool {
	if !a.routed {
		// Spawned without a reachable destination: the listener hears about
		// both the birth and the death, the world state never changes.
		city.sim.listener.OnWarning(city, "agent "+a.kind.Name+" has no reachable "+a.target+" target")
		return true
	}

	if a.seg >= len(a.ways) {
		a.deliver()
		return true
	}

	a.offset += a.kind.Speed * TickInterval
	for a.seg < len(a.ways) && a.offset >= a.ways[a.seg].magnitude {
		a.offset -= a.ways[a.seg].magnitude
		a.seg++
	}

	if a.seg >= len(a.ways) {
		a.position = a.nodes[len(a.nodes)-1].position
		a.deliver()
		return true
	}

	from := a.nodes[a.seg]
	to := a.nodes[a.seg+1]
	a.position = Lerp(from.position, to.position, a.offset/a.ways[a.seg].magnitude)
	return false
}

// deliver transfers the payload into the destination unit, saturating each
// resource at the unit's capacity.
func (a *Agent) deliver() {
	dst := a.nodes[len(a.nodes)-1]
	for _, u := range dst.units {
		if u.Accepts(a.target, a.payload) {
			a.payload.TransferTo(u.resources)
			return
		}
	}
	// The destination filled up while the agent was travelling; hand over
	// whatever still fits to the first unit declaring the target.
	for _, u := range dst.units {
		for _, t := range u.kind.Targets {
			if t == a.target {
				a.payload.TransferTo(u.resources)
				return
			}
		}
	}
}
