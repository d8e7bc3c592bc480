package world

import "testing"

type countingListener struct {
	NopListener
	added    int
	removed  int
	warnings []string
}

func (l *countingListener) OnAgentAdded(a *Agent)         { l.added++ }
func (l *countingListener) OnAgentRemoved(a *Agent)       { l.removed++ }
func (l *countingListener) OnWarning(c *City, msg string) { l.warnings = append(l.warnings, msg) }

// commuteFixture builds the People -> Work scenario: Home and Work joined by
// a single way of magnitude 100, Home sending one People per tick at agent
// speed 50.
func commuteFixture(t *testing.T) (*Simulation, *Unit, *Unit, *countingListener) {
	t.Helper()
	sim, c := testCity(t, 32, 32)
	listener := &countingListener{}
	sim.SetListener(listener)

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 100})
	road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	homeTpl := NewResources()
	homeTpl.AddType("People", 4)
	homeTpl.Add("People", 4)

	payload := NewResources()
	payload.Add("People", 1)

	people := &AgentType{Name: "People", Speed: 50}
	home := c.AddUnit(&UnitType{
		Name:      "Home",
		Targets:   []string{"Home"},
		Resources: homeTpl,
		Rules: []*UnitRule{NewUnitRule("Send", 1, []Command{
			NewRemoveCommand(LocalValue("People"), 1),
			NewSpawnCommand(people, "Work", payload),
		})},
	}, n0)

	workTpl := NewResources()
	workTpl.AddType("People", 4)
	work := c.AddUnit(&UnitType{
		Name:      "Work",
		Targets:   []string{"Work"},
		Resources: workTpl,
	}, n1)

	return sim, home, work, listener
}

func TestAgent_CommuteDeliversOnTick400(t *testing.T) {
	sim, home, work, _ := commuteFixture(t)

	sim.Step()
	if got := home.Resources().Amount("People"); got != 3 {
		t.Fatalf("after first tick Home People: got %d want 3", got)
	}
	if got := len(sim.Cities()[0].Agents()); got != 1 {
		t.Fatalf("one agent in flight after first tick: got %d", got)
	}

	// Speed 50 covers 0.25 per tick; 100 units take 400 ticks. The first
	// agent spawned on tick 1 arrives on tick 400.
	for sim.Tick() < 399 {
		sim.Step()
	}
	if got := work.Resources().Amount("People"); got != 0 {
		t.Fatalf("tick 399: Work must still be empty, got %d", got)
	}

	sim.Step()
	if got := work.Resources().Amount("People"); got != 1 {
		t.Fatalf("tick 400: first delivery, got %d want 1", got)
	}
}

func TestAgent_HomeDrainsAndFleetIsBounded(t *testing.T) {
	sim, home, _, _ := commuteFixture(t)

	for i := 0; i < 10; i++ {
		sim.Step()
	}
	if got := home.Resources().Amount("People"); got != 0 {
		t.Fatalf("Home drains one per tick for 4 ticks: got %d want 0", got)
	}
	if got := len(sim.Cities()[0].Agents()); got != 4 {
		t.Fatalf("exactly 4 agents ever spawn: got %d", got)
	}
}

func TestAgent_OffsetStaysInsideCurrentWay(t *testing.T) {
	sim, _, _, _ := commuteFixture(t)

	for i := 0; i < 500; i++ {
		sim.Step()
		for _, a := range sim.Cities()[0].Agents() {
			w := a.CurrentWay()
			if w == nil {
				continue
			}
			if a.Offset() < 0 || a.Offset() > w.Magnitude() {
				t.Fatalf("tick %d: offset %v outside way of magnitude %v", sim.Tick(), a.Offset(), w.Magnitude())
			}
		}
	}
}

func TestAgent_PositionLerpsAlongWay(t *testing.T) {
	sim, _, _, _ := commuteFixture(t)

	sim.Step() // spawn + first advance of 0.25
	a := sim.Cities()[0].Agents()[0]
	if got := a.Position().X; got != 0.25 {
		t.Fatalf("position after one tick: got x=%v want 0.25", got)
	}

	sim.Step()
	if got := a.Position().X; got != 0.5 {
		t.Fatalf("position after two ticks: got x=%v want 0.5", got)
	}
}

func TestAgent_ListenerCallbacksAreSymmetric(t *testing.T) {
	sim, _, _, listener := commuteFixture(t)

	// 4 spawns, then every agent delivers within 403 ticks.
	for i := 0; i < 420; i++ {
		sim.Step()
	}
	if listener.added != 4 {
		t.Fatalf("OnAgentAdded: got %d want 4", listener.added)
	}
	if listener.removed != 4 {
		t.Fatalf("OnAgentRemoved: got %d want 4", listener.removed)
	}
	if got := len(sim.Cities()[0].Agents()); got != 0 {
		t.Fatalf("no agents left in flight: got %d", got)
	}
}

func TestAgent_NoTargetSpawnsThenDies(t *testing.T) {
	sim, c := testCity(t, 32, 32)
	listener := &countingListener{}
	sim.SetListener(listener)

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 10})
	road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	tpl := NewResources()
	tpl.AddType("People", 4)
	tpl.Add("People", 4)
	payload := NewResources()
	payload.Add("People", 1)

	c.AddUnit(&UnitType{
		Name:      "Home",
		Resources: tpl,
		Rules: []*UnitRule{NewUnitRule("Send", 40, []Command{
			NewRemoveCommand(LocalValue("People"), 1),
			NewSpawnCommand(&AgentType{Name: "People", Speed: 50}, "Nowhere", payload),
		})},
	}, n0)

	// Tick 40 spawns the agent; it dies on its first update, the same tick.
	for i := 0; i < 40; i++ {
		sim.Step()
	}
	if listener.added != 1 || listener.removed != 1 {
		t.Fatalf("spawn-then-die must fire both callbacks: added=%d removed=%d", listener.added, listener.removed)
	}
	if len(listener.warnings) == 0 {
		t.Fatalf("a doomed agent must emit a warning")
	}
	if got := len(c.Agents()); got != 0 {
		t.Fatalf("doomed agent must be gone: got %d", got)
	}
}

func TestAgent_MultiHopRouteCarriesOver(t *testing.T) {
	sim, c := testCity(t, 32, 32)

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 3})
	n2 := road.AddNode(Vec3{X: 10})
	dirt := &WayType{Name: "Dirt"}
	road.AddWay(dirt, n0, n1)
	road.AddWay(dirt, n1, n2)

	tpl := NewResources()
	tpl.AddType("People", 1)
	tpl.Add("People", 1)
	payload := NewResources()
	payload.Add("People", 1)

	c.AddUnit(&UnitType{
		Name:      "Home",
		Resources: tpl,
		Rules: []*UnitRule{NewUnitRule("Send", 1, []Command{
			NewRemoveCommand(LocalValue("People"), 1),
			NewSpawnCommand(&AgentType{Name: "People", Speed: 400}, "Work", payload),
		})},
	}, n0)

	workTpl := NewResources()
	workTpl.AddType("People", 4)
	work := c.AddUnit(&UnitType{
		Name:      "Work",
		Targets:   []string{"Work"},
		Resources: workTpl,
	}, n2)

	// Speed 400 advances 2 per tick: ticks 1 and 2 cross the 3-long first
	// way mid-edge, delivery on tick 5 after 10 units of travel.
	for i := 0; i < 5; i++ {
		sim.Step()
	}
	if got := work.Resources().Amount("People"); got != 1 {
		t.Fatalf("multi-hop delivery: got %d want 1", got)
	}
}
