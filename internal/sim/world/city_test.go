package world

import "testing"

func TestCity_WorldToMapClamps(t *testing.T) {
	sim := NewSimulation(8, 8, 0)
	c, err := sim.AddCity("Test", Vec3{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("add city: %v", err)
	}

	for _, tc := range []struct {
		pos  Vec3
		u, v uint32
	}{
		{Vec3{X: 10, Y: 10}, 0, 0},
		{Vec3{X: 13.5, Y: 12.2}, 3, 2},
		{Vec3{X: 0, Y: 0}, 0, 0},       // west/south of origin clamps to 0
		{Vec3{X: 500, Y: 500}, 7, 7},   // past the far edge clamps to U-1
		{Vec3{X: 17.9, Y: 10}, 7, 0},   // just inside the last column
	} {
		u, v := c.WorldToMap(tc.pos)
		if u != tc.u || v != tc.v {
			t.Fatalf("pos %+v: got (%d,%d) want (%d,%d)", tc.pos, u, v, tc.u, tc.v)
		}
	}
}

func TestCity_DuplicateNamesRejected(t *testing.T) {
	sim := NewSimulation(4, 4, 0)
	if _, err := sim.AddCity("Paris", Vec3{}); err != nil {
		t.Fatalf("add city: %v", err)
	}
	if _, err := sim.AddCity("Paris", Vec3{}); err == nil {
		t.Fatalf("duplicate city must be rejected")
	}

	c := sim.City("Paris")
	if c == nil {
		t.Fatalf("lookup must find Paris")
	}
	if _, err := c.AddMap(&MapType{Name: "Grass", Capacity: 10}); err != nil {
		t.Fatalf("add map: %v", err)
	}
	if _, err := c.AddMap(&MapType{Name: "Grass", Capacity: 10}); err == nil {
		t.Fatalf("duplicate map must be rejected")
	}
	if _, err := c.AddPath(&PathType{Name: "Road"}); err != nil {
		t.Fatalf("add path: %v", err)
	}
	if _, err := c.AddPath(&PathType{Name: "Road"}); err == nil {
		t.Fatalf("duplicate path must be rejected")
	}
}

func TestCity_UpdateRunsMapsBeforeUnits(t *testing.T) {
	// A unit rule gated on the cell value observes the map rule's write from
	// the same tick: maps update first.
	mapKind := &MapType{Name: "Water", Capacity: 100}
	mapKind.Rules = []*MapRule{
		NewMapRule("Fill", 1, false, 0, []Command{NewAddCommand(MapValue("Water"), 1)}),
	}

	sim, c := testCity(t, 2, 2)
	m := addTestMap(t, c, mapKind)
	_ = m

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n := road.AddNode(Vec3{})
	other := road.AddNode(Vec3{X: 1})
	road.AddWay(&WayType{Name: "Dirt"}, n, other)

	tpl := NewResources()
	tpl.AddType("Seen", 100)
	unit := c.AddUnit(&UnitType{
		Name:      "Sensor",
		Resources: tpl,
		Rules: []*UnitRule{NewUnitRule("Sense", 1, []Command{
			NewTestCommand(MapValue("Water"), Greater, 0),
			NewAddCommand(LocalValue("Seen"), 1),
		})},
	}, n)

	sim.Step()
	if got := unit.Resources().Amount("Seen"); got != 1 {
		t.Fatalf("unit must observe the map write of the same tick: got %d want 1", got)
	}
}

func TestCity_GlobalsSharedAcrossUnits(t *testing.T) {
	sim, c := testCity(t, 4, 4)

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 1})
	road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	producer := &UnitType{
		Name:      "Mine",
		Resources: NewResources(),
		Rules:     []*UnitRule{NewUnitRule("Dig", 1, []Command{NewAddCommand(GlobalValue("Coal"), 2)})},
	}
	sinkTpl := NewResources()
	sinkTpl.AddType("Coal", 100)
	consumer := &UnitType{
		Name:      "Forge",
		Resources: sinkTpl,
		Rules: []*UnitRule{NewUnitRule("Burn", 1, []Command{
			NewRemoveCommand(GlobalValue("Coal"), 1),
			NewAddCommand(LocalValue("Coal"), 1),
		})},
	}

	c.AddUnit(producer, n0)
	forge := c.AddUnit(consumer, n1)

	sim.Step()
	// Units run in insertion order: Mine adds 2, Forge moves 1 into its bag.
	if got := c.Globals().Amount("Coal"); got != 1 {
		t.Fatalf("globals after tick: got %d want 1", got)
	}
	if got := forge.Resources().Amount("Coal"); got != 1 {
		t.Fatalf("forge bag: got %d want 1", got)
	}
}

func TestCity_TranslateMovesEverything(t *testing.T) {
	sim, c := testCity(t, 8, 8)
	_ = sim

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{X: 1})
	n1 := road.AddNode(Vec3{X: 5})
	w := road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	payload := NewResources()
	a := c.AddAgent(&AgentType{Name: "People", Speed: 1}, n0, "Nowhere", payload)

	c.Translate(Vec3{X: 10, Y: 2})

	if got := c.Position(); got.X != 10 || got.Y != 2 {
		t.Fatalf("city position: got %+v", got)
	}
	if got := n0.Position(); got.X != 11 || got.Y != 2 {
		t.Fatalf("node position: got %+v", got)
	}
	if got := a.Position(); got.X != 11 || got.Y != 2 {
		t.Fatalf("agent position: got %+v", got)
	}
	if w.Magnitude() != 4 {
		t.Fatalf("way magnitude unchanged by translation: got %v", w.Magnitude())
	}
}
