package world

import "testing"

func TestPath_AddNodeAddWay(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{X: 0})
	b := p.AddNode(Vec3{X: 100})
	w := p.AddWay(&WayType{Name: "Dirt"}, a, b)

	if w.Magnitude() != 100 {
		t.Fatalf("magnitude: got %v want 100", w.Magnitude())
	}
	if !a.HasWays() || !b.HasWays() {
		t.Fatalf("both endpoints must list the way")
	}
	if a.WayTo(b) != w || b.WayTo(a) != w {
		t.Fatalf("WayTo must find the joining way from either side")
	}
	if a.ID() == b.ID() {
		t.Fatalf("node ids must be unique")
	}
}

func TestPath_SplitWayRejectsEndpoints(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 100})
	w := p.AddWay(&WayType{Name: "Dirt"}, a, b)

	for _, bad := range []float32{0, 1, -0.5, 1.5} {
		if _, err := p.SplitWay(w, bad); err == nil {
			t.Fatalf("t=%v must be rejected", bad)
		}
	}
}

func TestPath_SplitWayRewiresReferences(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 100})
	w := p.AddWay(&WayType{Name: "Dirt"}, a, b)

	mid, err := p.SplitWay(w, 0.25)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if got := mid.Position(); got.X != 25 {
		t.Fatalf("split node position: got %v want x=25", got)
	}
	if w.To() != mid || w.From() != a {
		t.Fatalf("original way must now end at the split node")
	}
	if w.Magnitude() != 25 {
		t.Fatalf("shrunk magnitude: got %v want 25", w.Magnitude())
	}

	second := mid.WayTo(b)
	if second == nil || second.Magnitude() != 75 {
		t.Fatalf("second segment missing or wrong length")
	}
	for _, ow := range b.Ways() {
		if ow == w {
			t.Fatalf("destination must no longer reference the shrunk way")
		}
	}
	if len(p.Ways()) != 2 || len(p.Nodes()) != 3 {
		t.Fatalf("path must own 2 ways and 3 nodes after split")
	}
}

func TestPath_SplitWayPreservesUnitPosition(t *testing.T) {
	sim, c := testCity(t, 32, 32)
	_ = sim

	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 100})
	w := road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	kind := &UnitType{Name: "Home", Resources: NewResources()}
	u, err := c.AddUnitOnWay(kind, road, w, 0.7)
	if err != nil {
		t.Fatalf("add unit: %v", err)
	}
	if got := u.Position(); got.X != 70 {
		t.Fatalf("unit placed at world position: got %v want x=70", got)
	}

	// Split the first segment again; the unit's node and position must not
	// move, and the route n0..n1 must still measure 100.
	if _, err := road.SplitWay(w, 0.5); err != nil {
		t.Fatalf("second split: %v", err)
	}
	if got := u.Position(); got.X != 70 {
		t.Fatalf("unit position after split: got %v want x=70", got)
	}

	nodes, ways, ok := FindPath(n0, func(n *Node) bool { return n == n1 })
	if !ok {
		t.Fatalf("graph must stay connected")
	}
	var total float32
	for _, w := range ways {
		total += w.Magnitude()
	}
	if total != 100 {
		t.Fatalf("route length after splits: got %v want 100", total)
	}
	if nodes[len(nodes)-1] != n1 {
		t.Fatalf("route must end at n1")
	}
}

func TestCity_AddUnitOnWayEndpoints(t *testing.T) {
	_, c := testCity(t, 32, 32)
	road, err := c.AddPath(&PathType{Name: "Road"})
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	n0 := road.AddNode(Vec3{})
	n1 := road.AddNode(Vec3{X: 100})
	w := road.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	kind := &UnitType{Name: "Home", Resources: NewResources()}

	u0, err := c.AddUnitOnWay(kind, road, w, 0)
	if err != nil {
		t.Fatalf("t=0: %v", err)
	}
	if u0.Node() != n0 {
		t.Fatalf("t=0 must reuse the origin node")
	}

	u1, err := c.AddUnitOnWay(kind, road, w, 1)
	if err != nil {
		t.Fatalf("t=1: %v", err)
	}
	if u1.Node() != n1 {
		t.Fatalf("t=1 must reuse the destination node")
	}
	if len(road.Ways()) != 1 {
		t.Fatalf("endpoint placement must not split the way")
	}
}

func TestCity_AddUnitOnWayWrongPath(t *testing.T) {
	_, c := testCity(t, 32, 32)
	roadA, _ := c.AddPath(&PathType{Name: "A"})
	roadB, _ := c.AddPath(&PathType{Name: "B"})

	n0 := roadA.AddNode(Vec3{})
	n1 := roadA.AddNode(Vec3{X: 10})
	w := roadA.AddWay(&WayType{Name: "Dirt"}, n0, n1)

	kind := &UnitType{Name: "Home", Resources: NewResources()}
	if _, err := c.AddUnitOnWay(kind, roadB, w, 0.5); err == nil {
		t.Fatalf("way from another path must be rejected")
	}
}
