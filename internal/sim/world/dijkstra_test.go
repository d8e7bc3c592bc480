package world

import "testing"

func TestFindPath_ShortestRoute(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 10})
	c := p.AddNode(Vec3{X: 10, Y: 40})
	d := p.AddNode(Vec3{X: 20})

	dirt := &WayType{Name: "Dirt"}
	p.AddWay(dirt, a, b)
	p.AddWay(dirt, b, d) // a-b-d: 20
	p.AddWay(dirt, a, c)
	p.AddWay(dirt, c, d) // a-c-d: ~82

	nodes, ways, ok := FindPath(a, func(n *Node) bool { return n == d })
	if !ok {
		t.Fatalf("route must exist")
	}
	if len(nodes) != 3 || nodes[1] != b {
		t.Fatalf("must route through the short branch")
	}
	var total float32
	for _, w := range ways {
		total += w.Magnitude()
	}
	if total != 20 {
		t.Fatalf("route length: got %v want 20", total)
	}
}

func TestFindPath_DiamondTieBreakIsDeterministic(t *testing.T) {
	build := func() (*Path, *Node, *Node, *Node, *Node) {
		p := NewPath(&PathType{Name: "Road"})
		s := p.AddNode(Vec3{})            // id 0
		l := p.AddNode(Vec3{X: 3, Y: 4})  // id 1
		r := p.AddNode(Vec3{X: 3, Y: -4}) // id 2
		g := p.AddNode(Vec3{X: 6})        // id 3
		dirt := &WayType{Name: "Dirt"}
		p.AddWay(dirt, s, l)
		p.AddWay(dirt, s, r)
		p.AddWay(dirt, l, g)
		p.AddWay(dirt, r, g)
		return p, s, l, r, g
	}

	_, s, l, _, g := build()
	for i := 0; i < 50; i++ {
		nodes, _, ok := FindPath(s, func(n *Node) bool { return n == g })
		if !ok {
			t.Fatalf("route must exist")
		}
		if len(nodes) != 3 {
			t.Fatalf("diamond route has 3 nodes, got %d", len(nodes))
		}
		if nodes[1] != l {
			t.Fatalf("iteration %d: equal-length tie must break to the lower node id", i)
		}
	}
}

func TestFindPath_AcceptsStartNode(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 5})
	p.AddWay(&WayType{Name: "Dirt"}, a, b)

	nodes, ways, ok := FindPath(a, func(n *Node) bool { return true })
	if !ok || len(nodes) != 1 || nodes[0] != a || len(ways) != 0 {
		t.Fatalf("an accepted start node yields the empty route")
	}
}

func TestFindPath_DisconnectedYieldsNoRoute(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 5})
	island := p.AddNode(Vec3{X: 100})
	p.AddWay(&WayType{Name: "Dirt"}, a, b)

	if _, _, ok := FindPath(a, func(n *Node) bool { return n == island }); ok {
		t.Fatalf("disconnected goal must be unreachable")
	}
}

func TestFindPath_PicksShortestParallelWay(t *testing.T) {
	p := NewPath(&PathType{Name: "Road"})
	a := p.AddNode(Vec3{})
	b := p.AddNode(Vec3{X: 10})
	dirt := &WayType{Name: "Dirt"}
	long := p.AddWay(dirt, a, b)
	long.magnitude = 50 // pretend a detour between the same endpoints
	short := p.AddWay(dirt, a, b)

	_, ways, ok := FindPath(a, func(n *Node) bool { return n == b })
	if !ok || len(ways) != 1 {
		t.Fatalf("route must exist with one hop")
	}
	if ways[0] != short {
		t.Fatalf("reconstruction must pick the minimum-magnitude way")
	}
}
