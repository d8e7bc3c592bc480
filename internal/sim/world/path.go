package world

import "fmt"

// Node is a vertex of the path graph. Units attach to nodes; ways connect
// them.
type Node struct {
	id       uint32
	position Vec3
	ways     []*Way
	units    []*Unit
}

func (n *Node) ID() uint32     { return n.id }
func (n *Node) Position() Vec3 { return n.position }
func (n *Node) Ways() []*Way   { return n.ways }
func (n *Node) Units() []*Unit { return n.units }
func (n *Node) HasWays() bool  { return len(n.ways) > 0 }

func (n *Node) addUnit(u *Unit) { n.units = append(n.units, u) }

// WayTo returns a way joining this node to other, or nil. When several ways
// join the pair the shortest one wins, which keeps route reconstruction
// deterministic.
func (n *Node) WayTo(other *Node) *Way {
	var best *Way
	for _, w := range n.ways {
		if (w.from == n && w.to == other) || (w.to == n && w.from == other) {
			if best == nil || w.magnitude < best.magnitude {
				best = w
			}
		}
	}
	return best
}

func (n *Node) translate(dir Vec3) {
	n.position = n.position.Add(dir)
	for _, w := range n.ways {
		w.updateMagnitude()
	}
}

// Way is an edge of the path graph. Direction is cosmetic: agents traverse
// ways both forwards and backwards.
type Way struct {
	id        uint32
	kind      *WayType
	from      *Node
	to        *Node
	magnitude float32
}

func (w *Way) ID() uint32         { return w.id }
func (w *Way) Type() *WayType     { return w.kind }
func (w *Way) From() *Node        { return w.from }
func (w *Way) To() *Node          { return w.to }
func (w *Way) Magnitude() float32 { return w.magnitude }

func (w *Way) updateMagnitude() {
	w.magnitude = w.to.position.Sub(w.from.position).Magnitude()
}

// other returns the opposite endpoint, or nil when n is not incident.
func (w *Way) other(n *Node) *Node {
	switch n {
	case w.from:
		return w.to
	case w.to:
		return w.from
	}
	return nil
}

// Path owns a subgraph of nodes and ways within a city.
type Path struct {
	kind       *PathType
	nodes      []*Node
	ways       []*Way
	nextNodeID uint32
	nextWayID  uint32
}

func NewPath(kind *PathType) *Path { return &Path{kind: kind} }

func (p *Path) Type() *PathType { return p.kind }
func (p *Path) Name() string    { return p.kind.Name }
func (p *Path) Nodes() []*Node  { return p.nodes }
func (p *Path) Ways() []*Way    { return p.ways }

// AddNode creates a node at the given world position.
func (p *Path) AddNode(position Vec3) *Node {
	n := &Node{id: p.nextNodeID, position: position}
	p.nextNodeID++
	p.nodes = append(p.nodes, n)
	return n
}

// AddWay creates a way joining two nodes and registers it on both.
func (p *Path) AddWay(kind *WayType, from, to *Node) *Way {
	w := &Way{id: p.nextWayID, kind: kind, from: from, to: to}
	p.nextWayID++
	from.ways = append(from.ways, w)
	to.ways = append(to.ways, w)
	w.updateMagnitude()
	p.ways = append(p.ways, w)
	return w
}

// SplitWay inserts a node at fractional parameter t along the way and
// rewires the way into two segments, preserving every incident reference.
// Endpoints are rejected: splitting at t=0 or t=1 would create a degenerate
// zero-length way.
func (p *Path) SplitWay(w *Way, t float32) (*Node, error) {
	if t <= 0 || t >= 1 {
		return nil, fmt.Errorf("split way %d at t=%v: t must lie strictly inside (0,1)", w.id, t)
	}

	mid := p.AddNode(Lerp(w.from.position, w.to.position, t))

	// Second half: mid -> original destination.
	p.AddWay(w.kind, mid, w.to)

	// First half: shrink the original way to end at the new node.
	oldTo := w.to
	for i, ow := range oldTo.ways {
		if ow == w {
			oldTo.ways = append(oldTo.ways[:i], oldTo.ways[i+1:]...)
			break
		}
	}
	w.to = mid
	mid.ways = append(mid.ways, w)
	w.updateMagnitude()

	return mid, nil
}

func (p *Path) translate(dir Vec3) {
	for _, n := range p.nodes {
		n.translate(dir)
	}
}
