package world

import "fmt"

// City owns one world region: its scalar maps, its path graph, the units
// bound to nodes and the agents in flight, plus a global resource bag shared
// by every rule running inside the city.
type City struct {
	name     string
	position Vec3
	gridU    uint32
	gridV    uint32

	globals *Resources

	maps     map[string]*Map
	mapOrder []*Map

	paths     map[string]*Path
	pathOrder []*Path

	units  []*Unit
	agents []*Agent

	nextUnitID  uint32
	nextAgentID uint32

	sim *Simulation
}

func newCity(sim *Simulation, name string, position Vec3) *City {
	return &City{
		name:     name,
		position: position,
		gridU:    sim.gridU,
		gridV:    sim.gridV,
		globals:  NewResources(),
		maps:     map[string]*Map{},
		paths:    map[string]*Path{},
		sim:      sim,
	}
}

func (c *City) Name() string        { return c.name }
func (c *City) Position() Vec3      { return c.position }
func (c *City) GridU() uint32       { return c.gridU }
func (c *City) GridV() uint32       { return c.gridV }
func (c *City) Globals() *Resources { return c.globals }
func (c *City) Maps() []*Map        { return c.mapOrder }
func (c *City) Paths() []*Path      { return c.pathOrder }
func (c *City) Units() []*Unit      { return c.units }
func (c *City) Agents() []*Agent    { return c.agents }

func (c *City) MapByName(n string) *Map   { return c.maps[n] }
func (c *City) PathByName(n string) *Path { return c.paths[n] }

// WorldToMap converts a world position to grid cell coordinates, clamped to
// the grid.
func (c *City) WorldToMap(pos Vec3) (u, v uint32) {
	x := (pos.X - c.position.X) / GridSize
	y := (pos.Y - c.position.Y) / GridSize

	switch {
	case x <= 0:
		u = 0
	case uint32(x) >= c.gridU:
		u = c.gridU - 1
	default:
		u = uint32(x)
	}
	switch {
	case y <= 0:
		v = 0
	case uint32(y) >= c.gridV:
		v = c.gridV - 1
	default:
		v = uint32(y)
	}
	return u, v
}

// AddMap creates the grid for a map type. Map names are unique per city.
func (c *City) AddMap(kind *MapType) (*Map, error) {
	if _, dup := c.maps[kind.Name]; dup {
		return nil, fmt.Errorf("city %s: duplicate map %q", c.name, kind.Name)
	}
	m := newMap(kind, c)
	c.maps[kind.Name] = m
	c.mapOrder = append(c.mapOrder, m)
	return m, nil
}

// AddPath creates an empty path graph. Path names are unique per city.
func (c *City) AddPath(kind *PathType) (*Path, error) {
	if _, dup := c.paths[kind.Name]; dup {
		return nil, fmt.Errorf("city %s: duplicate path %q", c.name, kind.Name)
	}
	p := NewPath(kind)
	c.paths[kind.Name] = p
	c.pathOrder = append(c.pathOrder, p)
	return p, nil
}

// AddUnit binds a new unit to an existing node.
func (c *City) AddUnit(kind *UnitType, node *Node) *Unit {
	u := newUnit(c.nextUnitID, kind, node, c)
	c.nextUnitID++
	c.units = append(c.units, u)
	c.sim.listener.OnUnitAdded(u)
	return u
}

// AddUnitOnWay places a unit at parameter t along a way of the given path.
// Interior parameters split the way and bind the unit to the new node;
// endpoints reuse the existing endpoint node.
func (c *City) AddUnitOnWay(kind *UnitType, path *Path, way *Way, t float32) (*Unit, error) {
	owned := false
	for _, w := range path.ways {
		if w == way {
			owned = true
			break
		}
	}
	if !owned {
		return nil, fmt.Errorf("city %s: way %d does not belong to path %q", c.name, way.id, path.Name())
	}

	var node *Node
	switch {
	case t <= 0:
		node = way.from
	case t >= 1:
		node = way.to
	default:
		var err error
		node, err = path.SplitWay(way, t)
		if err != nil {
			return nil, err
		}
	}
	return c.AddUnit(kind, node), nil
}

// AddAgent spawns an agent at a node, searching for the named target. The
// agent plans its route immediately; one without a reachable destination
// still spawns and dies on its first update so listener callbacks stay
// symmetric.
func (c *City) AddAgent(kind *AgentType, from *Node, target string, payload *Resources) *Agent {
	a := newAgent(c.nextAgentID, kind, from, target, payload)
	c.nextAgentID++
	c.agents = append(c.agents, a)
	c.sim.listener.OnAgentAdded(a)
	return a
}

// Translate moves the city and everything anchored to it.
func (c *City) Translate(dir Vec3) {
	c.position = c.position.Add(dir)
	for _, p := range c.pathOrder {
		p.translate(dir)
	}
	for _, a := range c.agents {
		a.position = a.position.Add(dir)
	}
	for _, m := range c.mapOrder {
		m.position = m.position.Add(dir)
	}
}

// update advances the city one tick: maps, then units, then agents, each in
// insertion order. Finished agents are compacted out after the pass.
func (c *City) update() {
	for _, m := range c.mapOrder {
		m.executeRules(c, c.sim.rng)
	}

	for _, u := range c.units {
		u.executeRules()
	}

	live := c.agents[:0]
	for _, a := range c.agents {
		if a.update(c) {
			c.sim.listener.OnAgentRemoved(a)
			continue
		}
		live = append(live, a)
	}
	for i := len(live); i < len(c.agents); i++ {
		c.agents[i] = nil
	}
	c.agents = live
}
