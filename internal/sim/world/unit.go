package world

// Unit is a stationary entity bound to a path node. It owns a resource bag
// cloned from its type template and runs the type's rules every tick.
type Unit struct {
	id        uint32
	kind      *UnitType
	node      *Node
	resources *Resources
	ticks     uint32
	ctx       RuleContext
}

func newUnit(id uint32, kind *UnitType, node *Node, city *City) *Unit {
	u := &Unit{
		id:        id,
		kind:      kind,
		node:      node,
		resources: kind.Resources.Clone(),
	}
	node.addUnit(u)

	mu, mv := city.WorldToMap(node.position)
	u.ctx = RuleContext{
		City:    city,
		Unit:    u,
		Locals:  u.resources,
		Globals: city.globals,
		U:       mu,
		V:       mv,
		Radius:  kind.Radius,
	}
	return u
}

func (u *Unit) ID() uint32            { return u.id }
func (u *Unit) Type() *UnitType       { return u.kind }
func (u *Unit) Node() *Node           { return u.node }
func (u *Unit) Position() Vec3        { return u.node.position }
func (u *Unit) Resources() *Resources { return u.resources }
func (u *Unit) HasWays() bool         { return u.node.HasWays() }

// executeRules runs the unit rules in reverse declaration order, each at its
// own rate. A zero rate disables a rule.
func (u *Unit) executeRules() {
	u.ticks++
	u.ctx.U, u.ctx.V = u.ctx.City.WorldToMap(u.node.position)
	for i := len(u.kind.Rules); i > 0; {
		i--
		rule := u.kind.Rules[i]
		if rule.Rate() == 0 || u.ticks%rule.Rate() != 0 {
			continue
		}
		rule.Execute(&u.ctx)
	}
}

// Accepts reports whether an agent searching for target may deliver payload
// here: the target name must be declared by the unit type and every carried
// resource must fit in the unit's bag.
func (u *Unit) Accepts(target string, payload *Resources) bool {
	found := false
	for _, t := range u.kind.Targets {
		if t == target {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, r := range payload.Container() {
		if r.Amount() == 0 {
			continue
		}
		if !u.resources.HasRoomFor(r.Name(), r.Amount()) {
			return false
		}
	}
	return true
}
