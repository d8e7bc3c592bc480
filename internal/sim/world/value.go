package world

// Value selects where a command reads and writes: the unit's local bag, the
// city globals, or a named map at the context cell. The set is closed; rules
// never see any other storage.
type Value interface {
	Get(ctx *RuleContext) uint32
	CanAdd(ctx *RuleContext, n uint32) bool
	CanRemove(ctx *RuleContext, n uint32) bool
	Add(ctx *RuleContext, n uint32)
	Remove(ctx *RuleContext, n uint32)
	Name() string
}

type localValue struct {
	resource string
}

func LocalValue(resource string) Value { return localValue{resource} }

func (v localValue) Get(ctx *RuleContext) uint32 { return ctx.Locals.Amount(v.resource) }
func (v localValue) CanAdd(ctx *RuleContext, n uint32) bool {
	return ctx.Locals.CanAdd(v.resource, n)
}
func (v localValue) CanRemove(ctx *RuleContext, n uint32) bool {
	return ctx.Locals.CanRemove(v.resource, n)
}
func (v localValue) Add(ctx *RuleContext, n uint32)    { ctx.Locals.Add(v.resource, n) }
func (v localValue) Remove(ctx *RuleContext, n uint32) { ctx.Locals.Remove(v.resource, n) }
func (v localValue) Name() string                      { return v.resource }

type globalValue struct {
	resource string
}

func GlobalValue(resource string) Value { return globalValue{resource} }

func (v globalValue) Get(ctx *RuleContext) uint32 { return ctx.Globals.Amount(v.resource) }
func (v globalValue) CanAdd(ctx *RuleContext, n uint32) bool {
	return ctx.Globals.CanAdd(v.resource, n)
}
func (v globalValue) CanRemove(ctx *RuleContext, n uint32) bool {
	return ctx.Globals.CanRemove(v.resource, n)
}
func (v globalValue) Add(ctx *RuleContext, n uint32)    { ctx.Globals.Add(v.resource, n) }
func (v globalValue) Remove(ctx *RuleContext, n uint32) { ctx.Globals.Remove(v.resource, n) }
func (v globalValue) Name() string                      { return v.resource }

// mapValue addresses the named map at (ctx.U, ctx.V). With a zero radius it
// acts on the single cell; otherwise reads sum the Chebyshev disk and writes
// scatter over it.
type mapValue struct {
	mapName string
}

func MapValue(mapName string) Value { return mapValue{mapName} }

func (v mapValue) grid(ctx *RuleContext) *Map { return ctx.City.MapByName(v.mapName) }

func (v mapValue) Get(ctx *RuleContext) uint32 {
	m := v.grid(ctx)
	if m == nil {
		return 0
	}
	return m.Resource(ctx.U, ctx.V, ctx.Radius)
}

func (v mapValue) CanAdd(ctx *RuleContext, n uint32) bool {
	m := v.grid(ctx)
	if m == nil {
		return false
	}
	return m.CanAdd(ctx.U, ctx.V, ctx.Radius, n)
}

func (v mapValue) CanRemove(ctx *RuleContext, n uint32) bool {
	m := v.grid(ctx)
	if m == nil {
		return false
	}
	return m.Resource(ctx.U, ctx.V, ctx.Radius) >= n
}

func (v mapValue) Add(ctx *RuleContext, n uint32) {
	if m := v.grid(ctx); m != nil {
		if ctx.Radius == 0 {
			m.Add(ctx.U, ctx.V, n)
		} else {
			m.AddRadius(ctx.U, ctx.V, ctx.Radius, n)
		}
	}
}

func (v mapValue) Remove(ctx *RuleContext, n uint32) {
	if m := v.grid(ctx); m != nil {
		if ctx.Radius == 0 {
			m.Remove(ctx.U, ctx.V, n)
		} else {
			m.RemoveRadius(ctx.U, ctx.V, ctx.Radius, n)
		}
	}
}

func (v mapValue) Name() string { return v.mapName }
