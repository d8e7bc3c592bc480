package world

// RuleContext carries everything a command needs to read or mutate state.
// The unit-local and map-location fields are refreshed by the caller before
// each execution.
type RuleContext struct {
	City    *City
	Unit    *Unit
	Locals  *Resources
	Globals *Resources
	U, V    uint32
	Radius  uint32
}

// Rule is an ordered list of commands fired every rate ticks. Execution is
// two-phase: every command must validate before any command executes, so a
// rule either applies completely or not at all. Both passes run in reverse
// declaration order.
type Rule struct {
	name     string
	rate     uint32
	commands []Command
}

func (r *Rule) Name() string        { return r.name }
func (r *Rule) Rate() uint32        { return r.rate }
func (r *Rule) Commands() []Command { return r.commands }

func (r *Rule) Execute(ctx *RuleContext) bool {
	for i := len(r.commands); i > 0; {
		i--
		if !r.commands[i].Validate(ctx) {
			return false
		}
	}
	for i := len(r.commands); i > 0; {
		i--
		r.commands[i].Execute(ctx)
	}
	return true
}

// MapRule fires on map cells, either as a full row-major sweep or on a
// random subset of tiles.
type MapRule struct {
	Rule
	random  bool
	percent uint32
}

func NewMapRule(name string, rate uint32, random bool, percent uint32, commands []Command) *MapRule {
	if percent > 100 {
		percent = 100
	}
	return &MapRule{
		Rule:    Rule{name: name, rate: rate, commands: commands},
		random:  random,
		percent: percent,
	}
}

func (r *MapRule) Random() bool { return r.random }

// TileCount returns how many of total cells fire per stochastic execution.
func (r *MapRule) TileCount(total uint32) uint32 {
	return total * r.percent / 100
}

func (r *MapRule) Percent() uint32 { return r.percent }

// UnitRule fires on a unit. When validation aborts the rule and a fallback
// is configured, the fallback fires with the same context.
type UnitRule struct {
	Rule
	onFail *UnitRule
}

func NewUnitRule(name string, rate uint32, commands []Command) *UnitRule {
	return &UnitRule{Rule: Rule{name: name, rate: rate, commands: commands}}
}

func (r *UnitRule) SetOnFail(fallback *UnitRule) { r.onFail = fallback }
func (r *UnitRule) OnFail() *UnitRule            { return r.onFail }

func (r *UnitRule) Execute(ctx *RuleContext) bool {
	if r.Rule.Execute(ctx) {
		return true
	}
	if r.onFail != nil {
		return r.onFail.Execute(ctx)
	}
	return false
}
