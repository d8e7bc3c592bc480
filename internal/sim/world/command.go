package world

// Command is one step of a rule. Validate must be pure: the whole rule
// aborts if any command refuses, and only then does any Execute run.
type Command interface {
	Validate(ctx *RuleContext) bool
	Execute(ctx *RuleContext)
}

type addCommand struct {
	target Value
	amount uint32
}

func NewAddCommand(target Value, amount uint32) Command {
	return &addCommand{target: target, amount: amount}
}

func (c *addCommand) Validate(ctx *RuleContext) bool { return c.target.CanAdd(ctx, c.amount) }
func (c *addCommand) Execute(ctx *RuleContext)       { c.target.Add(ctx, c.amount) }

type removeCommand struct {
	target Value
	amount uint32
}

func NewRemoveCommand(target Value, amount uint32) Command {
	return &removeCommand{target: target, amount: amount}
}

func (c *removeCommand) Validate(ctx *RuleContext) bool { return c.target.CanRemove(ctx, c.amount) }
func (c *removeCommand) Execute(ctx *RuleContext)       { c.target.Remove(ctx, c.amount) }

// Comparison gates for test commands.
type Comparison int

const (
	Equals Comparison = iota
	Greater
	Less
)

// testCommand is a pure predicate: it gates the batch during validation and
// is a no-op at execution time.
type testCommand struct {
	target Value
	cmp    Comparison
	amount uint32
}

func NewTestCommand(target Value, cmp Comparison, amount uint32) Command {
	return &testCommand{target: target, cmp: cmp, amount: amount}
}

func (c *testCommand) Validate(ctx *RuleContext) bool {
	got := c.target.Get(ctx)
	switch c.cmp {
	case Equals:
		return got == c.amount
	case Greater:
		return got > c.amount
	case Less:
		return got < c.amount
	}
	return false
}

func (c *testCommand) Execute(ctx *RuleContext) {}

// spawnCommand creates an agent on the context city, carrying a copy of the
// payload and searching for the named target. It refuses to fire from a unit
// whose node has no ways: the agent could never leave.
type spawnCommand struct {
	agent   *AgentType
	target  string
	payload *Resources
}

func NewSpawnCommand(agent *AgentType, target string, payload *Resources) Command {
	return &spawnCommand{agent: agent, target: target, payload: payload}
}

func (c *spawnCommand) Validate(ctx *RuleContext) bool {
	return ctx.Unit != nil && ctx.Unit.HasWays()
}

func (c *spawnCommand) Execute(ctx *RuleContext) {
	ctx.City.AddAgent(c.agent, ctx.Unit.Node(), c.target, c.payload.Clone())
}
