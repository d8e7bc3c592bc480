// Package script parses whitespace-delimited simulation scripts into the
// immutable type catalog consumed by world.Simulation. The grammar has no
// comments and no escaping: the scanner accumulates runs of non-whitespace
// bytes and every keyword, name and number is one token.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"glassbox/internal/sim/world"
)

// ParseError reports the offending token and the section being parsed.
// Nothing is handed back on failure: a malformed script yields no catalog.
type ParseError struct {
	Token   string
	Section string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in section %q at token %q: %s", e.Section, e.Token, e.Reason)
}

type parser struct {
	r       *bufio.Reader
	token   string
	section string

	cat *world.Catalog

	// Commands of rules parsed so far, keyed by rule name; shared between
	// the two rule kinds for duplicate detection.
	mapRuleDefs  map[string]*mapRuleDef
	unitRuleDefs map[string]*unitRuleDef

	// Deferred references, resolved at end-of-parse so rules may be named
	// before they are declared.
	mapRuleRefs  []ruleRef
	unitRuleRefs []ruleRef
	onFailRefs   []onFailRef
}

type mapRuleDef struct {
	name     string
	rate     uint32
	random   bool
	percent  uint32
	commands []world.Command
}

type unitRuleDef struct {
	name     string
	rate     uint32
	onFail   string
	commands []world.Command
}

type ruleRef struct {
	owner string // map or unit type name
	rule  string
	index int // declaration position within the owner's rules array
}

type onFailRef struct {
	rule   string
	target string
}

// ParseFile parses a script file from disk.
func ParseFile(path string) (*world.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse consumes a whole script and returns the populated catalog.
func Parse(r io.Reader) (*world.Catalog, error) {
	p := &parser{
		r:            bufio.NewReader(r),
		cat:          world.NewCatalog(),
		mapRuleDefs:  map[string]*mapRuleDef{},
		unitRuleDefs: map[string]*unitRuleDef{},
	}
	if err := p.parseScript(); err != nil {
		return nil, err
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}
	return p.cat, nil
}

// next reads one whitespace-delimited token; "" signals end of input.
func (p *parser) next() string {
	var b strings.Builder
	for {
		ch, _, err := p.r.ReadRune()
		if err != nil {
			break
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			if b.Len() > 0 {
				break
			}
			continue
		}
		b.WriteRune(ch)
	}
	p.token = b.String()
	return p.token
}

func (p *parser) fail(reason string) error {
	return &ParseError{Token: p.token, Section: p.section, Reason: reason}
}

func (p *parser) parseScript() error {
	sawSection := false
	for {
		switch p.next() {
		case "resources":
			p.section = "resources"
			if err := p.parseResources(); err != nil {
				return err
			}
		case "maps":
			p.section = "maps"
			if err := p.parseMaps(); err != nil {
				return err
			}
		case "paths":
			p.section = "paths"
			if err := p.parsePaths(); err != nil {
				return err
			}
		case "segments":
			p.section = "segments"
			if err := p.parseSegments(); err != nil {
				return err
			}
		case "agents":
			p.section = "agents"
			if err := p.parseAgents(); err != nil {
				return err
			}
		case "units":
			p.section = "units"
			if err := p.parseUnits(); err != nil {
				return err
			}
		case "rules":
			p.section = "rules"
			if err := p.parseRules(); err != nil {
				return err
			}
		case "":
			if !sawSection {
				p.section = "script"
				return p.fail("empty script")
			}
			return nil
		default:
			p.section = "script"
			return p.fail("unknown section")
		}
		sawSection = true
	}
}

func (p *parser) parseResources() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "resource":
			name := p.next()
			if name == "" {
				return p.fail("resource needs a name")
			}
			p.cat.Resources[name] = struct{}{}
		case "":
			return p.fail("unterminated resources section")
		default:
			return p.fail("expected resource or end")
		}
	}
}

func (p *parser) requireResource(name string) error {
	if name == "" {
		return p.fail("expected a resource name")
	}
	if _, ok := p.cat.Resources[name]; !ok {
		p.token = name
		return p.fail("undefined resource")
	}
	return nil
}

func (p *parser) parseMaps() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "map":
			if err := p.parseMap(); err != nil {
				return err
			}
		case "":
			return p.fail("unterminated maps section")
		default:
			return p.fail("expected map or end")
		}
	}
}

func (p *parser) parseMap() error {
	name := p.next()
	if name == "" {
		return p.fail("map needs a name")
	}
	if _, dup := p.cat.Maps[name]; dup {
		return p.fail("duplicate map type")
	}
	mt := &world.MapType{Name: name}
	p.cat.Maps[name] = mt

	for {
		switch p.next() {
		case "color":
			c, err := p.color(p.next())
			if err != nil {
				return err
			}
			mt.Color = c
		case "capacity":
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			mt.Capacity = n
		case "rules":
			names, err := p.parseNameArray()
			if err != nil {
				return err
			}
			for i, rn := range names {
				p.mapRuleRefs = append(p.mapRuleRefs, ruleRef{owner: name, rule: rn, index: i})
			}
			return nil
		default:
			return p.fail("expected color, capacity or rules")
		}
	}
}

func (p *parser) parsePaths() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "path":
			name := p.next()
			if name == "" {
				return p.fail("path needs a name")
			}
			if p.next() != "color" {
				return p.fail("expected color")
			}
			c, err := p.color(p.next())
			if err != nil {
				return err
			}
			p.cat.Paths[name] = &world.PathType{Name: name, Color: c}
		case "":
			return p.fail("unterminated paths section")
		default:
			return p.fail("expected path or end")
		}
	}
}

func (p *parser) parseSegments() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "segment":
			name := p.next()
			if name == "" {
				return p.fail("segment needs a name")
			}
			if p.next() != "color" {
				return p.fail("expected color")
			}
			c, err := p.color(p.next())
			if err != nil {
				return err
			}
			p.cat.Ways[name] = &world.WayType{Name: name, Color: c}
		case "":
			return p.fail("unterminated segments section")
		default:
			return p.fail("expected segment or end")
		}
	}
}

func (p *parser) parseAgents() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "agent":
			if err := p.parseAgent(); err != nil {
				return err
			}
		case "":
			return p.fail("unterminated agents section")
		default:
			return p.fail("expected agent or end")
		}
	}
}

func (p *parser) parseAgent() error {
	name := p.next()
	if name == "" {
		return p.fail("agent needs a name")
	}
	at := &world.AgentType{Name: name}
	p.cat.Agents[name] = at

	for {
		switch p.next() {
		case "color":
			c, err := p.color(p.next())
			if err != nil {
				return err
			}
			at.Color = c
		case "speed":
			f, err := p.float32tok(p.next())
			if err != nil {
				return err
			}
			at.Speed = f
			return nil
		default:
			return p.fail("expected color or speed")
		}
	}
}

func (p *parser) parseUnits() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "unit":
			if err := p.parseUnit(); err != nil {
				return err
			}
		case "":
			return p.fail("unterminated units section")
		default:
			return p.fail("expected unit or end")
		}
	}
}

func (p *parser) parseUnit() error {
	name := p.next()
	if name == "" {
		return p.fail("unit needs a name")
	}
	if _, dup := p.cat.Units[name]; dup {
		return p.fail("duplicate unit type")
	}
	ut := &world.UnitType{Name: name, Resources: world.NewResources()}
	p.cat.Units[name] = ut

	caps := map[string]bool{}
	var starting []string

	for {
		switch p.next() {
		case "color":
			c, err := p.color(p.next())
			if err != nil {
				return err
			}
			ut.Color = c
		case "mapRadius":
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			ut.Radius = n
		case "targets":
			names, err := p.parseNameArray()
			if err != nil {
				return err
			}
			ut.Targets = names
		case "caps":
			if err := p.parseAmountArray(func(res string, n uint32) {
				ut.Resources.AddType(res, n)
				caps[res] = true
			}); err != nil {
				return err
			}
		case "rules":
			names, err := p.parseNameArray()
			if err != nil {
				return err
			}
			for i, rn := range names {
				p.unitRuleRefs = append(p.unitRuleRefs, ruleRef{owner: name, rule: rn, index: i})
			}
		case "resources":
			if err := p.parseAmountArray(func(res string, n uint32) {
				starting = append(starting, res)
				ut.Resources.Add(res, n)
			}); err != nil {
				return err
			}
			for _, res := range starting {
				if !caps[res] {
					p.token = res
					return p.fail("unit resource has no matching caps entry")
				}
			}
			return nil
		default:
			return p.fail("expected color, mapRadius, targets, caps, rules or resources")
		}
	}
}

func (p *parser) parseRules() error {
	for {
		switch p.next() {
		case "end":
			return nil
		case "mapRule":
			if err := p.parseMapRule(); err != nil {
				return err
			}
		case "unitRule":
			if err := p.parseUnitRule(); err != nil {
				return err
			}
		case "":
			return p.fail("unterminated rules section")
		default:
			return p.fail("expected mapRule, unitRule or end")
		}
	}
}

func (p *parser) parseMapRule() error {
	name := p.next()
	if name == "" {
		return p.fail("mapRule needs a name")
	}
	if _, dup := p.mapRuleDefs[name]; dup {
		return p.fail("duplicate rule")
	}
	if _, dup := p.unitRuleDefs[name]; dup {
		return p.fail("duplicate rule")
	}
	def := &mapRuleDef{name: name, rate: 1}
	p.mapRuleDefs[name] = def

	for {
		switch tok := p.next(); tok {
		case "end":
			return nil
		case "rate":
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			def.rate = n
		case "randomTiles":
			b, err := p.booltok(p.next())
			if err != nil {
				return err
			}
			def.random = b
		case "randomTilesPercent":
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			if n > 100 {
				return p.fail("randomTilesPercent out of range")
			}
			def.random = true
			def.percent = n
		case "":
			return p.fail("unterminated mapRule")
		default:
			cmd, err := p.parseCommand(tok)
			if err != nil {
				return err
			}
			def.commands = append(def.commands, cmd)
		}
	}
}

func (p *parser) parseUnitRule() error {
	name := p.next()
	if name == "" {
		return p.fail("unitRule needs a name")
	}
	if _, dup := p.unitRuleDefs[name]; dup {
		return p.fail("duplicate rule")
	}
	if _, dup := p.mapRuleDefs[name]; dup {
		return p.fail("duplicate rule")
	}
	def := &unitRuleDef{name: name, rate: 1}
	p.unitRuleDefs[name] = def

	for {
		switch tok := p.next(); tok {
		case "end":
			return nil
		case "rate":
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			def.rate = n
		case "onFail":
			fallback := p.next()
			if fallback == "" {
				return p.fail("onFail needs a rule name")
			}
			def.onFail = fallback
			p.onFailRefs = append(p.onFailRefs, onFailRef{rule: name, target: fallback})
		case "":
			return p.fail("unterminated unitRule")
		default:
			cmd, err := p.parseCommand(tok)
			if err != nil {
				return err
			}
			def.commands = append(def.commands, cmd)
		}
	}
}

// parseCommand consumes one command of a rule body; tok is its leading
// keyword, already read by the rule loop.
func (p *parser) parseCommand(tok string) (world.Command, error) {
	var target world.Value

	switch tok {
	case "local", "global":
		res := p.next()
		if err := p.requireResource(res); err != nil {
			return nil, err
		}
		if tok == "local" {
			target = world.LocalValue(res)
		} else {
			target = world.GlobalValue(res)
		}
	case "map":
		mapName := p.next()
		if _, ok := p.cat.Maps[mapName]; !ok {
			p.token = mapName
			return nil, p.fail("undefined map")
		}
		target = world.MapValue(mapName)
	case "agent":
		return p.parseAgentCommand()
	default:
		return nil, p.fail("unknown command")
	}

	switch op := p.next(); op {
	case "add":
		n, err := p.uint32tok(p.next())
		if err != nil {
			return nil, err
		}
		return world.NewAddCommand(target, n), nil
	case "remove":
		n, err := p.uint32tok(p.next())
		if err != nil {
			return nil, err
		}
		return world.NewRemoveCommand(target, n), nil
	case "greater":
		n, err := p.uint32tok(p.next())
		if err != nil {
			return nil, err
		}
		return world.NewTestCommand(target, world.Greater, n), nil
	case "less":
		n, err := p.uint32tok(p.next())
		if err != nil {
			return nil, err
		}
		return world.NewTestCommand(target, world.Less, n), nil
	case "equals":
		n, err := p.uint32tok(p.next())
		if err != nil {
			return nil, err
		}
		return world.NewTestCommand(target, world.Equals, n), nil
	default:
		return nil, p.fail("expected add, remove, greater, less or equals")
	}
}

func (p *parser) parseAgentCommand() (world.Command, error) {
	name := p.next()
	at, ok := p.cat.Agents[name]
	if !ok {
		p.token = name
		return nil, p.fail("undefined agent type")
	}

	searchTarget := ""
	payload := world.NewResources()
	for {
		switch p.next() {
		case "to":
			searchTarget = p.next()
			if searchTarget == "" {
				return nil, p.fail("agent command needs a target unit name")
			}
		case "add":
			if err := p.parseAmountArray(func(res string, n uint32) {
				payload.Add(res, n)
			}); err != nil {
				return nil, err
			}
			return world.NewSpawnCommand(at, searchTarget, payload), nil
		default:
			return nil, p.fail("expected to or add")
		}
	}
}

// parseNameArray reads a bracketed list of bare names.
func (p *parser) parseNameArray() ([]string, error) {
	if p.next() != "[" {
		return nil, p.fail("expected [")
	}
	var names []string
	for {
		switch tok := p.next(); tok {
		case "]":
			return names, nil
		case "":
			return nil, p.fail("unterminated array")
		default:
			names = append(names, tok)
		}
	}
}

// parseAmountArray reads a bracketed list of (resource, u32) pairs. Every
// resource name must be declared.
func (p *parser) parseAmountArray(put func(res string, n uint32)) error {
	if p.next() != "[" {
		return p.fail("expected [")
	}
	for {
		switch tok := p.next(); tok {
		case "]":
			return nil
		case "":
			return p.fail("unterminated array")
		default:
			if err := p.requireResource(tok); err != nil {
				return err
			}
			n, err := p.uint32tok(p.next())
			if err != nil {
				return err
			}
			put(tok, n)
		}
	}
}

// resolve binds deferred rule references now that every rule is known.
func (p *parser) resolve() error {
	p.section = "rules"

	for name, def := range p.mapRuleDefs {
		p.cat.MapRules[name] = world.NewMapRule(def.name, def.rate, def.random, def.percent, def.commands)
	}
	for name, def := range p.unitRuleDefs {
		p.cat.UnitRules[name] = world.NewUnitRule(def.name, def.rate, def.commands)
	}

	for _, ref := range p.onFailRefs {
		fallback, ok := p.cat.UnitRules[ref.target]
		if !ok {
			p.token = ref.target
			return p.fail("onFail references an undefined unitRule")
		}
		p.cat.UnitRules[ref.rule].SetOnFail(fallback)
	}

	for _, ref := range p.mapRuleRefs {
		rule, ok := p.cat.MapRules[ref.rule]
		if !ok {
			p.token = ref.rule
			p.section = "maps"
			return p.fail("map references an undefined mapRule")
		}
		mt := p.cat.Maps[ref.owner]
		mt.Rules = growRules(mt.Rules, ref.index)
		mt.Rules[ref.index] = rule
	}
	for _, ref := range p.unitRuleRefs {
		rule, ok := p.cat.UnitRules[ref.rule]
		if !ok {
			p.token = ref.rule
			p.section = "units"
			return p.fail("unit references an undefined unitRule")
		}
		ut := p.cat.Units[ref.owner]
		ut.Rules = growUnitRules(ut.Rules, ref.index)
		ut.Rules[ref.index] = rule
	}
	return nil
}

func growRules(rules []*world.MapRule, index int) []*world.MapRule {
	for len(rules) <= index {
		rules = append(rules, nil)
	}
	return rules
}

func growUnitRules(rules []*world.UnitRule, index int) []*world.UnitRule {
	for len(rules) <= index {
		rules = append(rules, nil)
	}
	return rules
}

// Token conversion helpers.

func (p *parser) uint32tok(tok string) (uint32, error) {
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		p.token = tok
		return 0, p.fail("expected an unsigned integer")
	}
	return uint32(n), nil
}

func (p *parser) float32tok(tok string) (float32, error) {
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		p.token = tok
		return 0, p.fail("expected a number")
	}
	return float32(f), nil
}

func (p *parser) color(tok string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	c, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		p.token = tok
		return 0, p.fail("expected a hex color")
	}
	return uint32(c), nil
}

func (p *parser) booltok(tok string) (bool, error) {
	switch tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	p.token = tok
	return false, p.fail("expected true or false")
}
