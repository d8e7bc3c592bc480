package world

import (
	"fmt"
	"math/rand"
)

const (
	// TicksPerSecond fixes the simulated timestep.
	TicksPerSecond = 200

	// TickInterval is the simulated duration of one tick, in seconds.
	TickInterval float32 = 1.0 / TicksPerSecond

	// MaxIterationsPerUpdate caps catch-up work per Update call. Budget
	// beyond the cap is discarded so a stalled frontend cannot trigger an
	// unbounded burst of ticks.
	MaxIterationsPerUpdate = 20
)

// Simulation drives a set of cities with a fixed timestep. It owns the type
// catalog, the per-run RNG stream used by stochastic map rules, and the
// listener sink.
type Simulation struct {
	gridU uint32
	gridV uint32

	catalog *Catalog

	timeBudget float32
	tick       uint64

	cities    map[string]*City
	cityOrder []*City

	rng      *rand.Rand
	listener Listener
}

// NewSimulation creates a simulation whose cities share the given grid
// dimensions. The seed feeds the single RNG stream consumed by stochastic
// map rules; equal seeds and equal inputs reproduce a run exactly.
func NewSimulation(gridU, gridV uint32, seed int64) *Simulation {
	return &Simulation{
		gridU:    gridU,
		gridV:    gridV,
		catalog:  NewCatalog(),
		cities:   map[string]*City{},
		rng:      rand.New(rand.NewSource(seed)),
		listener: NopListener{},
	}
}

func (s *Simulation) GridU() uint32     { return s.gridU }
func (s *Simulation) GridV() uint32     { return s.gridV }
func (s *Simulation) Catalog() *Catalog { return s.catalog }
func (s *Simulation) Tick() uint64      { return s.tick }
func (s *Simulation) Cities() []*City   { return s.cityOrder }

// SetCatalog installs the type registries produced by the script parser.
func (s *Simulation) SetCatalog(c *Catalog) { s.catalog = c }

// SetListener replaces the callback sink. A nil listener restores the no-op
// sink.
func (s *Simulation) SetListener(l Listener) {
	if l == nil {
		s.listener = NopListener{}
		return
	}
	s.listener = l
}

// AddCity creates a city at the given position. City names are unique.
func (s *Simulation) AddCity(name string, position Vec3) (*City, error) {
	if _, dup := s.cities[name]; dup {
		return nil, fmt.Errorf("duplicate city %q", name)
	}
	c := newCity(s, name, position)
	s.cities[name] = c
	s.cityOrder = append(s.cityOrder, c)
	s.listener.OnCityAdded(c)
	return c, nil
}

// City returns a city by name, nil when absent.
func (s *Simulation) City(name string) *City { return s.cities[name] }

// Update drains deltaSeconds of real time into discrete ticks. At most
// MaxIterationsPerUpdate ticks run per call; any budget still exceeding one
// tick afterwards is dropped.
func (s *Simulation) Update(deltaSeconds float32) {
	s.timeBudget += deltaSeconds

	iterations := 0
	for s.timeBudget >= TickInterval && iterations < MaxIterationsPerUpdate {
		s.timeBudget -= TickInterval
		iterations++
		s.step()
	}
	if iterations == MaxIterationsPerUpdate && s.timeBudget > TickInterval {
		s.timeBudget = 0
	}
}

// Step advances exactly one tick regardless of the accumulator. Tests and
// the replay verifier use it to drive tick-aligned runs.
func (s *Simulation) Step() { s.step() }

func (s *Simulation) step() {
	s.tick++
	for _, c := range s.cityOrder {
		c.update()
	}
}

// Catalog lookups used by scenario builders. Each returns an error naming
// the missing type so a malformed setup fails loudly during construction.

func (s *Simulation) MapType(name string) (*MapType, error) {
	if t, ok := s.catalog.Maps[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown map type %q", name)
}

func (s *Simulation) PathType(name string) (*PathType, error) {
	if t, ok := s.catalog.Paths[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown path type %q", name)
}

func (s *Simulation) WayType(name string) (*WayType, error) {
	if t, ok := s.catalog.Ways[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown way type %q", name)
}

func (s *Simulation) AgentType(name string) (*AgentType, error) {
	if t, ok := s.catalog.Agents[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown agent type %q", name)
}

func (s *Simulation) UnitType(name string) (*UnitType, error) {
	if t, ok := s.catalog.Units[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown unit type %q", name)
}
