package world

// Type records are built once by the script parser and immutable afterwards.
// Runtime entities hold pointers into the catalog and never copy it.

type MapType struct {
	Name     string
	Color    uint32
	Capacity uint32
	Rules    []*MapRule
}

type PathType struct {
	Name  string
	Color uint32
}

type WayType struct {
	Name  string
	Color uint32
}

type AgentType struct {
	Name  string
	Color uint32
	Speed float32
}

type UnitType struct {
	Name    string
	Color   uint32
	Radius  uint32
	Targets []string
	// Resources is the template bag: capacities from the caps array,
	// starting amounts from the resources array. Units clone it.
	Resources *Resources
	Rules     []*UnitRule
}

// Catalog holds every type registry produced by a parsed script.
type Catalog struct {
	Resources map[string]struct{}
	Maps      map[string]*MapType
	Paths     map[string]*PathType
	Ways      map[string]*WayType
	Agents    map[string]*AgentType
	Units     map[string]*UnitType
	MapRules  map[string]*MapRule
	UnitRules map[string]*UnitRule
}

func NewCatalog() *Catalog {
	return &Catalog{
		Resources: map[string]struct{}{},
		Maps:      map[string]*MapType{},
		Paths:     map[string]*PathType{},
		Ways:      map[string]*WayType{},
		Agents:    map[string]*AgentType{},
		Units:     map[string]*UnitType{},
		MapRules:  map[string]*MapRule{},
		UnitRules: map[string]*UnitRule{},
	}
}
