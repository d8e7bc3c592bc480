package world

import "math"

// MaxCapacity is the capacity assigned to a resource created without an
// explicit cap (e.g. a city global touched for the first time by a rule).
const MaxCapacity = math.MaxUint32

// Resource is a named scalar commodity held inside a bag. The amount never
// exceeds the capacity.
type Resource struct {
	name     string
	amount   uint32
	capacity uint32
}

func (r *Resource) Name() string     { return r.name }
func (r *Resource) Amount() uint32   { return r.amount }
func (r *Resource) Capacity() uint32 { return r.capacity }

func (r *Resource) add(n uint32) {
	if r.amount >= MaxCapacity-n {
		r.amount = MaxCapacity
	} else {
		r.amount += n
	}
	if r.amount > r.capacity {
		r.amount = r.capacity
	}
}

func (r *Resource) remove(n uint32) {
	if r.amount > n {
		r.amount -= n
	} else {
		r.amount = 0
	}
}

func (r *Resource) setCapacity(capacity uint32) {
	r.capacity = capacity
	if r.amount > capacity {
		r.amount = capacity
	}
}

// transferTo moves as much of the amount as the recipient's spare capacity
// allows.
func (r *Resource) transferTo(dst *Resource) {
	free := dst.capacity - dst.amount
	move := r.amount
	if move > free {
		move = free
	}
	r.remove(move)
	dst.add(move)
}

// Resources is an ordered multiset of resources. Types keep their insertion
// order so that iteration is deterministic.
type Resources struct {
	bin []*Resource
}

func NewResources() *Resources { return &Resources{} }

func (rs *Resources) find(name string) *Resource {
	for _, r := range rs.bin {
		if r.name == name {
			return r
		}
	}
	return nil
}

func (rs *Resources) findOrAdd(name string) *Resource {
	if r := rs.find(name); r != nil {
		return r
	}
	r := &Resource{name: name, capacity: MaxCapacity}
	rs.bin = append(rs.bin, r)
	return r
}

// AddType declares a resource type with the given capacity. An existing type
// has its capacity changed; the amount is clamped to the new capacity.
func (rs *Resources) AddType(name string, capacity uint32) {
	rs.findOrAdd(name).setCapacity(capacity)
}

// Add increases the named resource, creating the type on first use. The
// result saturates at the type's capacity.
func (rs *Resources) Add(name string, n uint32) {
	rs.findOrAdd(name).add(n)
}

// Remove decreases the named resource. It reports false when the bag holds
// less than n, in which case nothing is removed.
func (rs *Resources) Remove(name string, n uint32) bool {
	r := rs.find(name)
	if r == nil || r.amount < n {
		return false
	}
	r.remove(n)
	return true
}

func (rs *Resources) Amount(name string) uint32 {
	if r := rs.find(name); r != nil {
		return r.amount
	}
	return 0
}

func (rs *Resources) Capacity(name string) uint32 {
	if r := rs.find(name); r != nil {
		return r.capacity
	}
	return 0
}

// CanAdd reports whether n units fit. An undeclared type can always be added
// since it is created on demand with MaxCapacity.
func (rs *Resources) CanAdd(name string, n uint32) bool {
	r := rs.find(name)
	if r == nil {
		return true
	}
	return n <= r.capacity-r.amount
}

func (rs *Resources) CanRemove(name string, n uint32) bool {
	r := rs.find(name)
	return r != nil && r.amount >= n
}

// Has reports whether the type is declared in this bag.
func (rs *Resources) Has(name string) bool { return rs.find(name) != nil }

// HasRoomFor reports whether the type is declared and n more units fit under
// its capacity. Unlike CanAdd, an undeclared type never has room: a unit only
// accepts commodities it was built to hold.
func (rs *Resources) HasRoomFor(name string, n uint32) bool {
	r := rs.find(name)
	if r == nil {
		return false
	}
	return n <= r.capacity-r.amount
}

// AddAll applies Add for every resource of the other bag.
func (rs *Resources) AddAll(other *Resources) {
	if rs == other || other == nil {
		return
	}
	for _, r := range other.bin {
		rs.Add(r.name, r.amount)
	}
}

// SetCapacities applies AddType for every resource of the capacities bag.
func (rs *Resources) SetCapacities(caps *Resources) {
	if caps == nil {
		return
	}
	for _, r := range caps.bin {
		rs.AddType(r.name, r.capacity)
	}
}

// TransferTo moves every resource into the recipient, limited per type by
// the recipient's spare capacity. Types absent from the recipient are
// created with MaxCapacity.
func (rs *Resources) TransferTo(dst *Resources) {
	if rs == dst {
		return
	}
	for _, r := range rs.bin {
		r.transferTo(dst.findOrAdd(r.name))
	}
}

func (rs *Resources) IsEmpty() bool {
	for _, r := range rs.bin {
		if r.amount > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy preserving type order, amounts and capacities.
func (rs *Resources) Clone() *Resources {
	out := &Resources{bin: make([]*Resource, 0, len(rs.bin))}
	for _, r := range rs.bin {
		c := *r
		out.bin = append(out.bin, &c)
	}
	return out
}

// Container exposes the resources in insertion order (read-only use).
func (rs *Resources) Container() []*Resource { return rs.bin }
