package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// StateDigest hashes the full observable world state in a fixed order.
// Two runs with equal seeds and equal tick-aligned inputs produce equal
// digests at every tick; the replay verifier leans on this.
func (s *Simulation) StateDigest() string {
	h := sha256.New()

	writeU32 := func(v uint32) { _ = binary.Write(h, binary.LittleEndian, v) }
	writeU64 := func(v uint64) { _ = binary.Write(h, binary.LittleEndian, v) }
	writeF32 := func(v float32) { writeU32(math.Float32bits(v)) }
	writeStr := func(str string) {
		writeU32(uint32(len(str)))
		_, _ = h.Write([]byte(str))
	}
	writeBag := func(rs *Resources) {
		bin := rs.Container()
		writeU32(uint32(len(bin)))
		for _, r := range bin {
			writeStr(r.Name())
			writeU32(r.Amount())
			writeU32(r.Capacity())
		}
	}

	writeU64(s.tick)
	writeU32(uint32(len(s.cityOrder)))

	for _, c := range s.cityOrder {
		writeStr(c.name)
		writeBag(c.globals)

		writeU32(uint32(len(c.mapOrder)))
		for _, m := range c.mapOrder {
			writeStr(m.kind.Name)
			writeU32(m.ticks)
			for _, cell := range m.cells {
				writeU32(cell)
			}
		}

		writeU32(uint32(len(c.units)))
		for _, u := range c.units {
			writeU32(u.id)
			writeStr(u.kind.Name)
			writeU32(u.ticks)
			writeBag(u.resources)
		}

		writeU32(uint32(len(c.agents)))
		for _, a := range c.agents {
			writeU32(a.id)
			writeStr(a.kind.Name)
			writeStr(a.target)
			writeF32(a.offset)
			writeF32(a.position.X)
			writeF32(a.position.Y)
			writeF32(a.position.Z)
			writeBag(a.payload)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
