package scenario

import (
	"fmt"

	"glassbox/internal/sim/world"
)

// BuildDemoCities assembles the two demo cities: a triangle road network in
// the first, a two-node spur in the second whose road hooks into the first
// city's graph so agents can commute between them.
func BuildDemoCities(sim *world.Simulation) error {
	grass, err := sim.MapType("Grass")
	if err != nil {
		return err
	}
	water, err := sim.MapType("Water")
	if err != nil {
		return err
	}
	road, err := sim.PathType("Road")
	if err != nil {
		return err
	}
	dirt, err := sim.WayType("Dirt")
	if err != nil {
		return err
	}
	home, err := sim.UnitType("Home")
	if err != nil {
		return err
	}
	work, err := sim.UnitType("Work")
	if err != nil {
		return err
	}

	paris, err := sim.AddCity("Paris", world.Vec3{X: 400, Y: 200})
	if err != nil {
		return err
	}
	if _, err := paris.AddMap(grass); err != nil {
		return err
	}
	if _, err := paris.AddMap(water); err != nil {
		return err
	}

	r1, err := paris.AddPath(road)
	if err != nil {
		return err
	}
	n1 := r1.AddNode(world.Vec3{X: 60, Y: 60}.Add(paris.Position()))
	n2 := r1.AddNode(world.Vec3{X: 300, Y: 300}.Add(paris.Position()))
	n3 := r1.AddNode(world.Vec3{X: 60, Y: 300}.Add(paris.Position()))
	w1 := r1.AddWay(dirt, n1, n2)
	w2 := r1.AddWay(dirt, n2, n3)
	w3 := r1.AddWay(dirt, n3, n1)

	for _, placement := range []struct {
		kind *world.UnitType
		way  *world.Way
		t    float32
	}{
		{home, w1, 0.66},
		{home, w1, 0.5},
		{work, w2, 0.5},
		{work, w3, 0.5},
	} {
		if _, err := paris.AddUnitOnWay(placement.kind, r1, placement.way, placement.t); err != nil {
			return fmt.Errorf("paris: %w", err)
		}
	}

	versailles, err := sim.AddCity("Versailles", world.Vec3{X: 0, Y: 30})
	if err != nil {
		return err
	}
	if _, err := versailles.AddMap(grass); err != nil {
		return err
	}
	if _, err := versailles.AddMap(water); err != nil {
		return err
	}

	r2, err := versailles.AddPath(road)
	if err != nil {
		return err
	}
	n4 := r2.AddNode(world.Vec3{X: 40, Y: 20}.Add(versailles.Position()))
	n5 := r2.AddNode(world.Vec3{X: 300, Y: 300}.Add(versailles.Position()))
	w4 := r2.AddWay(dirt, n4, n5)

	// Bridge road into the first city so both graphs are one network.
	r2.AddWay(dirt, n5, n1)

	if _, err := versailles.AddUnitOnWay(home, r2, w4, 0.3); err != nil {
		return fmt.Errorf("versailles: %w", err)
	}
	if _, err := versailles.AddUnitOnWay(work, r2, w4, 0.8); err != nil {
		return fmt.Errorf("versailles: %w", err)
	}

	return nil
}
