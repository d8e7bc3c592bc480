package world

import "math"

// Vec3 is a position or direction in world coordinates.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

func (v Vec3) Normalized() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return Vec3{}
	}
	return v.Scale(1 / m)
}

// Lerp interpolates between a and b; t is clamped to [0,1].
func Lerp(a, b Vec3, t float32) Vec3 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(b.Sub(a).Scale(t))
}
