package vec

import "math"

// Vec3 is a plain 3D vector value. Everything here returns new values;
// the hot loops in forces accumulate into a local and write once.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len2() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Len() float64  { return math.Sqrt(v.Len2()) }

// Normalized returns the unit vector, or zero if v is (near) zero length.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Clamped limits the magnitude of v to max.
func (v Vec3) Clamped(max float64) Vec3 {
	l2 := v.Len2()
	if l2 <= max*max {
		return v
	}
	return v.Scale(max / math.Sqrt(l2))
}

func (v Vec3) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

func Dist(a, b Vec3) float64  { return a.Sub(b).Len() }
func Dist2(a, b Vec3) float64 { return a.Sub(b).Len2() }
