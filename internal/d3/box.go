package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d axis aligned bounding box.
type Box r3.Box

// CenteredBox creates a Box with a given center and size.
// Negative components of size will be interpreted as zero.
func CenteredBox(center, size r3.Vec) Box {
	size = MaxElem(size, r3.Vec{}) // set negative values to zero.
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// BoundingBox returns the smallest box containing every point in s.
// s must not be empty.
func BoundingBox(s Set) Box {
	bb := Box{Min: s[0], Max: s[0]}
	for _, v := range s[1:] {
		bb = bb.Include(v)
	}
	return bb
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Relative maps v into box-relative coordinates where Min is (0,0,0)
// and Max is (1,1,1). Zero-size axes map to 0.
func (a Box) Relative(v r3.Vec) r3.Vec {
	sz := a.Size()
	rel := r3.Sub(v, a.Min)
	if sz.X != 0 {
		rel.X /= sz.X
	} else {
		rel.X = 0
	}
	if sz.Y != 0 {
		rel.Y /= sz.Y
	} else {
		rel.Y = 0
	}
	if sz.Z != 0 {
		rel.Z /= sz.Z
	} else {
		rel.Z = 0
	}
	return rel
}

// Vertices returns the 8 box corners. The first four lie on the
// Min.Z face going counter clockwise from Min, the last four repeat
// that walk on the Max.Z face.
func (a Box) Vertices() Set {
	return Set{
		a.Min,
		{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z},
		a.Max,
		{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z},
	}
}
