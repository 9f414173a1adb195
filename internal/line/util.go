package line

import (
	"image"
)

// PointsBetween returns all points on a line between a,b (inclusive)
func PointsBetween(a, b image.Point) []image.Point {
	pts := []image.Point{}
	bresenham(func(x, y int) { pts = append(pts, image.Pt(x, y)) }, a.X, a.Y, b.X, b.Y)
	return pts
}

// Polyline returns the pixels along every leg of pts. Shared joints are
// only returned once. If closed the last point is joined back to the first.
func Polyline(pts []image.Point, closed bool) []image.Point {
	out := []image.Point{}
	if len(pts) == 0 {
		return out
	}

	out = append(out, pts[0])
	last := pts[0]
	leg := func(b image.Point) {
		if b == last {
			return
		}
		bresenham(func(x, y int) {
			p := image.Pt(x, y)
			if p != out[len(out)-1] {
				out = append(out, p)
			}
		}, last.X, last.Y, b.X, b.Y)
		last = b
	}

	for _, p := range pts[1:] {
		leg(p)
	}
	if closed && len(pts) > 2 {
		leg(pts[0])
		if len(out) > 1 && out[len(out)-1] == out[0] {
			out = out[:len(out)-1]
		}
	}
	return out
}
