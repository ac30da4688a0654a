/*
Copyright © 2018 the geoframe authors.
This file is part of geoframe.

geoframe is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geoframe is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geoframe.  If not, see <http://www.gnu.org/licenses/>.
*/

package geomop

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// eps is the relative tolerance used for collinearity and parameter tests.
const eps = 1e-10

type segment struct {
	a, b geom.Point
}

func (s segment) mid() geom.Point {
	return geom.Point{X: (s.a.X + s.b.X) / 2, Y: (s.a.Y + s.b.Y) / 2}
}

func (s segment) at(t float64) geom.Point {
	return geom.Point{X: s.a.X + t*(s.b.X-s.a.X), Y: s.a.Y + t*(s.b.Y-s.a.Y)}
}

// lineEdges returns the non-degenerate segments of l.
func lineEdges(l geom.LineString) []segment {
	var out []segment
	for i := 1; i < len(l); i++ {
		if l[i-1] != l[i] {
			out = append(out, segment{l[i-1], l[i]})
		}
	}
	return out
}

// ringEdges returns the non-degenerate segments of r, including the
// closing segment whether or not r repeats its first point.
func ringEdges(r geom.Path) []segment {
	var out []segment
	for i := range r {
		a, b := r[i], r[(i+1)%len(r)]
		if a != b {
			out = append(out, segment{a, b})
		}
	}
	return out
}

func cross(ox, oy, ax, ay float64) float64 { return ox*ay - oy*ax }

// orient returns twice the signed area of triangle abc.
func orient(a, b, c geom.Point) float64 {
	return cross(b.X-a.X, b.Y-a.Y, c.X-a.X, c.Y-a.Y)
}

func dist(a, b geom.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func collinear(a, b, c geom.Point) bool {
	return math.Abs(orient(a, b, c)) <= eps*dist(a, b)*dist(a, c)
}

// onSegment reports whether p lies on the closed segment ab.
func onSegment(p, a, b geom.Point) bool {
	if !collinear(a, b, p) {
		return false
	}
	tol := eps * (math.Abs(a.X) + math.Abs(a.Y) + math.Abs(b.X) + math.Abs(b.Y) + 1)
	return p.X >= math.Min(a.X, b.X)-tol && p.X <= math.Max(a.X, b.X)+tol &&
		p.Y >= math.Min(a.Y, b.Y)-tol && p.Y <= math.Max(a.Y, b.Y)+tol
}

func sign(v, scale float64) int {
	switch {
	case v > eps*scale:
		return 1
	case v < -eps*scale:
		return -1
	default:
		return 0
	}
}

// intersects reports whether segments s and o share at least one point.
func (s segment) intersects(o segment) bool {
	scale := dist(s.a, s.b) * dist(o.a, o.b)
	d1 := sign(orient(o.a, o.b, s.a), scale)
	d2 := sign(orient(o.a, o.b, s.b), scale)
	d3 := sign(orient(s.a, s.b, o.a), scale)
	d4 := sign(orient(s.a, s.b, o.b), scale)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return onSegment(s.a, o.a, o.b) || onSegment(s.b, o.a, o.b) ||
		onSegment(o.a, s.a, s.b) || onSegment(o.b, s.a, s.b)
}

// crosses reports whether s and o intersect at a single point interior to
// both segments.
func (s segment) crosses(o segment) bool {
	scale := dist(s.a, s.b) * dist(o.a, o.b)
	d1 := sign(orient(o.a, o.b, s.a), scale)
	d2 := sign(orient(o.a, o.b, s.b), scale)
	d3 := sign(orient(s.a, s.b, o.a), scale)
	d4 := sign(orient(s.a, s.b, o.b), scale)
	return d1*d2 < 0 && d3*d4 < 0
}

// params returns the positions along s, as fractions in (0, 1), where o
// touches or crosses s. Collinear overlaps contribute the projected
// endpoints of o.
func (s segment) params(o segment) []float64 {
	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	sx, sy := o.b.X-o.a.X, o.b.Y-o.a.Y
	qx, qy := o.a.X-s.a.X, o.a.Y-s.a.Y
	rxs := cross(rx, ry, sx, sy)
	scale := math.Hypot(rx, ry) * math.Hypot(sx, sy)
	var out []float64
	inside := func(t float64) bool { return t > eps && t < 1-eps }
	if math.Abs(rxs) > eps*scale {
		t := cross(qx, qy, sx, sy) / rxs
		u := cross(qx, qy, rx, ry) / rxs
		if t > eps && t < 1-eps && u >= -eps && u <= 1+eps {
			out = append(out, t)
		}
		return out
	}
	if !collinear(s.a, s.b, o.a) || !collinear(s.a, s.b, o.b) {
		return nil
	}
	rr := rx*rx + ry*ry
	for _, p := range []geom.Point{o.a, o.b} {
		t := ((p.X-s.a.X)*rx + (p.Y-s.a.Y)*ry) / rr
		if inside(t) {
			out = append(out, t)
		}
	}
	return out
}

// split cuts s at every point where one of the cutters touches it.
func (s segment) split(cutters []segment) []segment {
	b := s.bounds()
	var ts []float64
	for _, c := range cutters {
		if !b.Overlaps(c.bounds()) {
			continue
		}
		ts = append(ts, s.params(c)...)
	}
	if len(ts) == 0 {
		return []segment{s}
	}
	sort.Float64s(ts)
	var out []segment
	prev := s.a
	for _, t := range ts {
		p := s.at(t)
		if p != prev {
			out = append(out, segment{prev, p})
			prev = p
		}
	}
	if prev != s.b {
		out = append(out, segment{prev, s.b})
	}
	return out
}

func (s segment) bounds() *geom.Bounds {
	b := s.a.Bounds()
	b.Extend(s.b.Bounds())
	return b
}

// pointSegmentDistance returns the distance from p to the closed segment s.
func pointSegmentDistance(p geom.Point, s segment) float64 {
	dx, dy := s.b.X-s.a.X, s.b.Y-s.a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, s.a)
	}
	t := ((p.X-s.a.X)*dx + (p.Y-s.a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, s.at(t))
}

func segmentDistance(s, o segment) float64 {
	if s.intersects(o) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(s.a, o), pointSegmentDistance(s.b, o)),
		math.Min(pointSegmentDistance(o.a, s), pointSegmentDistance(o.b, s)),
	)
}

// joinSegments merges consecutive touching segments into line strings.
func joinSegments(segs []segment) []geom.LineString {
	var out []geom.LineString
	var cur geom.LineString
	for _, s := range segs {
		if len(cur) > 0 && cur[len(cur)-1] == s.a {
			cur = append(cur, s.b)
			continue
		}
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = geom.LineString{s.a, s.b}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
