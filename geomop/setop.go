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

	"github.com/ctessum/geom"
)

// areaTolerance is the fraction of an input's area below which a clipped
// remainder is treated as empty.
const areaTolerance = 1e-9

type clipKind int

const (
	intersectionOp clipKind = iota
	differenceOp
	unionOp
	xorOp
)

// clip applies a polygon boolean operation and normalizes the resulting
// rings into valid polygons.
func clip(a, b []geom.Polygon, k clipKind) []geom.Polygon {
	switch {
	case len(a) == 0:
		if k == unionOp || k == xorOp {
			return b
		}
		return nil
	case len(b) == 0:
		if k == intersectionOp {
			return nil
		}
		return a
	}
	pa, pb := geom.MultiPolygon(a), geom.MultiPolygon(b)
	var out geom.Polygonal
	switch k {
	case intersectionOp:
		out = pa.Intersection(pb)
	case differenceOp:
		out = pa.Difference(pb)
	case unionOp:
		out = pa.Union(pb)
	case xorOp:
		out = pa.XOr(pb)
	}
	if out == nil {
		return nil
	}
	var rings []geom.Path
	for _, p := range out.Polygons() {
		rings = append(rings, p...)
	}
	return normalize(rings)
}

// Area returns the area of the polygonal parts of g.
func Area(g geom.Geom) float64 {
	return polygonsArea(decompose(g).polys)
}

func polygonsArea(polys []geom.Polygon) float64 {
	var a float64
	for _, p := range polys {
		a += polygonArea(p)
	}
	return a
}

// polygonArea treats the first ring as the shell and the rest as holes.
func polygonArea(p geom.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	a := math.Abs(ringArea(p[0]))
	for _, h := range p[1:] {
		a -= math.Abs(ringArea(h))
	}
	return a
}

// ringArea returns the signed area of r, positive when counter-clockwise.
func ringArea(r geom.Path) float64 {
	var a float64
	for i := range r {
		j := (i + 1) % len(r)
		a += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return a / 2
}

// cleanRing removes repeated consecutive points and the closing point.
func cleanRing(r geom.Path) geom.Path {
	out := make(geom.Path, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func reversed(r geom.Path) geom.Path {
	out := make(geom.Path, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

type nestRing struct {
	pts   geom.Path
	area  float64
	depth int
}

// normalize arranges an unordered set of non-crossing rings into polygons
// by nesting depth: rings at even depth are shells and rings at odd depth
// are holes of the smallest shell enclosing them. Shells are returned
// counter-clockwise and holes clockwise, each closed.
func normalize(rings []geom.Path) []geom.Polygon {
	var rs []*nestRing
	var maxArea float64
	for _, r := range rings {
		c := cleanRing(r)
		if len(c) < 3 {
			continue
		}
		a := math.Abs(ringArea(c))
		if a == 0 {
			continue
		}
		maxArea = math.Max(maxArea, a)
		rs = append(rs, &nestRing{pts: c, area: a})
	}
	kept := rs[:0]
	for _, r := range rs {
		if r.area > areaTolerance*maxArea {
			kept = append(kept, r)
		}
	}
	rs = kept
	for i, r := range rs {
		for j, o := range rs {
			if i != j && ringInside(r, o) {
				r.depth++
			}
		}
	}
	var polys []geom.Polygon
	shellIndex := make(map[*nestRing]int)
	for _, r := range rs {
		if r.depth%2 == 0 {
			shellIndex[r] = len(polys)
			polys = append(polys, geom.Polygon{closeRing(orientRing(r.pts, true))})
		}
	}
	for _, h := range rs {
		if h.depth%2 == 0 {
			continue
		}
		var parent *nestRing
		for _, s := range rs {
			if s.depth == h.depth-1 && ringInside(h, s) && (parent == nil || s.area < parent.area) {
				parent = s
			}
		}
		if parent == nil {
			continue
		}
		i := shellIndex[parent]
		polys[i] = append(polys[i], closeRing(orientRing(h.pts, false)))
	}
	return polys
}

func orientRing(r geom.Path, ccw bool) geom.Path {
	if (ringArea(r) > 0) != ccw {
		return reversed(r)
	}
	return r
}

func closeRing(r geom.Path) geom.Path {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		return append(append(geom.Path(nil), r...), r[0])
	}
	return r
}

// ringInside reports whether ring in lies inside ring out. The rings may
// touch but must not cross.
func ringInside(in, out *nestRing) bool {
	if in.area >= out.area {
		return false
	}
	shell := geom.Polygon{out.pts}
	if !shell.Bounds().Overlaps(geom.LineString(in.pts).Bounds()) {
		return false
	}
	for _, v := range in.pts {
		switch locatePolygon(v, shell) {
		case Interior:
			return true
		case Exterior:
			return false
		}
	}
	for _, s := range ringEdges(in.pts) {
		switch locatePolygon(s.mid(), shell) {
		case Interior:
			return true
		case Exterior:
			return false
		}
	}
	return true
}

// FromRings assembles rings of either orientation into polygons by
// nesting depth, the way shapefiles store them. It returns a Polygon, a
// MultiPolygon or nil.
func FromRings(rings []geom.Path) geom.Geom {
	return build(nil, nil, normalize(rings))
}

// Intersection returns the point set shared by a and b, or nil if it is
// empty. Contacts between polygons of lower dimension than the polygons
// themselves, such as shared edges, are not reported.
func Intersection(a, b geom.Geom) geom.Geom {
	pa, pb := decompose(a), decompose(b)
	if !intersects(pa, pb) {
		return nil
	}
	polys := clip(pa.polys, pb.polys, intersectionOp)
	res := parts{polys: polys}

	var segs []segment
	for _, s := range splitLines(pa.lines, pb.edges()) {
		if pb.locate(s.mid()) != Exterior && res.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	aPolys := parts{polys: pa.polys}
	for _, s := range splitLines(pb.lines, pa.edges()) {
		if aPolys.locate(s.mid()) != Exterior && res.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	res.lines = joinSegments(segs)

	var candidates []geom.Point
	candidates = append(candidates, pa.points...)
	candidates = append(candidates, pb.points...)
	candidates = append(candidates, parts{lines: pa.lines}.vertices()...)
	candidates = append(candidates, parts{lines: pb.lines}.vertices()...)
	la, lb := parts{lines: pa.lines}.edges(), parts{lines: pb.lines}.edges()
	for _, s := range la {
		for _, o := range lb {
			if s.crosses(o) {
				if ts := s.params(o); len(ts) > 0 {
					candidates = append(candidates, s.at(ts[0]))
				}
			}
		}
	}
	var points []geom.Point
	for _, pt := range candidates {
		if pa.locate(pt) == Exterior || pb.locate(pt) == Exterior {
			continue
		}
		if res.locate(pt) != Exterior || containsPoint(points, pt) {
			continue
		}
		points = append(points, pt)
	}
	return build(points, res.lines, res.polys)
}

// Difference returns the part of a not covered by any of others, or nil
// if nothing remains.
func Difference(a geom.Geom, others ...geom.Geom) geom.Geom {
	pa := decompose(a)
	if pa.empty() {
		return nil
	}
	var po parts
	polys := pa.polys
	for _, o := range others {
		p := decompose(o)
		if p.empty() || !p.bounds().Overlaps(pa.bounds()) {
			continue
		}
		polys = clip(polys, p.polys, differenceOp)
		po.points = append(po.points, p.points...)
		po.lines = append(po.lines, p.lines...)
		po.polys = append(po.polys, p.polys...)
	}
	if po.empty() {
		return a
	}
	var segs []segment
	for _, s := range splitLines(pa.lines, po.edges()) {
		if po.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	var points []geom.Point
	for _, pt := range pa.points {
		if po.locate(pt) == Exterior && !containsPoint(points, pt) {
			points = append(points, pt)
		}
	}
	return build(points, joinSegments(segs), polys)
}

// Union returns the point set covered by a or b, or nil if both are empty.
func Union(a, b geom.Geom) geom.Geom {
	pa, pb := decompose(a), decompose(b)
	res := parts{polys: clip(pa.polys, pb.polys, unionOp)}
	var segs []segment
	for _, s := range splitLines(pa.lines, pb.edges()) {
		if res.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	aLines := parts{lines: pa.lines}
	for _, s := range splitLines(pb.lines, pa.edges()) {
		if res.locate(s.mid()) == Exterior && aLines.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	res.lines = joinSegments(segs)
	var points []geom.Point
	for _, pt := range append(append([]geom.Point(nil), pa.points...), pb.points...) {
		if res.locate(pt) == Exterior && !containsPoint(points, pt) {
			points = append(points, pt)
		}
	}
	return build(points, res.lines, res.polys)
}

// SymmetricDifference returns the point set covered by exactly one of a
// and b, or nil if it is empty.
func SymmetricDifference(a, b geom.Geom) geom.Geom {
	pa, pb := decompose(a), decompose(b)
	polys := clip(pa.polys, pb.polys, xorOp)
	var segs []segment
	for _, s := range splitLines(pa.lines, pb.edges()) {
		if pb.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	for _, s := range splitLines(pb.lines, pa.edges()) {
		if pa.locate(s.mid()) == Exterior {
			segs = append(segs, s)
		}
	}
	var points []geom.Point
	for _, pt := range pa.points {
		if pb.locate(pt) == Exterior && !containsPoint(points, pt) {
			points = append(points, pt)
		}
	}
	for _, pt := range pb.points {
		if pa.locate(pt) == Exterior && !containsPoint(points, pt) {
			points = append(points, pt)
		}
	}
	return build(points, joinSegments(segs), polys)
}
