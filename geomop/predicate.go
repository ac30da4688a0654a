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
	"gonum.org/v1/gonum/floats"
)

// Intersects reports whether a and b share at least one point.
func Intersects(a, b geom.Geom) bool {
	return intersects(decompose(a), decompose(b))
}

// Disjoint reports whether a and b share no points.
func Disjoint(a, b geom.Geom) bool { return !Intersects(a, b) }

// Within reports whether a lies in b and the interiors of a and b
// intersect.
func Within(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	return coveredBy(pa, pb) && interiorsIntersect(pa, pb)
}

// Contains reports whether b is within a.
func Contains(a, b geom.Geom) bool { return Within(b, a) }

// CoveredBy reports whether no point of a lies outside b.
func CoveredBy(a, b geom.Geom) bool {
	return coveredBy(decompose(a), decompose(b))
}

// Covers reports whether no point of b lies outside a.
func Covers(a, b geom.Geom) bool { return CoveredBy(b, a) }

// ContainsProperly reports whether every point of b lies in the interior
// of a.
func ContainsProperly(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	if !coveredBy(pb, pa) {
		return false
	}
	rings := pa.ringEdges()
	for _, s := range pb.edges() {
		for _, r := range rings {
			if s.intersects(r) {
				return false
			}
		}
	}
	for _, pt := range pb.points {
		for _, r := range rings {
			if onSegment(pt, r.a, r.b) {
				return false
			}
		}
	}
	for _, pt := range pa.lineBoundaryPoints() {
		if pb.locate(pt) != Exterior {
			return false
		}
	}
	return true
}

// Touches reports whether a and b intersect only at their boundaries.
func Touches(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	return intersects(pa, pb) && !interiorsIntersect(pa, pb)
}

// Overlaps reports whether a and b have the same dimension, their
// interiors intersect in that dimension, and neither covers the other.
func Overlaps(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	d := pa.dim()
	if d < 0 || d != pb.dim() {
		return false
	}
	switch d {
	case 1:
		if !lineOverlap(pa, pb) {
			return false
		}
	default:
		if !interiorsIntersect(pa, pb) {
			return false
		}
	}
	return !coveredBy(pa, pb) && !coveredBy(pb, pa)
}

// Crosses reports whether a and b have some but not all interior points
// in common, and the intersection has lower dimension than the larger
// of the two inputs.
func Crosses(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	da, db := pa.dim(), pb.dim()
	switch {
	case da < 0 || db < 0:
		return false
	case da < db:
		return interiorsIntersect(pa, pb) && !coveredBy(pa, pb)
	case da > db:
		return interiorsIntersect(pb, pa) && !coveredBy(pb, pa)
	case da == 1:
		return interiorsIntersect(pa, pb) && !lineOverlap(pa, pb)
	default:
		return false
	}
}

// Equals reports whether a and b are topologically equal.
func Equals(a, b geom.Geom) bool {
	pa, pb := decompose(a), decompose(b)
	if pa.empty() || pb.empty() {
		return pa.empty() && pb.empty()
	}
	return coveredBy(pa, pb) && coveredBy(pb, pa)
}

// Distance returns the minimum planar distance between a and b. It
// returns +Inf if either geometry is empty.
func Distance(a, b geom.Geom) float64 {
	pa, pb := decompose(a), decompose(b)
	if pa.empty() || pb.empty() {
		return math.Inf(1)
	}
	if intersects(pa, pb) {
		return 0
	}
	ea, eb := pa.edges(), pb.edges()
	var d []float64
	for _, s := range ea {
		for _, o := range eb {
			d = append(d, segmentDistance(s, o))
		}
		for _, q := range pb.points {
			d = append(d, pointSegmentDistance(q, s))
		}
	}
	for _, p := range pa.points {
		for _, o := range eb {
			d = append(d, pointSegmentDistance(p, o))
		}
		for _, q := range pb.points {
			d = append(d, dist(p, q))
		}
	}
	return floats.Min(d)
}

func intersects(a, b parts) bool {
	if a.empty() || b.empty() {
		return false
	}
	if !a.bounds().Overlaps(b.bounds()) {
		return false
	}
	for _, v := range a.vertices() {
		if b.locate(v) != Exterior {
			return true
		}
	}
	for _, v := range b.vertices() {
		if a.locate(v) != Exterior {
			return true
		}
	}
	eb := b.edges()
	for _, s := range a.edges() {
		for _, o := range eb {
			if s.intersects(o) {
				return true
			}
		}
	}
	return false
}

// splitLines cuts the segments of lines at every touch with cutters.
func splitLines(lines []geom.LineString, cutters []segment) []segment {
	var out []segment
	for _, l := range lines {
		for _, s := range lineEdges(l) {
			out = append(out, s.split(cutters)...)
		}
	}
	return out
}

func interiorsIntersect(a, b parts) bool {
	if !intersects(a, b) {
		return false
	}
	for _, pt := range a.points {
		if b.locate(pt) == Interior {
			return true
		}
	}
	for _, pt := range b.points {
		if a.locate(pt) == Interior {
			return true
		}
	}
	for _, s := range splitLines(a.lines, b.edges()) {
		if b.locate(s.mid()) == Interior {
			return true
		}
	}
	for _, s := range splitLines(b.lines, a.edges()) {
		if a.locate(s.mid()) == Interior {
			return true
		}
	}
	if len(a.lines) > 0 && len(b.lines) > 0 {
		la, lb := parts{lines: a.lines}, parts{lines: b.lines}
		for _, v := range la.vertices() {
			if la.locate(v) == Interior && lb.locate(v) == Interior {
				return true
			}
		}
		for _, v := range lb.vertices() {
			if la.locate(v) == Interior && lb.locate(v) == Interior {
				return true
			}
		}
		eb := lb.edges()
		for _, s := range la.edges() {
			for _, o := range eb {
				if s.crosses(o) {
					return true
				}
			}
		}
	}
	if len(a.polys) > 0 && len(b.polys) > 0 {
		aa := polygonsArea(a.polys)
		if polygonsArea(clip(a.polys, b.polys, intersectionOp)) > areaTolerance*aa {
			return true
		}
	}
	return false
}

// lineOverlap reports whether the lines of a and b share a segment.
func lineOverlap(a, b parts) bool {
	lb := parts{lines: b.lines}
	for _, s := range splitLines(a.lines, lb.edges()) {
		if lb.locate(s.mid()) != Exterior {
			return true
		}
	}
	return false
}

func coveredBy(a, b parts) bool {
	if a.empty() || b.empty() {
		return false
	}
	if !b.bounds().Overlaps(a.bounds()) {
		return false
	}
	for _, pt := range a.points {
		if b.locate(pt) == Exterior {
			return false
		}
	}
	for _, s := range splitLines(a.lines, b.edges()) {
		if b.locate(s.a) == Exterior || b.locate(s.mid()) == Exterior || b.locate(s.b) == Exterior {
			return false
		}
	}
	if len(a.polys) > 0 {
		if len(b.polys) == 0 {
			return false
		}
		aa := polygonsArea(a.polys)
		if polygonsArea(clip(a.polys, b.polys, differenceOp)) > areaTolerance*aa {
			return false
		}
	}
	return true
}
