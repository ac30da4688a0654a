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

import "github.com/ctessum/geom"

// Location is the position of a point relative to a geometry.
type Location int

// Point locations.
const (
	Exterior Location = iota
	Boundary
	Interior
)

// Locate returns the location of pt relative to g.
func Locate(pt geom.Point, g geom.Geom) Location {
	return decompose(g).locate(pt)
}

func (p parts) locate(pt geom.Point) Location {
	loc := Exterior
	for _, poly := range p.polys {
		switch locatePolygon(pt, poly) {
		case Interior:
			return Interior
		case Boundary:
			loc = Boundary
		}
	}
	if len(p.lines) > 0 {
		if p.lineBoundary(pt) {
			if loc == Exterior {
				loc = Boundary
			}
		} else {
			for _, l := range p.lines {
				for _, s := range lineEdges(l) {
					if onSegment(pt, s.a, s.b) {
						return Interior
					}
				}
			}
		}
	}
	for _, q := range p.points {
		if q == pt {
			return Interior
		}
	}
	return loc
}

// lineBoundary reports whether pt is a boundary point of the lines of p,
// using the mod-2 rule on the endpoints of open lines.
func (p parts) lineBoundary(pt geom.Point) bool {
	n := 0
	for _, l := range p.lines {
		if l[0] == l[len(l)-1] {
			continue
		}
		if l[0] == pt {
			n++
		}
		if l[len(l)-1] == pt {
			n++
		}
	}
	return n%2 == 1
}

// lineBoundaryPoints returns the boundary points of the lines of p.
func (p parts) lineBoundaryPoints() []geom.Point {
	var out []geom.Point
	for _, l := range p.lines {
		for _, e := range []geom.Point{l[0], l[len(l)-1]} {
			if p.lineBoundary(e) && !containsPoint(out, e) {
				out = append(out, e)
			}
		}
	}
	return out
}

func containsPoint(pts []geom.Point, pt geom.Point) bool {
	for _, q := range pts {
		if q == pt {
			return true
		}
	}
	return false
}

func locatePolygon(pt geom.Point, poly geom.Polygon) Location {
	if !poly.Bounds().Overlaps(pt.Bounds()) {
		return Exterior
	}
	for _, r := range poly {
		for _, s := range ringEdges(r) {
			if onSegment(pt, s.a, s.b) {
				return Boundary
			}
		}
	}
	if pt.Within(poly) == geom.Inside {
		return Interior
	}
	return Exterior
}
