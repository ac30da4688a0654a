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

// Validate returns an *InvalidGeometryError describing the first problem
// found in g, or nil if g is valid. A nil geometry is valid.
func Validate(g geom.Geom) error {
	if err := Supported(g); err != nil {
		return err
	}
	invalid := func(reason string) error {
		return &InvalidGeometryError{Type: Type(g), Reason: reason}
	}
	switch t := g.(type) {
	case geom.Point:
		if !finite(t) {
			return invalid("non-finite coordinate")
		}
	case geom.MultiPoint:
		for _, p := range t {
			if !finite(p) {
				return invalid("non-finite coordinate")
			}
		}
	case geom.LineString:
		if reason := validateLine(t); reason != "" {
			return invalid(reason)
		}
	case geom.MultiLineString:
		for _, l := range t {
			if reason := validateLine(l); reason != "" {
				return invalid(reason)
			}
		}
	case geom.Polygon:
		if reason := validatePolygon(t); reason != "" {
			return invalid(reason)
		}
	case geom.MultiPolygon:
		for _, p := range t {
			if reason := validatePolygon(p); reason != "" {
				return invalid(reason)
			}
		}
		for i := range t {
			for j := i + 1; j < len(t); j++ {
				if interiorsIntersect(parts{polys: t[i : i+1]}, parts{polys: t[j : j+1]}) {
					return invalid("overlapping polygons")
				}
			}
		}
	case geom.GeometryCollection:
		for _, m := range t {
			if err := Validate(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func finite(p geom.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func validateLine(l geom.LineString) string {
	for _, p := range l {
		if !finite(p) {
			return "non-finite coordinate"
		}
	}
	if len(lineEdges(l)) == 0 {
		return "fewer than two distinct points"
	}
	return ""
}

func validatePolygon(p geom.Polygon) string {
	if len(p) == 0 {
		return "no rings"
	}
	var edges [][]segment
	for _, r := range p {
		for _, pt := range r {
			if !finite(pt) {
				return "non-finite coordinate"
			}
		}
		e := ringEdges(r)
		if len(e) < 3 || ringArea(cleanRing(r)) == 0 {
			return "degenerate ring"
		}
		edges = append(edges, e)
	}
	for ri, e := range edges {
		n := len(e)
		for i := 0; i < n; i++ {
			next := e[(i+1)%n]
			if collinear(e[i].a, e[i].b, next.b) &&
				(next.b.X-e[i].b.X)*(e[i].a.X-e[i].b.X)+(next.b.Y-e[i].b.Y)*(e[i].a.Y-e[i].b.Y) > 0 {
				return "ring self-intersection"
			}
			for j := i + 2; j < n; j++ {
				if i == 0 && j == n-1 {
					continue
				}
				if e[i].intersects(e[j]) {
					return "ring self-intersection"
				}
			}
		}
		for rj := ri + 1; rj < len(edges); rj++ {
			for _, s := range e {
				for _, o := range edges[rj] {
					if s.crosses(o) || (collinear(s.a, s.b, o.a) && collinear(s.a, s.b, o.b) && overlapLength(s, o) > 0) {
						return "rings cross"
					}
				}
			}
		}
	}
	shell := geom.Polygon{p[0]}
	for _, h := range p[1:] {
		for _, v := range h {
			if loc := locatePolygon(v, shell); loc == Exterior {
				return "hole lies outside shell"
			} else if loc == Interior {
				break
			}
		}
	}
	return ""
}

// overlapLength returns the length shared by collinear segments s and o.
func overlapLength(s, o segment) float64 {
	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	rr := rx*rx + ry*ry
	t0 := ((o.a.X-s.a.X)*rx + (o.a.Y-s.a.Y)*ry) / rr
	t1 := ((o.b.X-s.a.X)*rx + (o.b.Y-s.a.Y)*ry) / rr
	lo := math.Max(0, math.Min(t0, t1))
	hi := math.Min(1, math.Max(t0, t1))
	if hi-lo <= eps {
		return 0
	}
	return (hi - lo) * math.Sqrt(rr)
}

// MakeValid returns g unchanged if it is valid. Otherwise it returns a
// valid geometry covering the same point set: repeated points are
// dropped, self-intersecting rings are split into simple loops that are
// combined with even-odd semantics, and overlapping polygons are merged.
// Degenerate lines are dropped. The result may be nil.
func MakeValid(g geom.Geom) geom.Geom {
	if Validate(g) == nil {
		return g
	}
	p := decompose(g)
	var polys []geom.Polygon
	for _, poly := range polygonsOf(g) {
		polys = clip(polys, repairPolygon(poly), unionOp)
	}
	var lines []geom.LineString
	for _, l := range p.lines {
		var c geom.LineString
		for _, pt := range l {
			if finite(pt) && (len(c) == 0 || c[len(c)-1] != pt) {
				c = append(c, pt)
			}
		}
		if len(c) >= 2 {
			lines = append(lines, c)
		}
	}
	var points []geom.Point
	for _, pt := range p.points {
		if finite(pt) {
			points = append(points, pt)
		}
	}
	return build(points, lines, polys)
}

// polygonsOf returns every polygon in g, including ones too degenerate to
// survive decomposition.
func polygonsOf(g geom.Geom) []geom.Polygon {
	switch t := g.(type) {
	case geom.Polygon:
		return []geom.Polygon{t}
	case geom.MultiPolygon:
		return t
	case geom.GeometryCollection:
		var out []geom.Polygon
		for _, m := range t {
			out = append(out, polygonsOf(m)...)
		}
		return out
	default:
		return nil
	}
}

// repairPolygon splits the rings of p into simple loops and combines
// them with even-odd semantics. Loops that cross loops of another ring
// are combined with the polygon clipper; otherwise nesting depth decides.
func repairPolygon(p geom.Polygon) []geom.Polygon {
	var loops [][]geom.Path
	for _, r := range p {
		var c geom.Path
		for _, pt := range cleanRing(r) {
			if finite(pt) {
				c = append(c, pt)
			}
		}
		if l := splitLoops(c); len(l) > 0 {
			loops = append(loops, l)
		}
	}
	if !loopsCross(loops) {
		var all []geom.Path
		for _, l := range loops {
			all = append(all, l...)
		}
		return normalize(all)
	}
	var acc []geom.Polygon
	for _, l := range loops {
		for _, loop := range l {
			acc = clip(acc, normalize([]geom.Path{loop}), xorOp)
		}
	}
	return acc
}

// loopsCross reports whether loops derived from different rings cross.
func loopsCross(loops [][]geom.Path) bool {
	for i := range loops {
		for j := i + 1; j < len(loops); j++ {
			for _, a := range loops[i] {
				for _, b := range loops[j] {
					for _, s := range ringEdges(a) {
						for _, o := range ringEdges(b) {
							if s.crosses(o) {
								return true
							}
						}
					}
				}
			}
		}
	}
	return false
}

// splitLoops nodes ring r at its self-intersections and returns the
// simple loops it decomposes into.
func splitLoops(r geom.Path) []geom.Path {
	if len(r) < 3 {
		return nil
	}
	edges := make([]segment, len(r))
	for i := range r {
		edges[i] = segment{r[i], r[(i+1)%len(r)]}
	}
	cuts := make([][]ringCut, len(edges))
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			s, o := edges[i], edges[j]
			if !s.intersects(o) {
				continue
			}
			for _, t := range s.params(o) {
				pt := s.at(t)
				if u, ok := paramOf(o, pt); ok {
					cuts[j] = append(cuts[j], ringCut{u, pt})
				} else {
					pt = nearestEnd(o, pt)
				}
				cuts[i] = append(cuts[i], ringCut{t, pt})
			}
			for _, u := range o.params(s) {
				pt := o.at(u)
				if _, ok := paramOf(s, pt); ok {
					continue
				}
				cuts[j] = append(cuts[j], ringCut{u, nearestEnd(s, pt)})
			}
		}
	}
	var noded geom.Path
	for i, e := range edges {
		noded = append(noded, e.a)
		cs := cuts[i]
		sort.Slice(cs, func(a, b int) bool { return cs[a].t < cs[b].t })
		for _, c := range cs {
			noded = append(noded, c.pt)
		}
	}
	var loops []geom.Path
	var stack geom.Path
	for _, pt := range noded {
		k := -1
		for i, q := range stack {
			if q == pt {
				k = i
				break
			}
		}
		if k < 0 {
			stack = append(stack, pt)
			continue
		}
		if loop := stack[k:]; len(loop) >= 3 {
			loops = append(loops, append(geom.Path(nil), loop...))
		}
		stack = stack[:k+1]
	}
	if len(stack) >= 3 {
		loops = append(loops, stack)
	}
	return loops
}

type ringCut struct {
	t  float64
	pt geom.Point
}

func nearestEnd(s segment, pt geom.Point) geom.Point {
	if dist(pt, s.a) <= dist(pt, s.b) {
		return s.a
	}
	return s.b
}

// paramOf returns the interior position of pt along s, if pt lies on s
// away from its endpoints.
func paramOf(s segment, pt geom.Point) (float64, bool) {
	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	t := ((pt.X-s.a.X)*rx + (pt.Y-s.a.Y)*ry) / (rx*rx + ry*ry)
	return t, t > eps && t < 1-eps
}
