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

// Package geomop provides planar relationship predicates, distances, set
// operations and validity repair for github.com/ctessum/geom geometries.
//
// Polygon set operations are carried out by the polygon clipper behind
// geom.Polygonal; lines and points are handled by splitting segments at
// boundary crossings and classifying the pieces. All operations are planar.
package geomop

import (
	"fmt"

	"github.com/ctessum/geom"
)

// UnsupportedGeometryError is returned for geometry implementations
// other than the simple feature types in github.com/ctessum/geom.
type UnsupportedGeometryError struct {
	Type string
}

func (e UnsupportedGeometryError) Error() string {
	return "geomop: unsupported geometry type " + e.Type
}

// InvalidGeometryError reports why a geometry is not valid.
type InvalidGeometryError struct {
	Type   string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("geomop: invalid %s: %s", e.Type, e.Reason)
}

// Family groups geometry types that share a topological dimension.
// Polygon and MultiPolygon belong to the same family, for example.
type Family int

// The geometry families.
const (
	FamilyEmpty Family = iota
	FamilyPoint
	FamilyLine
	FamilyPolygon
	FamilyMixed
)

func (f Family) String() string {
	switch f {
	case FamilyEmpty:
		return "empty"
	case FamilyPoint:
		return "point"
	case FamilyLine:
		return "line"
	case FamilyPolygon:
		return "polygon"
	case FamilyMixed:
		return "mixed"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Type returns the simple feature type name of g, or "" if g is nil.
func Type(g geom.Geom) string {
	switch g.(type) {
	case nil:
		return ""
	case geom.Point:
		return "Point"
	case geom.MultiPoint:
		return "MultiPoint"
	case geom.LineString:
		return "LineString"
	case geom.MultiLineString:
		return "MultiLineString"
	case geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon:
		return "MultiPolygon"
	case geom.GeometryCollection:
		return "GeometryCollection"
	default:
		return fmt.Sprintf("%T", g)
	}
}

// FamilyOf returns the family of g. Collections whose non-empty members
// all share a family take that family.
func FamilyOf(g geom.Geom) Family {
	p := decompose(g)
	f := FamilyEmpty
	add := func(x Family) {
		if f == FamilyEmpty {
			f = x
		} else if f != x {
			f = FamilyMixed
		}
	}
	if len(p.points) > 0 {
		add(FamilyPoint)
	}
	if len(p.lines) > 0 {
		add(FamilyLine)
	}
	if len(p.polys) > 0 {
		add(FamilyPolygon)
	}
	return f
}

// IsEmpty reports whether g is nil or contains no non-degenerate parts.
func IsEmpty(g geom.Geom) bool {
	return decompose(g).empty()
}

// Dimension returns the topological dimension of g: 0 for points,
// 1 for lines, 2 for polygons, the maximum for collections, and -1 when
// g is empty.
func Dimension(g geom.Geom) int {
	return decompose(g).dim()
}

// Supported returns an UnsupportedGeometryError if g, or any member of
// g when g is a collection, is not one of the simple feature types.
func Supported(g geom.Geom) error {
	switch t := g.(type) {
	case nil, geom.Point, geom.MultiPoint, geom.LineString, geom.MultiLineString,
		geom.Polygon, geom.MultiPolygon:
		return nil
	case geom.GeometryCollection:
		for _, m := range t {
			if err := Supported(m); err != nil {
				return err
			}
		}
		return nil
	default:
		return UnsupportedGeometryError{Type: Type(g)}
	}
}

// Filter returns the parts of g that belong to family f, or nil if
// there are none.
func Filter(g geom.Geom, f Family) geom.Geom {
	p := decompose(g)
	switch f {
	case FamilyPoint:
		return build(p.points, nil, nil)
	case FamilyLine:
		return build(nil, p.lines, nil)
	case FamilyPolygon:
		return build(nil, nil, p.polys)
	case FamilyMixed:
		return g
	default:
		return nil
	}
}

// parts is a geometry flattened into its non-degenerate components.
type parts struct {
	points []geom.Point
	lines  []geom.LineString
	polys  []geom.Polygon
}

func (p parts) empty() bool {
	return len(p.points) == 0 && len(p.lines) == 0 && len(p.polys) == 0
}

func (p parts) dim() int {
	switch {
	case len(p.polys) > 0:
		return 2
	case len(p.lines) > 0:
		return 1
	case len(p.points) > 0:
		return 0
	default:
		return -1
	}
}

// vertices returns every coordinate of p.
func (p parts) vertices() []geom.Point {
	out := append([]geom.Point(nil), p.points...)
	for _, l := range p.lines {
		out = append(out, l...)
	}
	for _, poly := range p.polys {
		for _, r := range poly {
			out = append(out, r...)
		}
	}
	return out
}

// edges returns the line segments of the lines and polygon rings of p.
func (p parts) edges() []segment {
	var out []segment
	for _, l := range p.lines {
		out = append(out, lineEdges(l)...)
	}
	out = append(out, p.ringEdges()...)
	return out
}

func (p parts) ringEdges() []segment {
	var out []segment
	for _, poly := range p.polys {
		for _, r := range poly {
			out = append(out, ringEdges(r)...)
		}
	}
	return out
}

func (p parts) bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, v := range p.vertices() {
		b.Extend(v.Bounds())
	}
	return b
}

func decompose(g geom.Geom) parts {
	var p parts
	p.add(g)
	return p
}

func (p *parts) add(g geom.Geom) {
	switch t := g.(type) {
	case geom.Point:
		p.points = append(p.points, t)
	case geom.MultiPoint:
		p.points = append(p.points, t...)
	case geom.LineString:
		if len(lineEdges(t)) > 0 {
			p.lines = append(p.lines, t)
		}
	case geom.MultiLineString:
		for _, l := range t {
			p.add(l)
		}
	case geom.Polygon:
		if len(t) > 0 && len(ringEdges(t[0])) >= 3 {
			p.polys = append(p.polys, t)
		}
	case geom.MultiPolygon:
		for _, poly := range t {
			p.add(poly)
		}
	case geom.GeometryCollection:
		for _, m := range t {
			p.add(m)
		}
	}
}

// build assembles components into the simplest matching geometry.
// It returns nil when there are no components.
func build(points []geom.Point, lines []geom.LineString, polys []geom.Polygon) geom.Geom {
	var members []geom.Geom
	switch len(points) {
	case 0:
	case 1:
		members = append(members, points[0])
	default:
		members = append(members, geom.MultiPoint(points))
	}
	switch len(lines) {
	case 0:
	case 1:
		members = append(members, lines[0])
	default:
		members = append(members, geom.MultiLineString(lines))
	}
	switch len(polys) {
	case 0:
	case 1:
		members = append(members, polys[0])
	default:
		members = append(members, geom.MultiPolygon(polys))
	}
	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	default:
		return geom.GeometryCollection(members)
	}
}
