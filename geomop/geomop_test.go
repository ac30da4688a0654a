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
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func box(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{geom.Path{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}}
}

func similar(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestType(t *testing.T) {
	tests := []struct {
		g      geom.Geom
		typ    string
		family Family
		dim    int
	}{
		{g: nil, typ: "", family: FamilyEmpty, dim: -1},
		{g: geom.Point{X: 1, Y: 1}, typ: "Point", family: FamilyPoint, dim: 0},
		{g: geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}}, typ: "LineString", family: FamilyLine, dim: 1},
		{g: box(0, 0, 1, 1), typ: "Polygon", family: FamilyPolygon, dim: 2},
		{g: geom.MultiPolygon{box(0, 0, 1, 1), box(2, 2, 3, 3)}, typ: "MultiPolygon", family: FamilyPolygon, dim: 2},
		{
			g:      geom.GeometryCollection{geom.Point{X: 5, Y: 5}, box(0, 0, 1, 1)},
			typ:    "GeometryCollection",
			family: FamilyMixed,
			dim:    2,
		},
		{g: geom.GeometryCollection{}, typ: "GeometryCollection", family: FamilyEmpty, dim: -1},
	}
	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			if typ := Type(test.g); typ != test.typ {
				t.Errorf("type: have %s, want %s", typ, test.typ)
			}
			if f := FamilyOf(test.g); f != test.family {
				t.Errorf("family: have %v, want %v", f, test.family)
			}
			if d := Dimension(test.g); d != test.dim {
				t.Errorf("dimension: have %d, want %d", d, test.dim)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	b := box(0, 0, 2, 2)
	l := geom.LineString{{X: 0, Y: 0}, {X: 2, Y: 0}}
	tests := []struct {
		name string
		pt   geom.Point
		g    geom.Geom
		want Location
	}{
		{name: "polygon interior", pt: geom.Point{X: 1, Y: 1}, g: b, want: Interior},
		{name: "polygon edge", pt: geom.Point{X: 2, Y: 1}, g: b, want: Boundary},
		{name: "polygon vertex", pt: geom.Point{X: 0, Y: 0}, g: b, want: Boundary},
		{name: "polygon exterior", pt: geom.Point{X: 3, Y: 1}, g: b, want: Exterior},
		{name: "line endpoint", pt: geom.Point{X: 0, Y: 0}, g: l, want: Boundary},
		{name: "line interior", pt: geom.Point{X: 1, Y: 0}, g: l, want: Interior},
		{name: "line exterior", pt: geom.Point{X: 1, Y: 1}, g: l, want: Exterior},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := Locate(test.pt, test.g); have != test.want {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	big := box(0, 0, 4, 4)
	small := box(1, 1, 2, 2)
	a := box(0, 0, 2, 2)
	b := box(1, 1, 3, 3)
	adjacent := box(2, 0, 4, 2)
	far := box(10, 10, 11, 11)
	inside := geom.Point{X: 1, Y: 1}
	onEdge := geom.Point{X: 0, Y: 1}
	crossing := geom.LineString{{X: -1, Y: 1}, {X: 1, Y: 1}}

	type preds struct {
		intersects, within, contains, containsProperly, covers, coveredBy,
		touches, overlaps, crosses bool
	}
	tests := []struct {
		name string
		a, b geom.Geom
		want preds
	}{
		{
			name: "overlapping boxes", a: a, b: b,
			want: preds{intersects: true, overlaps: true},
		},
		{
			name: "adjacent boxes", a: a, b: adjacent,
			want: preds{intersects: true, touches: true},
		},
		{
			name: "disjoint boxes", a: a, b: far,
		},
		{
			name: "nested boxes", a: big, b: small,
			want: preds{intersects: true, contains: true, containsProperly: true, covers: true},
		},
		{
			name: "nested boxes reversed", a: small, b: big,
			want: preds{intersects: true, within: true, coveredBy: true},
		},
		{
			name: "equal boxes", a: a, b: a,
			want: preds{intersects: true, within: true, contains: true, covers: true, coveredBy: true},
		},
		{
			name: "point inside", a: inside, b: a,
			want: preds{intersects: true, within: true, coveredBy: true},
		},
		{
			name: "point on edge", a: onEdge, b: a,
			want: preds{intersects: true, coveredBy: true, touches: true},
		},
		{
			name: "line crossing boundary", a: crossing, b: a,
			want: preds{intersects: true, crosses: true},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have := preds{
				intersects:       Intersects(test.a, test.b),
				within:           Within(test.a, test.b),
				contains:         Contains(test.a, test.b),
				containsProperly: ContainsProperly(test.a, test.b),
				covers:           Covers(test.a, test.b),
				coveredBy:        CoveredBy(test.a, test.b),
				touches:          Touches(test.a, test.b),
				overlaps:         Overlaps(test.a, test.b),
				crosses:          Crosses(test.a, test.b),
			}
			if have != test.want {
				t.Errorf("have %+v, want %+v", have, test.want)
			}
		})
	}
}

func TestLinesCross(t *testing.T) {
	l1 := geom.LineString{{X: 0, Y: 0}, {X: 2, Y: 2}}
	l2 := geom.LineString{{X: 0, Y: 2}, {X: 2, Y: 0}}
	if !Crosses(l1, l2) {
		t.Error("diagonals should cross")
	}
	if Overlaps(l1, l2) {
		t.Error("diagonals should not overlap")
	}
	l3 := geom.LineString{{X: 1, Y: 1}, {X: 3, Y: 3}}
	if !Overlaps(l1, l3) {
		t.Error("collinear lines sharing a segment should overlap")
	}
	if Crosses(l1, l3) {
		t.Error("collinear lines sharing a segment should not cross")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b geom.Geom
		want float64
	}{
		{name: "boxes", a: box(0, 0, 1, 1), b: box(3, 0, 4, 1), want: 2},
		{name: "points", a: geom.Point{X: 0, Y: 0}, b: geom.Point{X: 3, Y: 4}, want: 5},
		{name: "point to box", a: geom.Point{X: 3, Y: 4}, b: box(0, 0, 3, 1), want: 3},
		{name: "intersecting", a: box(0, 0, 2, 2), b: box(1, 1, 3, 3), want: 0},
		{name: "point in box", a: geom.Point{X: 1, Y: 1}, b: box(0, 0, 2, 2), want: 0},
		{name: "empty", a: nil, b: box(0, 0, 2, 2), want: math.Inf(1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := Distance(test.a, test.b); have != test.want && !similar(have, test.want) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestSetOperations(t *testing.T) {
	a := box(0, 0, 2, 2)
	b := box(1, 1, 3, 3)
	tests := []struct {
		name    string
		g       geom.Geom
		area    float64
		touches bool // result parts touch at points
	}{
		{name: "intersection", g: Intersection(a, b), area: 1},
		{name: "difference", g: Difference(a, b), area: 3},
		{name: "difference reversed", g: Difference(b, a), area: 3},
		{name: "union", g: Union(a, b), area: 7},
		{name: "symmetric difference", g: SymmetricDifference(a, b), area: 6, touches: true},
		{name: "difference of many", g: Difference(box(0, 0, 4, 1), box(0, 0, 1, 1), box(3, 0, 4, 1)), area: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if FamilyOf(test.g) != FamilyPolygon {
				t.Fatalf("result %#v is not polygonal", test.g)
			}
			if have := Area(test.g); !similar(have, test.area) {
				t.Errorf("area: have %g, want %g", have, test.area)
			}
			if test.touches {
				return
			}
			if err := Validate(test.g); err != nil {
				t.Errorf("result is invalid: %v", err)
			}
		})
	}
	if g := Intersection(a, box(5, 5, 6, 6)); g != nil {
		t.Errorf("disjoint intersection should be nil, have %#v", g)
	}
	if g := Difference(a, box(-1, -1, 3, 3)); g != nil {
		t.Errorf("fully covered difference should be nil, have %#v", g)
	}
	if g := Difference(a); !reflect.DeepEqual(g, geom.Geom(a)) {
		t.Errorf("difference with nothing should return the input, have %#v", g)
	}
}

func TestLineIntersection(t *testing.T) {
	l := geom.LineString{{X: -1, Y: 1}, {X: 3, Y: 1}}
	have := Intersection(l, box(0, 0, 2, 2))
	want := geom.LineString{{X: 0, Y: 1}, {X: 2, Y: 1}}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %#v, want %#v", have, want)
	}
	diff := Difference(l, box(0, 0, 2, 2))
	wantDiff := geom.MultiLineString{{{X: -1, Y: 1}, {X: 0, Y: 1}}, {{X: 2, Y: 1}, {X: 3, Y: 1}}}
	if !reflect.DeepEqual(diff, wantDiff) {
		t.Errorf("difference: have %#v, want %#v", diff, wantDiff)
	}
}

func TestNormalize(t *testing.T) {
	outer := geom.Path{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	hole := geom.Path{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}
	island := geom.Path{{X: 1.5, Y: 1.5}, {X: 2.5, Y: 1.5}, {X: 2.5, Y: 2.5}, {X: 1.5, Y: 2.5}}
	polys := normalize([]geom.Path{hole, island, outer})
	if len(polys) != 2 {
		t.Fatalf("want 2 polygons, have %d", len(polys))
	}
	if len(polys[0]) != 1 || len(polys[1]) != 2 {
		t.Errorf("unexpected ring layout: %#v", polys)
	}
	if a := polygonsArea(polys); !similar(a, 13) {
		t.Errorf("area: have %g, want 13", a)
	}
	if ringArea(polys[1][0]) <= 0 || ringArea(polys[1][1]) >= 0 {
		t.Error("shells should be counter-clockwise and holes clockwise")
	}
}

func TestFromRings(t *testing.T) {
	g := FromRings([]geom.Path{box(0, 0, 2, 2)[0], box(0.5, 0.5, 1, 1)[0], box(5, 5, 6, 6)[0]})
	mp, ok := g.(geom.MultiPolygon)
	if !ok || len(mp) != 2 {
		t.Fatalf("have %#v", g)
	}
	if a := Area(g); !similar(a, 4.75) {
		t.Errorf("area: have %g, want 4.75", a)
	}
	if g := FromRings(nil); g != nil {
		t.Errorf("no rings: have %v", g)
	}
}

func TestValidate(t *testing.T) {
	bowtie := geom.Polygon{geom.Path{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: 0, Y: 0}}}
	tests := []struct {
		name  string
		g     geom.Geom
		valid bool
	}{
		{name: "box", g: box(0, 0, 1, 1), valid: true},
		{name: "bowtie", g: bowtie},
		{name: "degenerate", g: geom.Polygon{geom.Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}}},
		{name: "hole outside", g: geom.Polygon{box(0, 0, 1, 1)[0], box(5, 5, 6, 6)[0]}},
		{name: "overlapping multipolygon", g: geom.MultiPolygon{box(0, 0, 2, 2), box(1, 1, 3, 3)}},
		{name: "nan point", g: geom.Point{X: math.NaN(), Y: 0}},
		{name: "line", g: geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 0}}, valid: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(test.g)
			if test.valid {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var ig *InvalidGeometryError
			if !errors.As(err, &ig) {
				t.Errorf("want *InvalidGeometryError, have %v", err)
			}
		})
	}
}

func TestMakeValid(t *testing.T) {
	b := box(0, 0, 1, 1)
	if g := MakeValid(b); !reflect.DeepEqual(g, geom.Geom(b)) {
		t.Errorf("valid input should be returned unchanged, have %#v", g)
	}
	bowtie := geom.Polygon{geom.Path{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: 0, Y: 0}}}
	g := MakeValid(bowtie)
	if Type(g) != "MultiPolygon" {
		t.Fatalf("have %s, want MultiPolygon", Type(g))
	}
	if a := Area(g); !similar(a, 2) {
		t.Errorf("area: have %g, want 2", a)
	}
	unclosed := geom.Polygon{geom.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	if err := Validate(MakeValid(unclosed)); err != nil {
		t.Errorf("repaired polygon is invalid: %v", err)
	}
}
