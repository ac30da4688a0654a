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

package geoframe

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// joinTables returns three points, of which the first and last fall in
// boxes a and b, and the two boxes.
func joinTables(t *testing.T) (points, boxes *Table) {
	points = mustTable(t,
		Column{Name: "name", Values: vals("p0", "p1", "p2")},
		Column{Name: "geometry", Values: vals(
			geom.Point{X: 0.5, Y: 0.5},
			geom.Point{X: 5, Y: 5},
			geom.Point{X: 1.5, Y: 0.5},
		)},
	)
	boxes = mustTable(t,
		Column{Name: "name", Values: vals("a", "b", "c")},
		Column{Name: "geometry", Values: vals(box(0, 0, 1, 1), box(1, 0, 2, 1), box(10, 10, 11, 11))},
	)
	return points, boxes
}

func quietJoiner() *Joiner {
	log, _ := logtest.NewNullLogger()
	return &Joiner{Log: log}
}

func TestJoin(t *testing.T) {
	points, boxes := joinTables(t)
	tests := []struct {
		how       JoinType
		columns   []string
		labels    []Label
		values    map[string][]interface{}
	}{
		{
			how:     Inner,
			columns: []string{"name_left", "geometry", "index_right", "name_right"},
			labels:  []Label{{0}, {2}},
			values: map[string][]interface{}{
				"name_left":   vals("p0", "p2"),
				"index_right": vals(0, 1),
				"name_right":  vals("a", "b"),
			},
		},
		{
			how:     Left,
			columns: []string{"name_left", "geometry", "index_right", "name_right"},
			labels:  []Label{{0}, {1}, {2}},
			values: map[string][]interface{}{
				"name_left":   vals("p0", "p1", "p2"),
				"index_right": vals(0, nil, 1),
				"name_right":  vals("a", nil, "b"),
			},
		},
		{
			how:     Right,
			columns: []string{"index_left", "name_left", "name_right", "geometry"},
			labels:  []Label{{0}, {1}, {2}},
			values: map[string][]interface{}{
				"index_left": vals(0, 2, nil),
				"name_left":  vals("p0", "p2", nil),
				"name_right": vals("a", "b", "c"),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.how.String(), func(t *testing.T) {
			out, err := quietJoiner().Join(points, boxes, JoinConfig{How: test.how})
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(out.Columns(), test.columns) {
				t.Errorf("columns: have %v, want %v", out.Columns(), test.columns)
			}
			if !reflect.DeepEqual(out.Index().Labels, test.labels) {
				t.Errorf("labels: have %v, want %v", out.Index().Labels, test.labels)
			}
			if !reflect.DeepEqual(out.Index().Names, []string{""}) {
				t.Errorf("index names: have %q", out.Index().Names)
			}
			for c, want := range test.values {
				if have := out.Column(c); !reflect.DeepEqual(have, want) {
					t.Errorf("%s: have %v, want %v", c, have, want)
				}
			}
			if test.how == Right {
				if !reflect.DeepEqual(out.Geometry(2), box(10, 10, 11, 11)) {
					t.Errorf("right geometry: have %v", out.Geometry(2))
				}
			} else if out.Geometry(0) != (geom.Point{X: 0.5, Y: 0.5}) {
				t.Errorf("left geometry: have %v", out.Geometry(0))
			}
		})
	}
}

func TestJoinFanOut(t *testing.T) {
	_, boxes := joinTables(t)
	edge := mustTable(t,
		Column{Name: "id", Values: vals(7)},
		Column{Name: "geometry", Values: vals(geom.Point{X: 1, Y: 0.5})},
	)
	out, err := quietJoiner().Join(edge, boxes, JoinConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name"), vals("a", "b")) {
		t.Errorf("have %v", out.Column("name"))
	}
	if !reflect.DeepEqual(out.Column("id"), vals(7, 7)) {
		t.Errorf("have %v", out.Column("id"))
	}
}

func TestJoinSuffixCollision(t *testing.T) {
	left := mustTable(t,
		Column{Name: "x", Values: vals(1)},
		Column{Name: "geometry", Values: vals(geom.Point{X: 0.5, Y: 0.5})},
	)
	right := mustTable(t,
		Column{Name: "x", Values: vals(2)},
		Column{Name: "x_left", Values: vals(3)},
		Column{Name: "geometry", Values: vals(box(0, 0, 1, 1))},
	)
	out, err := quietJoiner().Join(left, right, JoinConfig{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x_left_0", "geometry", "index_right", "x_right", "x_left"}
	if !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns: have %v, want %v", out.Columns(), want)
	}
	for name, v := range map[string]interface{}{"x_left_0": 1, "x_right": 2, "x_left": 3} {
		if have := out.Column(name); !reflect.DeepEqual(have, vals(v)) {
			t.Errorf("%s: have %v, want %v", name, have, vals(v))
		}
	}
}

func TestJoinDWithin(t *testing.T) {
	_, boxes := joinTables(t)
	pt := mustTable(t, Column{Name: "geometry", Values: vals(geom.Point{X: 0.5, Y: 2})})
	out, err := quietJoiner().Join(pt, boxes, JoinConfig{Predicate: DWithin, Distance: []float64{1.05}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("index_right"), vals(0)) {
		t.Errorf("matches: have %v", out.Column("index_right"))
	}
	d := out.Column("distance")
	if len(d) != 1 || math.Abs(d[0].(float64)-1) > 1e-12 {
		t.Errorf("distance: have %v", d)
	}

	out, err = quietJoiner().Join(pt, boxes, JoinConfig{How: Left, Predicate: DWithin, Distance: []float64{0.5}})
	if err != nil {
		t.Fatal(err)
	}
	if d := out.Column("distance"); len(d) != 1 || !math.IsNaN(d[0].(float64)) {
		t.Errorf("unmatched distance: have %v", d)
	}

	out, err = quietJoiner().Join(pt, boxes, JoinConfig{Predicate: Intersects})
	if err != nil {
		t.Fatal(err)
	}
	if out.HasColumn("distance") {
		t.Error("distance column added for intersects")
	}
}

func TestJoinOnAttribute(t *testing.T) {
	_, boxes := joinTables(t)
	boxes, err := boxes.WithColumn("zone", vals(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	edge := mustTable(t,
		Column{Name: "zone", Values: vals(2.0, math.NaN())},
		Column{Name: "geometry", Values: vals(geom.Point{X: 1, Y: 0.5}, geom.Point{X: 1, Y: 0.5})},
	)
	out, err := quietJoiner().Join(edge, boxes, JoinConfig{OnAttribute: []string{"zone"}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name"), vals("b")) {
		t.Errorf("matches: have %v", out.Column("name"))
	}
	if want := []string{"zone", "geometry", "index_right", "name"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Errorf("columns: have %v, want %v", out.Columns(), want)
	}

	_, err = quietJoiner().Join(edge, boxes, JoinConfig{OnAttribute: []string{"name"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing attribute: have %v", err)
	}
}

func TestJoinErrors(t *testing.T) {
	points, boxes := joinTables(t)
	reserved, err := points.WithColumn("index_left", vals(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name        string
		left, right *Table
		cfg         JoinConfig
		contains    string
	}{
		{name: "how", left: points, right: boxes, cfg: JoinConfig{How: JoinType(9)}, contains: "inner, left, right"},
		{name: "predicate", left: points, right: boxes, cfg: JoinConfig{Predicate: Predicate(99)}, contains: "dwithin"},
		{name: "no distance", left: points, right: boxes, cfg: JoinConfig{Predicate: DWithin}, contains: "distance"},
		{name: "distance length", left: points, right: boxes, cfg: JoinConfig{Predicate: DWithin, Distance: []float64{1, 2}}, contains: "distances"},
		{name: "unused distance", left: points, right: boxes, cfg: JoinConfig{Distance: []float64{1}}, contains: "dwithin"},
		{name: "reserved", left: reserved, right: boxes, cfg: JoinConfig{}, contains: "index_left"},
		{name: "nil", left: nil, right: boxes, cfg: JoinConfig{}, contains: "non-nil"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := quietJoiner().Join(test.left, test.right, test.cfg)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("have %v, want invalid input error", err)
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Errorf("error %q does not mention %q", err, test.contains)
			}
		})
	}
}

func TestJoinCRSMismatch(t *testing.T) {
	points, boxes := joinTables(t)
	log, hook := logtest.NewNullLogger()
	j := &Joiner{Log: log}

	if _, err := j.Join(points, boxes, JoinConfig{}); err != nil {
		t.Fatal(err)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected warning: %v", hook.LastEntry())
	}

	out, err := j.Join(points.WithCRS(&CRS{def: "+proj=longlat"}), boxes, JoinConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Errorf("rows: have %d, want 2", out.Len())
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("have %v, want a warning", e)
	}
	if e.Data["left_crs"] != "+proj=longlat" || e.Data["right_crs"] != "<nil>" {
		t.Errorf("fields: have %v", e.Data)
	}
	if out.CRS().String() != "+proj=longlat" {
		t.Errorf("crs: have %v", out.CRS())
	}
}

func TestJoinCompositeIndex(t *testing.T) {
	points, boxes := joinTables(t)
	points, err := points.WithColumn("state", vals("CA", "OR", "WA"))
	if err != nil {
		t.Fatal(err)
	}
	points, err = points.SetIndex([]string{"state", "name"}, []string{"", "name"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := quietJoiner().Join(points, boxes, JoinConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"", "name"}; !reflect.DeepEqual(out.Index().Names, want) {
		t.Errorf("index names: have %q, want %q", out.Index().Names, want)
	}
	if want := []Label{{"CA", "p0"}, {"WA", "p2"}}; !reflect.DeepEqual(out.Index().Labels, want) {
		t.Errorf("labels: have %v, want %v", out.Index().Labels, want)
	}
	if want := []string{"geometry", "index_right", "name"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Errorf("columns: have %v, want %v", out.Columns(), want)
	}
}

func TestJoinNearest(t *testing.T) {
	points, boxes := joinTables(t)
	edge := mustTable(t, Column{Name: "geometry", Values: vals(geom.Point{X: 1, Y: 0.5})})

	out, err := quietJoiner().JoinNearest(edge, boxes, NearestConfig{DistanceCol: "dist"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name"), vals("a", "b")) {
		t.Errorf("fan-out: have %v", out.Column("name"))
	}
	if !reflect.DeepEqual(out.Column("dist"), vals(0.0, 0.0)) {
		t.Errorf("distance: have %v", out.Column("dist"))
	}

	out, err = quietJoiner().JoinNearest(points, boxes, NearestConfig{How: Left, DistanceCol: "dist"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name_right"), vals("a", "b", "b")) {
		t.Errorf("nearest: have %v", out.Column("name_right"))
	}

	max := 1.0
	out, err = quietJoiner().JoinNearest(points, boxes, NearestConfig{How: Left, MaxDistance: &max, DistanceCol: "dist"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name_right"), vals("a", nil, "b")) {
		t.Errorf("max distance: have %v", out.Column("name_right"))
	}
	if d := out.Column("dist"); !math.IsNaN(d[1].(float64)) {
		t.Errorf("unmatched distance: have %v", d[1])
	}
	if out.HasColumn("distance") {
		t.Error("dwithin distance column added to a nearest join")
	}

	out, err = quietJoiner().JoinNearest(boxes, boxes, NearestConfig{Exclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Column("name_right"), vals("b", "a", "b")) {
		t.Errorf("exclusive: have %v", out.Column("name_right"))
	}

	for _, d := range []float64{0, -1} {
		d := d
		if _, err := quietJoiner().JoinNearest(points, boxes, NearestConfig{MaxDistance: &d}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("max distance %g: have %v", d, err)
		}
	}
}

func TestJoinDoesNotMutate(t *testing.T) {
	points, boxes := joinTables(t)
	before := append([]string(nil), points.Columns()...)
	if _, err := SJoin(points, boxes, JoinConfig{How: Left}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(points.Columns(), before) || !reflect.DeepEqual(points.Index(), RangeIndex(3)) {
		t.Errorf("input changed: %v %v", points.Columns(), points.Index())
	}
}
