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
)

func positions(idx ...int) []Position {
	out := make([]Position, len(idx))
	for i, v := range idx {
		if v < 0 {
			out[i] = Unmatched
		} else {
			out[i] = At(v)
		}
	}
	return out
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) != math.IsNaN(b[i]) || !math.IsNaN(a[i]) && a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAdjustPairs(t *testing.T) {
	inner := &Pairs{
		Left:     positions(0, 0, 2),
		Right:    positions(0, 1, 1),
		Distance: []float64{0.5, 1, 2},
	}
	nan := math.NaN()
	tests := []struct {
		how         JoinType
		left, right []Position
		distance    []float64
	}{
		{
			how:      Inner,
			left:     positions(0, 0, 2),
			right:    positions(0, 1, 1),
			distance: []float64{0.5, 1, 2},
		},
		{
			how:      Left,
			left:     positions(0, 0, 1, 2, 3),
			right:    positions(0, 1, -1, 1, -1),
			distance: []float64{0.5, 1, nan, 2, nan},
		},
		{
			how:      Right,
			left:     positions(0, 0, 2, -1),
			right:    positions(0, 1, 1, 2),
			distance: []float64{0.5, 1, 2, nan},
		},
	}
	for _, test := range tests {
		t.Run(test.how.String(), func(t *testing.T) {
			p := AdjustPairs(inner, test.how, 4, 3)
			if !reflect.DeepEqual(p.Left, test.left) {
				t.Errorf("left: have %v, want %v", p.Left, test.left)
			}
			if !reflect.DeepEqual(p.Right, test.right) {
				t.Errorf("right: have %v, want %v", p.Right, test.right)
			}
			if !sameFloats(p.Distance, test.distance) {
				t.Errorf("distance: have %v, want %v", p.Distance, test.distance)
			}
		})
	}

	p := AdjustPairs(&Pairs{}, Left, 2, 0)
	if !reflect.DeepEqual(p.Left, positions(0, 1)) || p.Distance != nil {
		t.Errorf("no matches: have %v, %v", p.Left, p.Distance)
	}
}

func TestPosition(t *testing.T) {
	if _, ok := Unmatched.Index(); ok {
		t.Error("unmatched position has an index")
	}
	if i, ok := At(0).Index(); !ok || i != 0 {
		t.Errorf("have %d, %v", i, ok)
	}
	if At(0) == Unmatched {
		t.Error("position 0 equals the sentinel")
	}
}

func TestParseEnums(t *testing.T) {
	if j, err := ParseJoinType("right"); err != nil || j != Right {
		t.Errorf("join type: have %v, %v", j, err)
	}
	_, err := ParseJoinType("outer")
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "inner, left, right") {
		t.Errorf("join type error: have %v", err)
	}
	if p, err := ParsePredicate("contains_properly"); err != nil || p != ContainsProperly {
		t.Errorf("predicate: have %v, %v", p, err)
	}
	if _, err := ParsePredicate("nearby"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("predicate error: have %v", err)
	}
	if o, err := ParseOverlayType("symmetric_difference"); err != nil || o != OverlaySymmetricDifference {
		t.Errorf("overlay type: have %v, %v", o, err)
	}
}

func TestUniqueName(t *testing.T) {
	taken := nameSet([]string{"a", "a_0", "b_1"})
	tests := map[string]string{
		"a": "a_1",
		"b": "b",
		"c": "c",
	}
	for in, want := range tests {
		if have := uniqueName(in, taken); have != want {
			t.Errorf("%s: have %s, want %s", in, have, want)
		}
	}
}

func TestSuffixRenames(t *testing.T) {
	left := mustTable(t,
		Column{Name: "x", Values: vals(1)},
		Column{Name: "x_left", Values: vals(1)},
		Column{Name: "y", Values: vals(1)},
		Column{Name: "geometry", Values: vals(nil)},
	)
	right := mustTable(t,
		Column{Name: "x", Values: vals(2)},
		Column{Name: "z", Values: vals(2)},
		Column{Name: "geometry", Values: vals(nil)},
	)
	lmap, rmap := suffixRenames(left, right, "left", "right")
	if want := map[string]string{"x": "x_left_0"}; !reflect.DeepEqual(lmap, want) {
		t.Errorf("left: have %v, want %v", lmap, want)
	}
	if want := map[string]string{"x": "x_right"}; !reflect.DeepEqual(rmap, want) {
		t.Errorf("right: have %v, want %v", rmap, want)
	}
}

func TestCollisionRenames(t *testing.T) {
	tests := []struct {
		name           string
		lnames, rnames []string
		keep           []string
		wantL, wantR   map[string]string
	}{
		{
			name:   "no collision",
			lnames: []string{"a"},
			rnames: []string{"b"},
			wantL:  map[string]string{},
			wantR:  map[string]string{},
		},
		{
			name:   "right holds the left suffix",
			lnames: []string{"x"},
			rnames: []string{"x", "x_left"},
			wantL:  map[string]string{"x": "x_left_0"},
			wantR:  map[string]string{"x": "x_right"},
		},
		{
			name:   "left holds the right suffix",
			lnames: []string{"x", "x_right"},
			rnames: []string{"x"},
			wantL:  map[string]string{"x": "x_left"},
			wantR:  map[string]string{"x": "x_right_0"},
		},
		{
			name:   "kept",
			lnames: []string{"geometry", "x"},
			rnames: []string{"geometry", "x"},
			keep:   []string{"geometry"},
			wantL:  map[string]string{"x": "x_left"},
			wantR:  map[string]string{"x": "x_right"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lmap, rmap := collisionRenames(test.lnames, test.rnames, "left", "right", test.keep...)
			if !reflect.DeepEqual(lmap, test.wantL) {
				t.Errorf("left: have %v, want %v", lmap, test.wantL)
			}
			if !reflect.DeepEqual(rmap, test.wantR) {
				t.Errorf("right: have %v, want %v", rmap, test.wantR)
			}
		})
	}
}

func TestIndexColumnNames(t *testing.T) {
	tbl := mustTable(t,
		Column{Name: "a", Values: vals(1)},
		Column{Name: "b", Values: vals(1)},
		Column{Name: "geometry", Values: vals(nil)},
	)
	if have := indexColumnNames(tbl, "left", nameSet([]string{"index_left"})); !reflect.DeepEqual(have, []string{"index_left_0"}) {
		t.Errorf("single: have %v", have)
	}
	multi, err := tbl.SetIndex([]string{"a", "b"}, []string{"", "name"})
	if err != nil {
		t.Fatal(err)
	}
	if have := indexColumnNames(multi, "right", nil); !reflect.DeepEqual(have, []string{"level_0_right", "name_right"}) {
		t.Errorf("composite: have %v", have)
	}
	named, err := tbl.SetIndex([]string{"a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if have := indexColumnNames(named, "left", nil); !reflect.DeepEqual(have, []string{"a_left"}) {
		t.Errorf("named: have %v", have)
	}
}
