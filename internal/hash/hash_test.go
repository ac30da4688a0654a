/*
Copyright © 2019 the geoframe authors.
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
along with geoframe.  If not, see <http://www.gnu.org/licenses/>.*/

package hash

import (
	"math"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []interface{}
		equal  bool
		nullOK bool
	}{
		{name: "same strings", a: []interface{}{"x", "y"}, b: []interface{}{"x", "y"}, equal: true, nullOK: true},
		{name: "different strings", a: []interface{}{"x"}, b: []interface{}{"y"}, nullOK: true},
		{name: "mixed numbers", a: []interface{}{1, "x"}, b: []interface{}{1.0, "x"}, equal: true, nullOK: true},
		{name: "order matters", a: []interface{}{"x", "y"}, b: []interface{}{"y", "x"}, nullOK: true},
		{name: "string vs number", a: []interface{}{"1"}, b: []interface{}{1}, nullOK: true},
		{name: "nan", a: []interface{}{math.NaN()}, b: []interface{}{math.NaN()}},
		{name: "nil", a: []interface{}{nil}, b: []interface{}{nil}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ka, okA := Key(test.a...)
			kb, okB := Key(test.b...)
			if okA != test.nullOK || okB != test.nullOK {
				t.Fatalf("ok: have %v and %v, want %v", okA, okB, test.nullOK)
			}
			if !test.nullOK {
				return
			}
			if (ka == kb) != test.equal {
				t.Errorf("keys %s and %s: equality should be %v", ka, kb, test.equal)
			}
		})
	}
}

func TestHashStable(t *testing.T) {
	type s struct{ A, B float64 }
	if Hash(s{1, math.NaN()}) != Hash(s{1, math.NaN()}) {
		t.Error("hash of NaN-containing values should be stable")
	}
	if Hash(s{1, 2}) == Hash(s{2, 1}) {
		t.Error("different values should hash differently")
	}
}
