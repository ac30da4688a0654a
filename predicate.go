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
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/geoframe/geomop"
)

// Predicate is a binary spatial relationship used to match rows.
// Predicates are evaluated as predicate(left, right).
type Predicate int

// The supported predicates.
const (
	Intersects Predicate = iota
	Contains
	ContainsProperly
	Covers
	CoveredBy
	Crosses
	DWithin
	Overlaps
	Touches
	Within
)

var predicates = []Predicate{Intersects, Contains, ContainsProperly, Covers,
	CoveredBy, Crosses, DWithin, Overlaps, Touches, Within}

var predicateNames = map[Predicate]string{
	Intersects:       "intersects",
	Contains:         "contains",
	ContainsProperly: "contains_properly",
	Covers:           "covers",
	CoveredBy:        "covered_by",
	Crosses:          "crosses",
	DWithin:          "dwithin",
	Overlaps:         "overlaps",
	Touches:          "touches",
	Within:           "within",
}

func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Predicate(%d)", int(p))
}

// ParsePredicate returns the predicate with the given name.
func ParsePredicate(s string) (Predicate, error) {
	names := make([]string, len(predicates))
	for i, p := range predicates {
		if p.String() == s {
			return p, nil
		}
		names[i] = p.String()
	}
	return 0, inputErrorf("predicate %q not supported; valid options are %s", s, strings.Join(names, ", "))
}

// evaluate reports whether p(a, b) holds. d is the DWithin distance.
func (p Predicate) evaluate(a, b geom.Geom, d float64) bool {
	switch p {
	case Intersects:
		return geomop.Intersects(a, b)
	case Contains:
		return geomop.Contains(a, b)
	case ContainsProperly:
		return geomop.ContainsProperly(a, b)
	case Covers:
		return geomop.Covers(a, b)
	case CoveredBy:
		return geomop.CoveredBy(a, b)
	case Crosses:
		return geomop.Crosses(a, b)
	case DWithin:
		return geomop.Distance(a, b) <= d
	case Overlaps:
		return geomop.Overlaps(a, b)
	case Touches:
		return geomop.Touches(a, b)
	case Within:
		return geomop.Within(a, b)
	default:
		panic(fmt.Errorf("geoframe: invalid predicate %d", int(p)))
	}
}

// valid reports whether p is one of the declared predicates.
func (p Predicate) valid() bool {
	_, ok := predicateNames[p]
	return ok
}
