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
	"reflect"

	"github.com/ctessum/geom/proj"
)

// CRS is a coordinate reference system. A nil *CRS means the reference
// system is unknown.
type CRS struct {
	def string
	sr  *proj.SR
}

// ParseCRS parses a PROJ.4 or WKT definition.
func ParseCRS(def string) (*CRS, error) {
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("geoframe: parsing CRS %q: %w", def, err)
	}
	return &CRS{def: def, sr: sr}, nil
}

// SR returns the parsed spatial reference.
func (c *CRS) SR() *proj.SR {
	if c == nil {
		return nil
	}
	return c.sr
}

func (c *CRS) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.def
}

// Equal reports whether c and o describe the same reference system. Two
// unknown systems are equal; an unknown and a known system are not.
func (c *CRS) Equal(o *CRS) bool {
	switch {
	case c == nil && o == nil:
		return true
	case c == nil || o == nil:
		return false
	case c.def == o.def:
		return true
	case c.sr == nil || o.sr == nil:
		return false
	default:
		return reflect.DeepEqual(c.sr, o.sr)
	}
}
