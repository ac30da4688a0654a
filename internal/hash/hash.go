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

// Package hash builds comparable keys for attribute values.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		bKey := h.Sum([]byte{})
		return fmt.Sprintf("%x", bKey[0:h.Size()])
	}
	// Types gob cannot encode (unregistered types, NaN inside structs and
	// so on) are printed with spew instead.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

// Key returns a key that is equal for two value tuples exactly when the
// tuples are element-wise equal. Numeric values of any kind are compared
// as float64, so int64(1) and 1.0 produce the same key. ok is false if
// any value is null (nil or NaN); null values never compare equal.
func Key(values ...interface{}) (key string, ok bool) {
	norm := make([]interface{}, len(values))
	for i, v := range values {
		n, isNull := normalize(v)
		if isNull {
			return "", false
		}
		norm[i] = n
	}
	return Hash(norm), true
}

func normalize(v interface{}) (interface{}, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	default:
		return v, false
	}
	if math.IsNaN(f) {
		return nil, true
	}
	return f, false
}
