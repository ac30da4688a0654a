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
	"math"
	"sort"
	"strings"
)

// Position is an optional row position. The zero value is Unmatched.
type Position struct {
	i  int
	ok bool
}

// Unmatched marks the missing side of an outer join pair.
var Unmatched = Position{}

// At returns the position of row i.
func At(i int) Position { return Position{i: i, ok: true} }

// Index returns the row position and whether there is one.
func (p Position) Index() (int, bool) { return p.i, p.ok }

func (p Position) String() string {
	if !p.ok {
		return "unmatched"
	}
	return fmt.Sprint(p.i)
}

// Pairs holds matched row positions of a left and a right table.
// Distance is nil unless the match computed distances, in which case it
// holds one value per pair and NaN for unmatched pairs.
type Pairs struct {
	Left, Right []Position
	Distance    []float64
}

// Len returns the number of pairs.
func (p *Pairs) Len() int { return len(p.Left) }

// JoinType selects which unmatched rows a join keeps.
type JoinType int

// The join types.
const (
	Inner JoinType = iota
	Left
	Right
)

var joinTypeNames = []string{"inner", "left", "right"}

func (j JoinType) String() string {
	if j >= 0 && int(j) < len(joinTypeNames) {
		return joinTypeNames[j]
	}
	return fmt.Sprintf("JoinType(%d)", int(j))
}

// ParseJoinType returns the join type with the given name.
func ParseJoinType(s string) (JoinType, error) {
	for i, n := range joinTypeNames {
		if n == s {
			return JoinType(i), nil
		}
	}
	return 0, inputErrorf("how %q not supported; valid options are %s", s, strings.Join(joinTypeNames, ", "))
}

func (j JoinType) valid() bool { return j >= Inner && j <= Right }

// AdjustPairs converts inner-join pairs into the pairs of a join of type
// how. For Left every left position 0..nLeft-1 appears in order, unmatched
// ones once with an Unmatched right position; Right is the mirror image,
// ordered by right position. Distances of unmatched pairs are NaN.
func AdjustPairs(p *Pairs, how JoinType, nLeft, nRight int) *Pairs {
	switch how {
	case Left:
		return adjust(p, nLeft, false)
	case Right:
		return adjust(p, nRight, true)
	default:
		return p
	}
}

// adjust groups pairs by the primary side, which is the right side when
// byRight is set, and inserts a sentinel pair for every primary position
// without a match.
func adjust(p *Pairs, n int, byRight bool) *Pairs {
	primary := func(k int) int {
		var pos Position
		if byRight {
			pos = p.Right[k]
		} else {
			pos = p.Left[k]
		}
		i, _ := pos.Index()
		return i
	}
	order := make([]int, p.Len())
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return primary(order[a]) < primary(order[b]) })

	out := &Pairs{}
	withDist := p.Distance != nil
	if withDist {
		out.Distance = []float64{}
	}
	k := 0
	for i := 0; i < n; i++ {
		found := false
		for ; k < len(order) && primary(order[k]) == i; k++ {
			found = true
			out.Left = append(out.Left, p.Left[order[k]])
			out.Right = append(out.Right, p.Right[order[k]])
			if withDist {
				out.Distance = append(out.Distance, p.Distance[order[k]])
			}
		}
		if found {
			continue
		}
		if byRight {
			out.Left = append(out.Left, Unmatched)
			out.Right = append(out.Right, At(i))
		} else {
			out.Left = append(out.Left, At(i))
			out.Right = append(out.Right, Unmatched)
		}
		if withDist {
			out.Distance = append(out.Distance, math.NaN())
		}
	}
	return out
}
