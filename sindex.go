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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/geoframe/geomop"
)

// indexItem is a geometry stored in the tree along with its row position.
type indexItem struct {
	geom.Geom
	pos int
}

// SpatialIndex is an R-tree over the bounding boxes of a geometry column.
// It is safe for concurrent queries.
type SpatialIndex struct {
	tree   *rtree.Rtree
	geoms  []geom.Geom
	bounds *geom.Bounds
	size   int
}

// NewSpatialIndex indexes geoms by position. Nil and empty geometries are
// not indexed and never match a query.
func NewSpatialIndex(geoms []geom.Geom) *SpatialIndex {
	s := &SpatialIndex{
		tree:   rtree.NewTree(25, 50),
		geoms:  geoms,
		bounds: geom.NewBounds(),
	}
	for i, g := range geoms {
		if g == nil || geomop.IsEmpty(g) {
			continue
		}
		s.tree.Insert(indexItem{Geom: g, pos: i})
		s.bounds.Extend(g.Bounds())
		s.size++
	}
	return s
}

// Size returns the number of indexed geometries.
func (s *SpatialIndex) Size() int { return s.size }

// ValidPredicates returns the predicates Query accepts.
func (s *SpatialIndex) ValidPredicates() []Predicate {
	return append([]Predicate(nil), predicates...)
}

// candidates returns the positions whose bounding boxes come within d of
// the bounds of g.
func (s *SpatialIndex) candidates(g geom.Geom, d float64) []int {
	if s.size == 0 || g == nil || geomop.IsEmpty(g) {
		return nil
	}
	b := expand(g.Bounds(), d)
	var out []int
	for _, x := range s.tree.SearchIntersect(b) {
		out = append(out, x.(indexItem).pos)
	}
	sort.Ints(out)
	return out
}

func expand(b *geom.Bounds, d float64) *geom.Bounds {
	if d <= 0 {
		return b
	}
	return &geom.Bounds{
		Min: geom.Point{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: geom.Point{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Query returns, in ascending order, the positions of the indexed
// geometries t for which pred(g, t) holds. distance is only used by
// DWithin.
func (s *SpatialIndex) Query(g geom.Geom, pred Predicate, distance float64) []int {
	var out []int
	for _, i := range s.candidates(g, distance) {
		if pred.evaluate(g, s.geoms[i], distance) {
			out = append(out, i)
		}
	}
	return out
}

// QueryBulk evaluates Query for every geometry in geoms and returns the
// matching pairs ordered by query position, then by indexed position.
// distances holds either nothing, one distance for every query, or one
// distance per query geometry.
func (s *SpatialIndex) QueryBulk(geoms []geom.Geom, pred Predicate, distances []float64) (left, right []int) {
	for i, g := range geoms {
		var d float64
		switch len(distances) {
		case 0:
		case 1:
			d = distances[0]
		default:
			d = distances[i]
		}
		for _, j := range s.Query(g, pred, d) {
			left = append(left, i)
			right = append(right, j)
		}
	}
	return left, right
}

// Nearest returns the positions of the indexed geometries closest to g
// along with their distance. Every geometry tied at the minimum distance
// is returned, in ascending order. If maxDistance is not nil only
// geometries within it are considered. When exclusive is true indexed
// geometries equal to g are skipped.
func (s *SpatialIndex) Nearest(g geom.Geom, maxDistance *float64, exclusive bool) ([]int, float64) {
	if s.size == 0 || g == nil || geomop.IsEmpty(g) {
		return nil, math.NaN()
	}
	measure := func(cand []int) (best []int, dmin float64) {
		dmin = math.Inf(1)
		for _, i := range cand {
			t := s.geoms[i]
			if exclusive && geomop.Equals(g, t) {
				continue
			}
			d := geomop.Distance(g, t)
			if maxDistance != nil && d > *maxDistance {
				continue
			}
			switch {
			case d < dmin:
				dmin = d
				best = append(best[:0], i)
			case d == dmin:
				best = append(best, i)
			}
		}
		return best, dmin
	}

	if maxDistance != nil {
		best, d := measure(s.candidates(g, *maxDistance))
		if len(best) == 0 {
			return nil, math.NaN()
		}
		return best, d
	}

	// Grow the search window until it holds a usable candidate. The
	// nearest geometry may still lie outside the window's box, so a final
	// search covers everything within the best distance found.
	w := s.bounds
	step := math.Hypot(w.Max.X-w.Min.X, w.Max.Y-w.Min.Y) / math.Sqrt(float64(s.size))
	if step == 0 || math.IsNaN(step) {
		step = 1
	}
	r := 0.0
	for {
		if best, d := measure(s.candidates(g, r)); len(best) > 0 {
			return measure(s.candidates(g, d))
		}
		if coversBounds(expand(g.Bounds(), r), w) {
			// Only excluded geometries remain.
			return nil, math.NaN()
		}
		if r == 0 {
			r = step
		} else {
			r *= 2
		}
	}
}

func coversBounds(outer, inner *geom.Bounds) bool {
	return outer.Min.X <= inner.Min.X && outer.Min.Y <= inner.Min.Y &&
		outer.Max.X >= inner.Max.X && outer.Max.Y >= inner.Max.Y
}
