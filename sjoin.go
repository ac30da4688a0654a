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
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/geoframe/geomop"
	"github.com/spatialmodel/geoframe/internal/hash"
)

// JoinConfig holds the options of a predicate join.
type JoinConfig struct {
	// How selects which unmatched rows are kept. The default is Inner.
	How JoinType

	// Predicate is evaluated as Predicate(left, right). The default is
	// Intersects.
	Predicate Predicate

	// LSuffix and RSuffix are appended to column names present in both
	// tables. They default to "left" and "right".
	LSuffix, RSuffix string

	// Distance is required by DWithin and must not be set otherwise. It
	// holds either a single distance or one distance per left row.
	Distance []float64

	// OnAttribute lists columns whose values must also be equal for two
	// rows to match. Null values never match.
	OnAttribute []string
}

// NearestConfig holds the options of a nearest-neighbor join.
type NearestConfig struct {
	// How selects which unmatched rows are kept. The default is Inner.
	How JoinType

	// MaxDistance, if not nil, limits the search and must be positive.
	MaxDistance *float64

	// LSuffix and RSuffix are appended to column names present in both
	// tables. They default to "left" and "right".
	LSuffix, RSuffix string

	// DistanceCol, if set, names a column holding the distance between
	// the matched geometries.
	DistanceCol string

	// Exclusive skips right geometries equal to the left geometry.
	Exclusive bool
}

// Joiner performs spatial joins.
type Joiner struct {
	// Log receives advisory warnings. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// NewJoiner returns a Joiner that logs to the standard logger.
func NewJoiner() *Joiner {
	return &Joiner{Log: logrus.StandardLogger()}
}

func (j *Joiner) log() logrus.FieldLogger {
	if j.Log == nil {
		return logrus.StandardLogger()
	}
	return j.Log
}

func suffixes(l, r string) (string, string) {
	if l == "" {
		l = "left"
	}
	if r == "" {
		r = "right"
	}
	return l, r
}

// basicChecks validates the arguments shared by every join.
func basicChecks(left, right *Table, how JoinType, lsuffix, rsuffix string) error {
	if left == nil || right == nil {
		return inputErrorf("both tables must be non-nil")
	}
	if !how.valid() {
		_, err := ParseJoinType(how.String())
		return err
	}
	if n := "index_" + lsuffix; left.HasColumn(n) {
		return inputErrorf("'%s' cannot be a column name in the left table", n)
	}
	if n := "index_" + rsuffix; right.HasColumn(n) {
		return inputErrorf("'%s' cannot be a column name in the right table", n)
	}
	return nil
}

// checkCRS warns when the tables use different reference systems.
func checkCRS(log logrus.FieldLogger, left, right *Table) {
	if left.CRS().Equal(right.CRS()) {
		return
	}
	log.WithFields(logrus.Fields{
		"left_crs":  left.CRS().String(),
		"right_crs": right.CRS().String(),
	}).Warn("geoframe: CRS mismatch between the left and right geometries; reproject one of them to match the other")
}

// Match validates its arguments and returns the position pairs of the
// join described by cfg without assembling a table. Distances are
// included for DWithin.
func (j *Joiner) Match(left, right *Table, cfg JoinConfig) (*Pairs, error) {
	lsuffix, rsuffix := suffixes(cfg.LSuffix, cfg.RSuffix)
	if err := basicChecks(left, right, cfg.How, lsuffix, rsuffix); err != nil {
		return nil, err
	}
	return j.match(left, right, cfg)
}

// match returns the position pairs of the join described by cfg. Only
// the predicate options are checked; callers that build index columns
// check the column names first.
func (j *Joiner) match(left, right *Table, cfg JoinConfig) (*Pairs, error) {
	if err := j.checkPredicate(left, right, cfg); err != nil {
		return nil, err
	}
	checkCRS(j.log(), left, right)

	lgeoms := left.Geometries()
	li, ri := right.SpatialIndex().QueryBulk(lgeoms, cfg.Predicate, cfg.Distance)
	p := &Pairs{Left: make([]Position, len(li)), Right: make([]Position, len(ri))}
	for k := range li {
		p.Left[k], p.Right[k] = At(li[k]), At(ri[k])
	}
	if len(cfg.OnAttribute) > 0 {
		p = filterOnAttribute(p, left, right, cfg.OnAttribute)
	}
	if cfg.Predicate == DWithin {
		p.Distance = make([]float64, p.Len())
		for k := range p.Left {
			l, _ := p.Left[k].Index()
			r, _ := p.Right[k].Index()
			p.Distance[k] = geomop.Distance(lgeoms[l], right.Geometry(r))
		}
	}
	return AdjustPairs(p, cfg.How, left.Len(), right.Len()), nil
}

func (j *Joiner) checkPredicate(left, right *Table, cfg JoinConfig) error {
	ok := false
	for _, p := range right.SpatialIndex().ValidPredicates() {
		if p == cfg.Predicate {
			ok = true
		}
	}
	if !ok {
		_, err := ParsePredicate(cfg.Predicate.String())
		return err
	}
	switch {
	case cfg.Predicate == DWithin && len(cfg.Distance) == 0:
		return inputErrorf("distance must be set for the dwithin predicate")
	case cfg.Predicate != DWithin && len(cfg.Distance) > 0:
		return inputErrorf("distance is only used by the dwithin predicate, not %s", cfg.Predicate)
	case len(cfg.Distance) > 1 && len(cfg.Distance) != left.Len():
		return inputErrorf("%d distances given for %d left rows", len(cfg.Distance), left.Len())
	}
	for _, a := range cfg.OnAttribute {
		if !left.HasColumn(a) || !right.HasColumn(a) {
			return inputErrorf("expected column %q to be in both the left and right tables", a)
		}
		if a == left.GeometryColumn() || a == right.GeometryColumn() {
			return inputErrorf("active geometry column %q cannot be used as an attribute", a)
		}
	}
	return nil
}

// filterOnAttribute keeps the pairs whose rows hold equal values in
// every one of the named columns.
func filterOnAttribute(p *Pairs, left, right *Table, columns []string) *Pairs {
	lcols := make([][]interface{}, len(columns))
	rcols := make([][]interface{}, len(columns))
	for i, c := range columns {
		lcols[i], rcols[i] = left.Column(c), right.Column(c)
	}
	key := func(cols [][]interface{}, row int) (string, bool) {
		v := make([]interface{}, len(cols))
		for i, c := range cols {
			v[i] = c[row]
		}
		return hash.Key(v...)
	}
	out := &Pairs{}
	for k := range p.Left {
		l, _ := p.Left[k].Index()
		r, _ := p.Right[k].Index()
		lk, lok := key(lcols, l)
		rk, rok := key(rcols, r)
		if lok && rok && lk == rk {
			out.Left = append(out.Left, p.Left[k])
			out.Right = append(out.Right, p.Right[k])
		}
	}
	return out
}

// Join matches the rows of left and right whose geometries satisfy the
// configured predicate. For Inner and Left joins the result carries the
// index and geometry of left plus the index of right in an
// index_<rsuffix> column; Right joins mirror this. A DWithin join adds a
// distance column.
func (j *Joiner) Join(left, right *Table, cfg JoinConfig) (*Table, error) {
	p, err := j.Match(left, right, cfg)
	if err != nil {
		return nil, err
	}
	lsuffix, rsuffix := suffixes(cfg.LSuffix, cfg.RSuffix)
	out, err := frameJoin(left, right, p, cfg.How, lsuffix, rsuffix, cfg.OnAttribute)
	if err != nil {
		return nil, err
	}
	if cfg.Predicate == DWithin {
		return out.WithColumn("distance", floatValues(p.Distance))
	}
	return out, nil
}

// JoinNearest matches every left row with the right rows whose geometries
// are nearest to it. All right rows tied at the minimum distance are
// returned. Rows with empty geometries have no match.
func (j *Joiner) JoinNearest(left, right *Table, cfg NearestConfig) (*Table, error) {
	lsuffix, rsuffix := suffixes(cfg.LSuffix, cfg.RSuffix)
	if err := basicChecks(left, right, cfg.How, lsuffix, rsuffix); err != nil {
		return nil, err
	}
	if cfg.MaxDistance != nil && !(*cfg.MaxDistance > 0) {
		return nil, inputErrorf("max distance must be greater than 0, not %g", *cfg.MaxDistance)
	}
	checkCRS(j.log(), left, right)

	idx := right.SpatialIndex()
	p := &Pairs{Distance: []float64{}}
	for i, g := range left.Geometries() {
		matches, d := idx.Nearest(g, cfg.MaxDistance, cfg.Exclusive)
		for _, r := range matches {
			p.Left = append(p.Left, At(i))
			p.Right = append(p.Right, At(r))
			p.Distance = append(p.Distance, d)
		}
	}
	p = AdjustPairs(p, cfg.How, left.Len(), right.Len())

	out, err := frameJoin(left, right, p, cfg.How, lsuffix, rsuffix, nil)
	if err != nil {
		return nil, err
	}
	if cfg.DistanceCol != "" {
		return out.WithColumn(cfg.DistanceCol, floatValues(p.Distance))
	}
	return out, nil
}

func floatValues(f []float64) []interface{} {
	v := make([]interface{}, len(f))
	for i, x := range f {
		v[i] = x
	}
	return v
}

// frameJoin assembles the rows of left and right selected by p. The
// primary side, left unless how is Right, provides the geometry, the
// CRS and the row index; the index of the other side becomes columns.
// Copies of the onAttribute columns from the other side are dropped.
func frameJoin(left, right *Table, p *Pairs, how JoinType, lsuffix, rsuffix string, onAttribute []string) (*Table, error) {
	l, lindex, err := resetIndexWithSuffix(left, lsuffix, right)
	if err != nil {
		return nil, err
	}
	r, rindex, err := resetIndexWithSuffix(right, rsuffix, l)
	if err != nil {
		return nil, err
	}
	if how == Right {
		l = l.derive(withoutColumns(l.cols, onAttribute...), l.index)
	} else {
		r = r.derive(withoutColumns(r.cols, onAttribute...), r.index)
	}
	lmap, rmap := suffixRenames(l, r, lsuffix, rsuffix)
	if l, err = l.Rename(lmap); err != nil {
		return nil, err
	}
	if r, err = r.Rename(rmap); err != nil {
		return nil, err
	}
	lt, rt := l.Take(p.Left), r.Take(p.Right)

	var joined *Table
	var index, names []string
	if how == Right {
		cols := append(withoutColumns(lt.cols, lt.geometry), rt.cols...)
		joined = rt.derive(cols, RangeIndex(p.Len()))
		index, names = rindex, right.Index().Names
	} else {
		cols := append(append([]Column(nil), lt.cols...), withoutColumns(rt.cols, rt.geometry)...)
		joined = lt.derive(cols, RangeIndex(p.Len()))
		index, names = lindex, left.Index().Names
	}
	return restoreIndex(joined, index, names)
}

func withoutColumns(cols []Column, names ...string) []Column {
	drop := make(map[string]bool)
	for _, n := range names {
		drop[n] = true
	}
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !drop[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// SJoin performs a predicate join with a Joiner logging to the standard
// logger.
func SJoin(left, right *Table, cfg JoinConfig) (*Table, error) {
	return NewJoiner().Join(left, right, cfg)
}

// SJoinNearest performs a nearest-neighbor join with a Joiner logging to
// the standard logger.
func SJoinNearest(left, right *Table, cfg NearestConfig) (*Table, error) {
	return NewJoiner().JoinNearest(left, right, cfg)
}
