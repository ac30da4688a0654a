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
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/geoframe/geomop"
)

// OverlayType is a set operation performed by Overlay.
type OverlayType int

// The overlay operations.
const (
	OverlayIntersection OverlayType = iota
	OverlayUnion
	OverlayIdentity
	OverlaySymmetricDifference
	OverlayDifference
)

var overlayTypeNames = []string{"intersection", "union", "identity", "symmetric_difference", "difference"}

func (o OverlayType) String() string {
	if o >= 0 && int(o) < len(overlayTypeNames) {
		return overlayTypeNames[o]
	}
	return fmt.Sprintf("OverlayType(%d)", int(o))
}

// ParseOverlayType returns the overlay operation with the given name.
func ParseOverlayType(s string) (OverlayType, error) {
	for i, n := range overlayTypeNames {
		if n == s {
			return OverlayType(i), nil
		}
	}
	return 0, inputErrorf("how %q not supported; valid options are %s", s, strings.Join(overlayTypeNames, ", "))
}

// KeepGeomType controls whether overlay results are limited to the
// geometry family of the first geometry of the left table.
type KeepGeomType int

const (
	// KeepGeomTypeDefault keeps the family and warns if rows were changed.
	KeepGeomTypeDefault KeepGeomType = iota
	KeepGeomTypeOn
	KeepGeomTypeOff
)

// OverlayConfig holds the options of an overlay.
type OverlayConfig struct {
	// How is the set operation. The default is OverlayIntersection.
	How OverlayType

	KeepGeomType KeepGeomType

	// DisableMakeValid makes invalid input geometries an error instead of
	// repairing them.
	DisableMakeValid bool
}

// Overlayer performs overlays, finding candidate row pairs with Joiner.
type Overlayer struct {
	Joiner *Joiner

	// Log receives advisory warnings. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// NewOverlayer returns an Overlayer that logs to the standard logger.
func NewOverlayer() *Overlayer {
	return &Overlayer{Joiner: NewJoiner(), Log: logrus.StandardLogger()}
}

func (o *Overlayer) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// overlayRow is one output row: the source rows and the geometry.
type overlayRow struct {
	left, right Position
	g           geom.Geom
}

// Overlay combines the geometries of df1 and df2 with a set operation.
// The result has the attribute columns of both tables, with shared names
// suffixed _1 and _2, followed by a geometry column named geometry.
// Difference results only carry the columns of df1. The result has a
// range index and the CRS of df1.
func (o *Overlayer) Overlay(df1, df2 *Table, cfg OverlayConfig) (*Table, error) {
	if df1 == nil || df2 == nil {
		return nil, inputErrorf("both tables must be non-nil")
	}
	if cfg.How < OverlayIntersection || cfg.How > OverlayDifference {
		_, err := ParseOverlayType(cfg.How.String())
		return nil, err
	}
	a, err := ensureGeometryColumn(df1)
	if err != nil {
		return nil, err
	}
	b, err := ensureGeometryColumn(df2)
	if err != nil {
		return nil, err
	}
	checkCRS(o.log(), a, b)
	// Mismatch has been reported; matching should not report it again.
	b = b.WithCRS(a.CRS())

	if a, err = prepareGeometries(a, "df1", cfg.DisableMakeValid); err != nil {
		return nil, err
	}
	if b, err = prepareGeometries(b, "df2", cfg.DisableMakeValid); err != nil {
		return nil, err
	}

	joiner := o.Joiner
	if joiner == nil {
		joiner = &Joiner{Log: o.log()}
	}
	p, err := joiner.match(a, b, JoinConfig{How: Inner, Predicate: Intersects})
	if err != nil {
		return nil, err
	}

	intersection := func() []overlayRow { return intersectionRows(a, b, p) }
	remainder := func(reverse bool) []overlayRow { return differenceRows(a, b, p, reverse) }
	var groups [][]overlayRow
	switch cfg.How {
	case OverlayIntersection:
		groups = [][]overlayRow{intersection()}
	case OverlayUnion:
		groups = [][]overlayRow{intersection(), remainder(false), remainder(true)}
	case OverlayIdentity:
		groups = [][]overlayRow{intersection(), remainder(false)}
	case OverlaySymmetricDifference:
		groups = [][]overlayRow{remainder(false), remainder(true)}
	case OverlayDifference:
		groups = [][]overlayRow{remainder(false)}
	}

	if cfg.KeepGeomType != KeepGeomTypeOff {
		groups = o.keepGeomType(groups, a, cfg.KeepGeomType == KeepGeomTypeDefault)
	}
	parts := make([]*Table, len(groups))
	for i, rows := range groups {
		parts[i] = assembleOverlay(a, b, rows, cfg.How != OverlayDifference)
	}
	return Concat(parts...)
}

// Overlay combines df1 and df2 with an Overlayer logging to the standard
// logger.
func Overlay(df1, df2 *Table, cfg OverlayConfig) (*Table, error) {
	return NewOverlayer().Overlay(df1, df2, cfg)
}

// ensureGeometryColumn renames the active geometry column of t to
// geometry, dropping any other column of that name.
func ensureGeometryColumn(t *Table) (*Table, error) {
	const name = "geometry"
	if t.GeometryColumn() == name {
		return t, nil
	}
	t, err := t.Drop(name)
	if err != nil {
		return nil, err
	}
	return t.RenameGeometry(name)
}

// prepareGeometries repairs invalid geometries of t, or returns the first
// validity error when repair is disabled.
func prepareGeometries(t *Table, which string, disableMakeValid bool) (*Table, error) {
	gs := t.Geometries()
	for i, g := range gs {
		if g == nil {
			continue
		}
		if disableMakeValid {
			if err := geomop.Validate(g); err != nil {
				return nil, fmt.Errorf("geoframe: row %d of %s: %w; repair is disabled", i, which, err)
			}
			continue
		}
		gs[i] = geomop.MakeValid(g)
	}
	if disableMakeValid {
		return t, nil
	}
	return t.withGeometries(gs), nil
}

// intersectionRows returns the non-empty intersection of every matched
// pair.
func intersectionRows(a, b *Table, p *Pairs) []overlayRow {
	var rows []overlayRow
	for k := range p.Left {
		l, _ := p.Left[k].Index()
		r, _ := p.Right[k].Index()
		if g := geomop.Intersection(a.Geometry(l), b.Geometry(r)); !geomop.IsEmpty(g) {
			rows = append(rows, overlayRow{left: p.Left[k], right: p.Right[k], g: g})
		}
	}
	return rows
}

// differenceRows returns, for every row of a, its geometry minus the
// geometries of all the rows of b it intersects. When reverse is set the
// roles of a and b are swapped. Empty remainders are dropped.
func differenceRows(a, b *Table, p *Pairs, reverse bool) []overlayRow {
	how := Left
	self, other := a, b
	if reverse {
		how = Right
		self, other = b, a
	}
	adj := AdjustPairs(p, how, a.Len(), b.Len())
	var rows []overlayRow
	var row Position
	var subtract []geom.Geom
	flush := func() {
		i, ok := row.Index()
		if !ok {
			return
		}
		if g := geomop.Difference(self.Geometry(i), subtract...); !geomop.IsEmpty(g) {
			if reverse {
				rows = append(rows, overlayRow{left: Unmatched, right: row, g: g})
			} else {
				rows = append(rows, overlayRow{left: row, right: Unmatched, g: g})
			}
		}
		subtract = subtract[:0]
	}
	for k := 0; k < adj.Len(); k++ {
		s, o := adj.Left[k], adj.Right[k]
		if reverse {
			s, o = o, s
		}
		if s != row {
			flush()
			row = s
		}
		if j, ok := o.Index(); ok {
			subtract = append(subtract, other.Geometry(j))
		}
	}
	flush()
	return rows
}

// keepGeomType drops rows whose geometry family differs from the family
// of the first geometry of a, and reduces mixed collections to their
// parts of that family. A single warning covers every group.
func (o *Overlayer) keepGeomType(groups [][]overlayRow, a *Table, warn bool) [][]overlayRow {
	family := geomop.FamilyEmpty
	for _, g := range a.Geometries() {
		if g != nil {
			family = geomop.FamilyOf(g)
			break
		}
	}
	if family == geomop.FamilyEmpty {
		return groups
	}
	var dropped, trimmed int
	out := make([][]overlayRow, len(groups))
	for i, rows := range groups {
		kept := rows[:0:0]
		for _, r := range rows {
			switch f := geomop.FamilyOf(r.g); {
			case f == family:
				kept = append(kept, r)
			case f == geomop.FamilyMixed:
				if g := geomop.Filter(r.g, family); g != nil {
					r.g = g
					kept = append(kept, r)
					trimmed++
				} else {
					dropped++
				}
			default:
				dropped++
			}
		}
		out[i] = kept
	}
	if warn && dropped+trimmed > 0 {
		o.log().WithFields(logrus.Fields{
			"dropped":   dropped,
			"trimmed":   trimmed,
			"geom_type": family.String(),
		}).Warn("geoframe: overlay result geometry types differ from the left input; " +
			"returning only geometries of the same type as the left input. " +
			"Disable geometry type filtering to return all resulting geometries")
	}
	return out
}

func renameColumns(cols []Column, m map[string]string) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = c
		if n, ok := m[c.Name]; ok {
			out[i].Name = n
		}
	}
	return out
}

// assembleOverlay builds the result table of rows. Attributes of b are
// only included when withRight is set.
func assembleOverlay(a, b *Table, rows []overlayRow, withRight bool) *Table {
	lcols := withoutColumns(a.cols, a.geometry)
	var rcols []Column
	if withRight {
		rcols = withoutColumns(b.cols, b.geometry)
		lnames, rnames := make([]string, len(lcols)), make([]string, len(rcols))
		for i, c := range lcols {
			lnames[i] = c.Name
		}
		for i, c := range rcols {
			rnames[i] = c.Name
		}
		lmap, rmap := collisionRenames(lnames, rnames, "1", "2")
		lcols = renameColumns(lcols, lmap)
		rcols = renameColumns(rcols, rmap)
	}

	take := func(src []Column, pos func(overlayRow) Position) []Column {
		out := make([]Column, len(src))
		for i, c := range src {
			v := make([]interface{}, len(rows))
			for k, r := range rows {
				if j, ok := pos(r).Index(); ok {
					v[k] = c.Values[j]
				}
			}
			out[i] = Column{Name: c.Name, Values: v}
		}
		return out
	}
	cols := take(lcols, func(r overlayRow) Position { return r.left })
	cols = append(cols, take(rcols, func(r overlayRow) Position { return r.right })...)
	gv := make([]interface{}, len(rows))
	for k, r := range rows {
		gv[k] = r.g
	}
	cols = append(cols, Column{Name: "geometry", Values: gv})
	return &Table{cols: cols, geometry: "geometry", index: RangeIndex(len(rows)), crs: a.crs}
}
