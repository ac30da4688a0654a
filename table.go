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
	"sync"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/geoframe/geomop"
)

// Label identifies a row. It holds one value per index level.
type Label []interface{}

// Index holds the row labels of a table.
type Index struct {
	// Names holds one name per level. An empty name means the level
	// is unnamed.
	Names []string

	// Labels holds one label per row.
	Labels []Label
}

// RangeIndex returns an unnamed single-level index labeled 0 to n-1.
func RangeIndex(n int) Index {
	ix := Index{Names: []string{""}, Labels: make([]Label, n)}
	for i := range ix.Labels {
		ix.Labels[i] = Label{i}
	}
	return ix
}

// Levels returns the number of index levels.
func (ix Index) Levels() int { return len(ix.Names) }

func (ix Index) take(pos []Position) Index {
	out := Index{Names: append([]string(nil), ix.Names...), Labels: make([]Label, len(pos))}
	for i, p := range pos {
		if j, ok := p.Index(); ok {
			out.Labels[i] = ix.Labels[j]
		} else {
			out.Labels[i] = make(Label, ix.Levels())
		}
	}
	return out
}

// Column is a named attribute column. Missing values are nil, or NaN in
// float columns.
type Column struct {
	Name   string
	Values []interface{}
}

// Table is an immutable collection of rows with one active geometry
// column. Values in the geometry column are geom.Geom or nil. Every
// method that changes a table returns a new one.
type Table struct {
	cols     []Column
	geometry string
	index    Index
	crs      *CRS

	sindexOnce sync.Once
	sindex     *SpatialIndex
}

// NewTable creates a table from columns, one of which must be named
// geometry. The table gets a range index.
func NewTable(cols []Column, geometry string, crs *CRS) (*Table, error) {
	if geometry == "" {
		return nil, inputErrorf("the geometry column name is empty")
	}
	n := -1
	seen := make(map[string]bool)
	var found bool
	for _, c := range cols {
		if seen[c.Name] {
			return nil, inputErrorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if n >= 0 && len(c.Values) != n {
			return nil, inputErrorf("column %q has %d values but previous columns have %d", c.Name, len(c.Values), n)
		}
		n = len(c.Values)
		if c.Name != geometry {
			continue
		}
		found = true
		for i, v := range c.Values {
			if v == nil {
				continue
			}
			g, ok := v.(geom.Geom)
			if !ok {
				return nil, inputErrorf("row %d of geometry column %q holds %T, not a geometry", i, geometry, v)
			}
			if err := geomop.Supported(g); err != nil {
				return nil, fmt.Errorf("geoframe: row %d: %w", i, err)
			}
		}
	}
	if !found {
		return nil, inputErrorf("geometry column %q not found", geometry)
	}
	return &Table{cols: cols, geometry: geometry, index: RangeIndex(n), crs: crs}, nil
}

// derive returns a new table sharing t's geometry name and CRS.
func (t *Table) derive(cols []Column, ix Index) *Table {
	return &Table{cols: cols, geometry: t.geometry, index: ix, crs: t.crs}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index.Labels) }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

func (t *Table) colIndex(name string) int {
	for i, c := range t.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether t has a column called name.
func (t *Table) HasColumn(name string) bool { return t.colIndex(name) >= 0 }

// Column returns the values of the named column, or nil if there is no
// such column. The returned slice must not be modified.
func (t *Table) Column(name string) []interface{} {
	if i := t.colIndex(name); i >= 0 {
		return t.cols[i].Values
	}
	return nil
}

// GeometryColumn returns the name of the active geometry column.
func (t *Table) GeometryColumn() string { return t.geometry }

// Geometry returns the geometry of row i, which may be nil.
func (t *Table) Geometry(i int) geom.Geom {
	g, _ := t.Column(t.geometry)[i].(geom.Geom)
	return g
}

// Geometries returns the active geometry column.
func (t *Table) Geometries() []geom.Geom {
	out := make([]geom.Geom, t.Len())
	for i := range out {
		out[i] = t.Geometry(i)
	}
	return out
}

// Index returns the row index.
func (t *Table) Index() Index { return t.index }

// CRS returns the coordinate reference system, or nil if it is unknown.
func (t *Table) CRS() *CRS { return t.crs }

// SpatialIndex returns the spatial index of the active geometry column,
// building it on first use.
func (t *Table) SpatialIndex() *SpatialIndex {
	t.sindexOnce.Do(func() {
		t.sindex = NewSpatialIndex(t.Geometries())
	})
	return t.sindex
}

// WithIndex returns a copy of t with the given row index.
func (t *Table) WithIndex(ix Index) (*Table, error) {
	if ix.Levels() == 0 {
		return nil, inputErrorf("an index needs at least one level")
	}
	if len(ix.Labels) != t.Len() {
		return nil, inputErrorf("index has %d labels but the table has %d rows", len(ix.Labels), t.Len())
	}
	for i, l := range ix.Labels {
		if len(l) != ix.Levels() {
			return nil, inputErrorf("label %d has %d values but the index has %d levels", i, len(l), ix.Levels())
		}
	}
	return t.derive(t.cols, ix), nil
}

// WithCRS returns a copy of t with the given reference system.
func (t *Table) WithCRS(c *CRS) *Table {
	out := t.derive(t.cols, t.index)
	out.crs = c
	return out
}

// WithColumn returns a copy of t with the named column set to values,
// replacing a column of the same name or appending a new one.
func (t *Table) WithColumn(name string, values []interface{}) (*Table, error) {
	if len(values) != t.Len() {
		return nil, inputErrorf("column %q has %d values but the table has %d rows", name, len(values), t.Len())
	}
	cols := append([]Column(nil), t.cols...)
	if i := t.colIndex(name); i >= 0 {
		if name == t.geometry {
			return nil, inputErrorf("cannot replace the geometry column %q", name)
		}
		cols[i] = Column{Name: name, Values: values}
	} else {
		cols = append(cols, Column{Name: name, Values: values})
	}
	return t.derive(cols, t.index), nil
}

// Take returns the rows at the given positions. Unmatched positions
// produce rows of nil values with nil labels.
func (t *Table) Take(pos []Position) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		v := make([]interface{}, len(pos))
		for k, p := range pos {
			if j, ok := p.Index(); ok {
				v[k] = c.Values[j]
			}
		}
		cols[i] = Column{Name: c.Name, Values: v}
	}
	return t.derive(cols, t.index.take(pos))
}

// Filter returns the rows for which keep is true.
func (t *Table) Filter(keep []bool) *Table {
	var pos []Position
	for i, k := range keep {
		if k {
			pos = append(pos, At(i))
		}
	}
	return t.Take(pos)
}

// Rename returns a copy of t with columns renamed according to m. The
// active geometry column follows its rename.
func (t *Table) Rename(m map[string]string) (*Table, error) {
	cols := make([]Column, len(t.cols))
	seen := make(map[string]bool)
	geometry := t.geometry
	for i, c := range t.cols {
		name := c.Name
		if n, ok := m[name]; ok {
			name = n
		}
		if seen[name] {
			return nil, inputErrorf("renaming produces duplicate column %q", name)
		}
		seen[name] = true
		if c.Name == t.geometry {
			geometry = name
		}
		cols[i] = Column{Name: name, Values: c.Values}
	}
	out := t.derive(cols, t.index)
	out.geometry = geometry
	return out, nil
}

// RenameGeometry renames the active geometry column.
func (t *Table) RenameGeometry(name string) (*Table, error) {
	if name == t.geometry {
		return t.derive(t.cols, t.index), nil
	}
	if t.HasColumn(name) {
		return nil, inputErrorf("column %q already exists", name)
	}
	return t.Rename(map[string]string{t.geometry: name})
}

// Drop returns a copy of t without the named columns. Missing names are
// ignored; the active geometry column cannot be dropped.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]bool)
	for _, n := range names {
		if n == t.geometry {
			return nil, inputErrorf("cannot drop the geometry column %q", n)
		}
		drop[n] = true
	}
	var cols []Column
	for _, c := range t.cols {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	return t.derive(cols, t.index), nil
}

// ResetIndex moves the index levels into leading columns with the given
// names and gives t a range index.
func (t *Table) ResetIndex(names []string) (*Table, error) {
	if len(names) != t.index.Levels() {
		return nil, inputErrorf("%d names given for %d index levels", len(names), t.index.Levels())
	}
	cols := make([]Column, 0, len(names)+len(t.cols))
	for lvl, name := range names {
		if t.HasColumn(name) {
			return nil, inputErrorf("column %q already exists", name)
		}
		v := make([]interface{}, t.Len())
		for i, l := range t.index.Labels {
			v[i] = l[lvl]
		}
		cols = append(cols, Column{Name: name, Values: v})
	}
	cols = append(cols, t.cols...)
	return t.derive(cols, RangeIndex(t.Len())), nil
}

// SetIndex moves the named columns into the index. levelNames gives the
// name of each new level; nil keeps the column names.
func (t *Table) SetIndex(columns []string, levelNames []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, inputErrorf("no index columns given")
	}
	if levelNames == nil {
		levelNames = columns
	}
	if len(levelNames) != len(columns) {
		return nil, inputErrorf("%d level names given for %d columns", len(levelNames), len(columns))
	}
	ix := Index{Names: append([]string(nil), levelNames...), Labels: make([]Label, t.Len())}
	for i := range ix.Labels {
		ix.Labels[i] = make(Label, len(columns))
	}
	for lvl, name := range columns {
		if name == t.geometry {
			return nil, inputErrorf("cannot index by the geometry column %q", name)
		}
		v := t.Column(name)
		if v == nil && !t.HasColumn(name) {
			return nil, inputErrorf("column %q not found", name)
		}
		for i := range ix.Labels {
			ix.Labels[i][lvl] = v[i]
		}
	}
	out, err := t.Drop(columns...)
	if err != nil {
		return nil, err
	}
	out.index = ix
	return out, nil
}

// Concat stacks the rows of tables, which must share a geometry column
// name. Columns are the union of the inputs' columns in order of first
// appearance, with nil for rows whose table lacks a column. The result
// has a range index and the CRS of the first table.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, inputErrorf("nothing to concatenate")
	}
	first := tables[0]
	var names []string
	seen := make(map[string]bool)
	n := 0
	for _, t := range tables {
		if t.geometry != first.geometry {
			return nil, inputErrorf("geometry columns %q and %q differ", first.geometry, t.geometry)
		}
		for _, c := range t.cols {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
		n += t.Len()
	}
	cols := make([]Column, len(names))
	for i, name := range names {
		v := make([]interface{}, 0, n)
		for _, t := range tables {
			if c := t.colIndex(name); c >= 0 {
				v = append(v, t.cols[c].Values...)
			} else {
				v = append(v, make([]interface{}, t.Len())...)
			}
		}
		cols[i] = Column{Name: name, Values: v}
	}
	return first.derive(cols, RangeIndex(n)), nil
}

// withGeometries returns a copy of t with the active geometry column
// replaced.
func (t *Table) withGeometries(gs []geom.Geom) *Table {
	v := make([]interface{}, len(gs))
	for i, g := range gs {
		if g != nil {
			v[i] = g
		}
	}
	cols := append([]Column(nil), t.cols...)
	cols[t.colIndex(t.geometry)] = Column{Name: t.geometry, Values: v}
	return t.derive(cols, t.index)
}
