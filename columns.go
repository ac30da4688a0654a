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

import "fmt"

// uniqueName returns name if it is not taken, otherwise the first of
// name_0, name_1, ... that is not taken.
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for i := 0; ; i++ {
		c := fmt.Sprintf("%s_%d", name, i)
		if !taken[c] {
			return c
		}
	}
}

func nameSet(names ...[]string) map[string]bool {
	m := make(map[string]bool)
	for _, ns := range names {
		for _, n := range ns {
			m[n] = true
		}
	}
	return m
}

// suffixRenames returns the renames that resolve name collisions between
// the columns of left and right. Names that are the active geometry of
// both tables are left alone.
func suffixRenames(left, right *Table, lsuffix, rsuffix string) (lmap, rmap map[string]string) {
	var keep []string
	if left.geometry == right.geometry {
		keep = append(keep, left.geometry)
	}
	return collisionRenames(left.Columns(), right.Columns(), lsuffix, rsuffix, keep...)
}

// collisionRenames renames the names shared by lnames and rnames, except
// those in keep. A shared name x becomes x_<lsuffix> on the left and
// x_<rsuffix> on the right. New names are made unique against every
// name of both sides after renaming, so the combined columns never
// repeat a name.
func collisionRenames(lnames, rnames []string, lsuffix, rsuffix string, keep ...string) (lmap, rmap map[string]string) {
	lmap, rmap = make(map[string]string), make(map[string]string)
	lset, rset, kept := nameSet(lnames), nameSet(rnames), nameSet(keep)
	taken := make(map[string]bool)
	var shared []string
	for _, n := range lnames {
		if rset[n] && !kept[n] {
			shared = append(shared, n)
		} else {
			taken[n] = true
		}
	}
	for _, n := range rnames {
		if !lset[n] || kept[n] {
			taken[n] = true
		}
	}
	for _, n := range shared {
		lmap[n] = uniqueName(n+"_"+lsuffix, taken)
		taken[lmap[n]] = true
		rmap[n] = uniqueName(n+"_"+rsuffix, taken)
		taken[rmap[n]] = true
	}
	return lmap, rmap
}

// indexColumnNames returns the column names the index levels of t take
// when moved into columns: <level name>_<suffix>, or index_<suffix> for
// an unnamed single level and level_<i>_<suffix> for unnamed levels of a
// composite index. Names are made unique against taken.
func indexColumnNames(t *Table, suffix string, taken map[string]bool) []string {
	ix := t.Index()
	out := make([]string, ix.Levels())
	used := make(map[string]bool, len(taken))
	for n := range taken {
		used[n] = true
	}
	for i, name := range ix.Names {
		base := name
		if base == "" {
			if ix.Levels() == 1 {
				base = "index"
			} else {
				base = fmt.Sprintf("level_%d", i)
			}
		}
		out[i] = uniqueName(base+"_"+suffix, used)
		used[out[i]] = true
	}
	return out
}

// resetIndexWithSuffix moves the index of t into leading columns named
// by indexColumnNames and returns the new table along with those names.
func resetIndexWithSuffix(t *Table, suffix string, other *Table) (*Table, []string, error) {
	names := indexColumnNames(t, suffix, nameSet(t.Columns(), other.Columns()))
	out, err := t.ResetIndex(names)
	if err != nil {
		return nil, nil, err
	}
	return out, names, nil
}

// restoreIndex moves the named columns back into the index, reinstating
// the original level names. Unnamed levels stay unnamed.
func restoreIndex(t *Table, columns []string, original []string) (*Table, error) {
	return t.SetIndex(columns, original)
}
