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

package geoframeutil

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/geoframe"
	"github.com/spatialmodel/geoframe/geomop"
	"github.com/spf13/cast"
)

// Attribute field sizes used when writing shapefiles.
const (
	intLength      = 18
	floatLength    = 24
	floatPrecision = 8
	stringLength   = 254
	maxFieldName   = 10
)

// ReadFile reads a table from a shapefile if path ends in .shp and from
// a GeoJSON feature collection otherwise.
func ReadFile(path string) (*geoframe.Table, error) {
	if isShapefile(path) {
		return ReadShapefile(path)
	}
	return ReadGeoJSONFile(path)
}

// WriteFile writes t as a shapefile if path ends in .shp and as a
// GeoJSON feature collection otherwise.
func WriteFile(path string, t *geoframe.Table) error {
	if isShapefile(path) {
		return WriteShapefile(path, t)
	}
	return WriteGeoJSONFile(path, t)
}

func isShapefile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".shp")
}

func prjPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

// ReadShapefile reads a shapefile into a table. Attribute fields become
// columns in file order, followed by a geometry column named geometry.
// Numeric fields are read as float64 and blank numeric values as nil.
// Polygon rings are grouped into polygons by nesting. Empty shapes are
// read as nil geometries.
// The reference system is read from the .prj file, if there is one.
func ReadShapefile(path string) (*geoframe.Table, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("geoframeutil: opening shapefile: %v", err)
	}
	defer d.Close()

	fields := d.Fields()
	cols := make([]geoframe.Column, len(fields))
	names := make([]string, len(fields))
	numeric := make([]bool, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(string(f.Name[:]), "\x00")
		numeric[i] = f.Fieldtype == 'N' || f.Fieldtype == 'F'
		cols[i].Name = names[i]
	}
	var geoms []interface{}
	for {
		g, vals, more := d.DecodeRowFields(names...)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("geoframeutil: reading %s row %d: %v", path, len(geoms), err)
		}
		if !more {
			break
		}
		geoms = append(geoms, readShape(g))
		for i, n := range names {
			cols[i].Values = append(cols[i].Values, attributeValue(vals[n], numeric[i]))
		}
	}
	cols = append(cols, geoframe.Column{Name: "geometry", Values: geoms})

	var crs *geoframe.CRS
	if b, err := ioutil.ReadFile(prjPath(path)); err == nil {
		if crs, err = geoframe.ParseCRS(strings.TrimSpace(string(b))); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("geoframeutil: %v", err)
	}
	return geoframe.NewTable(cols, "geometry", crs)
}

func attributeValue(s string, numeric bool) interface{} {
	if !numeric {
		return s
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

// WriteShapefile writes t to a shapefile at path, which must end in
// .shp. Shapefiles hold one shape type, so t's geometries must all be
// points, all lines or all polygons. Column names are cut to 10
// characters and must stay unique. The reference system, if known, is written to a .prj
// file.
func WriteShapefile(path string, t *geoframe.Table) error {
	if !isShapefile(path) {
		return fmt.Errorf("geoframeutil: shapefile path %q does not end in .shp", path)
	}
	geoms, st, err := shapeGeometries(t.Geometries())
	if err != nil {
		return err
	}

	var (
		fields     []goshp.Field
		kinds      []byte
		names      []string
		shortNames = make(map[string]string)
	)
	for _, c := range t.Columns() {
		if c == t.GeometryColumn() {
			continue
		}
		short := c
		if len(short) > maxFieldName {
			short = short[:maxFieldName]
		}
		if prev, ok := shortNames[short]; ok {
			return fmt.Errorf("geoframeutil: columns %q and %q are both %q when shortened for a shapefile", prev, c, short)
		}
		shortNames[short] = c
		f := dbfField(short, t.Column(c))
		fields = append(fields, f)
		kinds = append(kinds, f.Fieldtype)
		names = append(names, c)
	}

	e, err := shp.NewEncoderFromFields(path, st, fields...)
	if err != nil {
		return fmt.Errorf("geoframeutil: creating shapefile: %v", err)
	}
	vals := make([]interface{}, len(names))
	for i, g := range geoms {
		for j, n := range names {
			if vals[j], err = dbfValue(t.Column(n)[i], kinds[j]); err != nil {
				e.Close()
				return fmt.Errorf("geoframeutil: row %d column %s: %v", i, n, err)
			}
		}
		if err := e.EncodeFields(g, vals...); err != nil {
			e.Close()
			return fmt.Errorf("geoframeutil: row %d: %v", i, err)
		}
	}
	e.Close()

	if t.CRS() != nil {
		if err := ioutil.WriteFile(prjPath(path), []byte(t.CRS().String()), 0644); err != nil {
			return fmt.Errorf("geoframeutil: %v", err)
		}
	}
	return nil
}

// shapeGeometries converts geometries to the forms the shapefile encoder
// accepts and returns the common shape type. Points are promoted to
// multipoints when both occur. Missing geometries become empty shapes of
// the common type, which ReadShapefile reads back as nil.
func shapeGeometries(in []geom.Geom) ([]geom.Geom, goshp.ShapeType, error) {
	out := make([]geom.Geom, len(in))
	st := goshp.NULL
	for i, g := range in {
		var t goshp.ShapeType
		switch g := g.(type) {
		case nil:
			continue
		case geom.Point:
			out[i], t = g, goshp.POINT
		case geom.MultiPoint:
			out[i], t = g, goshp.MULTIPOINT
		case geom.LineString:
			out[i], t = geom.MultiLineString{g}, goshp.POLYLINE
		case geom.MultiLineString:
			out[i], t = g, goshp.POLYLINE
		case geom.Polygon:
			out[i], t = g, goshp.POLYGON
		case geom.MultiPolygon:
			var rings geom.Polygon
			for _, p := range g {
				rings = append(rings, p...)
			}
			out[i], t = rings, goshp.POLYGON
		default:
			return nil, st, fmt.Errorf("geoframeutil: row %d: shapefiles cannot hold %T geometries", i, g)
		}
		if st == goshp.POINT && t == goshp.MULTIPOINT || st == goshp.MULTIPOINT && t == goshp.POINT {
			st, t = goshp.MULTIPOINT, goshp.MULTIPOINT
		}
		if st != goshp.NULL && st != t {
			return nil, st, fmt.Errorf("geoframeutil: row %d: shapefiles hold one shape type but the table mixes types %d and %d", i, st, t)
		}
		st = t
	}
	if st == goshp.NULL {
		st = goshp.POINT
	}
	for i, g := range out {
		switch g := g.(type) {
		case nil:
			out[i] = emptyShape(st)
		case geom.Point:
			if st == goshp.MULTIPOINT {
				out[i] = geom.MultiPoint{g}
			}
		}
	}
	return out, st, nil
}

// emptyShape returns the stand-in for a missing geometry in a file of
// shape type st. go-shp labels every record with the file's shape type,
// so null records cannot be read back.
func emptyShape(st goshp.ShapeType) geom.Geom {
	switch st {
	case goshp.POLYGON:
		return geom.Polygon{}
	case goshp.POLYLINE:
		return geom.MultiLineString{}
	case goshp.MULTIPOINT:
		return geom.MultiPoint{}
	default:
		return geom.Point{X: math.NaN(), Y: math.NaN()}
	}
}

// readShape regroups polygon rings and turns the stand-ins written by
// emptyShape back into nil.
func readShape(g geom.Geom) geom.Geom {
	switch s := g.(type) {
	case geom.Polygon:
		return geomop.FromRings(s)
	case geom.MultiLineString:
		if len(s) == 0 {
			return nil
		}
	case geom.MultiPoint:
		if len(s) == 0 {
			return nil
		}
	case geom.Point:
		if math.IsNaN(s.X) || math.IsNaN(s.Y) {
			return nil
		}
	}
	return g
}

// dbfField chooses the attribute field type from the first non-nil value.
func dbfField(name string, values []interface{}) goshp.Field {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case float64, float32:
			return goshp.FloatField(name, floatLength, floatPrecision)
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return goshp.NumberField(name, intLength)
		default:
			return goshp.StringField(name, stringLength)
		}
	}
	return goshp.StringField(name, stringLength)
}

// dbfValue converts v to the representation the encoder writes for a
// field of the given type. Missing values are written as blanks.
func dbfValue(v interface{}, kind byte) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	switch kind {
	case 'F':
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", nil
		}
		return f, nil
	case 'N':
		return cast.ToIntE(v)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprint(v), nil
		}
		if len(s) > stringLength {
			s = s[:stringLength]
		}
		return s, nil
	}
}
