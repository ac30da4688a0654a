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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/spatialmodel/geoframe"
)

// featureCollection is a GeoJSON feature collection. Proj4 optionally
// holds the reference system of the coordinates.
type featureCollection struct {
	Type     string     `json:"type"`
	Proj4    string     `json:"proj4,omitempty"`
	Features []*feature `json:"features"`
}

type feature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id,omitempty"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// rawGeometry holds a GeoJSON geometry before its coordinates are
// interpreted.
type rawGeometry struct {
	Type        string            `json:"type"`
	Coordinates []json.RawMessage `json:"coordinates"`
	Geometries  []json.RawMessage `json:"geometries"`
}

type geometryCollection struct {
	Type       string        `json:"type"`
	Geometries []interface{} `json:"geometries"`
}

// ReadGeoJSON reads a GeoJSON feature collection into a table. Property
// names become columns in sorted order, followed by a geometry column
// named geometry. Missing properties are nil. If every feature has an id
// the ids become the row index.
func ReadGeoJSON(r io.Reader) (*geoframe.Table, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geoframeutil: decoding GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geoframeutil: GeoJSON type is %q, not FeatureCollection", fc.Type)
	}
	keys := make(map[string]bool)
	for _, f := range fc.Features {
		for k := range f.Properties {
			keys[k] = true
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		if k != "geometry" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	cols := make([]geoframe.Column, len(names)+1)
	for i, n := range names {
		cols[i] = geoframe.Column{Name: n, Values: make([]interface{}, len(fc.Features))}
	}
	geoms := make([]interface{}, len(fc.Features))
	for i, f := range fc.Features {
		for j, n := range names {
			cols[j].Values[i] = f.Properties[n]
		}
		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("geoframeutil: feature %d: %w", i, err)
		}
		if g != nil {
			geoms[i] = g
		}
	}
	cols[len(names)] = geoframe.Column{Name: "geometry", Values: geoms}

	var crs *geoframe.CRS
	if fc.Proj4 != "" {
		var err error
		if crs, err = geoframe.ParseCRS(fc.Proj4); err != nil {
			return nil, err
		}
	}
	t, err := geoframe.NewTable(cols, "geometry", crs)
	if err != nil {
		return nil, err
	}
	return withFeatureIDs(t, fc.Features)
}

// withFeatureIDs makes the feature ids the row index of t when every
// feature has one.
func withFeatureIDs(t *geoframe.Table, features []*feature) (*geoframe.Table, error) {
	if len(features) == 0 {
		return t, nil
	}
	ix := geoframe.Index{Names: []string{""}, Labels: make([]geoframe.Label, len(features))}
	for i, f := range features {
		if f.ID == nil {
			return t, nil
		}
		ix.Labels[i] = geoframe.Label{f.ID}
	}
	return t.WithIndex(ix)
}

// ReadGeoJSONFile reads a GeoJSON feature collection from a file.
func ReadGeoJSONFile(path string) (*geoframe.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoframeutil: %w", err)
	}
	defer f.Close()
	return ReadGeoJSON(f)
}

func decodeGeometry(b json.RawMessage) (geom.Geom, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var raw rawGeometry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case "GeometryCollection":
		var gc geom.GeometryCollection
		for _, m := range raw.Geometries {
			g, err := decodeGeometry(m)
			if err != nil {
				return nil, err
			}
			if g != nil {
				gc = append(gc, g)
			}
		}
		return gc, nil
	case "MultiPoint":
		var mp geom.MultiPoint
		for _, c := range raw.Coordinates {
			g, err := decodeSingle("Point", c)
			if err != nil {
				return nil, err
			}
			mp = append(mp, g.(geom.Point))
		}
		return mp, nil
	case "MultiLineString":
		var ml geom.MultiLineString
		for _, c := range raw.Coordinates {
			g, err := decodeSingle("LineString", c)
			if err != nil {
				return nil, err
			}
			ml = append(ml, g.(geom.LineString))
		}
		return ml, nil
	case "MultiPolygon":
		var mp geom.MultiPolygon
		for _, c := range raw.Coordinates {
			g, err := decodeSingle("Polygon", c)
			if err != nil {
				return nil, err
			}
			mp = append(mp, g.(geom.Polygon))
		}
		return mp, nil
	default:
		return geojson.Decode(b)
	}
}

// decodeSingle decodes the coordinates of one member of a multi-part
// geometry.
func decodeSingle(typ string, coords json.RawMessage) (geom.Geom, error) {
	var c interface{}
	if err := json.Unmarshal(coords, &c); err != nil {
		return nil, err
	}
	return geojson.FromGeoJSON(&geojson.Geometry{Type: typ, Coordinates: c})
}

func encodeGeometry(g geom.Geom) (interface{}, error) {
	switch t := g.(type) {
	case nil:
		return nil, nil
	case geom.MultiPoint:
		return encodeMulti("MultiPoint", len(t), func(i int) geom.Geom { return t[i] })
	case geom.MultiLineString:
		return encodeMulti("MultiLineString", len(t), func(i int) geom.Geom { return t[i] })
	case geom.MultiPolygon:
		return encodeMulti("MultiPolygon", len(t), func(i int) geom.Geom { return t[i] })
	case geom.GeometryCollection:
		gc := geometryCollection{Type: "GeometryCollection", Geometries: make([]interface{}, len(t))}
		for i, m := range t {
			e, err := encodeGeometry(m)
			if err != nil {
				return nil, err
			}
			gc.Geometries[i] = e
		}
		return gc, nil
	default:
		return geojson.ToGeoJSON(g)
	}
}

func encodeMulti(typ string, n int, member func(int) geom.Geom) (interface{}, error) {
	coords := make([]interface{}, n)
	for i := range coords {
		m, err := geojson.ToGeoJSON(member(i))
		if err != nil {
			return nil, err
		}
		coords[i] = m.Coordinates
	}
	return &geojson.Geometry{Type: typ, Coordinates: coords}, nil
}

// WriteGeoJSON writes t as a GeoJSON feature collection. Attribute
// columns become properties; NaN values are written as null. The labels
// of a single-level index are written as feature ids.
func WriteGeoJSON(w io.Writer, t *geoframe.Table) error {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]*feature, t.Len())}
	if t.CRS() != nil {
		fc.Proj4 = t.CRS().String()
	}
	ix := t.Index()
	for i := range fc.Features {
		f := &feature{Type: "Feature", Properties: make(map[string]interface{})}
		if ix.Levels() == 1 {
			f.ID = ix.Labels[i][0]
		}
		for _, c := range t.Columns() {
			if c == t.GeometryColumn() {
				continue
			}
			v := t.Column(c)[i]
			if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
				v = nil
			}
			f.Properties[c] = v
		}
		g, err := encodeGeometry(t.Geometry(i))
		if err != nil {
			return fmt.Errorf("geoframeutil: row %d: %w", i, err)
		}
		if f.Geometry, err = json.Marshal(g); err != nil {
			return fmt.Errorf("geoframeutil: row %d: %w", i, err)
		}
		fc.Features[i] = f
	}
	e := json.NewEncoder(w)
	if err := e.Encode(fc); err != nil {
		return fmt.Errorf("geoframeutil: encoding GeoJSON: %w", err)
	}
	return nil
}

// WriteGeoJSONFile writes t to a GeoJSON file.
func WriteGeoJSONFile(path string, t *geoframe.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geoframeutil: %w", err)
	}
	if err := WriteGeoJSON(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
