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

// Package geoframe joins and overlays tables of planar geometries.
//
// A Table holds named attribute columns, one active geometry column, a
// possibly composite row index and an optional coordinate reference
// system. SJoin matches rows of two tables by a spatial predicate,
// SJoinNearest matches each row to its nearest neighbors, and Overlay
// splits the geometries of two tables into pieces by boolean set
// operations while carrying the attributes of both inputs along.
package geoframe

// Version is the version of this module.
const Version = "0.1.0"
