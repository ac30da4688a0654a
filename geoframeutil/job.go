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
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/geoframe"
)

// Job is one join or overlay of two files. Paths ending in .shp are
// shapefiles; others are GeoJSON feature collections.
type Job struct {
	// Operation is one of sjoin, nearest or overlay.
	Operation string

	// Left, Right and Output are file paths. They may contain
	// environment variables.
	Left, Right, Output string

	// How is the join type for sjoin and nearest, and the set
	// operation for overlay. Empty selects the default.
	How string

	Predicate string

	// Distance is the dwithin search distance. Nil means it was not
	// given.
	Distance *float64

	OnAttribute      []string
	LSuffix, RSuffix string

	// MaxDistance limits nearest searches. Zero means no limit.
	MaxDistance float64
	DistanceCol string
	Exclusive   bool

	// KeepGeomType is "", "true" or "false".
	KeepGeomType     string
	DisableMakeValid bool
}

// Batch is a list of jobs read from a TOML file with one [[Job]] table
// per job.
type Batch struct {
	Job []Job
}

// ReadBatch reads a batch of jobs in TOML format.
func ReadBatch(r io.Reader) (*Batch, error) {
	b := new(Batch)
	if _, err := toml.DecodeReader(r, b); err != nil {
		return nil, fmt.Errorf("geoframeutil: problem reading batch file: %v", err)
	}
	return b, nil
}

// Run runs the jobs in order, stopping at the first error.
func (b *Batch) Run(log logrus.FieldLogger) error {
	for i, j := range b.Job {
		if err := j.Run(log.WithField("job", i)); err != nil {
			return fmt.Errorf("geoframeutil: job %d: %v", i, err)
		}
	}
	return nil
}

// Run reads the input files, performs the operation and writes the
// result.
func (j Job) Run(log logrus.FieldLogger) error {
	start := time.Now()
	left, err := ReadFile(os.ExpandEnv(j.Left))
	if err != nil {
		return err
	}
	right, err := ReadFile(os.ExpandEnv(j.Right))
	if err != nil {
		return err
	}
	out, err := j.apply(left, right, log)
	if err != nil {
		return err
	}
	output := os.ExpandEnv(j.Output)
	if output == "" {
		return fmt.Errorf("geoframeutil: no output file specified")
	}
	if err := WriteFile(output, out); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"operation": j.Operation,
		"rows":      out.Len(),
		"output":    output,
		"elapsed":   time.Since(start),
	}).Info("geoframe: finished")
	return nil
}

func (j Job) apply(left, right *geoframe.Table, log logrus.FieldLogger) (*geoframe.Table, error) {
	switch j.Operation {
	case "sjoin":
		cfg, err := j.joinConfig()
		if err != nil {
			return nil, err
		}
		return (&geoframe.Joiner{Log: log}).Join(left, right, cfg)
	case "nearest":
		cfg, err := j.nearestConfig()
		if err != nil {
			return nil, err
		}
		return (&geoframe.Joiner{Log: log}).JoinNearest(left, right, cfg)
	case "overlay":
		cfg, err := j.overlayConfig()
		if err != nil {
			return nil, err
		}
		o := &geoframe.Overlayer{Joiner: &geoframe.Joiner{Log: log}, Log: log}
		return o.Overlay(left, right, cfg)
	default:
		return nil, fmt.Errorf("geoframeutil: invalid operation %q; valid options are sjoin, nearest, overlay", j.Operation)
	}
}

func joinType(s string) (geoframe.JoinType, error) {
	if s == "" {
		return geoframe.Inner, nil
	}
	return geoframe.ParseJoinType(s)
}

func (j Job) joinConfig() (geoframe.JoinConfig, error) {
	cfg := geoframe.JoinConfig{
		LSuffix:     j.LSuffix,
		RSuffix:     j.RSuffix,
		OnAttribute: j.OnAttribute,
	}
	var err error
	if cfg.How, err = joinType(j.How); err != nil {
		return cfg, err
	}
	if j.Predicate != "" {
		if cfg.Predicate, err = geoframe.ParsePredicate(j.Predicate); err != nil {
			return cfg, err
		}
	}
	if j.Distance != nil {
		cfg.Distance = []float64{*j.Distance}
	}
	return cfg, nil
}

func (j Job) nearestConfig() (geoframe.NearestConfig, error) {
	cfg := geoframe.NearestConfig{
		LSuffix:     j.LSuffix,
		RSuffix:     j.RSuffix,
		DistanceCol: j.DistanceCol,
		Exclusive:   j.Exclusive,
	}
	if j.MaxDistance != 0 {
		d := j.MaxDistance
		cfg.MaxDistance = &d
	}
	var err error
	cfg.How, err = joinType(j.How)
	return cfg, err
}

func (j Job) overlayConfig() (geoframe.OverlayConfig, error) {
	cfg := geoframe.OverlayConfig{DisableMakeValid: j.DisableMakeValid}
	if j.How != "" {
		var err error
		if cfg.How, err = geoframe.ParseOverlayType(j.How); err != nil {
			return cfg, err
		}
	}
	switch j.KeepGeomType {
	case "":
	case "true":
		cfg.KeepGeomType = geoframe.KeepGeomTypeOn
	case "false":
		cfg.KeepGeomType = geoframe.KeepGeomTypeOff
	default:
		return cfg, fmt.Errorf("geoframeutil: keep_geom_type %q not supported; valid options are true, false or empty", j.KeepGeomType)
	}
	return cfg, nil
}
