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

// Package geoframeutil provides a command line interface to geoframe
// that reads and writes GeoJSON files and shapefiles.
package geoframeutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/geoframe"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	joins := []*pflag.FlagSet{sjoinCmd.Flags(), nearestCmd.Flags()}
	all := []*pflag.FlagSet{sjoinCmd.Flags(), nearestCmd.Flags(), overlayCmd.Flags()}

	// Options are the configuration options available to geoframe.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "left",
			usage: `
              left is the path to the GeoJSON file or shapefile holding the
              left table.
              It can contain environment variables.`,
			shorthand:  "l",
			defaultVal: "",
			flagsets:   all,
		},
		{
			name: "right",
			usage: `
              right is the path to the GeoJSON file or shapefile holding the
              right table.
              It can contain environment variables.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   all,
		},
		{
			name: "output",
			usage: `
              output is the path where the result is written, as a shapefile
              if it ends in .shp and as GeoJSON otherwise.
              It can contain environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   all,
		},
		{
			name: "how",
			usage: `
              how is the join type: inner, left or right.`,
			defaultVal: "inner",
			flagsets:   joins,
		},
		{
			name: "predicate",
			usage: `
              predicate is the spatial relationship left rows must have with
              right rows to match. Options are intersects, contains,
              contains_properly, covers, covered_by, crosses, dwithin, overlaps,
              touches and within.`,
			defaultVal: "intersects",
			flagsets:   []*pflag.FlagSet{sjoinCmd.Flags()},
		},
		{
			name: "distance",
			usage: `
              distance is the search distance used by the dwithin predicate.
              It must be set for dwithin and left empty otherwise.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sjoinCmd.Flags()},
		},
		{
			name: "on_attribute",
			usage: `
              on_attribute lists columns whose values must also be equal for
              two rows to match.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{sjoinCmd.Flags()},
		},
		{
			name: "lsuffix",
			usage: `
              lsuffix is appended to left column names that are also present
              in the right table.`,
			defaultVal: "left",
			flagsets:   joins,
		},
		{
			name: "rsuffix",
			usage: `
              rsuffix is appended to right column names that are also present
              in the left table.`,
			defaultVal: "right",
			flagsets:   joins,
		},
		{
			name: "max_distance",
			usage: `
              max_distance limits the nearest neighbor search. Zero means no limit.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "distance_col",
			usage: `
              distance_col, if set, names an output column holding the distance
              to the nearest neighbor.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "exclusive",
			usage: `
              exclusive skips right geometries equal to the left geometry.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "operation",
			usage: `
              operation is the overlay set operation: intersection, union,
              identity, symmetric_difference or difference.`,
			defaultVal: "intersection",
			flagsets:   []*pflag.FlagSet{overlayCmd.Flags()},
		},
		{
			name: "keep_geom_type",
			usage: `
              keep_geom_type is true to keep only results of the geometry type
              of the first left geometry, false to keep everything, or empty to
              keep the type and warn about dropped results.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{overlayCmd.Flags()},
		},
		{
			name: "make_valid",
			usage: `
              make_valid repairs invalid input geometries. If false, invalid
              geometries cause an error.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{overlayCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GEOFRAME")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case bool:
				set.Bool(option.name, option.defaultVal.(bool), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(sjoinCmd)
	Root.AddCommand(nearestCmd)
	Root.AddCommand(overlayCmd)
	Root.AddCommand(batchCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("geoframe: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "geoframe",
	Short: "Spatial joins and overlays of geometry tables.",
	Long: `geoframe joins and overlays tables of planar geometries stored as
GeoJSON feature collections or shapefiles. Use the subcommands specified
below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GEOFRAME_var' where 'var'
is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of geoframe.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("geoframe v%s\n", geoframe.Version)
	},
	DisableAutoGenTag: true,
}

// jobFromConfig collects the options of operation from Cfg.
func jobFromConfig(operation string) (Job, error) {
	onAttribute, err := cast.ToStringSliceE(Cfg.Get("on_attribute"))
	if err != nil {
		return Job{}, fmt.Errorf("geoframe: on_attribute: %v", err)
	}
	var distance *float64
	if v := Cfg.Get("distance"); v != nil && v != "" {
		d, err := cast.ToFloat64E(v)
		if err != nil {
			return Job{}, fmt.Errorf("geoframe: distance: %v", err)
		}
		distance = &d
	}
	maxDistance, err := cast.ToFloat64E(Cfg.Get("max_distance"))
	if err != nil {
		return Job{}, fmt.Errorf("geoframe: max_distance: %v", err)
	}
	j := Job{
		Operation:        operation,
		Left:             Cfg.GetString("left"),
		Right:            Cfg.GetString("right"),
		Output:           Cfg.GetString("output"),
		How:              Cfg.GetString("how"),
		Predicate:        Cfg.GetString("predicate"),
		Distance:         distance,
		OnAttribute:      onAttribute,
		LSuffix:          Cfg.GetString("lsuffix"),
		RSuffix:          Cfg.GetString("rsuffix"),
		MaxDistance:      maxDistance,
		DistanceCol:      Cfg.GetString("distance_col"),
		Exclusive:        Cfg.GetBool("exclusive"),
		KeepGeomType:     Cfg.GetString("keep_geom_type"),
		DisableMakeValid: !Cfg.GetBool("make_valid"),
	}
	if operation == "overlay" {
		j.How = Cfg.GetString("operation")
	}
	return j, nil
}

func runOperation(operation string) error {
	j, err := jobFromConfig(operation)
	if err != nil {
		return err
	}
	return j.Run(logrus.StandardLogger())
}

var sjoinCmd = &cobra.Command{
	Use:   "sjoin",
	Short: "Join two tables by a spatial predicate.",
	Long: `sjoin matches each row of the left table to the rows of the right
table whose geometries satisfy the predicate, and writes one output row per
match. Rows without matches are kept according to the join type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation("sjoin")
	},
	DisableAutoGenTag: true,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Join two tables by nearest neighbor.",
	Long: `nearest matches each row of the left table to the rows of the right
table with the nearest geometries. All equidistant neighbors are matched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation("nearest")
	},
	DisableAutoGenTag: true,
}

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Overlay two tables of polygons.",
	Long: `overlay splits the geometries of the left and right tables into
pieces by a set operation and writes each piece with the attributes of the
rows it came from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation("overlay")
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run the jobs in a TOML file.",
	Long: `batch runs, in order, the jobs listed in a TOML file. Each job is a
[[Job]] table with the fields Operation, Left, Right and Output and,
optionally, How, Predicate, Distance, OnAttribute, LSuffix, RSuffix,
MaxDistance, DistanceCol, Exclusive, KeepGeomType and DisableMakeValid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(os.ExpandEnv(args[0]))
		if err != nil {
			return fmt.Errorf("geoframe: %v", err)
		}
		defer f.Close()
		b, err := ReadBatch(f)
		if err != nil {
			return err
		}
		return b.Run(logrus.StandardLogger())
	},
	DisableAutoGenTag: true,
}
