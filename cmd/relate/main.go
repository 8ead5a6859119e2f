package main

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmgeojson"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/relate"
	"github.com/wroge/wgs84/v2"
)

type Relate struct {
	Pattern string `short:"p" desc:"DE-9IM pattern to match instead of printing the matrix"`
	Rule    string `default:"mod2" desc:"Boundary node rule: mod2, endpoint, multivalent, or monovalent"`
	Verbose bool   `short:"v" desc:"Log evaluation stages"`
	A       string `index:"0" desc:"Geometry A as WKT, or @file"`
	B       string `index:"1" desc:"Geometry B as WKT, or @file"`
}

type Predicate struct {
	Rule    string `default:"mod2" desc:"Boundary node rule: mod2, endpoint, multivalent, or monovalent"`
	Verbose bool   `short:"v" desc:"Log evaluation stages"`
	Name    string `index:"0" desc:"Predicate name, such as intersects or coveredBy"`
	A       string `index:"1" desc:"Geometry A as WKT, or @file"`
	B       string `index:"2" desc:"Geometry B as WKT, or @file"`
}

type Filter struct {
	Predicate string `short:"p" default:"intersects" desc:"Predicate that features must satisfy against the query"`
	From      int    `default:"0" desc:"EPSG code of the features"`
	To        int    `default:"0" desc:"EPSG code of the query, features are reprojected to it"`
	Rule      string `default:"mod2" desc:"Boundary node rule: mod2, endpoint, multivalent, or monovalent"`
	Verbose   bool   `short:"v" desc:"Log evaluation stages"`
	Query     string `index:"0" desc:"Query geometry as WKT, or @file"`
	Input     string `index:"1" desc:"Input file with features (.osm or .geojson)"`
}

func main() {
	root := argp.NewCmd(&Relate{}, "DE-9IM spatial relationships between geometries")
	root.AddCmd(&Predicate{}, "predicate", "Evaluate a named predicate")
	root.AddCmd(&Filter{}, "filter", "Print the features that satisfy a predicate against a query geometry")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Relate) Run() error {
	if cmd.A == "" || cmd.B == "" {
		return argp.ShowUsage
	}
	opts, err := options(cmd.Rule, cmd.Verbose)
	if err != nil {
		return err
	}
	a, b, err := readGeometries(cmd.A, cmd.B)
	if err != nil {
		return err
	}

	if cmd.Pattern != "" {
		match, err := relate.RelatePattern(a, b, cmd.Pattern, opts...)
		if err != nil {
			return err
		}
		fmt.Println(match)
		return nil
	}

	m, err := relate.Relate(a, b, opts...)
	if err != nil {
		return err
	}
	fmt.Println(m)
	return nil
}

func (cmd *Predicate) Run() error {
	if cmd.Name == "" || cmd.A == "" || cmd.B == "" {
		return argp.ShowUsage
	}
	kind, ok := relate.ParsePredicateKind(cmd.Name)
	if !ok {
		fmt.Printf("ERROR: unknown predicate %q\n", cmd.Name)
		return argp.ShowUsage
	}
	opts, err := options(cmd.Rule, cmd.Verbose)
	if err != nil {
		return err
	}
	a, b, err := readGeometries(cmd.A, cmd.B)
	if err != nil {
		return err
	}

	pred := relate.NewPredicate(kind)
	val, err := relate.Evaluate(a, b, pred, opts...)
	if err != nil {
		return err
	}
	if kind == relate.KindMatrix {
		fmt.Println(pred.Matrix())
	} else {
		fmt.Println(val)
	}
	return nil
}

func (cmd *Filter) Run() error {
	if cmd.Query == "" || cmd.Input == "" {
		return argp.ShowUsage
	} else if (cmd.From == 0) != (cmd.To == 0) {
		fmt.Println("ERROR: must specify both --from and --to")
		return argp.ShowUsage
	}
	kind, ok := relate.ParsePredicateKind(cmd.Predicate)
	if !ok || kind == relate.KindMatrix {
		fmt.Printf("ERROR: unknown predicate %q\n", cmd.Predicate)
		return argp.ShowUsage
	}
	opts, err := options(cmd.Rule, cmd.Verbose)
	if err != nil {
		return err
	}
	log := logger(cmd.Verbose)

	query, err := readGeometry(cmd.Query)
	if err != nil {
		return err
	}
	prepared, err := relate.Prepare(query, opts...)
	if err != nil {
		return err
	}

	fc, err := readFeatures(cmd.Input)
	if err != nil {
		return err
	}

	var proj orb.Projection
	if cmd.From != cmd.To {
		transform := wgs84.Transform(wgs84.EPSG(cmd.From), wgs84.EPSG(cmd.To))
		proj = func(p orb.Point) orb.Point {
			x, y, _ := transform(p[0], p[1], 0.0)
			return orb.Point{x, y}
		}
	}

	pred := relate.NewPredicate(kind)
	n := 0
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		id := f.ID
		if id == nil {
			id = i
		}

		g := f.Geometry
		if proj != nil {
			g = project.Geometry(orb.Clone(g), proj)
		}
		val, err := prepared.Evaluate(g, pred)
		if err != nil {
			log.WithFields(logrus.Fields{"feature": id, "error": err}).Warn("skipping feature")
			continue
		} else if val {
			fmt.Println(id)
			n++
		}
	}
	log.WithFields(logrus.Fields{"features": len(fc.Features), "matches": n}).Info("done")
	return nil
}

func logger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func options(rule string, verbose bool) ([]relate.Option, error) {
	r, err := relate.ParseBoundaryNodeRule(rule)
	if err != nil {
		return nil, err
	}
	return []relate.Option{
		relate.WithBoundaryNodeRule(r),
		relate.WithLogger(logger(verbose)),
	}, nil
}

func readGeometries(a, b string) (orb.Geometry, orb.Geometry, error) {
	ga, err := readGeometry(a)
	if err != nil {
		return nil, nil, err
	}
	gb, err := readGeometry(b)
	if err != nil {
		return nil, nil, err
	}
	return ga, gb, nil
}

// readGeometry parses WKT, or reads a WKT or GeoJSON file when s starts with @.
func readGeometry(s string) (orb.Geometry, error) {
	if !strings.HasPrefix(s, "@") {
		g, err := wkt.Unmarshal(s)
		if err != nil {
			return nil, errors.Wrap(err, "bad WKT")
		}
		return g, nil
	}

	filename := s[1:]
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".geojson", ".json":
		if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
			return f.Geometry, nil
		}
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrapf(err, "bad GeoJSON in %s", filename)
		}
		return g.Geometry(), nil
	}
	g, err := wkt.Unmarshal(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.Wrapf(err, "bad WKT in %s", filename)
	}
	return g, nil
}

// readFeatures reads an OSM XML file or a GeoJSON feature collection.
func readFeatures(filename string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".osm":
		o := &osm.OSM{}
		if err := xml.Unmarshal(data, o); err != nil {
			return nil, errors.Wrapf(err, "bad OSM XML in %s", filename)
		}
		return osmgeojson.Convert(o,
			osmgeojson.NoMeta(true),
			osmgeojson.NoRelationMembership(true))
	case ".geojson", ".json":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrapf(err, "bad GeoJSON in %s", filename)
		}
		return fc, nil
	}
	return nil, errors.Newf("unknown file extension %s", filepath.Ext(filename))
}
