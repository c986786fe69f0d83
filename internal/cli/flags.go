package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/termtree/pkg/config"
	"github.com/matzehuels/termtree/pkg/pipeline"
	"github.com/matzehuels/termtree/pkg/source"
)

// sourceFlags select where external terms come from. Set flags override the
// config file.
type sourceFlags struct {
	deps      string
	derived   string
	snapshot  string
	lookupURL string
	mongoURI  string
	noCache   bool
	refresh   bool
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.deps, "deps", "", "dependency terms file (JSON or YAML)")
	fs.StringVar(&f.derived, "derived", "", "derived terms file (JSON or YAML)")
	fs.StringVar(&f.snapshot, "snapshot", "", "snapshot file with dependencies and derived terms")
	fs.StringVar(&f.lookupURL, "lookup-url", "", "base URL of the term lookup service")
	fs.StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB URI of the term store")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the term cache")
	fs.BoolVar(&f.refresh, "refresh", false, "refetch terms, bypassing cached entries")
}

func (f *sourceFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Source.Dependencies, f.deps)
	set(&cfg.Source.Derived, f.derived)
	set(&cfg.Source.Snapshot, f.snapshot)
	set(&cfg.Source.LookupURL, f.lookupURL)
	if f.mongoURI != "" {
		if cfg.Source.Mongo == nil {
			cfg.Source.Mongo = &source.MongoConfig{}
		}
		cfg.Source.Mongo.URI = f.mongoURI
	}
}

// layoutFlags are the diagram options shared by layout, render and inspect.
type layoutFlags struct {
	vizType        string
	noPrune        bool
	maxLineWidth   float64
	fontSize       float64
	relationLabels bool
	detailed       bool
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: tree, nodelink")
	fs.BoolVar(&f.noPrune, "no-prune", false, "keep external terms unrelated to the sheet")
	fs.Float64Var(&f.maxLineWidth, "max-line-width", 0, "wrap labels wider than this (default from config)")
	fs.Float64Var(&f.fontSize, "font-size", 0, "label font size (default from config)")
	fs.BoolVar(&f.relationLabels, "relation-labels", false, "write relation names on relation edges")
	fs.BoolVar(&f.detailed, "detailed", false, "show id, source and depth in nodelink labels")
}

// options builds pipeline options from the config and the flags.
func (f *layoutFlags) options(cfg *config.Config, sf *sourceFlags) pipeline.Options {
	opts := pipeline.Options{
		VizType:        f.vizType,
		NoPrune:        f.noPrune,
		Layout:         cfg.Layout,
		RelationLabels: f.relationLabels,
		Detailed:       f.detailed,
	}
	if f.maxLineWidth > 0 {
		opts.Layout.MaxLineWidth = f.maxLineWidth
	}
	if f.fontSize > 0 {
		opts.Layout.FontSize = f.fontSize
	}
	pal := cfg.Palette.Palette()
	opts.Palette = &pal
	if sf != nil {
		opts.Refresh = sf.refresh
	}
	return opts
}
