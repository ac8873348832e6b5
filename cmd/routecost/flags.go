package main

import (
	"github.com/spf13/pflag"

	"github.com/jonwraymond/routecost/lookup"
)

// sourceFlags selects the metadata file and the evaluation context. Every
// subcommand registers them.
type sourceFlags struct {
	Meta    string
	Context string
}

// AddFlags registers the source flags on flagSet.
func (f *sourceFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Meta, "meta", "", "lookup metadata file (overrides profile.metadata)")
	flagSet.StringVar(&f.Context, "context", lookup.ContextWay, "evaluation context: way or node")
}
