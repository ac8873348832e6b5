// Package profile ties the lookup registry, tag codec, result cache and
// variable store into an evaluation context.
//
// A Context is built for one of the global, way or node sections of a routing
// profile. The cost-model language itself is supplied by a Parser, which
// turns profile text into Expressions; this package only drives compilation
// and evaluation.
//
// Compilation runs in two passes:
//
//	snap, err := way.CompileGlobalDefaults(ctx, parser)
//	err = way.Compile(ctx, parser, snap)
//
// Afterwards Evaluate is called once per encoded tag buffer and the six
// built-in outputs are read through the accessors.
//
// A Context is not safe for concurrent use. Create one per worker.
package profile
