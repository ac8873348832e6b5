// Package observe provides logging, metrics and tracing for profile
// compilation and cost evaluation.
//
// Compilation is traced and timed through Middleware. The evaluation hot path
// only touches counters, through a CacheRecorder bound to one evaluation
// context.
package observe
