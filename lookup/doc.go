// Package lookup maintains the tag vocabulary of a routing profile.
//
// A Registry maps attribute names ("highway", "surface", ...) to small
// integer indices in first-seen order, and each name to an append-only domain
// of recognized values. Index 0 of every domain means the tag is absent and
// index 1 means "unknown": a value outside the vocabulary. Concrete values
// start at index 2. Indices are never reassigned, so data encoded against an
// older, smaller vocabulary stays decodable against a larger one.
//
// The registry also carries the current IndexVector, the per-element
// scratch vector that tagging fills in, and per-value occurrence counters
// that can be dumped as a ranked statistic.
//
// Metadata files use a line protocol:
//
//	---lookupversion:10
//	---readvarlength
//	---context:way
//	highway;0001731794 primary
//	highway;0001457935 residential living_street
//
// Each line under a context marker is "name value [alias...]"; a ";" suffix on
// the name (the historical occurrence count) is stripped.
//
// A Registry is not safe for concurrent use. Create one per worker.
package lookup
