// Package variables holds the float slots cost-model expressions read and
// write.
//
// Slots are declared by name while a profile is compiled and addressed by
// index afterwards. A profile is compiled in two passes: a global pass whose
// results are captured in a Snapshot, and a per-context pass that starts from
// that snapshot. Slots below MinWriteIdx belong to the global pass and carry
// its values forward.
package variables
