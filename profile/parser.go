package profile

import "context"

// Expression is one compiled statement of the cost model.
//
// Contract:
// - Evaluate must not retain env beyond the call.
// - Warnings are reported through env.Warn, not by panicking.
type Expression interface {
	Evaluate(env Env) float32
}

// Env is the evaluation-time view an Expression has of its context.
type Env interface {
	// ReadVariable returns the value of a variable slot.
	ReadVariable(idx int) float32

	// WriteVariable assigns a variable slot and returns the value.
	WriteVariable(idx int, value float32) float32

	// LookupMatch returns 1 when the current tag vector holds valueIdx for
	// nameIdx, else 0.
	LookupMatch(nameIdx, valueIdx int) float32

	// Warn reports a non-fatal problem. The current result is not cached.
	Warn(message string)
}

// Declarer is the compile-time view a Parser has of its context.
type Declarer interface {
	// Context returns the profile section being compiled: global, way or node.
	Context() string

	// DeclareVariable returns the slot for name, creating it if needed.
	DeclareVariable(name string) int

	// LookupVariable returns the slot for name, or variables.NotFound.
	LookupVariable(name string) int

	// MinWriteIdx returns the first slot the section may assign. Lower slots
	// hold global defaults.
	MinWriteIdx() int

	// LookupNameIndex returns the index of a tag name, or lookup.NotFound.
	LookupNameIndex(name string) int

	// LookupValueIndex returns the index of a tag value, or lookup.NotFound.
	LookupValueIndex(nameIdx int, value string) int
}

// Parser compiles the expressions of one profile section.
//
// Contract:
// - Parse reads only the section named by d.Context().
// - Errors should carry the 1-based source line, e.g. as *lookup.ConfigError.
type Parser interface {
	Parse(ctx context.Context, d Declarer) ([]Expression, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, d Declarer) ([]Expression, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, d Declarer) ([]Expression, error) {
	return f(ctx, d)
}

// WarningSink receives evaluator warnings with the context name.
type WarningSink interface {
	ExpressionWarning(contextName, message string)
}

// WarningFunc adapts a function to WarningSink.
type WarningFunc func(contextName, message string)

// ExpressionWarning calls f.
func (f WarningFunc) ExpressionWarning(contextName, message string) {
	f(contextName, message)
}
