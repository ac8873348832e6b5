package profile

import (
	"context"

	"github.com/jonwraymond/routecost/lookup"
	"github.com/jonwraymond/routecost/observe"
	"github.com/jonwraymond/routecost/variables"
)

// evalEnv implements Env for one Context.
type evalEnv struct {
	c      *Context
	vars   *variables.Store
	vec    lookup.IndexVector
	logger observe.Logger
	sink   WarningSink
	warned bool
}

// run evaluates exprs in order and reports whether any warned.
func (e *evalEnv) run(exprs []Expression) bool {
	e.warned = false
	for _, exp := range exprs {
		exp.Evaluate(e)
	}
	return e.warned
}

func (e *evalEnv) ReadVariable(idx int) float32 {
	return e.vars.Get(idx)
}

func (e *evalEnv) WriteVariable(idx int, value float32) float32 {
	return e.vars.Set(idx, value)
}

func (e *evalEnv) LookupMatch(nameIdx, valueIdx int) float32 {
	if nameIdx >= 0 && nameIdx < len(e.vec) && e.vec[nameIdx] == valueIdx {
		return 1
	}
	return 0
}

func (e *evalEnv) Warn(message string) {
	e.warned = true
	if e.logger != nil {
		e.logger.Warn(context.Background(), "expression warning", observe.Field{Key: "message", Value: message})
	}
	if e.sink != nil {
		e.sink.ExpressionWarning(e.c.name, message)
	}
}

// declarer implements Declarer for one compilation pass.
type declarer struct {
	context  string
	store    *variables.Store
	registry *lookup.Registry
}

func (d *declarer) Context() string {
	return d.context
}

func (d *declarer) DeclareVariable(name string) int {
	return d.store.Declare(name)
}

func (d *declarer) LookupVariable(name string) int {
	return d.store.Lookup(name)
}

func (d *declarer) MinWriteIdx() int {
	return d.store.MinWriteIdx()
}

func (d *declarer) LookupNameIndex(name string) int {
	return d.registry.NameIndex(name)
}

func (d *declarer) LookupValueIndex(nameIdx int, value string) int {
	return d.registry.ValueIndex(nameIdx, value)
}

var (
	_ Env      = (*evalEnv)(nil)
	_ Declarer = (*declarer)(nil)
)
