package profile

import (
	"context"
	"fmt"

	"github.com/jonwraymond/routecost/cache"
	"github.com/jonwraymond/routecost/codec"
	"github.com/jonwraymond/routecost/lookup"
	"github.com/jonwraymond/routecost/observe"
	"github.com/jonwraymond/routecost/variables"
)

// Section names.
const (
	ContextGlobal = lookup.ContextGlobal
	ContextWay    = lookup.ContextWay
	ContextNode   = lookup.ContextNode
)

// Built-in output variables, declared in this order by Compile.
const (
	VarCostFactor         = "costfactor"
	VarTurnCost           = "turncost"
	VarUphillCostFactor   = "uphillcostfactor"
	VarDownhillCostFactor = "downhillcostfactor"
	VarInitialCost        = "initialcost"
	VarNodeAccessGranted  = "nodeaccessgranted"
)

var builtins = [...]string{
	VarCostFactor,
	VarTurnCost,
	VarUphillCostFactor,
	VarDownhillCostFactor,
	VarInitialCost,
	VarNodeAccessGranted,
}

type options struct {
	profile string
	policy  cache.Policy
	format  codec.Format
	mw      *observe.Middleware
}

// Option configures a Context.
type Option func(*options)

// WithProfileName sets the profile name used in logs and metrics.
func WithProfileName(name string) Option {
	return func(o *options) {
		o.profile = name
	}
}

// WithCachePolicy sets the result cache policy.
func WithCachePolicy(p cache.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithFormat sets the tag buffer wire format.
func WithFormat(f codec.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithMiddleware sets the observability middleware. Compilation is wrapped by
// it and evaluation reports cache metrics and warnings to it.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *options) {
		o.mw = mw
	}
}

// Context evaluates one section of a routing profile.
type Context struct {
	name     string
	meta     observe.ContextMeta
	registry *lookup.Registry
	codec    *codec.Codec
	cache    *cache.ResultCache
	mw       *observe.Middleware
	logger   observe.Logger

	vars     *variables.Store
	exprs    []Expression
	builtin  [len(builtins)]int
	compiled bool

	env *evalEnv
}

// NewContext creates an evaluation context named name (way or node) over a
// frozen registry.
func NewContext(name string, registry *lookup.Registry, opts ...Option) (*Context, error) {
	if registry == nil || !registry.Frozen() {
		return nil, ErrRegistryNotFrozen
	}

	o := options{policy: cache.DefaultPolicy(), format: codec.VarLength}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mw == nil {
		o.mw = observe.NewNoopMiddleware()
	}

	meta := observe.ContextMeta{Profile: o.profile, Context: name}
	cd := codec.New(registry, o.format)
	rc, err := cache.New(o.policy, cache.KeyerFor(cd),
		cache.WithRecorder(observe.NewCacheRecorder(context.Background(), o.mw.Metrics(), meta)))
	if err != nil {
		return nil, err
	}

	c := &Context{
		name:     name,
		meta:     meta,
		registry: registry,
		codec:    cd,
		cache:    rc,
		mw:       o.mw,
		logger:   o.mw.Logger().WithContext(meta),
		vars:     variables.NewStore(),
	}
	c.env = &evalEnv{c: c, vec: registry.NewIndexVector()}
	return c, nil
}

// Name returns the section name.
func (c *Context) Name() string {
	return c.name
}

// Registry returns the lookup registry.
func (c *Context) Registry() *lookup.Registry {
	return c.registry
}

// Codec returns the tag buffer codec.
func (c *Context) Codec() *codec.Codec {
	return c.codec
}

// CompileGlobalDefaults parses the global section and evaluates it once,
// returning the resulting variables for Compile.
func (c *Context) CompileGlobalDefaults(ctx context.Context, p Parser) (*variables.Snapshot, error) {
	if p == nil {
		return nil, ErrNilParser
	}

	var snap *variables.Snapshot
	meta := observe.ContextMeta{Profile: c.meta.Profile, Context: ContextGlobal}
	err := c.mw.Wrap(func(ctx context.Context, meta observe.ContextMeta) error {
		store := variables.NewStore()
		exprs, err := p.Parse(ctx, &declarer{context: ContextGlobal, store: store, registry: c.registry})
		if err != nil {
			return fmt.Errorf("profile: parse %s: %w", ContextGlobal, err)
		}

		env := &evalEnv{c: c, vars: store, vec: c.registry.NewIndexVector(), logger: c.mw.Logger().WithContext(meta)}
		env.run(exprs)
		snap = store.Snapshot()
		return nil
	})(ctx, meta)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Compile parses this context's section on top of the global defaults in
// snapshot, which may be nil. The built-in output variables are declared
// first so they always exist. Compile resets the result cache.
func (c *Context) Compile(ctx context.Context, p Parser, snapshot *variables.Snapshot) error {
	if p == nil {
		return ErrNilParser
	}

	return c.mw.Wrap(func(ctx context.Context, _ observe.ContextMeta) error {
		store := variables.NewStoreFrom(snapshot)
		var builtin [len(builtins)]int
		for i, name := range builtins {
			builtin[i] = store.Declare(name)
		}

		exprs, err := p.Parse(ctx, &declarer{context: c.name, store: store, registry: c.registry})
		if err != nil {
			return fmt.Errorf("profile: parse %s: %w", c.name, err)
		}
		if len(exprs) == 0 {
			return fmt.Errorf("%w %s", ErrNoExpressions, c.name)
		}

		c.vars, c.exprs, c.builtin, c.compiled = store, exprs, builtin, true
		c.env.vars = store
		c.env.logger = c.logger
		c.cache.Reset()
		return nil
	})(ctx, c.meta)
}

// Evaluate makes the outputs for an encoded tag buffer current. It reports
// whether they are unchanged since the previous call. Warnings raised while
// evaluating go to sink, which may be nil, and to the context's logger.
func (c *Context) Evaluate(reverse bool, buf []byte, sink WarningSink) (bool, error) {
	if !c.compiled {
		return false, ErrNotCompiled
	}
	c.env.sink = sink
	unchanged, err := c.cache.Evaluate(reverse, buf, c.compute)
	c.env.sink = nil
	return unchanged, err
}

func (c *Context) compute(reverse bool, buf []byte) (cache.Outputs, bool, error) {
	if err := c.codec.Decode(c.env.vec, reverse, buf); err != nil {
		return cache.Outputs{}, false, err
	}
	warned := c.env.run(c.exprs)
	return c.outputs(), warned, nil
}

// EvaluateVector runs the cost model on a decoded vector, bypassing the
// cache. Warnings go to sink, which may be nil.
func (c *Context) EvaluateVector(vec lookup.IndexVector, sink WarningSink) (cache.Outputs, error) {
	if !c.compiled {
		return cache.Outputs{}, ErrNotCompiled
	}
	if len(vec) != c.registry.Len() {
		return cache.Outputs{}, fmt.Errorf("%w: got %d, registry has %d names", ErrVectorLength, len(vec), c.registry.Len())
	}

	saved := c.env.vec
	c.env.vec, c.env.sink = vec, sink
	c.env.run(c.exprs)
	c.env.vec, c.env.sink = saved, nil
	return c.outputs(), nil
}

func (c *Context) outputs() cache.Outputs {
	v := c.vars
	return cache.Outputs{
		CostFactor:         v.Get(c.builtin[0]),
		TurnCost:           v.Get(c.builtin[1]),
		UphillCostFactor:   v.Get(c.builtin[2]),
		DownhillCostFactor: v.Get(c.builtin[3]),
		InitialCost:        v.Get(c.builtin[4]),
		NodeAccessGranted:  v.Get(c.builtin[5]),
	}
}

// Describe decodes buf and renders its tags as " name=value" pairs.
func (c *Context) Describe(reverse bool, buf []byte) (string, error) {
	vec := c.registry.NewIndexVector()
	if err := c.codec.Decode(vec, reverse, buf); err != nil {
		return "", err
	}
	return c.registry.Describe(vec), nil
}

// VariableValue returns a variable by name after evaluation, or def.
func (c *Context) VariableValue(name string, def float32) float32 {
	return c.vars.ValueOf(name, def)
}

// Stats returns the result cache counters.
func (c *Context) Stats() cache.Stats {
	return c.cache.Stats()
}

// CostFactor returns the cost factor of the last evaluated buffer.
func (c *Context) CostFactor() float32 { return c.cache.CostFactor() }

// TurnCost returns the turn cost of the last evaluated buffer.
func (c *Context) TurnCost() float32 { return c.cache.TurnCost() }

// UphillCostFactor returns the uphill cost factor of the last evaluated buffer.
func (c *Context) UphillCostFactor() float32 { return c.cache.UphillCostFactor() }

// DownhillCostFactor returns the downhill cost factor of the last evaluated buffer.
func (c *Context) DownhillCostFactor() float32 { return c.cache.DownhillCostFactor() }

// InitialCost returns the initial cost of the last evaluated buffer.
func (c *Context) InitialCost() float32 { return c.cache.InitialCost() }

// NodeAccessGranted returns the node-access-granted value of the last
// evaluated buffer.
func (c *Context) NodeAccessGranted() float32 { return c.cache.NodeAccessGranted() }
