package profile

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/jonwraymond/routecost/cache"
	"github.com/jonwraymond/routecost/codec"
	"github.com/jonwraymond/routecost/lookup"
	"github.com/jonwraymond/routecost/observe"
	"github.com/jonwraymond/routecost/variables"
)

const testMetadata = `---lookupversion:10
---minorversion:13
---readvarlength
---context:way
highway;0001731794 primary
highway;0001457935 residential
surface;0000000100 asphalt
---context:node
barrier;0000000050 gate
`

type exprFunc func(Env) float32

func (f exprFunc) Evaluate(env Env) float32 { return f(env) }

// testProfile is a hand-compiled profile:
//
//	global: penalty = 42
//	way:    costfactor  = 1 + 2*(highway=primary)
//	        turncost    = penalty
//	        initialcost = 10*(reversedirection=yes)
//	        warn if highway=residential
type testProfile struct {
	evals int
}

func (p *testProfile) Parse(_ context.Context, d Declarer) ([]Expression, error) {
	switch d.Context() {
	case ContextGlobal:
		penalty := d.DeclareVariable("penalty")
		return []Expression{
			exprFunc(func(env Env) float32 { return env.WriteVariable(penalty, 42) }),
		}, nil

	case ContextWay:
		cf := d.DeclareVariable(VarCostFactor)
		tc := d.DeclareVariable(VarTurnCost)
		ic := d.DeclareVariable(VarInitialCost)
		penalty := d.LookupVariable("penalty")
		hw := d.LookupNameIndex("highway")
		primary := d.LookupValueIndex(hw, "primary")
		residential := d.LookupValueIndex(hw, "residential")
		rev := d.LookupNameIndex(lookup.ReverseDirection)

		return []Expression{
			exprFunc(func(env Env) float32 {
				p.evals++
				return env.WriteVariable(cf, 1+2*env.LookupMatch(hw, primary))
			}),
			exprFunc(func(env Env) float32 {
				if penalty == variables.NotFound {
					return env.WriteVariable(tc, -1)
				}
				return env.WriteVariable(tc, env.ReadVariable(penalty))
			}),
			exprFunc(func(env Env) float32 { return env.WriteVariable(ic, 10*env.LookupMatch(rev, lookup.Yes)) }),
			exprFunc(func(env Env) float32 {
				if env.LookupMatch(hw, residential) == 1 {
					env.Warn("residential is slow")
				}
				return 0
			}),
		}, nil
	}
	return nil, nil
}

func loadRegistries(t testing.TB) (way, node *lookup.Registry) {
	t.Helper()
	wp := lookup.NewMetaParser(ContextWay, lookup.NewRegistry())
	np := lookup.NewMetaParser(ContextNode, lookup.NewRegistry())
	if _, err := lookup.ReadMetadata(strings.NewReader(testMetadata), wp, np); err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	return wp.Registry(), np.Registry()
}

func compiledWay(t testing.TB, opts ...Option) (*Context, *testProfile) {
	t.Helper()
	reg, _ := loadRegistries(t)
	c, err := NewContext(ContextWay, reg, opts...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	p := &testProfile{}
	snap, err := c.CompileGlobalDefaults(context.Background(), p)
	if err != nil {
		t.Fatalf("CompileGlobalDefaults() error = %v", err)
	}
	if err := c.Compile(context.Background(), p, snap); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c, p
}

func encode(t *testing.T, c *Context, vec ...int) []byte {
	t.Helper()
	buf, err := c.Codec().Encode(lookup.IndexVector(vec))
	if err != nil {
		t.Fatalf("Encode(%v) error = %v", vec, err)
	}
	return buf
}

// evaluate runs c.Evaluate and fails the test on error.
func evaluate(t *testing.T, c *Context, reverse bool, buf []byte, sink WarningSink) bool {
	t.Helper()
	unchanged, err := c.Evaluate(reverse, buf, sink)
	if err != nil {
		t.Fatalf("Evaluate(%v, %x) error = %v", reverse, buf, err)
	}
	return unchanged
}

func wantCost(t *testing.T, name string, got, want float32) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestNewContext_RequiresFrozenRegistry(t *testing.T) {
	if _, err := NewContext(ContextWay, lookup.NewRegistry()); !errors.Is(err, ErrRegistryNotFrozen) {
		t.Errorf("NewContext(unfrozen) error = %v, want ErrRegistryNotFrozen", err)
	}
	if _, err := NewContext(ContextWay, nil); !errors.Is(err, ErrRegistryNotFrozen) {
		t.Errorf("NewContext(nil) error = %v, want ErrRegistryNotFrozen", err)
	}
}

func TestNewContext_InvalidPolicy(t *testing.T) {
	reg, _ := loadRegistries(t)
	_, err := NewContext(ContextWay, reg, WithCachePolicy(cache.Policy{}))
	if !errors.Is(err, cache.ErrInvalidCapacity) {
		t.Errorf("NewContext() error = %v, want cache.ErrInvalidCapacity", err)
	}
}

func TestContext_EvaluateBeforeCompile(t *testing.T) {
	reg, _ := loadRegistries(t)
	c, err := NewContext(ContextWay, reg)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	if _, err := c.Evaluate(false, nil, nil); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("Evaluate() error = %v, want ErrNotCompiled", err)
	}
	if _, err := c.EvaluateVector(reg.NewIndexVector(), nil); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("EvaluateVector() error = %v, want ErrNotCompiled", err)
	}
}

func TestContext_CompileErrors(t *testing.T) {
	_, node := loadRegistries(t)
	c, err := NewContext(ContextNode, node)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	// testProfile has no node section.
	err = c.Compile(context.Background(), &testProfile{}, nil)
	if !errors.Is(err, ErrNoExpressions) {
		t.Errorf("Compile() error = %v, want ErrNoExpressions", err)
	}
	if err != nil && err.Error() != "profile: no expressions for context node" {
		t.Errorf("Compile() error = %q", err)
	}

	if err := c.Compile(context.Background(), nil, nil); !errors.Is(err, ErrNilParser) {
		t.Errorf("Compile(nil) error = %v, want ErrNilParser", err)
	}
	if _, err := c.CompileGlobalDefaults(context.Background(), nil); !errors.Is(err, ErrNilParser) {
		t.Errorf("CompileGlobalDefaults(nil) error = %v, want ErrNilParser", err)
	}

	parseErr := &lookup.ConfigError{Context: ContextNode, Line: 7, Err: lookup.ErrMalformedLine}
	failing := ParserFunc(func(context.Context, Declarer) ([]Expression, error) { return nil, parseErr })
	err = c.Compile(context.Background(), failing, nil)
	var cfgErr *lookup.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Compile() error = %v, want *lookup.ConfigError", err)
	}
	if cfgErr.Line != 7 {
		t.Errorf("Line = %d, want 7", cfgErr.Line)
	}
}

func TestContext_TwoPhaseCompile(t *testing.T) {
	reg, _ := loadRegistries(t)
	c, err := NewContext(ContextWay, reg)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	snap, err := c.CompileGlobalDefaults(context.Background(), &testProfile{})
	if err != nil {
		t.Fatalf("CompileGlobalDefaults() error = %v", err)
	}
	if got := snap.Len(); got != 1 {
		t.Errorf("snapshot Len() = %d, want 1", got)
	}
	wantCost(t, "snapshot penalty", snap.ValueOf("penalty", 0), 42)

	var minWrite, costIdx int
	spy := ParserFunc(func(ctx context.Context, d Declarer) ([]Expression, error) {
		minWrite = d.MinWriteIdx()
		costIdx = d.LookupVariable(VarCostFactor)
		return (&testProfile{}).Parse(ctx, d)
	})
	if err := c.Compile(context.Background(), spy, snap); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if minWrite != 1 {
		t.Errorf("MinWriteIdx() = %d, want 1", minWrite)
	}
	// Built-ins follow the global slots.
	if costIdx != 1 {
		t.Errorf("costfactor slot = %d, want 1", costIdx)
	}
	wantCost(t, "penalty", c.VariableValue("penalty", 0), 42)
	wantCost(t, "missing", c.VariableValue("missing", -5), -5)
}

func TestContext_Evaluate(t *testing.T) {
	c, p := compiledWay(t)
	primary := encode(t, c, 0, 2, 0)
	plain := encode(t, c, 0, 0, 2)

	if evaluate(t, c, false, primary, nil) {
		t.Error("first Evaluate() reported unchanged")
	}
	wantCost(t, "CostFactor()", c.CostFactor(), 3)
	wantCost(t, "TurnCost()", c.TurnCost(), 42)
	wantCost(t, "InitialCost()", c.InitialCost(), 0)

	if !evaluate(t, c, false, primary, nil) {
		t.Error("repeated Evaluate() did not report unchanged")
	}

	evaluate(t, c, false, plain, nil)
	wantCost(t, "CostFactor()", c.CostFactor(), 1)

	evaluate(t, c, false, primary, nil)
	wantCost(t, "CostFactor()", c.CostFactor(), 3)
	// Revisiting a cached buffer must not re-evaluate.
	if p.evals != 2 {
		t.Errorf("evals = %d, want 2", p.evals)
	}

	if got, want := c.Stats(), (cache.Stats{Requests: 4, Lookups: 3, Misses: 2}); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestContext_EvaluateReverse(t *testing.T) {
	c, _ := compiledWay(t)
	buf := encode(t, c, 0, 2, 0)

	evaluate(t, c, true, buf, nil)
	wantCost(t, "reverse InitialCost()", c.InitialCost(), 10)

	evaluate(t, c, false, buf, nil)
	wantCost(t, "forward InitialCost()", c.InitialCost(), 0)

	// An absent buffer still carries direction.
	evaluate(t, c, true, nil, nil)
	wantCost(t, "absent InitialCost()", c.InitialCost(), 10)
	wantCost(t, "absent CostFactor()", c.CostFactor(), 1)
}

func TestContext_WarningsAreNotCached(t *testing.T) {
	c, p := compiledWay(t)
	residential := encode(t, c, 0, 3, 0)

	var got []string
	sink := WarningFunc(func(contextName, message string) {
		got = append(got, contextName+": "+message)
	})

	for i := 0; i < 2; i++ {
		evaluate(t, c, false, residential, sink)
		wantCost(t, "CostFactor()", c.CostFactor(), 1)
	}

	want := []string{"way: residential is slow", "way: residential is slow"}
	if !slices.Equal(got, want) {
		t.Errorf("warnings = %q, want %q", got, want)
	}
	if p.evals != 2 {
		t.Errorf("evals = %d, want 2", p.evals)
	}
	if got := c.Stats().Misses; got != 2 {
		t.Errorf("Misses = %d, want 2", got)
	}
}

func TestContext_EvaluateVectorBypassesCache(t *testing.T) {
	c, _ := compiledWay(t)

	out, err := c.EvaluateVector(lookup.IndexVector{2, 2, 0}, nil)
	if err != nil {
		t.Fatalf("EvaluateVector() error = %v", err)
	}
	wantCost(t, "CostFactor", out.CostFactor, 3)
	wantCost(t, "InitialCost", out.InitialCost, 10)
	if got := c.Stats(); got != (cache.Stats{}) {
		t.Errorf("Stats() = %+v, want zero", got)
	}

	if _, err := c.EvaluateVector(lookup.IndexVector{0}, nil); !errors.Is(err, ErrVectorLength) {
		t.Errorf("EvaluateVector(short) error = %v, want ErrVectorLength", err)
	}
}

func TestContext_Describe(t *testing.T) {
	c, _ := compiledWay(t)

	tests := []struct {
		reverse bool
		want    string
	}{
		{false, " reversedirection=yes highway=primary"},
		{true, " highway=primary"},
	}
	for _, tt := range tests {
		desc, err := c.Describe(tt.reverse, encode(t, c, 2, 2, 0))
		if err != nil {
			t.Fatalf("Describe(%v) error = %v", tt.reverse, err)
		}
		if desc != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.reverse, desc, tt.want)
		}
	}
}

func TestContext_DecodeErrorIsReturned(t *testing.T) {
	c, _ := compiledWay(t)

	// The skip distance's run of zero bits runs past the end.
	if _, err := c.Evaluate(false, []byte{0x00}, nil); err == nil {
		t.Error("Evaluate(truncated) error = nil")
	}
}

func fixedRegistry() *lookup.Registry {
	reg := lookup.NewRegistry()
	reg.Register("highway", "primary")
	reg.Register("highway", "residential")
	reg.Register("oneway", "yes")
	reg.ResetCurrent()
	reg.Freeze()
	return reg
}

func TestContext_FixedFormat(t *testing.T) {
	c, err := NewContext(ContextWay, fixedRegistry(), WithFormat(codec.Fixed), WithCachePolicy(cache.NoCachePolicy()))
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if err := c.Compile(context.Background(), &testProfile{}, nil); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	buf := encode(t, c, 2, 2)
	if len(buf) != 8 {
		t.Fatalf("len(buf) = %d, want 8", len(buf))
	}

	evaluate(t, c, false, buf, nil)
	wantCost(t, "CostFactor()", c.CostFactor(), 3)
	// No global defaults were compiled.
	wantCost(t, "TurnCost()", c.TurnCost(), -1)
}

func TestContext_RegistryStaysSizedAfterFreeze(t *testing.T) {
	reg := fixedRegistry()
	c, err := NewContext(ContextWay, reg, WithFormat(codec.Fixed))
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if err := c.Compile(context.Background(), &testProfile{}, nil); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	buf := encode(t, c, 2, 0)

	reg.Register("surface", "gravel")
	if got := reg.Len(); got != 2 {
		t.Fatalf("Len() = %d after registering a new name, want 2", got)
	}

	evaluate(t, c, false, buf, nil)
	wantCost(t, "CostFactor()", c.CostFactor(), 3)
}

func TestContext_Observability(t *testing.T) {
	var logs bytes.Buffer
	mw := observe.NewMiddleware(nil, nil, observe.NewLoggerWithWriter("info", &logs))
	c, _ := compiledWay(t, WithMiddleware(mw), WithProfileName("trekking"))

	evaluate(t, c, false, encode(t, c, 0, 3, 0), nil)

	out := logs.String()
	for _, want := range []string{
		`"msg":"profile compiled"`,
		`"profile.context":"global"`,
		`"msg":"expression warning"`,
		`"message":"residential is slow"`,
		`"profile.name":"trekking"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %s", want)
		}
	}
}

func TestContext_CompileFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	mw := observe.NewMiddleware(nil, nil, observe.NewLoggerWithWriter("info", &logs))
	_, node := loadRegistries(t)
	c, err := NewContext(ContextNode, node, WithMiddleware(mw))
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	if err := c.Compile(context.Background(), &testProfile{}, nil); !errors.Is(err, ErrNoExpressions) {
		t.Fatalf("Compile() error = %v, want ErrNoExpressions", err)
	}
	if !strings.Contains(logs.String(), `"msg":"profile compilation failed"`) {
		t.Errorf("logs missing compilation failure: %s", logs.String())
	}
}
