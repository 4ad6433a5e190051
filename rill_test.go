package rill_test

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/rill-lang/rill"
	"github.com/rill-lang/rill/pkg/event"
	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func lit(v value.Value) *expression.Literal { return expression.NewLiteral(v) }

// incrementProgram builds [x = 1, x + 1].
func incrementProgram() (expression.Expression, *state.LocalEnv, *state.ExternalEnv) {
	local, external := state.NewLocalEnv(), state.NewExternalEnv()
	set := expression.NewVariableAssignment("x", lit(value.Integer(1)), local, external)
	ref := must(expression.NewVariable("x", local))
	add := must(expression.NewOp(expression.OpAdd, ref, lit(value.Integer(1)), local, external))
	block := must(expression.NewBlock([]expression.Expression{set, add}, local))
	return block, local, external
}

func TestCompileAndResolve(t *testing.T) {
	tree, local, external := incrementProgram()
	prog, err := rill.Compile(tree, rill.WithLocalEnv(local), rill.WithExternalEnv(external))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if prog.ID() == "" {
		t.Error("compiled program should carry an ID")
	}

	got, err := prog.Resolve(expression.NewContext(event.New()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := value.Integer(2); !got.Equal(want) {
		t.Errorf("result = %s, want %s", got, want)
	}
}

func TestResolveBatch(t *testing.T) {
	tree, local, external := incrementProgram()
	prog := rill.MustCompile(tree, rill.WithLocalEnv(local), rill.WithExternalEnv(external))

	targets := make([]expression.Target, 3)
	sel := make([]int, 3)
	for i := range targets {
		targets[i] = event.New()
		sel[i] = i
	}
	ctx := expression.NewBatchContext(targets)
	prog.ResolveBatch(ctx, sel)

	for i := range sel {
		r := ctx.Resolved(i)
		if r.IsErr() {
			t.Fatalf("row %d failed: %v", i, r.Err)
		}
		if want := value.Integer(2); !r.Value.Equal(want) {
			t.Errorf("row %d = %s, want %s", i, r.Value, want)
		}
	}
}

func TestCompileInfo(t *testing.T) {
	t.Run("infallible program", func(t *testing.T) {
		tree, local, external := incrementProgram()
		prog := rill.MustCompile(tree, rill.WithLocalEnv(local), rill.WithExternalEnv(external))

		info := prog.Info()
		if info.Fallible || info.Abortable {
			t.Errorf("info = %+v, want neither flag", info)
		}
		if got := info.TypeDef.Kinds(); got != value.KindInteger {
			t.Errorf("result type = %s, want integer", got)
		}
	})

	t.Run("aborting program", func(t *testing.T) {
		local, external := state.NewLocalEnv(), state.NewExternalEnv()
		block := must(expression.NewBlock([]expression.Expression{
			lit(value.Integer(1)),
			expression.NewAbort(nil),
		}, local))
		prog := rill.MustCompile(block, rill.WithLocalEnv(local), rill.WithExternalEnv(external))

		info := prog.Info()
		if !info.Abortable {
			t.Error("program ending in abort must be abortable")
		}
		if !info.TypeDef.IsNever() {
			t.Errorf("result type = %s, want never", info.TypeDef)
		}
	})
}

func TestCompileNilExpression(t *testing.T) {
	if _, err := rill.Compile(nil); err == nil {
		t.Fatal("Compile(nil) should fail")
	}
}

func TestMustCompilePanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustCompile(nil) should panic")
		}
	}()
	rill.MustCompile(nil)
}

func TestAbortErrorReachesCaller(t *testing.T) {
	local, external := state.NewLocalEnv(), state.NewExternalEnv()
	block := must(expression.NewBlock([]expression.Expression{
		expression.NewAbort(lit(value.String("skip this event"))),
	}, local))
	prog := rill.MustCompile(block, rill.WithLocalEnv(local), rill.WithExternalEnv(external))

	_, err := prog.Resolve(expression.NewContext(event.New()))
	if !expression.IsAbort(err) {
		t.Fatalf("err = %v, want an abort", err)
	}
}

func TestProgramCache(t *testing.T) {
	c := rill.NewProgramCache()

	compiles := 0
	build := func() (*rill.Program, error) {
		compiles++
		tree, local, external := incrementProgram()
		return rill.Compile(tree, rill.WithLocalEnv(local), rill.WithExternalEnv(external))
	}

	first := must(c.GetOrCompile("x = 1; x + 1", build))
	second := must(c.GetOrCompile("x = 1; x + 1", build))

	if compiles != 1 {
		t.Errorf("compile ran %d times, want 1", compiles)
	}
	if first != second {
		t.Error("cache should hand back the same compiled program")
	}
}

// fixture is one data case of the YAML suite: event fields going in, the
// program result and event fields coming out.
type fixture struct {
	Name   string               `yaml:"name"`
	Event  map[string]yamlValue `yaml:"event"`
	Result yamlValue            `yaml:"result"`
	Output map[string]yamlValue `yaml:"output"`
	Error  bool                 `yaml:"error"`
}

type fixtureFile struct {
	Programs map[string][]fixture `yaml:"programs"`
}

// yamlValue adapts a YAML scalar to the runtime value model.
type yamlValue struct {
	v value.Value
}

func (y *yamlValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		y.v = value.Null()
	case bool:
		y.v = value.Boolean(t)
	case int:
		y.v = value.Integer(int64(t))
	case float64:
		y.v = value.Float(t)
	case string:
		y.v = value.String(t)
	}
	return nil
}

// fixturePrograms maps the program names used in testdata/programs.yaml to
// their trees. Each call builds fresh, since trees are single-owner.
var fixturePrograms = map[string]func() (expression.Expression, *state.LocalEnv, *state.ExternalEnv){
	"increment": incrementProgram,

	// .status_class derived from .status
	"status_class": func() (expression.Expression, *state.LocalEnv, *state.ExternalEnv) {
		local, external := state.NewLocalEnv(), state.NewExternalEnv()
		pred := must(expression.NewOp(expression.OpGe,
			expression.NewQuery([]string{"status"}), lit(value.Integer(500)), local, external))
		cond := must(expression.NewIf(pred,
			lit(value.String("server_error")), lit(value.String("ok")), local, external))
		set := expression.NewFieldAssignment([]string{"status_class"}, cond)
		block := must(expression.NewBlock([]expression.Expression{set}, local))
		return block, local, external
	},

	// .total = .price / .count
	"unit_price": func() (expression.Expression, *state.LocalEnv, *state.ExternalEnv) {
		local, external := state.NewLocalEnv(), state.NewExternalEnv()
		div := must(expression.NewOp(expression.OpDiv,
			expression.NewQuery([]string{"price"}),
			expression.NewQuery([]string{"count"}), local, external))
		set := expression.NewFieldAssignment([]string{"unit"}, div)
		block := must(expression.NewBlock([]expression.Expression{set}, local))
		return block, local, external
	},
}

func TestFixtures(t *testing.T) {
	raw, err := os.ReadFile("testdata/programs.yaml")
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		t.Fatalf("decoding fixtures: %v", err)
	}

	for progName, cases := range file.Programs {
		build, ok := fixturePrograms[progName]
		if !ok {
			t.Fatalf("fixture references unknown program %q", progName)
		}
		t.Run(progName, func(t *testing.T) {
			for _, tc := range cases {
				t.Run(tc.Name, func(t *testing.T) {
					tree, local, external := build()
					prog := rill.MustCompile(tree,
						rill.WithLocalEnv(local), rill.WithExternalEnv(external))

					ev := event.New()
					for k, v := range tc.Event {
						ev.Set([]string{k}, v.v)
					}

					got, err := prog.Resolve(expression.NewContext(ev))
					if tc.Error {
						if err == nil {
							t.Fatalf("expected an error, got %s", got)
						}
						return
					}
					if err != nil {
						t.Fatalf("Resolve: %v", err)
					}
					if !got.Equal(tc.Result.v) {
						t.Errorf("result = %s, want %s", got, tc.Result.v)
					}
					for k, v := range tc.Output {
						f, ok := ev.Get([]string{k})
						if !ok || !f.Equal(v.v) {
							t.Errorf("output field %q = %s, want %s", k, f, v.v)
						}
					}
				})
			}
		})
	}
}
