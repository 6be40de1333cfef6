package compiler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/animator"
	"github.com/specialistvlad/reactbake/internal/collect"
	"github.com/specialistvlad/reactbake/internal/condition"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/fold"
	"github.com/specialistvlad/reactbake/internal/meshdelete"
	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
	"github.com/specialistvlad/reactbake/internal/solver"
	"github.com/specialistvlad/reactbake/internal/syncgraph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the compiler's spans.
const TracerName = "github.com/specialistvlad/reactbake/internal/compiler"

// Ledger is what the compiler needs from the animation ledgers.
type Ledger interface {
	fold.Animated
	animator.Sink
	animator.Remapper
}

// Options configures a Compiler.
type Options struct {
	// MaxRelaxation bounds the initial state solver; zero selects
	// solver.DefaultMaxIterations.
	MaxRelaxation int
	// Workers is the number of renderers whose meshes are cloned
	// concurrently; zero selects meshdelete.DefaultWorkers.
	Workers int
	// Tracer overrides the tracer taken from the global provider.
	Tracer trace.Tracer
}

// Compiler compiles scenes. It is safe to reuse; every Compile call is a
// fresh run.
type Compiler struct {
	opts       Options
	tracer     trace.Tracer
	generation atomic.Uint64
}

// New returns a compiler.
func New(opts Options) *Compiler {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &Compiler{opts: opts, tracer: tracer}
}

// Generation returns the number of the most recent run.
func (c *Compiler) Generation() uint64 {
	return c.generation.Load()
}

// Invalidate bumps the generation without compiling, marking every earlier
// result as stale. Watch mode calls it when scene files change.
func (c *Compiler) Invalidate() uint64 {
	return c.generation.Add(1)
}

// run is the state of one compilation.
type run struct {
	*Compiler
	generation uint64
	scene      *scene.Scene
	ledger     Ledger
	resolver   *condition.Resolver
	diags      hcl.Diagnostics
}

// Compile runs the pipeline over s. Non-fatal problems are reported in
// Result.Diagnostics; a returned error means the build must stop.
func (c *Compiler) Compile(ctx context.Context, s *scene.Scene, ledger Ledger) (*Result, error) {
	gen := c.generation.Add(1)
	ctx = ctxlog.With(ctx, "generation", gen, "avatar", s.Name)
	logger := ctxlog.FromContext(ctx)

	ctx, span := c.tracer.Start(ctx, "compile", trace.WithAttributes(
		attribute.Int64("reactbake.generation", int64(gen)),
		attribute.String("reactbake.avatar", s.Name),
	))
	defer span.End()

	r := &run{
		Compiler:   c,
		generation: gen,
		scene:      s,
		ledger:     ledger,
		resolver:   condition.NewResolver(s, logger),
	}
	res, err := r.compile(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("reactbake.layers", len(res.Layers)),
		attribute.Int("reactbake.baked", len(res.Baked)),
		attribute.Int("reactbake.warnings", len(res.Diagnostics)),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("Compilation finished.",
		"layers", len(res.Layers),
		"baked", len(res.Baked),
		"meshes", len(res.Meshes),
		"parameters", len(res.Parameters),
		"rounds", res.Rounds,
		"warnings", len(res.Diagnostics),
	)
	return res, nil
}

// stage runs fn inside a span named after the stage. Stages report problems
// as diagnostics in r.diags; a stage that can fail marks its own span.
func (r *run) stage(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, span := r.tracer.Start(ctx, name)
	defer span.End()
	fn(ctxlog.With(ctx, "stage", name))
}

func (r *run) compile(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	res := &Result{Generation: r.generation}

	// The scene is mutated by mesh deletion and baking, so a build that cannot
	// publish its layers must stop before touching it.
	if _, err := animator.CheckContainer(r.ledger); err != nil {
		return nil, err
	}

	var buckets *model.Buckets
	r.stage(ctx, "collect", func(ctx context.Context) {
		var d hcl.Diagnostics
		buckets, d = collect.Collect(ctx, r.scene, r.resolver)
		r.diags = append(r.diags, d...)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("reactbake.buckets", buckets.Len()))
	})

	graph, err := syncgraph.Build(r.scene)
	if err != nil {
		return nil, fmt.Errorf("building sync graph: %w", err)
	}
	propagator := syncgraph.NewPropagator(graph, r.scene, r.scene)
	slv := solver.New(r.opts.MaxRelaxation)

	// Every productive round after the first removes a toggle bucket, so the
	// number of toggle buckets bounds the loop.
	limit := toggleCount(buckets) + 1
	for {
		res.Rounds++
		var stats fold.Stats
		r.stage(ctx, "fold", func(ctx context.Context) {
			stats = fold.Fold(ctx, buckets, r.ledger)
		})
		if res.Rounds > 1 && !stats.Changed() {
			break
		}
		if res.Rounds > limit {
			logger.Warn("Fold rounds exhausted.", "rounds", res.Rounds)
			break
		}
		// Only the settled initials matter here. Non-convergence is reported
		// once, by the final solve below.
		r.stage(ctx, "solve", func(ctx context.Context) {
			slv.Solve(ctx, buckets, r.scene.Root())
		})
		r.stage(ctx, "propagate", func(ctx context.Context) {
			_, d := propagator.Propagate(ctx, buckets)
			r.diags = append(r.diags, d...)
		})
	}

	var sol solver.Solution
	r.stage(ctx, "solve", func(ctx context.Context) {
		var d hcl.Diagnostics
		sol, d = slv.Solve(ctx, buckets, r.scene.Root())
		r.diags = append(r.diags, d...)
	})

	r.stage(ctx, "meshdelete", func(ctx context.Context) {
		var d hcl.Diagnostics
		res.Meshes, d = meshdelete.New(r.scene, r.scene, r.opts.Workers).Execute(ctx, buckets, graph, r.ledger)
		r.diags = append(r.diags, d...)
	})

	res.Baked = r.bake(ctx, buckets)

	for _, b := range buckets.All() {
		res.Defaults = append(res.Defaults, Assignment{Target: b.Target, Value: sol.Defaults[b.Target]})
	}
	res.Parameters = r.parameters(buckets, sol.Table)

	r.stage(ctx, "synthesize", func(ctx context.Context) {
		res.Layers, err = animator.Synthesize(ctx, buckets, r.ledger, r.ledger)
		if err != nil {
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizing layers: %w", err)
	}

	res.Diagnostics = r.diags
	return res, nil
}

func toggleCount(buckets *model.Buckets) int {
	n := 0
	for _, t := range buckets.Targets() {
		if t.IsActive() {
			n++
		}
	}
	return n
}
