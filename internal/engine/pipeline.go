package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/piwi3910/PathOrder/internal/gcode"
	"github.com/piwi3910/PathOrder/internal/model"
)

// Compiler runs the full rewrite pipeline over a document.
type Compiler struct {
	Settings model.Settings
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a compiler with the given settings.
func New(settings model.Settings) *Compiler {
	return &Compiler{
		Settings: settings,
		logger:   slog.Default(),
		tracer:   otel.Tracer("pathorder/engine"),
	}
}

// WithLogger sets the logger used for pass diagnostics.
func (c *Compiler) WithLogger(logger *slog.Logger) *Compiler {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Compile interprets, restructures and reorders doc, writing the result to
// w. The document is consumed: its nodes end up emitted. The returned plan
// is nil only when scheduling never started.
func (c *Compiler) Compile(ctx context.Context, doc *model.Document, w io.Writer) (model.Stats, *Plan, error) {
	stats := model.NewStats()
	root := doc.Root()
	stats.LinesRead = len(doc.Node(root).Children)

	ctx, span := c.tracer.Start(ctx, "engine.Compiler.Compile",
		trace.WithAttributes(
			attribute.String("run_id", stats.RunID),
			attribute.Int("lines", stats.LinesRead),
		),
	)
	defer span.End()

	c.logger.Info("compile_start",
		slog.String("run_id", stats.RunID),
		slog.Int("lines", stats.LinesRead),
		slog.String("profile", c.Settings.Profile.Name),
	)

	interp := gcode.NewInterpreter(c.Settings.ToolDiameter)
	err := c.pass(ctx, "interpret", func() error {
		interp.Run(doc, root)
		stats.MovementsParsed = interp.Counters.Movements
		stats.SafeLifts = interp.Counters.SafeLifts
		stats.Barriers = interp.Counters.Barriers
		return nil
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	stats.RetractHeight = c.retractHeight(interp)
	err = c.pass(ctx, "resolve_safe_elevation", func() error {
		ResolveSafeElevation(doc, root, stats.RetractHeight)
		return nil
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	err = c.pass(ctx, "aggregate_bounds", func() error {
		AggregateBounds(doc, root)
		return nil
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	err = c.pass(ctx, "classify", func() error {
		Classify(doc, root, stats.RetractHeight)
		return nil
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	err = c.pass(ctx, "split_cuts", func() error {
		created, err := SplitCuts(doc, root)
		stats.CutPaths = created
		return err
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	err = c.pass(ctx, "aggregate_bounds", func() error {
		AggregateBounds(doc, root)
		return nil
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	err = c.pass(ctx, "build_dependencies", func() error {
		added, err := BuildDependencies(doc, root, c.Settings.MaxSiblings, c.logger)
		stats.Dependencies = added
		return err
	})
	if err != nil {
		return c.fail(span, stats, nil, err)
	}

	bw := bufio.NewWriter(w)
	emitter := gcode.NewEmitter(bw, c.Settings.Profile, c.Settings.ContainerMarkers)
	var plan *Plan
	err = c.pass(ctx, "schedule", func() error {
		var err error
		plan, err = Schedule(doc, emitter)
		if err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}
		return nil
	})
	if err != nil {
		var starved *StarvationError
		if errors.As(err, &starved) {
			c.logger.Error("scheduler_starved",
				slog.String("run_id", stats.RunID),
				slog.Int("stuck", len(starved.Stuck)),
			)
		}
		return c.fail(span, stats, plan, err)
	}

	violations := VerifyPlan(doc, plan)
	stats.VerifyViolations = len(violations)
	for _, msg := range FormatViolations(violations) {
		c.logger.Warn("plan_violation", slog.String("detail", msg))
	}

	travel := CompareTravel(doc, plan)
	stats.TravelBefore = travel.Before
	stats.TravelAfter = travel.After
	stats.FeedConnectors = travel.ConnectorsAfter
	if stats.FeedConnectors > 0 {
		c.logger.Warn("feed_connectors",
			slog.String("run_id", stats.RunID),
			slog.Int("count", stats.FeedConnectors),
		)
	}
	stats.TopLevelUnits = len(plan.TopLevel)
	stats.ReorderedUnits = plan.Reordered(doc)

	span.SetAttributes(
		attribute.Int("cut_paths", stats.CutPaths),
		attribute.Int("dependencies", stats.Dependencies),
		attribute.Float64("travel_saved", stats.TravelSaved()),
	)
	span.SetStatus(codes.Ok, "compiled")

	c.logger.Info("compile_done",
		slog.String("run_id", stats.RunID),
		slog.Int("movements", stats.MovementsParsed),
		slog.Int("cut_paths", stats.CutPaths),
		slog.Int("dependencies", stats.Dependencies),
		slog.Int("output_lines", emitter.Lines()),
		slog.Float64("travel_before", stats.TravelBefore),
		slog.Float64("travel_after", stats.TravelAfter),
	)
	return stats, plan, nil
}

// retractHeight returns the configured retract height, or the highest Z
// the program reaches when none is configured.
func (c *Compiler) retractHeight(interp *gcode.Interpreter) float64 {
	if c.Settings.RetractHeight != nil {
		return *c.Settings.RetractHeight
	}
	if h, ok := interp.RetractHeight(); ok {
		return h
	}
	return 0
}

// pass runs one pipeline stage in its own span.
func (c *Compiler) pass(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("compile cancelled before %s: %w", name, err)
	}
	_, span := c.tracer.Start(ctx, "engine.pass."+name)
	defer span.End()

	start := time.Now()
	err := fn()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
	} else {
		span.SetStatus(codes.Ok, name)
	}
	c.logger.Debug("pass_done",
		slog.String("pass", name),
		slog.Duration("duration", time.Since(start)),
	)
	return err
}

func (c *Compiler) fail(span trace.Span, stats model.Stats, plan *Plan, err error) (model.Stats, *Plan, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "compile failed")
	return stats, plan, err
}
