// PathOrder rewrites a CNC G-code program so that independent cut paths run
// in an order that shortens non-cutting travel, without changing what gets
// cut.
//
// Build:
//   go build -o pathorder ./cmd/pathorder
//
// Usage:
//   pathorder [flags] input.nc
//   pathorder -o out.nc -profile Grbl -pdf plan.pdf input.nc
//   cat input.nc | pathorder - > out.nc

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/piwi3910/PathOrder/internal/engine"
	"github.com/piwi3910/PathOrder/internal/export"
	"github.com/piwi3910/PathOrder/internal/gcode"
	"github.com/piwi3910/PathOrder/internal/metrics"
	"github.com/piwi3910/PathOrder/internal/model"
	"github.com/piwi3910/PathOrder/internal/project"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	output       string
	configPath   string
	profilesPath string
	profile      string
	tool         float64
	retract      float64
	maxSiblings  int
	noMarkers    bool
	pdfPath      string
	xlsxPath     string
	dxfPath      string
	metricsPath  string
	verbose      bool
	saveConfig   bool

	exportSettings string
	importSettings string
	importProfile  string

	set   map[string]bool // Flags given explicitly
	input string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("pathorder", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.output, "o", "", "output file (default stdout)")
	fs.StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&opts.profilesPath, "profiles", project.DefaultProfilesPath(), "custom output profiles file")
	fs.StringVar(&opts.profile, "profile", "", "output profile name")
	fs.Float64Var(&opts.tool, "tool", 0, "tool diameter in mm until the program declares one")
	fs.Float64Var(&opts.retract, "retract", 0, "retract height (default: highest Z in the program)")
	fs.IntVar(&opts.maxSiblings, "max-siblings", 0, "chain containers with more children than this in document order")
	fs.BoolVar(&opts.noMarkers, "no-markers", false, "do not emit closing comments for cut paths")
	fs.StringVar(&opts.pdfPath, "pdf", "", "write a plan PDF")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write the schedule as an Excel workbook")
	fs.StringVar(&opts.dxfPath, "dxf", "", "write the emitted toolpath as DXF")
	fs.StringVar(&opts.metricsPath, "metrics", "", "write run metrics in Prometheus text format")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.BoolVar(&opts.saveConfig, "save-config", false, "store the effective settings as the new defaults")
	fs.StringVar(&opts.exportSettings, "export-settings", "", "back up config and custom profiles to a file")
	fs.StringVar(&opts.importSettings, "import-settings", "", "restore config and custom profiles from a backup")
	fs.StringVar(&opts.importProfile, "import-profile", "", "add a shared output profile to the custom profiles")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pathorder [flags] input.nc")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	maintenance := opts.exportSettings != "" || opts.importSettings != "" || opts.importProfile != ""
	switch fs.NArg() {
	case 0:
		if !maintenance {
			fs.Usage()
			return nil, errors.New("missing input file")
		}
	case 1:
		opts.input = fs.Arg(0)
	default:
		fs.Usage()
		return nil, fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "pathorder: %v\n", err)
		return exitUsage
	}

	config, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pathorder: %v\n", err)
		return exitFailure
	}
	logger := newLogger(stderr, config.LogLevel, opts.verbose)

	custom, err := project.LoadCustomProfiles(opts.profilesPath)
	if err != nil {
		logger.Error("load_profiles_failed", slog.String("path", opts.profilesPath), slog.Any("error", err))
		return exitFailure
	}

	if err := maintain(opts, &config, &custom, logger); err != nil {
		logger.Error("settings_failed", slog.Any("error", err))
		return exitFailure
	}
	if opts.input == "" {
		return exitOK
	}

	settings := model.DefaultSettings()
	config.ApplyToSettings(&settings, custom)
	if err := applyFlags(opts, &settings, custom); err != nil {
		logger.Error("invalid_flags", slog.Any("error", err))
		return exitUsage
	}

	code := compile(ctx, opts, settings, stdin, stdout, logger)

	if opts.saveConfig && code == exitOK {
		config.DefaultProfile = settings.Profile.Name
		config.DefaultToolDiameter = settings.ToolDiameter
		config.RetractHeight = settings.RetractHeight
		config.MaxSiblings = settings.MaxSiblings
		config.ContainerMarkers = settings.ContainerMarkers
		if opts.input != "-" {
			config.AddRecentFile(opts.input)
		}
		if err := project.SaveAppConfig(opts.configPath, config); err != nil {
			logger.Error("save_config_failed", slog.String("path", opts.configPath), slog.Any("error", err))
			return exitFailure
		}
	}
	return code
}

// maintain handles the settings import and export flags.
func maintain(opts *options, config *model.AppConfig, custom *[]model.OutputProfile, logger *slog.Logger) error {
	if opts.importSettings != "" {
		backup, err := project.ImportAllData(opts.importSettings)
		if err != nil {
			return err
		}
		*config = backup.Config
		for _, p := range backup.Profiles {
			merged, err := project.MergeProfile(*custom, p)
			if err != nil {
				logger.Warn("profile_skipped", slog.String("profile", p.Name), slog.Any("error", err))
				continue
			}
			*custom = merged
		}
		if err := project.SaveAppConfig(opts.configPath, *config); err != nil {
			return err
		}
		if err := project.SaveCustomProfiles(opts.profilesPath, *custom); err != nil {
			return fmt.Errorf("failed to save profiles: %w", err)
		}
		logger.Info("settings_imported", slog.String("from", opts.importSettings), slog.String("created_at", backup.CreatedAt))
	}

	if opts.importProfile != "" {
		p, err := project.ImportProfile(opts.importProfile)
		if err != nil {
			return fmt.Errorf("failed to import profile: %w", err)
		}
		merged, err := project.MergeProfile(*custom, p)
		if err != nil {
			return err
		}
		*custom = merged
		if err := project.SaveCustomProfiles(opts.profilesPath, *custom); err != nil {
			return fmt.Errorf("failed to save profiles: %w", err)
		}
		logger.Info("profile_imported", slog.String("profile", p.Name))
	}

	if opts.exportSettings != "" {
		if err := project.ExportAllData(opts.exportSettings, *config, *custom); err != nil {
			return err
		}
		logger.Info("settings_exported", slog.String("to", opts.exportSettings))
	}
	return nil
}

// applyFlags overrides configured settings with explicitly given flags.
func applyFlags(opts *options, s *model.Settings, custom []model.OutputProfile) error {
	if opts.set["profile"] {
		p, ok := model.FindProfile(opts.profile, custom)
		if !ok {
			return fmt.Errorf("unknown profile %q (available: %v)", opts.profile, model.GetProfileNames(custom...))
		}
		s.Profile = p
	}
	if opts.set["tool"] {
		if opts.tool < 0 {
			return fmt.Errorf("tool diameter must not be negative, got %g", opts.tool)
		}
		s.ToolDiameter = opts.tool
	}
	if opts.set["retract"] {
		s.RetractHeight = model.Float(opts.retract)
	}
	if opts.set["max-siblings"] {
		s.MaxSiblings = opts.maxSiblings
	}
	if opts.noMarkers {
		s.ContainerMarkers = false
	}
	return nil
}

func compile(ctx context.Context, opts *options, settings model.Settings, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	var (
		doc     *model.Document
		readErr error
	)
	if opts.input == "-" {
		doc, readErr = gcode.ReadProgram(stdin)
	} else {
		doc, readErr = gcode.ReadFile(opts.input)
	}
	if readErr != nil {
		logger.Error("read_failed", slog.String("input", opts.input), slog.Any("error", readErr))
		doc = model.NewDocument()
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			logger.Error("create_output_failed", slog.String("output", opts.output), slog.Any("error", err))
			return exitFailure
		}
		defer f.Close()
		out = f
	}

	recorder := metrics.NewRecorder()
	start := time.Now()
	stats, plan, err := engine.New(settings).WithLogger(logger).Compile(ctx, doc, out)
	if err == nil {
		err = readErr
	}
	recorder.Observe(stats, time.Since(start), err)
	if opts.metricsPath != "" {
		if werr := recorder.WriteTextfile(opts.metricsPath); werr != nil {
			logger.Error("metrics_failed", slog.String("path", opts.metricsPath), slog.Any("error", werr))
		}
	}

	if err != nil {
		if !errors.Is(err, readErr) {
			logger.Error("compile_failed", slog.String("run_id", stats.RunID), slog.Any("error", err))
		}
		return exitFailure
	}

	if err := writeReports(opts, doc, plan, stats); err != nil {
		logger.Error("export_failed", slog.String("run_id", stats.RunID), slog.Any("error", err))
		return exitFailure
	}

	logger.Info("done",
		slog.String("run_id", stats.RunID),
		slog.Int("cut_paths", stats.CutPaths),
		slog.String("travel_saved", fmt.Sprintf("%.1fmm (%.1f%%)", stats.TravelSaved(), stats.TravelSavedPercent())),
	)
	return exitOK
}

func writeReports(opts *options, doc *model.Document, plan *engine.Plan, stats model.Stats) error {
	if opts.pdfPath != "" {
		if err := export.ExportPlanPDF(opts.pdfPath, doc, plan, stats); err != nil {
			return err
		}
	}
	if opts.xlsxPath != "" {
		if err := export.ExportScheduleXLSX(opts.xlsxPath, export.CollectUnits(doc, plan), stats); err != nil {
			return err
		}
	}
	if opts.dxfPath != "" {
		if err := export.ExportDXF(opts.dxfPath, doc, plan); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
