// Package main provides the CLI entrypoint for notedrill.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/notedrill/internal/config"
	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/logging"
	"github.com/verte-zerg/notedrill/internal/midiio"
	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/notes"
	"github.com/verte-zerg/notedrill/internal/stats"
	"github.com/verte-zerg/notedrill/internal/statsui"
	"github.com/verte-zerg/notedrill/internal/store"
	"github.com/verte-zerg/notedrill/internal/tui"
)

const (
	defaultScale        = "C4,D4,E4,F4,G4,A4,B4"
	defaultNoteDuration = time.Second
	defaultVelocity     = 127
	defaultCurveWindow  = 5
)

var (
	drillScale        string
	drillWindow       int
	drillDampening    float64
	drillWeightFloor  float64
	drillReportEvery  int
	drillSeed         int64
	drillShowNote     bool
	drillNoteDuration time.Duration
	drillPlain        bool
	midiIn            string
	midiOut           string
	midiChannel       int
	midiVelocity      int

	verbose bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notedrill",
		Short:         "Adaptive pitch recognition drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDrillCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	rootCmd.Flags().StringVar(&drillScale, "scale", defaultScale, "comma-separated notes to drill")
	rootCmd.Flags().IntVar(&drillWindow, "window", drill.DefaultWindowSize, "attempts in the rolling accuracy window")
	rootCmd.Flags().Float64Var(&drillDampening, "dampening", drill.DefaultDampening, "weight multiplier for the previous note, in (0, 1)")
	rootCmd.Flags().Float64Var(&drillWeightFloor, "weight-floor", drill.DefaultWeightFloor, "minimum note weight (0-1]")
	rootCmd.Flags().IntVar(&drillReportEvery, "report-every", drill.DefaultReportEvery, "attempts between accuracy reports")
	rootCmd.Flags().Int64Var(&drillSeed, "seed", 0, "random seed (0 uses the clock)")
	rootCmd.Flags().BoolVar(&drillShowNote, "show-note", false, "show the target name even when it is played")
	rootCmd.Flags().DurationVar(&drillNoteDuration, "note-duration", defaultNoteDuration, "how long targets are held on the MIDI output")
	rootCmd.Flags().BoolVar(&drillPlain, "plain", false, "line-based console mode instead of the TUI")
	rootCmd.Flags().StringVar(&midiIn, "in", "", "MIDI input port (number or name); empty answers from the keyboard")
	rootCmd.Flags().StringVar(&midiOut, "out", "", "MIDI output port (number or name); empty shows targets only")
	rootCmd.Flags().IntVar(&midiChannel, "channel", 0, "MIDI output channel (0-15)")
	rootCmd.Flags().IntVar(&midiVelocity, "velocity", defaultVelocity, "MIDI output velocity (1-127)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	params, err := buildParams(cfg)
	if err != nil {
		return err
	}
	if !cfg.Plain && !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.Plain = true
	}

	logger, err := logging.New(config.DefaultLogPath(), verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush; syncing a file logger rarely fails.
		_ = logger.Sync()
	}()
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("run starting",
		zap.String("scale", params.Scale.String()),
		zap.Int64("seed", seed),
		zap.Bool("plain", cfg.Plain),
		zap.String("midi_in", cfg.MIDIIn),
		zap.String("midi_out", cfg.MIDIOut))
	selector := drill.NewSelector(params, rand.New(rand.NewSource(seed)))

	var player *midiio.Player
	if cfg.MIDIIn != "" || cfg.MIDIOut != "" {
		defer midiio.Close()
	}
	if cfg.MIDIOut != "" {
		player, err = midiio.OpenPlayer(cfg.MIDIOut, midiio.PlayerConfig{
			Channel:  uint8(cfg.MIDIChannel),
			Velocity: uint8(cfg.MIDIVelocity),
			Duration: cfg.NoteDuration,
		})
		if err != nil {
			return fmt.Errorf("failed to open MIDI output: %w", err)
		}
	}

	rec := newRecorder(runID, params.Scale, inputName(cfg), time.Now())
	if cfg.Plain {
		err = runPlain(cmd.Context(), cfg, params, selector, player, rec, logger)
	} else {
		err = runTUI(cfg, params, selector, player, rec, logger)
	}
	if err != nil {
		return err
	}
	return archiveRun(rec, logger)
}

func runTUI(cfg model.Config, params drill.Params, selector *drill.Selector, player *midiio.Player, rec *recorder, logger *zap.Logger) error {
	opts := tui.Options{
		ShowNote:    cfg.ShowNote,
		AwaitDevice: cfg.MIDIIn != "",
		Logger:      logger,
	}
	if player != nil {
		opts.Player = player
	}
	m := tui.NewModel(params, selector, opts, drill.WithObserver(rec.observe))
	program := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.MIDIIn != "" {
		listener, err := midiio.Listen(cfg.MIDIIn, func(ev drill.Event) {
			program.Send(tui.MIDIMsg{Event: ev})
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to open MIDI input: %w", err)
		}
		defer listener.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func archiveRun(rec *recorder, logger *zap.Logger) error {
	run, attempts := rec.finish(time.Now())
	if len(attempts) == 0 {
		logger.Info("run ended without attempts")
		return nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(context.Background(), run, attempts)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run archived",
		zap.Int64("row_id", id),
		zap.Int("correct", run.Correct),
		zap.Int("incorrect", run.Incorrect))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List MIDI input and output ports",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	defer midiio.Close()
	ins, outs := midiio.Ports()
	return writeDevices(cmd.OutOrStdout(), ins, outs)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archived drill stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window in runs")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return writeReport(cmd.OutOrStdout(), report, cfg.CurveWindow)
	}

	program := tea.NewProgram(statsui.NewModel(statsui.StoreLoader(st), cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyConfig(cmd, "scale", &drillScale, fileCfg.Drill.Scale)
	applyConfig(cmd, "window", &drillWindow, fileCfg.Drill.Window)
	applyConfig(cmd, "dampening", &drillDampening, fileCfg.Drill.Dampening)
	applyConfig(cmd, "weight-floor", &drillWeightFloor, fileCfg.Drill.WeightFloor)
	applyConfig(cmd, "report-every", &drillReportEvery, fileCfg.Drill.ReportEvery)
	applyConfig(cmd, "seed", &drillSeed, fileCfg.Drill.Seed)
	applyConfig(cmd, "show-note", &drillShowNote, fileCfg.Drill.ShowNote)
	applyConfig(cmd, "in", &midiIn, fileCfg.MIDI.In)
	applyConfig(cmd, "out", &midiOut, fileCfg.MIDI.Out)
	applyConfig(cmd, "channel", &midiChannel, fileCfg.MIDI.Channel)
	applyConfig(cmd, "velocity", &midiVelocity, fileCfg.MIDI.Velocity)
	if fileCfg.Drill.NoteDuration != nil && !cmd.Flags().Changed("note-duration") {
		d, err := time.ParseDuration(*fileCfg.Drill.NoteDuration)
		if err != nil {
			return model.Config{}, fmt.Errorf("invalid note-duration in config: %w", err)
		}
		drillNoteDuration = d
	}

	return model.Config{
		Scale:        drillScale,
		Window:       drillWindow,
		Dampening:    drillDampening,
		WeightFloor:  drillWeightFloor,
		ReportEvery:  drillReportEvery,
		Seed:         drillSeed,
		ShowNote:     drillShowNote,
		NoteDuration: drillNoteDuration,
		Plain:        drillPlain,
		MIDIIn:       strings.TrimSpace(midiIn),
		MIDIOut:      strings.TrimSpace(midiOut),
		MIDIChannel:  midiChannel,
		MIDIVelocity: midiVelocity,
	}, nil
}

// applyConfig copies a config file value unless the flag was set explicitly.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.Scale) == "" {
		return fmt.Errorf("--scale must not be empty")
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if cfg.Dampening <= 0 || cfg.Dampening >= 1 {
		return fmt.Errorf("--dampening must be in (0, 1)")
	}
	if cfg.WeightFloor <= 0 || cfg.WeightFloor > 1 {
		return fmt.Errorf("--weight-floor must be in (0, 1]")
	}
	if cfg.ReportEvery <= 0 {
		return fmt.Errorf("--report-every must be > 0")
	}
	if cfg.NoteDuration <= 0 {
		return fmt.Errorf("--note-duration must be > 0")
	}
	if cfg.MIDIChannel < 0 || cfg.MIDIChannel > 15 {
		return fmt.Errorf("--channel must be between 0 and 15")
	}
	if cfg.MIDIVelocity < 1 || cfg.MIDIVelocity > 127 {
		return fmt.Errorf("--velocity must be between 1 and 127")
	}
	return nil
}

func buildParams(cfg model.Config) (drill.Params, error) {
	scale, err := notes.ParseScale(cfg.Scale)
	if err != nil {
		return drill.Params{}, fmt.Errorf("invalid --scale: %w", err)
	}
	params := drill.Params{
		Scale:       scale,
		WindowSize:  cfg.Window,
		Dampening:   cfg.Dampening,
		WeightFloor: cfg.WeightFloor,
		ReportEvery: cfg.ReportEvery,
	}
	if err := params.Validate(); err != nil {
		return drill.Params{}, err
	}
	return params, nil
}

func inputName(cfg model.Config) string {
	if cfg.MIDIIn != "" {
		return "midi"
	}
	return "keyboard"
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# notedrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[drill]
# scale = %q   # Notes to drill, in order
# window = %d                # Attempts in the rolling accuracy window
# dampening = %.1f            # Weight multiplier for the previous note
# weight-floor = %.1f         # Minimum weight of any note
# report-every = %d          # Attempts between accuracy reports
# seed = 0                   # Random seed (0 uses the clock)
# show-note = false          # Show target names even when they are played
# note-duration = %q        # How long targets are held

[midi]
# in = ""                    # Input port number or name (empty: keyboard)
# out = ""                   # Output port number or name (empty: no sound)
# channel = 0                # Output channel (0-15)
# velocity = %d             # Output velocity (1-127)
`,
		defaultScale,
		drill.DefaultWindowSize,
		drill.DefaultDampening,
		drill.DefaultWeightFloor,
		drill.DefaultReportEvery,
		defaultNoteDuration.String(),
		defaultVelocity,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
