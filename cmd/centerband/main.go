package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/centerband/internal/config"
	"github.com/ensigniasec/centerband/internal/index"
	"github.com/ensigniasec/centerband/internal/membership"
	"github.com/ensigniasec/centerband/internal/trace"
	"github.com/ensigniasec/centerband/internal/tui"
	"github.com/ensigniasec/centerband/internal/viewport"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	profilePath string
	verbose     bool
	jsonOutput  bool

	itemHeight  float64
	columns     int
	centerStart float64
	centerEnd   float64
	lowerBound  float64
	upperBound  float64
	rateLimitMs float64

	evalOffset float64
	indexFlags []int
	traceDir   string
	forceInit  bool

	rootCmd = &cobra.Command{
		Use:   "centerband",
		Short: "Decide which items of a scrolling list or grid sit in the viewport's center band.",
		Long:  `centerband evaluates center band membership for list and grid items from a scroll offset and a layout profile. It can replay recorded scroll sessions through the rate-limited viewport channel and show the result live in an interactive grid.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else if jsonOutput {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&profilePath, "config", "", "Profile file (YAML or JSON). Defaults to "+config.DefaultPath+" when present")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	pf.BoolVar(&jsonOutput, "json", false, "Output results in JSON format instead of rich text")
	pf.Float64Var(&itemHeight, "item-height", 0, "Override: pixel height of one row")
	pf.IntVar(&columns, "columns", 0, "Override: columns per row")
	pf.Float64Var(&centerStart, "center-start", 0, "Override: top of the center band")
	pf.Float64Var(&centerEnd, "center-end", 0, "Override: bottom of the center band")
	pf.Float64Var(&lowerBound, "lower-bound", 0, "Override: first probe offset from the item top")
	pf.Float64Var(&upperBound, "upper-bound", 0, "Override: second probe offset from the item top")
	pf.Float64Var(&rateLimitMs, "rate-limit-ms", 0, "Override: throttle window for offset updates (0 disables)")

	evalCmd.Flags().Float64Var(&evalOffset, "offset", 0, "Scroll offset to evaluate")
	evalCmd.Flags().IntSliceVarP(&indexFlags, "index", "i", nil, "Item indices to evaluate (defaults to the profile's watch list)")
	simulateCmd.Flags().IntSliceVarP(&indexFlags, "index", "i", nil, "Item indices to observe (defaults to the trace's, then the profile's watch list)")
	simulateCmd.Flags().StringVar(&traceDir, "dir", "", "Replay every trace file found under this directory")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing profile")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// loadProfile resolves the profile file and applies any geometry flags that were set.
func loadProfile(cmd *cobra.Command) config.Profile {
	p, err := config.LoadOrDefault(profilePath)
	if err != nil {
		logrus.Fatalf("Unable to load profile: %v", err)
	}
	flags := cmd.Flags()
	if flags.Changed("item-height") {
		p.Viewport.ListItemHeight = itemHeight
	}
	if flags.Changed("columns") {
		p.Viewport.ColumnsPerRow = viewport.Int(columns)
	}
	if flags.Changed("center-start") {
		p.Viewport.CenterYStart = centerStart
	}
	if flags.Changed("center-end") {
		p.Viewport.CenterYEnd = centerEnd
	}
	if flags.Changed("lower-bound") {
		p.Viewport.ListItemLowerBound = viewport.Float(lowerBound)
	}
	if flags.Changed("upper-bound") {
		p.Viewport.ListItemUpperBound = viewport.Float(upperBound)
	}
	if flags.Changed("rate-limit-ms") {
		p.Viewport.UpdateRateLimitMs = viewport.Float(rateLimitMs)
	}
	if err := p.Validate(); err != nil {
		logrus.Fatal(err)
	}
	return p
}

// checkIndices validates the --index values.
func checkIndices(indices []int) []int {
	for _, i := range indices {
		if _, err := index.New(i); err != nil {
			logrus.Fatal(err)
		}
	}
	return indices
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate center band membership at one scroll offset",
	Long:  "Evaluate center band membership for item indices at a single scroll offset, printing the probe geometry for each item.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := loadProfile(cmd)
		indices := checkIndices(indexFlags)
		if len(indices) == 0 {
			indices = p.Watch
		}

		ch, err := viewport.New(p.Viewport)
		if err != nil {
			logrus.Fatal(err)
		}
		defer ch.Destroy()
		ch.SetOffsetY(evalOffset)
		state := ch.Current()
		results := membership.Evaluate(state, indices)

		if jsonOutput {
			printJSON(os.Stdout, struct {
				State   viewport.State      `json:"state"`
				Results []membership.Result `json:"results"`
			}{State: state, Results: results})
			return
		}
		printEval(os.Stdout, state, results)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var simulateCmd = &cobra.Command{
	Use:   "simulate [TRACE_FILE...]",
	Short: "Replay recorded scroll sessions through the viewport channel",
	Long:  "Replay one or more scroll traces (YAML or JSON) in virtual time, applying the profile's rate limit, and print every membership notification.",
	Run: func(cmd *cobra.Command, args []string) {
		p := loadProfile(cmd)
		indices := checkIndices(indexFlags)

		paths := args
		if traceDir != "" {
			found, err := trace.Discover(cmd.Context(), traceDir)
			if err != nil {
				logrus.Fatalf("Unable to walk %s: %v", traceDir, err)
			}
			paths = append(paths, found...)
		}
		if len(paths) == 0 {
			logrus.Fatal("No trace files given; pass TRACE_FILE arguments or --dir")
		}

		reports := make([]*trace.Report, 0, len(paths))
		for _, path := range paths {
			tr, err := trace.Load(path)
			if err != nil {
				logrus.Fatal(err)
			}
			watch := indices
			if len(watch) == 0 && len(tr.Watch) == 0 {
				watch = p.Watch
			}
			report, err := trace.Replay(tr, p.Viewport, watch)
			if err != nil {
				logrus.Fatalf("Replay of %s failed: %v", path, err)
			}
			reports = append(reports, report)
		}

		if jsonOutput {
			printJSON(os.Stdout, reports)
			return
		}
		for _, r := range reports {
			printReport(os.Stdout, r)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Scroll an interactive grid and watch center band membership live",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			logrus.Fatal("Cannot use --json with the tui command")
		}
		p := loadProfile(cmd)
		if !verbose {
			logrus.SetLevel(logrus.WarnLevel)
		}
		if err := tui.Run(cmd.Context(), p); err != nil {
			logrus.Fatalf("TUI mode failed: %v", err)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage layout profiles",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write the built-in profile to a file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := config.DefaultPath
		if len(args) == 1 {
			path = args[0]
		}
		expanded, err := config.ExpandTilde(path)
		if err != nil {
			logrus.Fatal(err)
		}
		if _, err := os.Stat(expanded); err == nil && !forceInit {
			logrus.Fatalf("Profile %s already exists; use --force to overwrite", expanded)
		}
		if err := config.Save(expanded, config.Default()); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Profile written to %s\n", expanded)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved profile and layout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := loadProfile(cmd)
		layout, err := viewport.Resolve(p.Viewport)
		if err != nil {
			logrus.Fatal(err)
		}
		out := struct {
			Profile config.Profile  `json:"profile" yaml:"profile"`
			Layout  viewport.Layout `json:"layout" yaml:"layout"`
		}{Profile: p, Layout: layout}
		if jsonOutput {
			printJSON(os.Stdout, out)
			return
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			logrus.Fatal(err)
		}
	},
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logrus.Fatal(err)
	}
}

func printEval(w io.Writer, state viewport.State, results []membership.Result) {
	fmt.Fprintf(w, "offset %g • band [%g, %g] • item height %g • columns %d • probes +%g/+%g\n",
		state.OffsetY, state.CenterYStart, state.CenterYEnd, state.ListItemHeight,
		state.ColumnsPerRow, state.ListItemLowerBound, state.ListItemUpperBound)
	for _, r := range results {
		fmt.Fprintf(w, "  index %-5d row %-5g top %-8g probes %g..%g  %s\n",
			r.Index, r.Row, r.OffsetTop, r.LowerY, r.UpperY, verdict(r.InCenter))
	}
}

func printReport(w io.Writer, r *trace.Report) {
	fmt.Fprintf(w, "== %s (rate limit %s)\n", r.Name, r.Layout.RateLimit())
	for _, n := range r.Notifications {
		tag := ""
		if n.Initial {
			tag = " (initial)"
		}
		fmt.Fprintf(w, "  t=%-8g offset=%-8g index=%-5d %s%s\n", n.AtMs, n.OffsetY, n.Index, verdict(n.InCenter), tag)
	}
	fmt.Fprintf(w, "  requested=%d applied=%d coalesced=%d delivered=%d\n",
		r.Stats.Requested, r.Stats.Applied, r.Stats.Coalesced, r.Stats.Delivered)
}

func verdict(in bool) string {
	if in {
		return "IN CENTER"
	}
	return "outside"
}

func main() {
	Execute()
}
