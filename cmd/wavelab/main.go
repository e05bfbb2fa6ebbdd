package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/wavelab/internal/config"
)

var (
	dataDir string
	verbose bool
	// Run configuration
	configFile  string
	preset      string
	coordSystem string
	nx, ny      int
	dx, dy      float64
	waveSpeed   float64
	steps       int
	boundaryBC  string
	method      string
	pulseWidth  float64
	courant     float64
	frameEvery  int
	validate    bool
	probe       []int
	// Outputs
	gifPath   string
	outPath   string
	svgPath   string
	threshold float64
	// Bench
	benchSteps int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. With no subcommand it opens the
// interactive preset picker.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "wavelab",
		Short:        "2D wave equation lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wavelab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [coord_system]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&gifPath, "gif", "", "write an animated gif of the captured frames")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the final field and probe series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and arrival analysis of the probe series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 0.1, "arrival amplitude threshold")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the final field and probe series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportJSONCmd.Flags().StringVar(&svgPath, "svg", "", "also render the final field as SVG")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the probe series as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [coord_system]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [coord_system]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark both Laplacian methods on periodic grids",
		Args:  cobra.NoArgs,
		RunE:  benchMethods,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per case")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare fdm and fft on the same periodic grid",
		Args:  cobra.NoArgs,
		RunE:  compareMethods,
	}
	addConfigFlags(compareCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd, exportCSVCmd, presetsCmd, liveCmd, benchCmd, compareCmd)
	return rootCmd
}

// addConfigFlags registers one flag per config field. Only flags the user
// sets override the preset or config file.
func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&coordSystem, "system", d.CoordSystem, "coordinate system (cartesian, cylindrical, spherical_radial)")
	f.IntVar(&nx, "nx", d.NX, "points along axis 0 (radius for radial grids)")
	f.IntVar(&ny, "ny", d.NY, "points along axis 1 (angle for cylindrical grids)")
	f.Float64Var(&dx, "dx", d.DX, "spacing along axis 0")
	f.Float64Var(&dy, "dy", d.DY, "spacing along axis 1 (0 closes the circle on cylindrical grids)")
	f.Float64VarP(&waveSpeed, "speed", "c", d.WaveSpeed, "wave speed")
	f.IntVar(&steps, "steps", d.Steps, "number of time steps")
	f.StringVar(&boundaryBC, "boundary", d.Boundary, "boundary policy (dirichlet, neumann, periodic)")
	f.StringVar(&method, "method", d.Method, "laplacian method (fdm, fft)")
	f.Float64Var(&pulseWidth, "sigma", d.PulseWidth, "initial pulse width")
	f.Float64Var(&courant, "courant", 0, "courant number (0 selects the default)")
	f.IntVar(&frameEvery, "frame-every", d.FrameEvery, "frame capture cadence in steps")
	f.BoolVar(&validate, "validate", d.Validate, "stop on non-finite values")
	f.IntSliceVar(&probe, "probe", nil, "probe index i,j (default midpoint)")
}
