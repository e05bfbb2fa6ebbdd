package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavelab/internal/analysis"
	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/config"
	"github.com/san-kum/wavelab/internal/export"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/metrics"
	"github.com/san-kum/wavelab/internal/storage"
	"github.com/san-kum/wavelab/internal/viz"
	"github.com/san-kum/wavelab/internal/wave"
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D7D7"))

// buildConfig layers defaults, then a preset or config file, then any flag
// the user set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	if preset != "" && configFile != "" {
		return nil, errors.New("use either --preset or --config, not both")
	}

	system := coordSystem
	if len(args) > 0 {
		system = args[0]
	}
	sys, err := grid.ParseCoordSystem(system)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	switch {
	case preset != "":
		cfg = config.GetPreset(sys.String(), preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(sys.String()))
		}
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if len(args) > 0 || flags.Changed("system") {
		if cfg.CoordSystem != sys.String() && sys == grid.Cylindrical && !flags.Changed("dy") {
			cfg.DY = 0
		}
		cfg.CoordSystem = sys.String()
	}
	if flags.Changed("nx") {
		cfg.NX = nx
	}
	if flags.Changed("ny") {
		cfg.NY = ny
	}
	if flags.Changed("dx") {
		cfg.DX = dx
	}
	if flags.Changed("dy") {
		cfg.DY = dy
	}
	if flags.Changed("speed") {
		cfg.WaveSpeed = waveSpeed
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("boundary") {
		cfg.Boundary = boundaryBC
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("sigma") {
		cfg.PulseWidth = pulseWidth
	}
	if flags.Changed("courant") {
		cfg.Courant = courant
	}
	if flags.Changed("frame-every") {
		cfg.FrameEvery = frameEvery
	}
	if flags.Changed("validate") {
		cfg.Validate = validate
	}
	if flags.Changed("probe") {
		cfg.Probe = probe
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	wc, err := cfg.Wave()
	if err != nil {
		return err
	}
	g, err := grid.Build(wc.System, wc.Resolution, wc.Spacing)
	if err != nil {
		return err
	}
	pi, pj, err := cfg.ProbeIndex(g)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	pr := analysis.NewProbe(pi, pj)
	opts := []wave.Option{wave.WithMetric(pr)}
	for _, m := range metrics.Standard(wc.WaveSpeed) {
		opts = append(opts, wave.WithMetric(m))
	}

	var gw *export.GIFWriter
	if gifPath != "" {
		if wc.FrameEvery == 0 {
			return errors.New("--gif needs frame_every > 0")
		}
		gw = export.NewGIFWriter(gifPath, g)
		opts = append(opts, wave.WithFrameSink(gw))
	}

	it, err := wave.New(wc, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s simulation (%s, %s, %s)...\n", g, wc.Method, wc.Boundary, it.Operator())
	start := time.Now()

	result, err := it.Run()
	if err != nil {
		var se *wave.StepError
		if errors.As(err, &se) {
			slog.Error("simulation stopped", "step", se.Step, "t", se.Time, "err", se.Wrapped)
		}
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result, pr)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "dt: %.6g\n", result.Dt)
	fmt.Fprintf(out, "steps: %d (t = %.4f)\n", result.StepsTaken, result.Time)
	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}

	if gw != nil {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("write gif: %w", err)
		}
		fmt.Fprintf(out, "\ngif: %s (%d frames)\n", gifPath, gw.Len())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tGRID\tBC\tMETHOD\tSTEPS\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%.4g\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			resolution(run.Resolution),
			run.Boundary,
			run.Method,
			run.StepsTaken,
			run.Dt,
		)
	}
	return w.Flush()
}

func resolution(r []int) string {
	s := ""
	for i, n := range r {
		if i > 0 {
			s += "x"
		}
		s += strconv.Itoa(n)
	}
	return s
}

// loadRun reads a run's metadata, rebuilt grid and final field.
func loadRun(st *storage.Store, runID string) (*storage.RunMetadata, *grid.Grid, *field.Field, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	sys, err := grid.ParseCoordSystem(meta.System)
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := grid.Build(sys, meta.Resolution, meta.Spacing)
	if err != nil {
		return nil, nil, nil, err
	}
	u, err := st.LoadField(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := g.CheckField(u); err != nil {
		return nil, nil, nil, err
	}
	return meta, g, u, nil
}

// centreLine is u along axis 0 through the middle of axis 1.
func centreLine(u *field.Field) []float64 {
	line := make([]float64, u.Rows)
	for i := range line {
		line[i] = u.At(i, u.Cols/2)
	}
	return line
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, g, u, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	_, values, err := st.LoadProbe(meta.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, heading.Render("run: "+meta.ID))
	fmt.Fprintf(out, "grid: %s\n", g)
	fmt.Fprintf(out, "t: %.4f (%d steps)\n\n", meta.Time, meta.StepsTaken)

	r := viz.Project(g, u, 64, 32)
	fmt.Fprintln(out, viz.ASCIIHeatmap(r, r.Scale()))

	fmt.Fprintln(out, asciigraph.Plot(centreLine(u),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("final field along axis 0"),
	))
	fmt.Fprintln(out)

	if len(values) > 0 {
		fmt.Fprintln(out, asciigraph.Plot(values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("probe u%v vs step", meta.Probe)),
		))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, values, err := st.LoadProbe(meta.ID)
	if err != nil {
		return err
	}
	if len(values) < 4 {
		return fmt.Errorf("run %s has no probe series", meta.ID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, heading.Render("frequency analysis: "+meta.ID))
	fmt.Fprintf(out, "probe: %v, samples: %d, dt: %.4g\n\n", meta.Probe, len(values), meta.Dt)

	n := 1
	for n < len(values) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, analysis.RemoveMean(values))
	ps := analysis.PowerSpectrum(padded)
	plotData := ps[:max(len(ps)/4, 2)]
	fmt.Fprintln(out, asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (probe)"),
	))
	fmt.Fprintln(out)

	if freq, ok := analysis.DominantFrequency(values, meta.Dt); ok {
		fmt.Fprintf(out, "dominant frequency: %.4f\n", freq)
		fmt.Fprintf(out, "period: %.4f\n", 1/freq)
	} else {
		fmt.Fprintln(out, "dominant frequency: none")
	}
	if t, ok := analysis.ArrivalTime(values, meta.Dt, threshold); ok {
		fmt.Fprintf(out, "arrival (|u| >= %g): t = %.4f\n", threshold, t)
	} else {
		fmt.Fprintf(out, "arrival (|u| >= %g): not reached\n", threshold)
	}

	fmt.Fprintln(out, "\nphase portrait (u, du/dt):")
	fmt.Fprintln(out, analysis.PhasePortraitToASCII(analysis.GeneratePhasePortrait(values, meta.Dt), 70, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, g, u, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	times, values, err := st.LoadProbe(meta.ID)
	if err != nil {
		return err
	}
	data := export.NewExportData(meta, u, times, values)

	if outPath == "" {
		if err := export.WriteJSON(cmd.OutOrStdout(), data); err != nil {
			return err
		}
	} else if err := export.ExportJSON(outPath, data); err != nil {
		return err
	}

	if svgPath != "" {
		svg := export.RasterToSVG(viz.Project(g, u, 128, 128), viz.Seismic, 4)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		if len(values) > 1 {
			series := export.SeriesToSVG(times, values, 800, 300, "#00D7D7")
			probeSVG := strings.TrimSuffix(svgPath, filepath.Ext(svgPath)) + "-probe.svg"
			if err := os.WriteFile(probeSVG, []byte(series), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, values, err := st.LoadProbe(meta.ID)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"step", "time", "u"}); err != nil {
		return err
	}
	for i := range values {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(values[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	systems := config.Systems()
	if len(args) > 0 {
		sys, err := grid.ParseCoordSystem(args[0])
		if err != nil {
			return err
		}
		systems = []string{sys.String()}
	}
	for _, s := range systems {
		presets := config.ListPresets(s)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for system: %s\n", s)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", s)
		for _, p := range presets {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}
	return nil
}

// gifRecorder writes each live recording to its own file under the data
// directory.
func gifRecorder(g *grid.Grid) (viz.Recorder, error) {
	dir := filepath.Join(dataDir, "recordings")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, uuid.Must(uuid.NewV7()).String()+".gif")
	return export.NewGIFWriter(path, g), nil
}

func runInteractive() error {
	return viz.RunInteractive(gifRecorder)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	wc, err := cfg.Wave()
	if err != nil {
		return err
	}
	title := cfg.CoordSystem
	if preset != "" {
		title += "/" + preset
	}
	return viz.RunLive(wc, title, gifRecorder)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func periodicConfig(n, steps int, m wave.Method) wave.Config {
	return wave.Config{
		System:     grid.Cartesian,
		Resolution: []int{n, n},
		Spacing:    []float64{1, 1},
		WaveSpeed:  1,
		Steps:      steps,
		Boundary:   boundary.Periodic,
		Method:     m,
		PulseWidth: float64(n) / 16,
	}
}

func benchMethods(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %d steps\n\n", benchSteps)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tMETHOD\tTIME\tSTEPS/SEC")
	for _, n := range []int{64, 128, 256} {
		for _, m := range []wave.Method{wave.FiniteDifference, wave.Spectral} {
			it, err := wave.New(periodicConfig(n, benchSteps, m), wave.WithLogger(quietLogger()))
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := it.Run()
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%dx%d\t%s\t%v\t%.0f\n",
				n, n, m, elapsed, float64(res.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

// compareMethods runs the same periodic Cartesian configuration with both
// Laplacians and reports how far the final fields drift apart.
func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Boundary = boundary.Periodic.String()
	wc, err := cfg.Wave()
	if err != nil {
		return err
	}
	if wc.System != grid.Cartesian {
		return errors.New("compare needs a cartesian grid")
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tENERGY\tDRIFT\tMAX|U|\tTIME")

	finals := make([]*field.Field, 0, 2)
	for _, m := range []wave.Method{wave.FiniteDifference, wave.Spectral} {
		wc.Method = m
		ms := metrics.Standard(wc.WaveSpeed)
		opts := []wave.Option{wave.WithLogger(quietLogger())}
		for _, metric := range ms {
			opts = append(opts, wave.WithMetric(metric))
		}
		it, err := wave.New(wc, opts...)
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := it.Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\t%.4f\t%v\n",
			m, res.Metrics["energy"], res.Metrics["energy_drift"], res.Metrics["max_amplitude"], time.Since(start))
		finals = append(finals, res.Final)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	diff := 0.0
	for k := range finals[0].Data {
		diff = math.Max(diff, math.Abs(finals[0].Data[k]-finals[1].Data[k]))
	}
	fmt.Fprintf(out, "\nmax |fdm - fft|: %.6g\n", diff)
	return nil
}
