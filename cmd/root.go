package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/janburian/procsim/sim"
	"github.com/janburian/procsim/sim/observability"
	"github.com/janburian/procsim/sim/report"
	"github.com/janburian/procsim/sim/trace"
)

// version is reported in exported spans.
var version = "dev"

var (
	// CLI flags shared by every model
	modelName       string // model to run
	presetFlag      string // preset in defaults.yaml
	seed            int64  // master random seed
	simPeriod       float64
	logLevel        string // Log verbosity level
	traceLevel      string // scheduling trace level
	traceOut        string // file receiving the scheduling trace as JSON lines
	otelTraceOut    string // file receiving OpenTelemetry spans
	collectMetrics  bool   // print kernel metrics after the run
	resultsDB       string // SQLite file storing run summaries
	maxIdleContexts int    // parked execution contexts kept for reuse

	// model-specific flags
	washers  int
	cars     int
	capacity int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "procsim",
	Short: "Process-interaction discrete-event simulator",
}

// runCmd executes a model using parameters from presets and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation model",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		presets, err := loadPresets(defaultsFilePath)
		if err != nil {
			logrus.Fatalf("Failed to load presets: %v", err)
		}

		kernel := presets.kernelConfig()
		if cmd.Flags().Changed("trace-level") {
			kernel.TraceLevel = traceLevel
		}
		if cmd.Flags().Changed("max-idle-contexts") {
			kernel.MaxIdleContexts = maxIdleContexts
		}
		if traceOut != "" && kernel.TraceLevel != string(trace.TraceLevelEvents) {
			logrus.Warnf("--trace-out given without --trace-level events; enabling events")
			kernel.TraceLevel = string(trace.TraceLevelEvents)
		}
		if err := kernel.Validate(); err != nil {
			logrus.Fatalf("Invalid kernel configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if otelTraceOut != "" {
			f, err := os.Create(otelTraceOut)
			if err != nil {
				logrus.Fatalf("Failed to create span output %s: %v", otelTraceOut, err)
			}
			defer f.Close()
			shutdown, err := observability.InitStdoutTracing("procsim", version, f)
			if err != nil {
				logrus.Fatalf("Failed to initialize tracing: %v", err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logrus.Warnf("flushing spans: %v", err)
				}
			}()
			kernel.Spans = observability.NewSpanManager()
		}
		var reader *sdkmetric.ManualReader
		if collectMetrics {
			reader = observability.InstallManualMeterProvider()
			kernel.Metrics = observability.NewMetricsRecorder()
		}

		m, err := buildModel(cmd, presets, kernel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer m.close()

		logrus.Infof("Starting %s simulation (preset %q, seed %d)", m.name, presetName(presetFlag), m.seed)
		start := time.Now()
		values, simTime, err := m.run(ctx)
		wall := time.Since(start)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printResults(os.Stdout, m.name, values, simTime, wall)
		printKernelStats(os.Stdout, m.sim.Stats(), m.sim.Pool().Stats())

		if reader != nil {
			snapshot, err := observability.Collect(ctx, reader)
			if err != nil {
				logrus.Warnf("collecting metrics: %v", err)
			} else {
				printValues(os.Stdout, "Kernel Metrics", snapshot)
			}
		}

		if traceOut != "" {
			if err := writeTrace(traceOut, m.sim.Trace()); err != nil {
				logrus.Fatalf("Failed to write trace: %v", err)
			}
			s := trace.Summarize(m.sim.Trace())
			logrus.Infof("Trace: %d records, %d handoffs, %d processes, %d dropped",
				s.TotalEvents, s.Handoffs, s.UniqueProcesses, m.sim.Trace().Dropped)
		}

		if resultsDB != "" {
			store, err := report.NewStore(resultsDB)
			if err != nil {
				logrus.Fatalf("Failed to open results store: %v", err)
			}
			defer store.Close()
			id, err := store.Save(report.Record{
				RunID:        m.sim.ID(),
				Model:        m.name,
				Seed:         m.seed,
				Params:       m.params,
				Results:      values,
				SimTime:      simTime,
				WallDuration: wall,
			})
			if err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
			logrus.Infof("Saved run %s to %s", id, resultsDB)
		}

		logrus.Info("Simulation complete.")
	},
}

func printResults(w io.Writer, model string, values map[string]float64, simTime float64, wall time.Duration) {
	fmt.Fprintf(w, "=== %s ===\n", model)
	fmt.Fprintf(w, "%-20s %.2f\n", "sim_time", simTime)
	printSorted(w, values)
	fmt.Fprintf(w, "%-20s %.3fs\n", "execution_time", wall.Seconds())
}

func printKernelStats(w io.Writer, st sim.Stats, ps sim.PoolStats) {
	printValues(w, "Kernel", map[string]float64{
		"processes":        float64(st.Created),
		"activations":      float64(st.Activations),
		"holds":            float64(st.Holds),
		"handoffs":         float64(st.Handoffs),
		"terminated":       float64(st.Terminated),
		"unwound":          float64(st.Unwound),
		"contexts_spawned": float64(ps.Spawned),
		"contexts_reused":  float64(ps.Reused),
	})
}

func printValues(w io.Writer, title string, values map[string]float64) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	printSorted(w, values)
}

func printSorted(w io.Writer, values map[string]float64) {
	for _, k := range sortedKeys(values) {
		fmt.Fprintf(w, "%-20s %.2f\n", k, values[k])
	}
}

func writeTrace(path string, st *trace.SimulationTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := st.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&modelName, "model", "carwash", "Model to run (carwash, cablecar)")
	runCmd.Flags().StringVar(&presetFlag, "preset", "default", "Preset from defaults.yaml")
	runCmd.Flags().StringVar(&defaultsFilePath, "defaults", defaultsFilePath, "Presets file")
	runCmd.Flags().Int64Var(&seed, "seed", 5, "Master random seed (overrides the preset)")
	runCmd.Flags().Float64Var(&simPeriod, "sim-period", 200, "Arrival window in simulated time (overrides the preset)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Kernel
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Scheduling trace level (none, events)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the scheduling trace as JSON lines to this file")
	runCmd.Flags().StringVar(&otelTraceOut, "otel-trace", "", "Export OpenTelemetry run spans to this file")
	runCmd.Flags().BoolVar(&collectMetrics, "metrics", false, "Collect and print OpenTelemetry kernel metrics")
	runCmd.Flags().StringVar(&resultsDB, "results-db", "", "Store the run summary in this SQLite file")
	runCmd.Flags().IntVar(&maxIdleContexts, "max-idle-contexts", sim.DefaultMaxIdleContexts, "Parked execution contexts kept for reuse")

	// Models
	runCmd.Flags().IntVar(&washers, "washers", 1, "Car washers (carwash)")
	runCmd.Flags().IntVar(&cars, "cars", 30, "Cabins on the rope (cablecar)")
	runCmd.Flags().IntVar(&capacity, "capacity", 6, "Seats per cabin (cablecar)")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resultsCmd)
}
