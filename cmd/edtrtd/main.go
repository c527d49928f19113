package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edtrt/edtrt/pkg/container"
	"github.com/edtrt/edtrt/pkg/log"
	"github.com/edtrt/edtrt/pkg/metrics"
	"github.com/edtrt/edtrt/pkg/pdreg"
	"github.com/edtrt/edtrt/pkg/reconciler"
	"github.com/edtrt/edtrt/pkg/scheduler"
	"github.com/edtrt/edtrt/pkg/storage"
	"github.com/edtrt/edtrt/pkg/transport"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "edtrtd",
	Short:   "edtrtd runs one policy domain (PD) of an EDT runtime",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("edtrtd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	startCmd.Flags().String("location", "", "this PD's location (required)")
	startCmd.Flags().String("bind-addr", "127.0.0.1:7946", "pdreg raft bind address")
	startCmd.Flags().String("data-dir", "./data", "data directory for pdreg's bbolt store")
	startCmd.Flags().Int("num-workers", 4, "number of worker slots in this PD's Wst")
	startCmd.Flags().String("heuristic", "hc", "dispatch heuristic: hc, hc-comm-delegate, static, priority, placement-affinity, ce, st")
	startCmd.Flags().String("metrics-addr", ":9100", "address to serve /metrics and /healthz on")
	startCmd.Flags().Bool("bootstrap", false, "bootstrap a new single-PD cluster instead of joining one")
	startCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(startCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start this PD and block until terminated",
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")
		bindAddr, _ := cmd.Flags().GetString("bind-addr")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		numWorkers, _ := cmd.Flags().GetInt("num-workers")
		heuristicName, _ := cmd.Flags().GetString("heuristic")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		bootstrap, _ := cmd.Flags().GetBool("bootstrap")

		metrics.SetVersion(Version)
		logger := log.WithPD(location)

		registry, err := pdreg.NewRegistry(pdreg.Config{
			Location: types.PDLocation(location),
			BindAddr: bindAddr,
			DataDir:  dataDir,
		})
		if err != nil {
			return fmt.Errorf("failed to build registry: %w", err)
		}
		defer registry.Shutdown()

		if bootstrap {
			if err := registry.Bootstrap(); err != nil {
				return fmt.Errorf("failed to bootstrap cluster: %w", err)
			}
		} else if err := registry.Join(); err != nil {
			return fmt.Errorf("failed to start raft: %w", err)
		}
		if err := registry.JoinPD(storagePDRecord(location, bindAddr, numWorkers, heuristicName)); err != nil {
			logger.Warn().Err(err).Msg("failed to record self in roster (not leader yet?)")
		}

		pd := container.NewPdSpace(types.PDLocation(location), numWorkers, heuristicName == "hc-comm-delegate")
		facade, st, err := buildFacade(types.PDLocation(location), pd, heuristicName, registry)
		if err != nil {
			return err
		}

		rec := reconciler.New(registry, pd, st, nil)
		rec.Start()
		defer rec.Stop()

		metrics.RegisterComponent("pdreg", true, "raft started")
		metrics.RegisterComponent("scheduler", true, fmt.Sprintf("heuristic=%s", heuristicName))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", metrics.HealthHandler())
		mux.HandleFunc("/status", statusHandler(facade))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			logger.Info().Str("addr", metricsAddr).Msg("serving metrics and health")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()

		logger.Info().Str("heuristic", heuristicName).Int("workers", numWorkers).Msg("pd started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func storagePDRecord(location, bindAddr string, numWorkers int, heuristicName string) storage.PDRecord {
	return storage.PDRecord{
		Location:   types.PDLocation(location),
		BindAddr:   bindAddr,
		NumWorkers: numWorkers,
		MasterID:   int(heuristicIDFor(heuristicName)),
		JoinedAt:   time.Now().Unix(),
	}
}

// buildFacade wires the requested heuristic onto pd. st and ce additionally
// need a transport to reach other PDs — wiring a real network transport is
// out of scope here (a real network transport is a separate collaborator, not part of this runtime), so edtrtd uses the in-memory
// Mock transport and registers this facade's own HandleMessage on it. A
// lone edtrtd process only ever talks to itself this way; pkg/pdtest shares
// one Mock across several in-process PDs to actually exercise cross-PD
// analyze/transact/get_work traffic.
func buildFacade(loc types.PDLocation, pd *container.PdSpace, heuristicName string, registry *pdreg.Registry) (*scheduler.Facade, *scheduler.STHeuristic, error) {
	id := heuristicIDFor(heuristicName)
	facade := scheduler.NewFacade(loc, pd, id)
	tr := transport.NewMock()

	// Every heuristic runs alongside a plain HC dispatcher: a master
	// heuristic only replaces get_work/placement behavior, never the baseline Wst
	// push/pop contract every worker relies on.
	facade.Register(scheduler.NewHCHeuristic(pd))

	var st *scheduler.STHeuristic
	switch id {
	case scheduler.ST:
		schedLoc, err := registry.SchedulerLocation()
		if err != nil {
			schedLoc = loc // first PD up: elect itself until the registry converges
		}
		st = scheduler.NewSTHeuristic(pd, loc, schedLoc, schedLoc == loc, 0, nil, tr)
		facade.Register(st)
	case scheduler.CE:
		facade.Register(scheduler.NewCEHeuristic(loc, "", false, nil, nil, tr))
	case scheduler.HCCommDelegate:
		facade.Register(scheduler.NewHCCommDelegateHeuristic(len(pd.Workers.WorkerDeques), 0, false))
	case scheduler.Static:
		facade.Register(scheduler.NewStaticHeuristic(pd, len(pd.Workers.WorkerDeques), nil))
	case scheduler.Priority:
		facade.Register(scheduler.NewPriorityHeuristic())
	case scheduler.PlacementAffinity:
		facade.Register(scheduler.NewPlacementAffinityHeuristic(loc, nil))
	}
	tr.RegisterHandler(loc, facade.HandleMessage)
	return facade, st, nil
}

// statusHandler reports this PD's location, known-DB count and worker
// count — a debug surface
// over the facade's rootObj, not the submission/query API (explicitly out
// of scope for this module).
func statusHandler(facade *scheduler.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		root := facade.RootObj()
		fmt.Fprintf(w, "pd: %s\n", facade.Location())
		fmt.Fprintf(w, "dbs known: %d\n", root.Count(container.CountImmediate|container.CountOnlyDB))
		fmt.Fprintf(w, "workers: %d\n", len(root.Workers.WorkerDeques))
	}
}

func heuristicIDFor(name string) scheduler.HeuristicID {
	switch name {
	case "hc-comm-delegate":
		return scheduler.HCCommDelegate
	case "static":
		return scheduler.Static
	case "priority":
		return scheduler.Priority
	case "placement-affinity":
		return scheduler.PlacementAffinity
	case "ce":
		return scheduler.CE
	case "st":
		return scheduler.ST
	default:
		return scheduler.HC
	}
}
