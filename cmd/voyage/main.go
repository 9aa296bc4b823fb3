// Package main provides the voyage-optimizer CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oceanvolt/voyage-optimizer/httpapi"
	"github.com/oceanvolt/voyage-optimizer/portlink"
	"github.com/oceanvolt/voyage-optimizer/scheduler"
	"github.com/oceanvolt/voyage-optimizer/voyage"
	"github.com/oceanvolt/voyage-optimizer/voyageconfig"
	"github.com/oceanvolt/voyage-optimizer/voyagestore"
)

func main() {
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		solveOnce  = flag.Bool("solve", false, "Solve once against the configured route and print the schedule")
		serverOnly = flag.Bool("serverOnly", false, "Run only the web/API servers without the periodic re-solve loop")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := voyageconfig.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	route := &fileRoute{path: config.RouteFile}

	if *solveOnce {
		runSolveOnce(route)
		return
	}

	fmt.Printf("Starting voyage optimizer with the following configuration:\n")
	fmt.Printf("  Vessel type: %s (%.0f GT)\n", config.VesselType, config.GrossTonnage)
	fmt.Printf("  Capacity: %.0f kWh, container: %.0f kWh\n", config.CapacityKWh, config.PerContainerKWh)
	fmt.Printf("  Resolve interval: %s\n", config.ResolveInterval)
	fmt.Printf("  Route file: %s\n", config.RouteFile)
	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (solves will run but nothing will be persisted or confirmed)\n")
	}
	fmt.Println()

	logger := log.New(os.Stdout, "[VOYAGE] ", log.LstdFlags)

	store, err := openStore(config)
	if err != nil {
		logger.Printf("Warning: persistence disabled: %v", err)
		store = nil
	}

	ports := openPortLinks(config, logger)

	voyageScheduler := scheduler.NewVoyageSchedulerWithWebServer(config, route, store, ports, logger)

	var apiServer *httpapi.Server
	if config.HTTPAddr != "" {
		apiServer = httpapi.NewServer(config.HTTPAddr, config.AllowedOrigins, voyageScheduler)
		apiServer.Start()
		logger.Printf("HTTP API listening on %s", config.HTTPAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := voyageScheduler.Start(ctx, *serverOnly); err != nil {
			if err != context.Canceled {
				logger.Printf("Scheduler error: %v", err)
			}
		}
	}()

	logger.Printf("Scheduler started. Press Ctrl+C to stop...")

	<-sigChan
	logger.Printf("Shutdown signal received, stopping...")

	cancel()
	voyageScheduler.Stop()
	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiServer.Stop(shutdownCtx)
		shutdownCancel()
	}
	if store != nil {
		_ = store.Close()
	}

	logger.Printf("Scheduler stopped successfully")
}

// fileRoute loads voyage.FixedPathInputs from a JSON file, satisfying
// scheduler.RouteSource.
type fileRoute struct {
	path string
}

func (f *fileRoute) Inputs() (*voyage.FixedPathInputs, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file %s: %w", f.path, err)
	}
	var inputs voyage.FixedPathInputs
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode route file %s: %w", f.path, err)
	}
	if inputs.ColdIroning == nil {
		inputs.ColdIroning = voyage.DefaultColdIroningTable()
	}
	return &inputs, nil
}

func openStore(config *voyageconfig.Config) (*voyagestore.DualStore, error) {
	var primary, secondary *voyagestore.Store
	var err error

	if config.PostgresConnString != "" {
		primary, err = voyagestore.OpenPostgres(config.PostgresConnString)
		if err != nil {
			return nil, err
		}
	}
	if config.SQLitePath != "" {
		secondary, err = voyagestore.OpenSQLite(config.SQLitePath)
		if err != nil {
			return nil, err
		}
	}

	if primary == nil && secondary == nil {
		return nil, fmt.Errorf("no persistence backend configured")
	}
	if primary == nil {
		primary, secondary = secondary, nil
	}

	ctx := context.Background()
	if err := primary.Migrate(ctx); err != nil {
		return nil, err
	}
	if secondary != nil {
		if err := secondary.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	return &voyagestore.DualStore{Primary: primary, Secondary: secondary}, nil
}

func openPortLinks(config *voyageconfig.Config, logger *log.Logger) map[string]*portlink.Client {
	ports := make(map[string]*portlink.Client)
	if config.PortLinkAddress == "" {
		return ports
	}
	client, err := portlink.Dial(config.PortLinkAddress, config.PortLinkTimeout)
	if err != nil {
		logger.Printf("Warning: failed to dial port controller at %s: %v", config.PortLinkAddress, err)
		return ports
	}
	ports[config.PortLinkAddress] = client
	return ports
}

func runSolveOnce(route *fileRoute) {
	inputs, err := route.Inputs()
	if err != nil {
		fmt.Println("Error loading route:", err)
		os.Exit(1)
	}

	result, err := voyage.Solve(inputs)
	if err != nil {
		fmt.Println("Solve failed:", voyage.SanitizeReport(err.Error()))
		if pre, ok := err.(*voyage.PreInfeasibilityError); ok {
			fmt.Println(voyage.SanitizeReport(pre.Report.String()))
		}
		if inf, ok := err.(*voyage.InfeasibilityError); ok {
			fmt.Println(voyage.SanitizeReport(inf.Report.String()))
		}
		os.Exit(1)
	}

	printReport(result)
}

func printReport(result *voyage.OptimizationResult) {
	fmt.Println("========================================")
	fmt.Println("VOYAGE SCHEDULE")
	fmt.Println("========================================")
	fmt.Printf("Total cost:   £%.2f\n", result.TotalCostGBP)
	fmt.Printf("Total time:   %.2f h\n", result.TotalTimeHr)
	fmt.Printf("Finish time:  %.2f h\n", result.FinishTimeHr)
	fmt.Println()

	for _, step := range result.Steps {
		fmt.Printf("%-10s arrive %6.2fh  depart %6.2fh  %-7s  SoC %7.1f -> %7.1f kWh  cost £%7.2f  cum £%8.2f\n",
			step.PortName, step.ArrivalTimeHr, step.DepartureTimeHr, step.Operation,
			step.SOCBeforeOpKWh, step.SOCAfterOpKWh, step.StepCostGBP, step.CumulativeCostGBP)
		if step.ContainersSwapped > 0 {
			fmt.Printf("             swapped %d container(s)\n", step.ContainersSwapped)
		}
		if step.EnergyChargedKWh > 0 {
			fmt.Printf("             direct-charged %.1f kWh\n", step.EnergyChargedKWh)
		}
	}
}

func showHelp() {
	fmt.Println("voyage-optimizer - minimum-cost operating schedule for an electric vessel")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Computes a minimum-cost schedule of container swaps and shore charging")
	fmt.Println("  for an electric vessel traversing a fixed ordered route, then keeps the")
	fmt.Println("  schedule current with a periodic re-solve, port-telemetry polling, a")
	fmt.Println("  persisted run history, and a live dashboard.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  voyage [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Solve once against the configured route and print the schedule")
	fmt.Println("  voyage -solve")
	fmt.Println()
	fmt.Println("  # Run the full scheduler with a custom configuration")
	fmt.Println("  voyage --config=config.json")
	fmt.Println()
	fmt.Println("  # Run only the web/API servers without the periodic re-solve loop")
	fmt.Println("  voyage -serverOnly")
}
