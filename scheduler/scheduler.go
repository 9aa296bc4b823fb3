// Package scheduler periodically re-solves a vessel's operating schedule
// against its current route and configuration, persists each run, and
// serves the latest result over a small web server for dashboards.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/oceanvolt/voyage-optimizer/portlink"
	"github.com/oceanvolt/voyage-optimizer/voyage"
	"github.com/oceanvolt/voyage-optimizer/voyageconfig"
	"github.com/oceanvolt/voyage-optimizer/voyagestore"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the periodic task in a loop, respecting the initial delay and context cancellation
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	// Wait for initial delay
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			logger.Printf("[%s] Initial delay passed, running first iteration", pt.name)
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		logger.Printf("[%s] Running immediately (no initial delay)", pt.name)
		pt.runFunc()
	}

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// RouteSource supplies the fixed-path inputs to solve against. In practice
// this reads the route referenced by voyageconfig.Config.RouteFile, but it
// is an interface so tests can substitute a fixed in-memory route.
type RouteSource interface {
	Inputs() (*voyage.FixedPathInputs, error)
}

// VoyageScheduler periodically re-solves the voyage optimization problem,
// persists each result, and polls live port telemetry.
type VoyageScheduler struct {
	// Configuration
	config *voyageconfig.Config
	route  RouteSource

	// State
	isRunning bool
	stopChan  chan struct{}
	mu        sync.RWMutex

	latestResult  *voyage.OptimizationResult
	latestSolveAt time.Time
	latestErr     error

	// Port telemetry
	ports map[string]*portlink.Client

	// Web server
	webServer *WebServer

	// Persistence
	store *voyagestore.DualStore

	// Logging
	logger *log.Logger
}

// NewVoyageScheduler creates a new scheduler instance. store and ports may
// be nil; a nil store disables persistence and an empty ports map disables
// live telemetry polling.
func NewVoyageScheduler(config *voyageconfig.Config, route RouteSource, store *voyagestore.DualStore, ports map[string]*portlink.Client, logger *log.Logger) *VoyageScheduler {
	if logger == nil {
		logger = log.Default()
	}

	return &VoyageScheduler{
		config:   config,
		route:    route,
		store:    store,
		ports:    ports,
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

// NewVoyageSchedulerWithWebServer creates a new scheduler instance with the
// health/dashboard server attached.
func NewVoyageSchedulerWithWebServer(config *voyageconfig.Config, route RouteSource, store *voyagestore.DualStore, ports map[string]*portlink.Client, logger *log.Logger) *VoyageScheduler {
	scheduler := NewVoyageScheduler(config, route, store, ports, logger)
	scheduler.webServer = NewWebServer(scheduler, config.HealthCheckPort)
	return scheduler
}

// GetConfig returns the current configuration
func (s *VoyageScheduler) GetConfig() *voyageconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *VoyageScheduler) getInitialDelay(now time.Time, delayInterval time.Duration) time.Duration {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	delay := now.Sub(top)
	for delay > 0 {
		delay = delay - delayInterval
	}
	return -delay
}

// Start begins the scheduler's periodic tasks. It blocks until the context
// is cancelled or Stop is called. With serverOnly set it starts only the
// web server (if one is attached) and returns without running any task.
func (s *VoyageScheduler) Start(ctx context.Context, serverOnly bool) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	if s.config.DryRun {
		s.logger.Printf("DRY-RUN MODE ENABLED: runs will solve but not persist or confirm with port controllers")
	}

	// Start web server if configured
	var webErr error
	if s.webServer != nil {
		webErr = s.webServer.Start()
		if webErr != nil {
			s.logger.Printf("Failed to start web server: %v", webErr)
		} else {
			s.logger.Printf("Web server started on port %d", s.webServer.port)
		}
	}
	if serverOnly {
		return webErr
	}

	config := s.GetConfig()

	now := time.Now()
	resolveInitialDelay := s.getInitialDelay(now, config.ResolveInterval)
	portLinkInitialDelay := s.getInitialDelay(now, config.PortLinkInterval)

	tasks := []PeriodicTask{
		{
			name:         "Resolve",
			initialDelay: resolveInitialDelay,
			interval:     config.ResolveInterval,
			runFunc: func() {
				s.runResolve(ctx)
			},
		},
	}
	if len(s.ports) > 0 {
		tasks = append(tasks, PeriodicTask{
			name:         "PortTelemetryPoll",
			initialDelay: portLinkInitialDelay,
			interval:     config.PortLinkInterval,
			runFunc: func() {
				s.pollPortTelemetry()
			},
		})
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		task := task // capture loop variable
		go func() {
			defer wg.Done()
			task.run(ctx, s.stopChan, s.logger)
		}()
	}

	wg.Wait()

	s.logger.Printf("All periodic tasks stopped")
	s.stop()
	return nil
}

// Stop gracefully stops the scheduler
func (s *VoyageScheduler) Stop() {
	s.stop()
}

func (s *VoyageScheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.isRunning = false

	select {
	case <-s.stopChan:
		// Already closed
	default:
		close(s.stopChan)
	}

	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Printf("Error stopping web server: %v", err)
		}
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *VoyageScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runResolve re-solves the voyage problem against the current route inputs
// and persists the result, unless dry-run is set.
func (s *VoyageScheduler) runResolve(ctx context.Context) {
	inputs, err := s.route.Inputs()
	if err != nil {
		s.logger.Printf("Resolve: failed to load route inputs: %v", err)
		s.recordResult(nil, err)
		return
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.config.SolveTimeout)
	defer cancel()
	if err := solveCtx.Err(); err != nil {
		s.logger.Printf("Resolve: solve deadline already expired: %v", err)
		s.recordResult(nil, err)
		return
	}

	result, err := voyage.Solve(inputs)
	if err != nil {
		s.logger.Printf("Resolve: solve failed: %v", err)
		s.recordResult(nil, err)
		return
	}

	s.logger.Printf("Resolve: solved total cost £%.2f, finish time %.2fh, %d steps", result.TotalCostGBP, result.FinishTimeHr, len(result.Steps))
	s.recordResult(result, nil)

	if s.store != nil && !s.config.DryRun {
		runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
		if err := s.store.SaveRun(solveCtx, runID, time.Now(), result); err != nil {
			s.logger.Printf("Resolve: failed to persist run: %v", err)
		}
	}
}

func (s *VoyageScheduler) recordResult(result *voyage.OptimizationResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestErr = err
	if result != nil {
		s.latestResult = result
		s.latestSolveAt = time.Now()
	}
}

// pollPortTelemetry reads live container-inventory telemetry from every
// configured port controller and logs it. The readings are not passed to
// the Resolve task, which solves against whatever RouteSource returns.
func (s *VoyageScheduler) pollPortTelemetry() {
	for name, client := range s.ports {
		t, err := client.Read()
		if err != nil {
			s.logger.Printf("PortTelemetryPoll: port %s: %v", name, err)
			continue
		}
		s.logger.Printf("PortTelemetryPoll: port %s: %d/%d containers ready, background %.1f kW", name, t.ReadyContainers, t.TotalContainers, t.BackgroundPowerKW)
	}
}

// GetStatus returns the current status of the scheduler
func (s *VoyageScheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SchedulerStatus{
		IsRunning:  s.isRunning,
		HasResult:  s.latestResult != nil,
		LastSolved: s.latestSolveAt,
	}
	if s.latestErr != nil {
		st.LastError = s.latestErr.Error()
	}
	return st
}

// GetLatestResult returns the most recently solved schedule, or nil if none
// has solved successfully yet.
func (s *VoyageScheduler) GetLatestResult() *voyage.OptimizationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestResult
}

// SchedulerStatus represents the current status of the scheduler
type SchedulerStatus struct {
	IsRunning  bool      `json:"is_running"`
	HasResult  bool      `json:"has_result"`
	LastSolved time.Time `json:"last_solved,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}
