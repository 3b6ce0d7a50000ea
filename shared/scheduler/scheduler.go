package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/shared/config"
	"github.com/TradersPost/pinescript-agents/shared/monitoring"
)

// Metrics defines the common interface for agent metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// AgentEvents provides callbacks for monitoring agent execution
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent defines the interface that all agents must implement
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

// Finisher is implemented by agents whose work can be complete. The
// scheduler stops once Done is closed.
type Finisher interface {
	Done() <-chan struct{}
}

// Scheduler manages the execution of agents on a schedule
type Scheduler struct {
	schedule   string
	healthPort int
	monitor    *monitoring.Monitor
	agent      Agent
	cron       *cron.Cron
	logger     *zap.Logger
}

func New(cfg *config.Config, agent Agent, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		schedule:   cfg.Watch.Schedule,
		healthPort: cfg.Monitoring.HealthPort,
		monitor:    monitoring.NewMonitor(logger),
		agent:      agent,
		logger:     logger,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
	}
}

// Monitor returns the monitor that records each run.
func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Start runs the agent once immediately and then on the schedule until ctx
// is cancelled or a Finisher agent reports it is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	healthServer := monitoring.NewHealthServer(s.monitor, s.healthPort, s.logger)
	healthServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = healthServer.Shutdown(shutdownCtx)
	}()

	var done <-chan struct{}
	if f, ok := s.agent.(Finisher); ok {
		done = f.Done()
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled run failed", zap.String("agent", s.agent.Name()), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("initial run failed", zap.String("agent", s.agent.Name()), zap.Error(err))
	}

	s.logger.Info("scheduler started", zap.String("agent", s.agent.Name()), zap.String("schedule", s.schedule))
	s.cron.Start()
	defer func() {
		<-s.cron.Stop().Done()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped", zap.String("agent", s.agent.Name()))
		return ctx.Err()
	case <-done:
		s.logger.Info("agent finished, scheduler stopping", zap.String("agent", s.agent.Name()))
		return nil
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	s.logger.Info("starting run", zap.String("agent", agentName))

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
