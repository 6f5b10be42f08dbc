package engine

import (
	"context"
	"sync"
	"time"

	"github.com/phantomlabs/phantom-backend/internal/monitors"
	"github.com/phantomlabs/phantom-backend/internal/notify"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

// monitorRunner is the slice of the monitor manager the engine drives.
type monitorRunner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
	Stats() monitors.ManagerStats
	SetupShopify(stores []monitors.StoreConfig, targetSizes []string, useDefaults bool) error
	SetupFootsites(ctx context.Context, siteIDs, keywords, targetSizes []string) error
}

// Status is the aggregate reported at /api/v1/status.
type Status struct {
	State         enums.EngineState     `json:"state"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Monitors      monitors.ManagerStats `json:"monitors"`
}

// Engine owns the lifecycle of the monitoring subsystem.
type Engine struct {
	logg     *logger.Logger
	emitter  *notify.Emitter
	monitors monitorRunner

	mu        sync.Mutex
	state     enums.EngineState
	startedAt *time.Time
}

// Params carries the engine's dependencies.
type Params struct {
	Logger   *logger.Logger
	Emitter  *notify.Emitter
	Monitors monitorRunner
}

// New builds a stopped engine.
func New(params Params) (*Engine, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification emitter required")
	}
	if params.Monitors == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "monitor manager required")
	}
	return &Engine{
		logg:     params.Logger,
		emitter:  params.Emitter,
		monitors: params.Monitors,
		state:    enums.EngineStateStopped,
	}, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() enums.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status reports the engine and monitor aggregate.
func (e *Engine) Status() Status {
	e.mu.Lock()
	state := e.state
	startedAt := e.startedAt
	e.mu.Unlock()

	status := Status{
		State:     state,
		StartedAt: startedAt,
		Monitors:  e.monitors.Stats(),
	}
	if startedAt != nil {
		status.UptimeSeconds = int64(time.Since(*startedAt).Seconds())
	}
	return status
}

// Start configures default monitors when none exist and launches them.
// Only a stopped engine can start.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != enums.EngineStateStopped {
		state := e.state
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "engine is "+string(state))
	}
	e.state = enums.EngineStateStarting
	e.mu.Unlock()

	if err := e.ensureConfigured(ctx); err != nil {
		e.setState(enums.EngineStateStopped, nil)
		return err
	}

	if err := e.monitors.Start(ctx); err != nil {
		e.setState(enums.EngineStateStopped, nil)
		return err
	}

	now := time.Now().UTC()
	e.setState(enums.EngineStateRunning, &now)

	e.logg.Info(ctx, "engine started")
	e.emitter.Success("Engine started", "Monitors are running")
	return nil
}

// Stop halts the monitors. Only a running engine can stop.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.state != enums.EngineStateRunning {
		state := e.state
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "engine is "+string(state))
	}
	e.state = enums.EngineStateStopping
	startedAt := e.startedAt
	e.mu.Unlock()

	if err := e.monitors.Stop(ctx); err != nil {
		// The monitors may have already halted on their own.
		if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
			e.setState(enums.EngineStateRunning, startedAt)
			return err
		}
	}

	e.setState(enums.EngineStateStopped, nil)
	e.logg.Info(ctx, "engine stopped")
	e.emitter.Info("Engine stopped", "")
	return nil
}

// ensureConfigured installs the default store set when the operator has
// not set up monitors through the API.
func (e *Engine) ensureConfigured(ctx context.Context) error {
	if len(e.monitors.Stats().Shopify) > 0 || len(e.monitors.Stats().Footsites) > 0 {
		return nil
	}
	if err := e.monitors.SetupShopify(nil, nil, true); err != nil {
		return err
	}
	return e.monitors.SetupFootsites(ctx, nil, nil, nil)
}

func (e *Engine) setState(state enums.EngineState, startedAt *time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
	e.startedAt = startedAt
}
