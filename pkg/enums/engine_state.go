package enums

// EngineState tracks the lifecycle of the automation engine.
type EngineState string

const (
	EngineStateStopped  EngineState = "stopped"
	EngineStateStarting EngineState = "starting"
	EngineStateRunning  EngineState = "running"
	EngineStateStopping EngineState = "stopping"
)

// IsValid checks whether the given state matches the canonical enum.
func (e EngineState) IsValid() bool {
	switch e {
	case EngineStateStopped, EngineStateStarting, EngineStateRunning, EngineStateStopping:
		return true
	}
	return false
}
