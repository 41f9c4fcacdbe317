package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	ShareURL string        `json:"share_url"`
	Margin   time.Duration `json:"margin"`
	InFlight int           `json:"in_flight"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	return EngineState{
		ShareURL: e.shareURL,
		Margin:   e.margin,
		InFlight: len(e.inflight),
	}
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "engine"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
