package daemon

import (
	"context"
)

type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
)

// Component is one long-lived piece of the serve process. Init runs in
// dependency order, Start in registration order, Stop in reverse.
type Component interface {
	Name() string
	Dependencies() []string
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// Health returns nil when the component is serving.
	Health(ctx context.Context) error
}
