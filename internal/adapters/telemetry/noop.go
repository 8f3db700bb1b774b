// Package telemetry provides telemetry implementations that do not
// render anything.
package telemetry

import (
	"context"

	"go.trai.ch/stash/internal/core/ports"
)

// NoOp is a no-op implementation of ports.Telemetry.
type NoOp struct{}

// NewNoOp creates a new NoOp telemetry.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that discards everything.
func (t *NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, &noOpVertex{}
}

// Close does nothing.
func (t *NoOp) Close() error { return nil }

type noOpVertex struct{}

func (v *noOpVertex) Write(p []byte) (int, error) { return len(p), nil }
func (v *noOpVertex) Complete(error)              {}
func (v *noOpVertex) Cached()                     {}
