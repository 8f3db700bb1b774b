package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/app"
	_ "go.trai.ch/stash/internal/wiring"
)

// TestGraftBootstrap ensures the registered node graph resolves: every
// declared dependency exists and the App can be constructed.
func TestGraftBootstrap(t *testing.T) {
	a, _, err := graft.ExecuteFor[*app.App](context.Background())
	if err != nil {
		t.Fatalf("failed to bootstrap the application graph: %v", err)
	}
	if a == nil {
		t.Fatal("expected a constructed App")
	}
}
