package ports

import (
	"context"

	"go.trai.ch/stash/internal/core/domain"
)

// Analyzer defines the interface for the external collaborator that
// performs the actual expensive computation on a cache miss.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Analyzer interface {
	// Analyze runs the operation against the project root and returns
	// its opaque result payload.
	Analyze(ctx context.Context, root string, spec domain.OperationSpec) ([]byte, error)
}
