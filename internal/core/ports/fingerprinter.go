package ports

import "go.trai.ch/stash/internal/core/domain"

// Fingerprinter defines the interface for computing project fingerprints.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint walks the project tree under root and returns its
	// content digest. Unreadable files degrade to a sentinel hash rather
	// than failing the computation; the returned error covers only an
	// unwalkable root.
	Fingerprint(root string) (domain.Fingerprint, error)
}
