// Package interfaces defines service contracts for the net-worth tracker
package interfaces

import (
	"context"

	"github.com/bobmcallan/networth/internal/models"
)

// SheetSource provides the raw spreadsheet export
type SheetSource interface {
	// Fetch downloads or reads the current export
	Fetch(ctx context.Context) (*models.SheetSnapshot, error)

	// SourceID identifies the source for cache keys
	SourceID() string
}
