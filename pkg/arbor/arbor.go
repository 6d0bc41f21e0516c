// Package arbor is the public entry point for the Arbor todo store.
// Open wires the record store, the index layer, and the hierarchy
// engine together and returns the stable Store surface.
package arbor

import (
	"log/slog"

	"github.com/stemhq/arbor/internal/engine"
	"github.com/stemhq/arbor/internal/sqlite"
	"github.com/stemhq/arbor/pkg/types"
)

// Version is the current Arbor release.
const Version = "0.1.0"

// Open validates the config, opens the record store, rebuilds the
// derived indexes from a full scan, and returns the ready Store. A nil
// logger falls back to slog.Default().
func Open(config types.Config, logger *slog.Logger) (types.Store, error) {
	backend := sqlite.NewBackend()
	if err := backend.Open(config); err != nil {
		return nil, err
	}
	eng, err := engine.New(backend, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return eng, nil
}
