// Package ingest loads team, player and favorite documents from a JSON
// dataset into the record store.
package ingest

import (
	"runtime"
)

// Config holds the ingest run settings.
type Config struct {
	File    string // dataset path
	Workers int    // concurrent player writers
	DryRun  bool   // validate only
}

// Stats summarizes an ingest run.
type Stats struct {
	Teams     int64
	Players   int64
	Favorites int64
	Failed    int64
}

// defaultWorkers is used when Config.Workers is not positive.
func defaultWorkers() int { return runtime.NumCPU() }
