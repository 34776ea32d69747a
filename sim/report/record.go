// Package report persists summaries of finished model runs.
//
// Only final results are stored; a simulation's state is never saved.
package report

import (
	"errors"
	"time"
)

// Common errors.
var (
	// ErrStoreClosed is returned when an operation is attempted on a closed store.
	ErrStoreClosed = errors.New("report store is closed")
	// ErrInvalidRecord is returned for a record without a model or with a malformed run id.
	ErrInvalidRecord = errors.New("invalid run record")
)

// Record is the summary of one model run.
type Record struct {
	RunID        string             // unique id of the run (uuid)
	Model        string             // model name, e.g. "carwash"
	Seed         int64              // master random seed
	Params       any                // model parameters, stored as YAML
	ParamsYAML   string             // Params as stored; filled by List
	Results      map[string]float64 // named result values
	SimTime      float64            // simulated time at the end of the run
	WallDuration time.Duration      // wall-clock duration of the run
	CreatedAt    time.Time          // set by Save when zero
}
