package dockstream

import "time"

// Response is the fully reconstructed result of a completed stream,
// including the usage and cost accounting from the terminal chunk.
type Response struct {
	Content  string
	Model    string
	Provider string
	Usage    Usage
	Cost     float64

	// Stream accounting.
	Chunks  int
	Elapsed time.Duration
}
