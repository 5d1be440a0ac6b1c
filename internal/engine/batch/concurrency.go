// internal/engine/batch/concurrency.go
package batch

import (
	"runtime"
)

// MaxConcurrency is the hard ceiling on parallel scrapes
const MaxConcurrency = 50

// OptimalConcurrency estimates how many scrapes can run at once. Each
// request may hold a whole browser, so memory caps the CPU based guess.
func OptimalConcurrency() int {
	numCPU := runtime.NumCPU()
	optimal := numCPU * 2

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	availMB := (m.Sys - m.Alloc) / 1024 / 1024

	// roughly 150MB per headless Chrome with one tab
	maxByMemory := int(availMB / 150)

	optimal = Clamp(optimal, numCPU, MaxConcurrency)
	if maxByMemory > 0 && maxByMemory < optimal {
		return maxByMemory
	}
	return optimal
}

// Clamp bounds n to [lo, hi]
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
