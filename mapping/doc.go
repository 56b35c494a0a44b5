// Package mapping simulates how a fixed array of cache lines responds to a
// trace of memory addresses under direct mapping and set-associative mapping
// with least-recently-used replacement.
//
// Each Run owns the cache state it creates. Nothing is shared between runs,
// so simulators can be reused and called from different goroutines as long
// as their hooks tolerate it.
package mapping
