package native

import (
	"sync"
	"sync/atomic"
)

// Gate serializes every call into the native library.
//
// The gate is not reentrant: a function running inside Do must not call Do
// again on the same gate. Callback thunks run on the library's thread while
// the caller is already inside the gate and must never acquire it.
type Gate struct {
	mu        sync.Mutex
	calls     atomic.Uint64
	contended atomic.Uint64
}

// NewGate creates an unlocked gate.
func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) enter() {
	if !g.mu.TryLock() {
		g.contended.Add(1)
		g.mu.Lock()
	}
}

func (g *Gate) leave() {
	g.calls.Add(1)
	g.mu.Unlock()
}

// Do runs fn with the gate held. The gate is released on every exit path,
// including a panic in fn.
func (g *Gate) Do(fn func() error) error {
	g.enter()
	defer g.leave()
	return fn()
}

// Calls returns the number of completed gated sections.
func (g *Gate) Calls() uint64 {
	return g.calls.Load()
}

// Contended returns how many times a caller had to wait for the gate.
func (g *Gate) Contended() uint64 {
	return g.contended.Load()
}

// Call runs fn with the gate held and returns its result.
func Call[T any](g *Gate, fn func() T) T {
	g.enter()
	defer g.leave()
	return fn()
}

// CallErr runs fn with the gate held and returns its results.
func CallErr[T any](g *Gate, fn func() (T, error)) (T, error) {
	g.enter()
	defer g.leave()
	return fn()
}
