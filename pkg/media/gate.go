package media

import (
	"sync"
	"sync/atomic"
)

// Gate suspends the producer while playback is paused. The flag and the
// condition variable share one lock, otherwise a resume could slip in
// between the flag check and the wait and the producer would sleep forever.
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
}

func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *Gate) Pause() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

func (g *Gate) Resume() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

func (g *Gate) Set(paused bool) {
	if paused {
		g.Pause()
	} else {
		g.Resume()
	}
}

// WaitIfPaused blocks the caller until the gate is open. Producers call
// this at the top of every iteration; it costs one lock when not paused.
func (g *Gate) WaitIfPaused() {
	g.mu.Lock()
	for g.paused {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Flag is a cooperative cancellation token: a single false-to-true
// transition observed by the producer loop. It never resets.
type Flag struct {
	set atomic.Bool
}

func (f *Flag) Set()       { f.set.Store(true) }
func (f *Flag) Done() bool { return f.set.Load() }
