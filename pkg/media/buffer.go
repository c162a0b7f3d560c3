package media

import "sync"

// Buffer is a fixed-capacity FIFO queue of frames shared between the
// decode producer and the render consumer. One mutex covers both the
// length check and the move, so a push or pop is a single atomic step
// from the other side's point of view.
type Buffer struct {
	mu     sync.Mutex
	frames []Frame
	head   int
	count  int
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{frames: make([]Frame, capacity)}
}

// TryPush appends the frame when there is space and reports whether it did.
// It never blocks.
func (b *Buffer) TryPush(f Frame) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.frames) {
		return false
	}
	b.frames[(b.head+b.count)%len(b.frames)] = f
	b.count++
	return true
}

// TryPop removes the oldest frame. It never blocks.
func (b *Buffer) TryPop() (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return Frame{}, false
	}
	f := b.frames[b.head]
	b.frames[b.head] = Frame{}
	b.head = (b.head + 1) % len(b.frames)
	b.count--
	return f, true
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Buffer) Cap() int { return len(b.frames) }
