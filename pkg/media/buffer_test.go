package media

import (
	"sync"
	"testing"
)

func TestBufferCapacity(t *testing.T) {
	tests := []struct {
		cap    int
		pushes int
		pops   int
		expect int
	}{
		{cap: 3, pushes: 5, pops: 0, expect: 3},
		{cap: 3, pushes: 3, pops: 1, expect: 2},
		{cap: 1, pushes: 10, pops: 10, expect: 0},
		{cap: 30, pushes: 7, pops: 0, expect: 7},
	}

	for _, test := range tests {
		buf := NewBuffer(test.cap)
		for i := 0; i < test.pushes; i++ {
			buf.TryPush(Frame{Seq: uint64(i + 1)})
			if buf.Len() > buf.Cap() {
				t.Fatalf("len %v exceeded cap %v", buf.Len(), buf.Cap())
			}
		}
		for i := 0; i < test.pops; i++ {
			buf.TryPop()
			if buf.Len() < 0 {
				t.Fatalf("negative len %v", buf.Len())
			}
		}
		if buf.Len() != test.expect {
			t.Errorf("expected len %v, got %v", test.expect, buf.Len())
		}
	}
}

func TestBufferFIFO(t *testing.T) {
	buf := NewBuffer(8)
	for i := 1; i <= 8; i++ {
		if !buf.TryPush(Frame{Seq: uint64(i)}) {
			t.Fatalf("push %v failed", i)
		}
	}
	for i := 1; i <= 8; i++ {
		f, ok := buf.TryPop()
		if !ok || f.Seq != uint64(i) {
			t.Fatalf("expected seq %v, got %v (ok=%v)", i, f.Seq, ok)
		}
	}
	if _, ok := buf.TryPop(); ok {
		t.Error("pop from empty buffer succeeded")
	}
}

// Frames 1,2,3 fill the buffer, the consumer takes one, frame 4 goes in,
// the remaining order must be 2,3,4.
func TestBufferWrapAround(t *testing.T) {
	buf := NewBuffer(3)
	for i := 1; i <= 3; i++ {
		buf.TryPush(Frame{Seq: uint64(i)})
	}
	if buf.TryPush(Frame{Seq: 99}) {
		t.Fatal("push into a full buffer succeeded")
	}
	if f, _ := buf.TryPop(); f.Seq != 1 {
		t.Fatalf("expected seq 1, got %v", f.Seq)
	}
	if !buf.TryPush(Frame{Seq: 4}) {
		t.Fatal("push after pop failed")
	}
	want := []uint64{2, 3, 4}
	for _, w := range want {
		f, ok := buf.TryPop()
		if !ok || f.Seq != w {
			t.Fatalf("expected seq %v, got %v (ok=%v)", w, f.Seq, ok)
		}
	}
}

func TestBufferConcurrentFIFO(t *testing.T) {
	const total = 10000
	buf := NewBuffer(16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= total; {
			if buf.TryPush(Frame{Seq: uint64(i)}) {
				i++
			}
		}
	}()

	var last uint64
	for n := 0; n < total; {
		f, ok := buf.TryPop()
		if !ok {
			continue
		}
		if f.Seq != last+1 {
			t.Fatalf("out of order: got %v after %v", f.Seq, last)
		}
		if l := buf.Len(); l < 0 || l > buf.Cap() {
			t.Fatalf("len %v out of bounds", l)
		}
		last = f.Seq
		n++
	}
	wg.Wait()
}
