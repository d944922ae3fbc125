package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	writes []int
}

func (r *recorder) write(v int) {
	r.mu.Lock()
	r.writes = append(r.writes, v)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.writes...)
}

func TestBurstCollapsesToOneWrite(t *testing.T) {
	rec := &recorder{}
	d := New(50*time.Millisecond, rec.write)

	for i := 0; i < 50; i++ {
		d.Set(i)
		time.Sleep(time.Millisecond / 2)
	}

	deadline := time.After(2 * time.Second)
	for {
		if w := rec.snapshot(); len(w) > 0 {
			if len(w) != 1 {
				t.Fatalf("expected exactly 1 write, got %d: %v", len(w), w)
			}
			if w[0] != 49 {
				t.Fatalf("expected last value 49, got %d", w[0])
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("no write within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Nothing further pending
	time.Sleep(100 * time.Millisecond)
	if w := rec.snapshot(); len(w) != 1 {
		t.Fatalf("expected no further writes, got %v", w)
	}
}

func TestFlushWritesImmediately(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.write)

	d.Set(7)
	d.Flush()

	if w := rec.snapshot(); len(w) != 1 || w[0] != 7 {
		t.Fatalf("expected [7], got %v", w)
	}
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.write)

	d.Flush()
	if w := rec.snapshot(); len(w) != 0 {
		t.Fatalf("expected no writes, got %v", w)
	}
}

func TestStopCancelsPending(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.write)

	d.Set(1)
	d.Stop()
	d.Set(2) // ignored after Stop

	time.Sleep(60 * time.Millisecond)
	if w := rec.snapshot(); len(w) != 0 {
		t.Fatalf("expected no writes after Stop, got %v", w)
	}
}

func TestSeparateBurstsSeparateWrites(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.write)

	d.Set(1)
	time.Sleep(80 * time.Millisecond)
	d.Set(2)
	time.Sleep(80 * time.Millisecond)

	w := rec.snapshot()
	if len(w) != 2 || w[0] != 1 || w[1] != 2 {
		t.Fatalf("expected [1 2], got %v", w)
	}
}
