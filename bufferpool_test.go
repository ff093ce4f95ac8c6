package uni20

import (
	"sync"
	"testing"
)

func TestBufferPoolGetPut(t *testing.T) {
	pool := NewBufferPool(1024, 4)

	buf := pool.Get()
	if len(buf) != 1024 {
		t.Errorf("Get returned buffer of length %d, want 1024", len(buf))
	}
	pool.Put(buf)

	// Draining past the pre-populated count still yields fresh buffers.
	bufs := make([][]byte, 8)
	for i := range bufs {
		bufs[i] = pool.Get()
		if cap(bufs[i]) != 1024 {
			t.Fatalf("buffer %d has capacity %d, want 1024", i, cap(bufs[i]))
		}
	}
	for _, b := range bufs {
		pool.Put(b)
	}
}

func TestBufferPoolRejectsWrongCapacity(t *testing.T) {
	pool := NewBufferPool(1024, 1)

	// Drain the pool so a recycled buffer would be observable.
	kept := pool.Get()

	pool.Put(make([]byte, 64))
	got := pool.Get()
	if cap(got) != 1024 {
		t.Errorf("pool returned buffer with capacity %d after wrong-size Put", cap(got))
	}

	pool.Put(kept)
	pool.Put(got)
}

func TestBufferPoolResliced(t *testing.T) {
	pool := NewBufferPool(1024, 1)

	// A buffer shortened by the caller goes back in at full length.
	buf := pool.Get()[:4]
	pool.Put(buf)

	got := pool.Get()
	if len(got) != 1024 {
		t.Errorf("recycled buffer has length %d, want 1024", len(got))
	}
}

func TestBufferPoolConcurrent(t *testing.T) {
	pool := NewBufferPool(256, 8)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := pool.Get()
				buf[0] = byte(j)
				pool.Put(buf)
			}
		}()
	}
	wg.Wait()
}
