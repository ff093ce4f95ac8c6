package uni20

// BufferPool manages a pool of reusable byte slices for frame headers and
// message bodies, reducing allocation churn on the probe pipes. The
// channel-based design gives lock-free Get and Put, and both operations are
// safe for concurrent use.
type BufferPool struct {
	pool    chan []byte
	bufSize int
}

// NewBufferPool creates a pool pre-populated with count buffers of bufSize
// bytes each.
func NewBufferPool(bufSize, count int) *BufferPool {
	pool := make(chan []byte, count)
	for i := 0; i < count; i++ {
		pool <- make([]byte, bufSize)
	}
	return &BufferPool{
		pool:    pool,
		bufSize: bufSize,
	}
}

// Get returns a buffer from the pool, allocating a fresh one if the pool is
// empty. The returned buffer has capacity bufSize.
func (bp *BufferPool) Get() []byte {
	select {
	case buf := <-bp.pool:
		return buf
	default:
		return make([]byte, bp.bufSize)
	}
}

// Put returns a buffer to the pool. Buffers with the wrong capacity are
// dropped, and if the pool is already full the buffer is left for the
// garbage collector.
func (bp *BufferPool) Put(buf []byte) {
	if cap(buf) != bp.bufSize {
		return
	}
	select {
	case bp.pool <- buf[:bp.bufSize]:
	default:
	}
}
