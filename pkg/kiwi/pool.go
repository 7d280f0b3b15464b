package kiwi

import "sync"

// Size-tiered buffer pools for encode-buffer reuse. Buffers are pooled in
// size classes: 64, 256, 1024, 4096, 16384, 65536 bytes.
var bufferPools = [6]sync.Pool{
	{New: func() any { return make([]byte, 0, 64) }},
	{New: func() any { return make([]byte, 0, 256) }},
	{New: func() any { return make([]byte, 0, 1024) }},
	{New: func() any { return make([]byte, 0, 4096) }},
	{New: func() any { return make([]byte, 0, 16384) }},
	{New: func() any { return make([]byte, 0, 65536) }},
}

var bufferSizes = [6]int{64, 256, 1024, 4096, 16384, 65536}

// poolIndex returns the pool index for a size hint, or -1 when the size is
// too large to pool.
func poolIndex(size int) int {
	for i, s := range bufferSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// GetBuffer returns a zero-length buffer with at least sizeHint capacity,
// drawn from the smallest size class that fits. Hints beyond the largest
// class get a freshly allocated, unpooled buffer. Pass the buffer to
// Encoder.Append and return it with PutBuffer when the encoded bytes have
// been consumed.
func GetBuffer(sizeHint int) []byte {
	idx := poolIndex(sizeHint)
	if idx < 0 {
		return make([]byte, 0, sizeHint)
	}
	return bufferPools[idx].Get().([]byte)[:0]
}

// PutBuffer returns a buffer to the largest size-class pool its capacity
// covers. Oversized buffers, and buffers smaller than the smallest class,
// are left for the garbage collector. The caller must not retain buf after
// this call.
func PutBuffer(buf []byte) {
	c := cap(buf)
	if c > bufferSizes[len(bufferSizes)-1] {
		return
	}
	for i := len(bufferSizes) - 1; i >= 0; i-- {
		if c >= bufferSizes[i] {
			bufferPools[i].Put(buf[:0])
			return
		}
	}
}
