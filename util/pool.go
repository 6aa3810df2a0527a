package util

import "sync"

// DefaultBufSize is the starting capacity of a line buffer (4 KiB).
// Scanners allocate their own larger buffer when a line outgrows it.
const DefaultBufSize = 4 * 1024

// lineBufs holds empty scanner buffers for child process output, so
// back-to-back runs do not reallocate them.
var lineBufs = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, DefaultBufSize)
		return &buf
	},
}

// GetLineBuf returns an empty buffer with at least DefaultBufSize
// capacity, ready for bufio.Scanner.Buffer.  Callers must return it
// with [PutLineBuf] when finished.
func GetLineBuf() *[]byte {
	return lineBufs.Get().(*[]byte)
}

// PutLineBuf resets buf and returns it to the pool.  Buffers with less
// than DefaultBufSize capacity are dropped.
func PutLineBuf(buf *[]byte) {
	if buf == nil || cap(*buf) < DefaultBufSize {
		return
	}
	*buf = (*buf)[:0]
	lineBufs.Put(buf)
}
