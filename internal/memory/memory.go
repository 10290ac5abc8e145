package memory

import (
	"fmt"
	"io"

	"github.com/gostonefire/snapintersect/retc"
)

// Memory - Interface for any byte addressable memory the engine stages data in or out of, it is implemented
// for host memory as well as for card memory.
type Memory interface {
	io.ReaderAt
	io.WriterAt
	// Size - Returns the size in bytes of the memory
	Size() int64
}

// CheckRegion - Returns an error of type retc.OutOfBounds if the region starting at address and being size bytes
// long does not fit within the memory
func CheckRegion(mem Memory, address, size int64) (err error) {
	if address < 0 || size < 0 || address > mem.Size() || size > mem.Size()-address {
		err = retc.NewOutOfBounds(fmt.Sprintf("region of %d bytes at %d outside memory of size %d", size, address, mem.Size()))
	}

	return
}

// Arena - A memory backed by a byte slice on the heap
type Arena struct {
	buf []byte
}

// NewArena - Returns a pointer to a new zeroed Arena of the given size
func NewArena(size int64) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// NewArenaFromBytes - Returns a pointer to a new Arena using buf as its backing store (no copy is made)
func NewArenaFromBytes(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// ReadAt - Reads len(p) bytes starting at off, it fails with retc.OutOfBounds rather than doing a short read
func (A *Arena) ReadAt(p []byte, off int64) (n int, err error) {
	err = CheckRegion(A, off, int64(len(p)))
	if err != nil {
		return
	}

	n = copy(p, A.buf[off:])

	return
}

// WriteAt - Writes len(p) bytes starting at off, it fails with retc.OutOfBounds rather than doing a short write
func (A *Arena) WriteAt(p []byte, off int64) (n int, err error) {
	err = CheckRegion(A, off, int64(len(p)))
	if err != nil {
		return
	}

	n = copy(A.buf[off:], p)

	return
}

// Size - Returns the size of the arena
func (A *Arena) Size() int64 {
	return int64(len(A.buf))
}

// Bytes - Returns the backing byte slice
func (A *Arena) Bytes() []byte {
	return A.buf
}
