// Package execmem provides the memory substrate for assembled code: blocks
// of executable (RWX) pages, plain read-write data blocks, stable host
// addresses into both, and invocation of a block's first byte as a native
// entrypoint.
package execmem

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/tinyforge/jit/internal/addr"
)

var (
	ErrOutOfBounds = errors.New("offset out of block bounds")
	ErrFreed       = errors.New("block already freed")
	ErrUnsupported = errors.New("unsupported platform")
)

// Block is a contiguous byte buffer whose host base address is stable for
// the block's lifetime. Executable blocks are page-aligned RWX mappings;
// data blocks are ordinary heap memory behind the same accessor surface.
type Block struct {
	mem     []byte // the usable region, len == requested size
	mapping []byte // full page-rounded mapping for executable blocks
	freed   bool
}

// AllocData allocates an ordinary read-write data block.
func AllocData(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("alloc data block: size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	return &Block{mem: buf}, nil
}

// Size returns the block's usable length in bytes.
func (b *Block) Size() int { return len(b.mem) }

// Executable reports whether the block was allocated with execute
// permission.
func (b *Block) Executable() bool { return b.mapping != nil }

// Base returns the host address of the block's first byte.
func (b *Block) Base() uintptr {
	return uintptr(unsafe.Pointer(&b.mem[0]))
}

// Addr returns the host address of the byte at offset as a host-width
// address value.
func (b *Block) Addr(offset int) (addr.Address, error) {
	if b.freed {
		return addr.Address{}, ErrFreed
	}
	if offset < 0 || offset >= len(b.mem) {
		return addr.Address{}, fmt.Errorf("%w: address of byte %d in %d-byte block", ErrOutOfBounds, offset, len(b.mem))
	}
	return addr.FromPointer(b.Base() + uintptr(offset)), nil
}

// ReadByte returns the byte at offset.
func (b *Block) ReadByte(offset int) (byte, error) {
	if b.freed {
		return 0, ErrFreed
	}
	if offset < 0 || offset >= len(b.mem) {
		return 0, fmt.Errorf("%w: read byte %d in %d-byte block", ErrOutOfBounds, offset, len(b.mem))
	}
	return b.mem[offset], nil
}

// WriteByte stores value at offset.
func (b *Block) WriteByte(offset int, value byte) error {
	if b.freed {
		return ErrFreed
	}
	if offset < 0 || offset >= len(b.mem) {
		return fmt.Errorf("%w: write byte %d in %d-byte block", ErrOutOfBounds, offset, len(b.mem))
	}
	b.mem[offset] = value
	return nil
}

// Write copies p into the block starting at offset.
func (b *Block) Write(offset int, p []byte) error {
	if b.freed {
		return ErrFreed
	}
	if offset < 0 || offset+len(p) > len(b.mem) {
		return fmt.Errorf("%w: write of %d bytes at %d in %d-byte block", ErrOutOfBounds, len(p), offset, len(b.mem))
	}
	copy(b.mem[offset:], p)
	return nil
}

// Bytes returns a copy of the block's contents.
func (b *Block) Bytes() []byte {
	if b.freed {
		return nil
	}
	return append([]byte(nil), b.mem...)
}

// Free releases the block. Every address previously derived from the block
// becomes invalid; invoking a freed block is undefined.
func (b *Block) Free() error {
	if b.freed {
		return ErrFreed
	}
	b.freed = true
	if b.mapping != nil {
		mapping := b.mapping
		b.mapping = nil
		b.mem = nil
		return unmapPages(mapping)
	}
	b.mem = nil
	return nil
}
