//go:build linux || darwin

package execmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AllocExec reserves an anonymous private mapping with read, write and
// execute permission. The mapping is page-rounded; the returned block spans
// exactly the requested size.
func AllocExec(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("alloc exec block: size must be positive, got %d", size)
	}
	pageSize := unix.Getpagesize()
	allocSize := ((size + pageSize - 1) / pageSize) * pageSize

	mem, err := unix.Mmap(
		-1, 0,
		allocSize,
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, fmt.Errorf("mmap exec block of %d bytes: %w", size, err)
	}

	return &Block{mem: mem[:size], mapping: mem}, nil
}

func unmapPages(mapping []byte) error {
	if err := unix.Munmap(mapping); err != nil {
		return fmt.Errorf("munmap exec block: %w", err)
	}
	return nil
}
