package execmem

import (
	"bytes"
	"errors"
	"testing"
)

func TestAllocDataRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := AllocData(size); err == nil {
			t.Fatalf("size %d: expected error", size)
		}
	}
}

func TestDataBlockAccessors(t *testing.T) {
	b, err := AllocData(8)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer b.Free()

	if b.Size() != 8 {
		t.Fatalf("size %d, want 8", b.Size())
	}
	if b.Executable() {
		t.Fatal("data block reports executable")
	}

	if err := b.WriteByte(3, 0xAB); err != nil {
		t.Fatalf("write byte: %v", err)
	}
	got, err := b.ReadByte(3)
	if err != nil {
		t.Fatalf("read byte: %v", err)
	}
	if got != 0xAB {
		t.Fatalf("read %#x, want 0xab", got)
	}

	if err := b.Write(4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0, 0, 0, 0xAB, 1, 2, 3, 4}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("contents % x, want % x", b.Bytes(), want)
	}
}

func TestBlockBounds(t *testing.T) {
	b, err := AllocData(4)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer b.Free()

	if _, err := b.ReadByte(4); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("read past end: %v", err)
	}
	if _, err := b.ReadByte(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("read before start: %v", err)
	}
	if err := b.WriteByte(4, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("write past end: %v", err)
	}
	if err := b.Write(2, []byte{1, 2, 3}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("write spilling past end: %v", err)
	}
	if _, err := b.Addr(4); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("addr past end: %v", err)
	}
}

func TestBlockAddrIsBasePlusOffset(t *testing.T) {
	b, err := AllocData(16)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer b.Free()

	base, err := b.Addr(0)
	if err != nil {
		t.Fatalf("addr 0: %v", err)
	}
	at5, err := b.Addr(5)
	if err != nil {
		t.Fatalf("addr 5: %v", err)
	}
	want, err := base.AddOffset(5)
	if err != nil {
		t.Fatalf("add offset: %v", err)
	}
	if !at5.Equal(want) {
		t.Fatalf("addr 5 is %s, want %s", at5, want)
	}
}

func TestFreedBlock(t *testing.T) {
	b, err := AllocData(4)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if err := b.Free(); err != nil {
		t.Fatalf("free: %v", err)
	}
	if err := b.Free(); !errors.Is(err, ErrFreed) {
		t.Fatalf("double free: %v", err)
	}
	if _, err := b.ReadByte(0); !errors.Is(err, ErrFreed) {
		t.Fatalf("read after free: %v", err)
	}
	if err := b.WriteByte(0, 1); !errors.Is(err, ErrFreed) {
		t.Fatalf("write after free: %v", err)
	}
	if _, err := b.Addr(0); !errors.Is(err, ErrFreed) {
		t.Fatalf("addr after free: %v", err)
	}
	if b.Bytes() != nil {
		t.Fatal("bytes after free should be nil")
	}
}
