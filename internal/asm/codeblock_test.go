package asm

import (
	"bytes"
	"errors"
	"testing"
)

func assemble(t *testing.T, cb *CodeBlock) []byte {
	t.Helper()
	length, err := cb.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	out := cb.Bytes()
	if len(out) != length {
		t.Fatalf("assemble returned %d but image has %d bytes", length, len(out))
	}
	if cb.ByteCount() != length {
		t.Fatalf("byte count %d does not match final length %d", cb.ByteCount(), length)
	}
	return out
}

func TestEmptyBlock(t *testing.T) {
	cb := New()
	length, err := cb.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if length != 0 {
		t.Fatalf("empty block assembled to %d bytes", length)
	}
}

func TestGen8TruncatesToLowByte(t *testing.T) {
	out := assemble(t, New().Gen8(0x1FF).Gen8(-1))
	if !bytes.Equal(out, []byte{0xFF, 0xFF}) {
		t.Fatalf("got % x", out)
	}
}

func TestGen16LittleEndian(t *testing.T) {
	out := assemble(t, New().Gen16(0x1234))
	if !bytes.Equal(out, []byte{0x34, 0x12}) {
		t.Fatalf("got % x", out)
	}
}

func TestGen16BigEndian(t *testing.T) {
	out := assemble(t, New(WithBigEndian()).Gen16(0x1234))
	if !bytes.Equal(out, []byte{0x12, 0x34}) {
		t.Fatalf("got % x", out)
	}
}

func TestGen32Negative(t *testing.T) {
	out := assemble(t, New().Gen32(-2))
	if !bytes.Equal(out, []byte{0xFE, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("got % x", out)
	}
}

func TestGen64BigEndian(t *testing.T) {
	out := assemble(t, New(WithBigEndian()).Gen64(0x0102030405060708))
	if !bytes.Equal(out, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("got % x", out)
	}
}

func TestGenNumberWidths(t *testing.T) {
	out := assemble(t, New().
		GenNumber(8, 0x11).
		GenNumber(16, 0x2233).
		GenNumber(32, 0x44556677))
	want := []byte{0x11, 0x33, 0x22, 0x77, 0x66, 0x55, 0x44}
	if !bytes.Equal(out, want) {
		t.Fatalf("got % x, want % x", out, want)
	}
}

func TestGenNumberInvalidWidth(t *testing.T) {
	cb := New().GenNumber(12, 5).Gen8(1)
	if _, err := cb.Assemble(); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("expected ErrInvalidWidth, got %v", err)
	}
	if cb.Err() == nil {
		t.Fatal("expected sticky error to be recorded")
	}
}

func TestGenBytes(t *testing.T) {
	out := assemble(t, New().GenBytes([]byte{0xDE, 0xAD}).GenBytes(nil).Gen8(0xBE))
	if !bytes.Equal(out, []byte{0xDE, 0xAD, 0xBE}) {
		t.Fatalf("got % x", out)
	}
}

func TestLabelPositions(t *testing.T) {
	cb := New()
	l := cb.NewLabel()
	cb.Gen8(0).Gen8(0).GenLabel(l).Gen8(0)
	assemble(t, cb)
	if l.Pos() != 2 {
		t.Fatalf("label at %d, want 2", l.Pos())
	}
	if !l.Placed() {
		t.Fatal("label not marked placed")
	}
}

func TestLabelNamesArePerBlock(t *testing.T) {
	a := New()
	b := New()
	if got := a.NewLabel().Name(); got != "L0" {
		t.Fatalf("first label of block a named %q", got)
	}
	if got := a.NewLabel().Name(); got != "L1" {
		t.Fatalf("second label of block a named %q", got)
	}
	if got := b.NewLabel().Name(); got != "L0" {
		t.Fatalf("first label of block b named %q", got)
	}
	if got := b.NewLabelID(42).Name(); got != "_42" {
		t.Fatalf("id label named %q", got)
	}
}

func TestLabelRedefinition(t *testing.T) {
	cb := New()
	l := cb.NewLabel()
	cb.GenLabel(l).Gen8(0).GenLabel(l)
	if _, err := cb.Assemble(); !errors.Is(err, ErrLabelRedefined) {
		t.Fatalf("expected ErrLabelRedefined, got %v", err)
	}
}

func TestStartPosShiftsPositions(t *testing.T) {
	cb := New(WithStartPos(0x100))
	l := cb.NewLabel()
	cb.Gen8(0).GenLabel(l)
	assemble(t, cb)
	if l.Pos() != 0x101 {
		t.Fatalf("label at %#x, want 0x101", l.Pos())
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	cb := New().Gen32(7)
	first, err := cb.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := cb.Assemble()
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if first != second || first != 4 {
		t.Fatalf("lengths %d and %d, want 4", first, second)
	}
}
