package asm

import "fmt"

type itemKind uint8

const (
	itemByte itemKind = iota
	itemLabel
	itemDeferred
	itemListing
)

// item is one element of a code block's stream. The kind tag selects which
// of the payload fields is meaningful.
type item struct {
	kind  itemKind
	b     byte
	label *Label
	def   *deferred
	text  string
}

func (it item) byteCount() int {
	switch it.kind {
	case itemByte:
		return 1
	case itemDeferred:
		return it.def.size
	default:
		return 0
	}
}

// Label marks a position in a code block. Its position is unresolved until
// the owning block has been assembled. Labels are compared by identity.
type Label struct {
	name   string
	pos    int
	placed bool
}

const posUnset = -1

// Name returns the label's display name.
func (l *Label) Name() string { return l.name }

// Pos returns the label's resolved byte position. Before assembly the value
// is provisional; before placement it is -1.
func (l *Label) Pos() int { return l.pos }

// Placed reports whether the label has been inserted into a block.
func (l *Label) Placed() bool { return l.placed }

// DeferredAlt is one encoding alternative of a deferred item. Check reports
// the byte length the alternative would occupy at the given position, or
// ok=false when the alternative does not apply there. Produce emits exactly
// that many bytes. The final alternative of a deferred item must always
// apply.
type DeferredAlt struct {
	Check   func(cb *CodeBlock, pos int) (size int, ok bool, err error)
	Produce func(e *Emitter, pos int) error
}

// deferred is a size-variable item whose encoding is chosen by relaxation.
// current only ever moves forward, which is what bounds the fix-point.
type deferred struct {
	alts    []DeferredAlt
	current int
	size    int
	index   int // stream index, for error reporting
}

// Emitter collects the bytes produced for one deferred alternative. It
// shares the numeric emission helpers of CodeBlock so produce functions can
// be written against the same surface.
type Emitter struct {
	buf       []byte
	bigEndian bool
}

// Gen8 appends the low byte of n.
func (e *Emitter) Gen8(n int64) *Emitter {
	e.buf = append(e.buf, byte(n))
	return e
}

// Gen16 appends n as two bytes in the block's byte order.
func (e *Emitter) Gen16(n int64) *Emitter {
	e.buf = appendInt(e.buf, 16, n, e.bigEndian)
	return e
}

// Gen32 appends n as four bytes in the block's byte order.
func (e *Emitter) Gen32(n int64) *Emitter {
	e.buf = appendInt(e.buf, 32, n, e.bigEndian)
	return e
}

// Gen64 appends n as eight bytes in the block's byte order.
func (e *Emitter) Gen64(n int64) *Emitter {
	e.buf = appendInt(e.buf, 64, n, e.bigEndian)
	return e
}

// GenNumber appends n at the given width (8, 16, 32 or 64 bits).
func (e *Emitter) GenNumber(width int, n int64) error {
	switch width {
	case 8:
		e.Gen8(n)
	case 16:
		e.Gen16(n)
	case 32:
		e.Gen32(n)
	case 64:
		e.Gen64(n)
	default:
		return fmt.Errorf("%w: %d bits", ErrInvalidWidth, width)
	}
	return nil
}

// GenBytes appends raw bytes.
func (e *Emitter) GenBytes(p []byte) *Emitter {
	e.buf = append(e.buf, p...)
	return e
}

// Len reports the number of bytes emitted so far.
func (e *Emitter) Len() int { return len(e.buf) }

// appendInt serializes the low width bits of n, interpreting negative
// values as their two's-complement bit pattern of the target width.
func appendInt(buf []byte, width int, n int64, bigEndian bool) []byte {
	count := width / 8
	if bigEndian {
		for k := count - 1; k >= 0; k-- {
			buf = append(buf, byte(n>>(8*k)))
		}
	} else {
		for k := 0; k < count; k++ {
			buf = append(buf, byte(n>>(8*k)))
		}
	}
	return buf
}
