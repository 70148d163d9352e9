// Package asm implements a generic, architecture-agnostic code assembler.
// A CodeBlock accumulates a stream of bytes and symbolic items driven by an
// instruction encoder, resolves label positions through iterative
// relaxation, and serializes the result into executable memory. The package
// knows nothing about any particular instruction set; encoders sit on top
// of the primitive emission surface.
package asm

import (
	"fmt"
)

// CodeBlock is an in-progress assembly unit. Emission methods are chainable
// and record the first contract violation; Assemble surfaces it. A block is
// not safe for concurrent use.
type CodeBlock struct {
	startPos   int
	bigEndian  bool
	useListing bool

	items    []item
	required []requiredSite
	provided []providedSite

	labelSeq  int
	err       error
	assembled bool
	finalLen  int
}

// Option configures a CodeBlock.
type Option func(*CodeBlock)

// WithStartPos sets the byte offset used as the block's base position.
func WithStartPos(pos int) Option {
	return func(cb *CodeBlock) { cb.startPos = pos }
}

// WithBigEndian makes multi-byte emitters write most-significant byte first.
func WithBigEndian() Option {
	return func(cb *CodeBlock) { cb.bigEndian = true }
}

// WithListing enables collection of listing annotations.
func WithListing() Option {
	return func(cb *CodeBlock) { cb.useListing = true }
}

// New creates an empty code block at start position 0, little-endian, with
// listing collection disabled.
func New(opts ...Option) *CodeBlock {
	cb := &CodeBlock{}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// StartPos returns the block's base position.
func (cb *CodeBlock) StartPos() int { return cb.startPos }

// BigEndian reports the block's byte order for multi-byte emitters.
func (cb *CodeBlock) BigEndian() bool { return cb.bigEndian }

// Err returns the first recorded usage error, if any.
func (cb *CodeBlock) Err() error { return cb.err }

func (cb *CodeBlock) fail(err error) *CodeBlock {
	if cb.err == nil {
		cb.err = err
	}
	return cb
}

// Gen8 appends the low byte of n.
func (cb *CodeBlock) Gen8(n int64) *CodeBlock {
	cb.items = append(cb.items, item{kind: itemByte, b: byte(n)})
	return cb
}

// Gen16 appends n as two bytes in the block's byte order.
func (cb *CodeBlock) Gen16(n int64) *CodeBlock {
	return cb.genInt(16, n)
}

// Gen32 appends n as four bytes in the block's byte order.
func (cb *CodeBlock) Gen32(n int64) *CodeBlock {
	return cb.genInt(32, n)
}

// Gen64 appends n as eight bytes in the block's byte order.
func (cb *CodeBlock) Gen64(n int64) *CodeBlock {
	return cb.genInt(64, n)
}

func (cb *CodeBlock) genInt(width int, n int64) *CodeBlock {
	for _, b := range appendInt(nil, width, n, cb.bigEndian) {
		cb.items = append(cb.items, item{kind: itemByte, b: b})
	}
	return cb
}

// GenNumber appends n at the given width. Widths other than 8, 16, 32 and
// 64 are a usage error.
func (cb *CodeBlock) GenNumber(width int, n int64) *CodeBlock {
	switch width {
	case 8:
		return cb.Gen8(n)
	case 16, 32, 64:
		return cb.genInt(width, n)
	default:
		return cb.fail(fmt.Errorf("gen number: %w: %d bits", ErrInvalidWidth, width))
	}
}

// GenBytes appends a run of literal bytes.
func (cb *CodeBlock) GenBytes(p []byte) *CodeBlock {
	for _, b := range p {
		cb.items = append(cb.items, item{kind: itemByte, b: b})
	}
	return cb
}

// GenListing records a text annotation at the current stream position.
// Annotations contribute no bytes and are only consumed by ListingString.
// Without WithListing the call is a no-op.
func (cb *CodeBlock) GenListing(text string) *CodeBlock {
	if !cb.useListing {
		return cb
	}
	cb.items = append(cb.items, item{kind: itemListing, text: text})
	return cb
}

// NewLabel creates a fresh unplaced label with an auto-generated name of
// the form L<seq>. The sequence is owned by the block, so distinct blocks
// produce reproducible names.
func (cb *CodeBlock) NewLabel() *Label {
	l := &Label{name: fmt.Sprintf("L%d", cb.labelSeq), pos: posUnset}
	cb.labelSeq++
	return l
}

// NewLabelID creates a fresh unplaced label carrying an explicit numeric
// id, rendered as _<id>.
func (cb *CodeBlock) NewLabelID(id int) *Label {
	return &Label{name: fmt.Sprintf("_%d", id), pos: posUnset}
}

// GenLabel places a label at the current stream tail. Placing the same
// label twice is a usage error.
func (cb *CodeBlock) GenLabel(l *Label) *CodeBlock {
	if l.placed {
		return cb.fail(fmt.Errorf("%w: %s", ErrLabelRedefined, l.name))
	}
	l.placed = true
	cb.items = append(cb.items, item{kind: itemLabel, label: l})
	return cb
}

// GenDeferred appends an item whose encoding is selected during assembly
// from the given alternatives, ordered from most to least compact. The last
// alternative must apply at any position.
func (cb *CodeBlock) GenDeferred(alts ...DeferredAlt) *CodeBlock {
	if len(alts) == 0 {
		return cb.fail(fmt.Errorf("gen deferred: at least one alternative required"))
	}
	cb.items = append(cb.items, item{kind: itemDeferred, def: &deferred{
		alts:  alts,
		index: len(cb.items),
	}})
	return cb
}

// Align pads with fill bytes up to the next position p such that
// p = offset (mod multiple).
func (cb *CodeBlock) Align(multiple int, offset int, fill byte) *CodeBlock {
	if multiple <= 0 {
		return cb.fail(fmt.Errorf("align: multiple must be positive, got %d", multiple))
	}
	return cb.GenDeferred(DeferredAlt{
		Check: func(_ *CodeBlock, pos int) (int, bool, error) {
			pad := ((offset-pos)%multiple + multiple) % multiple
			return pad, true, nil
		},
		Produce: func(e *Emitter, pos int) error {
			pad := ((offset-pos)%multiple + multiple) % multiple
			for i := 0; i < pad; i++ {
				e.Gen8(int64(fill))
			}
			return nil
		},
	})
}

// Origin pads with fill bytes until the current position reaches target.
// A target already behind the current position is a usage error surfaced
// by Assemble.
func (cb *CodeBlock) Origin(target int, fill byte) *CodeBlock {
	return cb.GenDeferred(DeferredAlt{
		Check: func(_ *CodeBlock, pos int) (int, bool, error) {
			if target < pos {
				return 0, false, fmt.Errorf("%w: target %d, position %d", ErrOriginBackwards, target, pos)
			}
			return target - pos, true, nil
		},
		Produce: func(e *Emitter, pos int) error {
			for i := pos; i < target; i++ {
				e.Gen8(int64(fill))
			}
			return nil
		},
	})
}

// ByteCount returns the block's current byte length under the current
// deferred-alternative selection.
func (cb *CodeBlock) ByteCount() int {
	count := 0
	for _, it := range cb.items {
		count += it.byteCount()
	}
	return count
}

// Bytes returns the block's byte image. It is only meaningful after
// Assemble has flattened the stream.
func (cb *CodeBlock) Bytes() []byte {
	out := make([]byte, 0, cb.ByteCount())
	for _, it := range cb.items {
		if it.kind == itemByte {
			out = append(out, it.b)
		}
	}
	return out
}
