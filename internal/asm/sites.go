package asm

import (
	"fmt"

	"github.com/tinyforge/jit/internal/addr"
)

// RequiredRef is the capability a required site needs from its link object:
// the bit width of the patched value and the bytes to write once the site's
// own host address is known. Width must be a positive multiple of 8.
type RequiredRef interface {
	Width() int
	LinkValue(dst addr.Address) ([]byte, error)
}

// ProvidedRef is the capability a provided site needs from its link object:
// receiving the site's host address once the block lands in memory.
type ProvidedRef interface {
	SetAddr(a addr.Address)
}

type requiredSite struct {
	label *Label
	ref   RequiredRef
}

type providedSite struct {
	label *Label
	ref   ProvidedRef
}

// GenRequired reserves a placeholder of ref.Width()/8 zero bytes at the
// current position and registers the site for linking.
func (cb *CodeBlock) GenRequired(ref RequiredRef) *CodeBlock {
	width := ref.Width()
	if width <= 0 || width%8 != 0 {
		return cb.fail(fmt.Errorf("gen required: %w: %d bits", ErrInvalidWidth, width))
	}
	anchor := cb.NewLabel()
	cb.GenLabel(anchor)
	for i := 0; i < width/8; i++ {
		cb.Gen8(0)
	}
	cb.required = append(cb.required, requiredSite{label: anchor, ref: ref})
	return cb
}

// GenProvided marks the current position as an address supplier for
// matching required sites. No bytes are reserved.
func (cb *CodeBlock) GenProvided(ref ProvidedRef) *CodeBlock {
	anchor := cb.NewLabel()
	cb.GenLabel(anchor)
	cb.provided = append(cb.provided, providedSite{label: anchor, ref: ref})
	return cb
}
