// Package link patches the required sites of landed machine code blocks
// with the host addresses their link objects resolve to.
package link

import (
	"errors"
	"fmt"

	"github.com/tinyforge/jit/internal/asm"
)

// ErrLinkValueLength reports a link object that produced bytes of a length
// different from its declared width.
var ErrLinkValueLength = errors.New("link value length mismatch")

// Block patches every required site of a single block in place. Each site's
// link object is asked for the bytes to write given the site's own host
// address, and those bytes replace the placeholder.
func Block(mcb *asm.MachineCodeBlock) error {
	blk := mcb.Block()
	for _, site := range mcb.RequiredSites() {
		dst, err := blk.Addr(site.Offset)
		if err != nil {
			return fmt.Errorf("link site at offset %d: %w", site.Offset, err)
		}
		val, err := site.Ref.LinkValue(dst)
		if err != nil {
			return fmt.Errorf("link site at offset %d: %w", site.Offset, err)
		}
		if want := site.Ref.Width() / 8; len(val) != want {
			return fmt.Errorf("link site at offset %d: %w: got %d bytes, want %d",
				site.Offset, ErrLinkValueLength, len(val), want)
		}
		if err := blk.Write(site.Offset, val); err != nil {
			return fmt.Errorf("link site at offset %d: %w", site.Offset, err)
		}
	}
	return nil
}

// Blocks links a group of blocks after all of them have landed, so provided
// addresses in any block are visible to required sites in every other.
func Blocks(mcbs ...*asm.MachineCodeBlock) error {
	for i, mcb := range mcbs {
		if err := Block(mcb); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}
