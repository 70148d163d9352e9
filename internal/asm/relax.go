package asm

import (
	"fmt"
)

// fixup is one entry of the relaxation spine: a label or deferred item plus
// the count of plain bytes separating it from the previous entry.
type fixup struct {
	span  int
	label *Label
	def   *deferred
}

// Assemble resolves every label position and deferred alternative through
// iterative relaxation, flattens the item stream to its final bytes, and
// returns the block's final byte length. Assembling an already-assembled
// block is a no-op returning the same length.
//
// Convergence holds because a deferred item's selected alternative index
// never decreases and the last alternative always applies, so the pair
// (sum of indices, sum of sizes) is non-decreasing and bounded.
func (cb *CodeBlock) Assemble() (int, error) {
	if cb.err != nil {
		return 0, cb.err
	}
	if cb.assembled {
		return cb.finalLen, nil
	}

	fixups := cb.buildFixups()

	// Upper bound on passes; exceeding it means an alternative ordering
	// violated the monotonic-size contract.
	maxPasses := 2
	maxAlts := 0
	for _, f := range fixups {
		maxPasses++
		if f.def != nil && len(f.def.alts) > maxAlts {
			maxAlts = len(f.def.alts)
		}
	}
	maxPasses += len(fixups) * maxAlts

	for pass := 0; ; pass++ {
		if pass > maxPasses {
			return 0, cb.fail(fmt.Errorf("assemble: relaxation did not settle after %d passes", pass)).err
		}
		changed := false

		// Size every deferred item at its current walk position.
		pos := cb.startPos
		for _, f := range fixups {
			pos += f.span
			if f.def == nil {
				continue
			}
			size, err := cb.sizeDeferred(f.def, pos)
			if err != nil {
				return 0, cb.fail(err).err
			}
			if size != f.def.size {
				f.def.size = size
				changed = true
			}
			pos += f.def.size
		}

		// Reposition labels under the updated sizes.
		pos = cb.startPos
		for _, f := range fixups {
			pos += f.span
			if f.def != nil {
				pos += f.def.size
				continue
			}
			if f.label.pos != pos {
				f.label.pos = pos
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	if err := cb.flatten(); err != nil {
		return 0, cb.fail(err).err
	}
	cb.assembled = true
	cb.finalLen = cb.ByteCount()
	return cb.finalLen, nil
}

// buildFixups walks the item stream, provisionally positioning labels as if
// every deferred item were empty, and collects the relaxation spine.
func (cb *CodeBlock) buildFixups() []fixup {
	var fixups []fixup
	span := 0
	pos := cb.startPos
	for _, it := range cb.items {
		switch it.kind {
		case itemByte:
			span++
			pos++
		case itemLabel:
			it.label.pos = pos
			fixups = append(fixups, fixup{span: span, label: it.label})
			span = 0
		case itemDeferred:
			it.def.current = 0
			it.def.size = 0
			fixups = append(fixups, fixup{span: span, def: it.def})
			span = 0
		}
	}
	return fixups
}

// sizeDeferred advances the deferred item's alternative index past every
// alternative whose check rejects the position and returns the size of the
// first one that applies. The index is never rewound, even when a
// previously accepted alternative stops applying after positions shift.
func (cb *CodeBlock) sizeDeferred(d *deferred, pos int) (int, error) {
	for d.current < len(d.alts) {
		size, ok, err := d.alts[d.current].Check(cb, pos)
		if err != nil {
			return 0, fmt.Errorf("deferred item %d, alternative %d: %w", d.index, d.current, err)
		}
		if ok {
			return size, nil
		}
		d.current++
	}
	return 0, fmt.Errorf("%w: item %d, position %d", ErrUnresolvedDeferred, d.index, pos)
}

// flatten rebuilds the item stream with every deferred item replaced by the
// bytes of its selected alternative, verifying label positions and produced
// sizes along the way.
func (cb *CodeBlock) flatten() error {
	out := make([]item, 0, len(cb.items))
	pos := cb.startPos
	for _, it := range cb.items {
		switch it.kind {
		case itemByte, itemListing:
			out = append(out, it)
			pos += it.byteCount()
		case itemLabel:
			if it.label.pos != pos {
				return fmt.Errorf("assemble: label %s settled at %d but emitted at %d", it.label.name, it.label.pos, pos)
			}
			out = append(out, it)
		case itemDeferred:
			e := &Emitter{bigEndian: cb.bigEndian}
			if err := it.def.alts[it.def.current].Produce(e, pos); err != nil {
				return fmt.Errorf("deferred item %d, alternative %d: %w", it.def.index, it.def.current, err)
			}
			if len(e.buf) != it.def.size {
				return fmt.Errorf("%w: item %d produced %d bytes, sized %d",
					ErrDeferredSizeMismatch, it.def.index, len(e.buf), it.def.size)
			}
			for _, b := range e.buf {
				out = append(out, item{kind: itemByte, b: b})
			}
			pos += it.def.size
		}
	}
	cb.items = out
	return nil
}
