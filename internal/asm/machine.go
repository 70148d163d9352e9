package asm

import (
	"fmt"

	"github.com/tinyforge/jit/internal/execmem"
)

// RequiredSite is a linkable location of a machine code block: the byte
// offset of its placeholder and the link object that produces its bytes.
type RequiredSite struct {
	Offset int
	Ref    RequiredRef
}

// MachineCodeBlock is an assembled block landed in memory: the byte image
// in an execmem block plus the required sites the linker still has to
// patch. Provided sites have already been pushed their addresses.
type MachineCodeBlock struct {
	block    *execmem.Block
	required []RequiredSite
}

// Block returns the underlying memory block.
func (m *MachineCodeBlock) Block() *execmem.Block { return m.block }

// RequiredSites returns the block's linkable sites in emission order.
func (m *MachineCodeBlock) RequiredSites() []RequiredSite {
	return append([]RequiredSite(nil), m.required...)
}

// Free releases the underlying memory block.
func (m *MachineCodeBlock) Free() error { return m.block.Free() }

// AssembleToMachineCodeBlock assembles the block, copies the final bytes
// into freshly allocated executable memory, pushes the resulting host
// addresses into every provided site, and records the required sites for
// the linker.
func (cb *CodeBlock) AssembleToMachineCodeBlock() (*MachineCodeBlock, error) {
	return cb.assembleTo(execmem.AllocExec)
}

// AssembleToDataBlock is AssembleToMachineCodeBlock into a plain data
// block. The result can be linked and inspected but not invoked.
func (cb *CodeBlock) AssembleToDataBlock() (*MachineCodeBlock, error) {
	return cb.assembleTo(execmem.AllocData)
}

func (cb *CodeBlock) assembleTo(alloc func(int) (*execmem.Block, error)) (*MachineCodeBlock, error) {
	length, err := cb.Assemble()
	if err != nil {
		return nil, err
	}
	block, err := alloc(length)
	if err != nil {
		return nil, fmt.Errorf("assemble to machine code block: %w", err)
	}
	if err := block.Write(0, cb.Bytes()); err != nil {
		return nil, fmt.Errorf("assemble to machine code block: %w", err)
	}

	base, err := block.Addr(0)
	if err != nil {
		return nil, fmt.Errorf("assemble to machine code block: %w", err)
	}
	for _, site := range cb.provided {
		// Derived from the base rather than Block.Addr so that a provided
		// site at the very end of the image, one past its last byte, still
		// receives its address.
		a, err := base.AddOffset(int64(site.label.pos - cb.startPos))
		if err != nil {
			return nil, fmt.Errorf("provided site %s: %w", site.label.name, err)
		}
		site.ref.SetAddr(a)
	}

	mcb := &MachineCodeBlock{block: block}
	for _, site := range cb.required {
		mcb.required = append(mcb.required, RequiredSite{
			Offset: site.label.pos - cb.startPos,
			Ref:    site.ref,
		})
	}
	return mcb, nil
}
