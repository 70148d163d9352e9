// Package jit provides the building blocks of a just-in-time code
// emission backend: an architecture-agnostic assembler with symbolic
// labels and size-relaxed deferred items, a linker for inter-block
// address references, executable memory management, and native
// entrypoint invocation.
package jit

import (
	"github.com/tinyforge/jit/internal/addr"
	"github.com/tinyforge/jit/internal/asm"
	"github.com/tinyforge/jit/internal/execmem"
	"github.com/tinyforge/jit/internal/link"
	"github.com/tinyforge/jit/internal/rtctx"
)

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from the internal packages
// -----------------------------------------------------------------------------

// CodeBlock accumulates emitted items and assembles them into a final
// byte image.
type CodeBlock = asm.CodeBlock

// Option configures a CodeBlock.
type Option = asm.Option

// Label marks a symbolic position in a code block.
type Label = asm.Label

// DeferredAlt is one sizing alternative of a deferred item.
type DeferredAlt = asm.DeferredAlt

// Emitter receives the bytes a deferred alternative produces.
type Emitter = asm.Emitter

// MachineCodeBlock is an assembled block landed in memory.
type MachineCodeBlock = asm.MachineCodeBlock

// RequiredSite is a linkable location of a machine code block.
type RequiredSite = asm.RequiredSite

// RequiredRef is the link-object capability of a required site.
type RequiredRef = asm.RequiredRef

// ProvidedRef is the link-object capability of a provided site.
type ProvidedRef = asm.ProvidedRef

// Address is a fixed-width machine address with checked arithmetic.
type Address = addr.Address

// Block is a region of allocated memory, executable or plain data.
type Block = execmem.Block

// RuntimeContext is the record passed to generated entrypoints.
type RuntimeContext = rtctx.Context

// Word is a machine word as stored in a RuntimeContext.
type Word = rtctx.Word

// NumHandlers is the size of the RuntimeContext handler table.
const NumHandlers = rtctx.NumHandlers

// MaxInvokeArgs bounds the extra arguments accepted by InvokeArgs.
const MaxInvokeArgs = execmem.MaxInvokeArgs

// Common sentinel errors.
var (
	ErrInvalidWidth         = asm.ErrInvalidWidth
	ErrLabelRedefined       = asm.ErrLabelRedefined
	ErrUnresolvedDeferred   = asm.ErrUnresolvedDeferred
	ErrDeferredSizeMismatch = asm.ErrDeferredSizeMismatch
	ErrOriginBackwards      = asm.ErrOriginBackwards

	ErrAddressOverflow      = addr.ErrAddressOverflow
	ErrAddressUnderflow     = addr.ErrAddressUnderflow
	ErrAddressWidthMismatch = addr.ErrAddressWidthMismatch

	ErrLinkValueLength = link.ErrLinkValueLength

	ErrOutOfBounds = execmem.ErrOutOfBounds
	ErrFreed       = execmem.ErrFreed

	// ErrUnsupported indicates executable memory or native invocation is
	// not available on this platform.
	// Use errors.Is(err, jit.ErrUnsupported) to check and skip tests in CI.
	ErrUnsupported = execmem.ErrUnsupported
)

// -----------------------------------------------------------------------------
// CodeBlock construction
// -----------------------------------------------------------------------------

// New creates an empty code block.
func New(opts ...Option) *CodeBlock { return asm.New(opts...) }

// WithStartPos sets the block's base position.
func WithStartPos(pos int) Option { return asm.WithStartPos(pos) }

// WithBigEndian selects big-endian multi-byte emission.
func WithBigEndian() Option { return asm.WithBigEndian() }

// WithListing enables listing capture during emission.
func WithListing() Option { return asm.WithListing() }

// -----------------------------------------------------------------------------
// Addresses
// -----------------------------------------------------------------------------

// AddressFromUint builds an address of the given bit width from a value.
func AddressFromUint(value uint64, width int, bigEndian bool) (Address, error) {
	return addr.FromUint(value, width, bigEndian)
}

// AddressFromBytes builds an address from a 4 or 8 byte serialization.
func AddressFromBytes(b []byte, bigEndian bool) (Address, error) {
	return addr.FromBytes(b, bigEndian)
}

// AddressFromPointer builds a host-width little-endian address.
func AddressFromPointer(p uintptr) Address { return addr.FromPointer(p) }

// -----------------------------------------------------------------------------
// Linking and invocation
// -----------------------------------------------------------------------------

// Link patches every required site of a landed block.
func Link(mcb *MachineCodeBlock) error { return link.Block(mcb) }

// LinkAll links a group of blocks that share link objects.
func LinkAll(mcbs ...*MachineCodeBlock) error { return link.Blocks(mcbs...) }

// NewRuntimeContext builds a context with the reference handler table.
func NewRuntimeContext(stackLimit, heapLimit Word) *RuntimeContext {
	return rtctx.New(stackLimit, heapLimit)
}

// Invoke calls the block's entrypoint with a runtime context.
func Invoke(b *Block, ctx *RuntimeContext) (uintptr, error) {
	return execmem.Invoke(b, ctx)
}

// InvokeArgs is Invoke with up to MaxInvokeArgs extra word arguments.
func InvokeArgs(b *Block, ctx *RuntimeContext, args ...uintptr) (uintptr, error) {
	return execmem.InvokeArgs(b, ctx, args...)
}

// AllocExec allocates an executable memory block.
func AllocExec(size int) (*Block, error) { return execmem.AllocExec(size) }

// AllocData allocates a plain data block.
func AllocData(size int) (*Block, error) { return execmem.AllocData(size) }
