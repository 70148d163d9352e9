//go:build (darwin || linux) && (amd64 || arm64)

package execmem

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyforge/jit/internal/rtctx"
)

// MaxInvokeArgs bounds the extra machine-word arguments passed after the
// context pointer.
const MaxInvokeArgs = 3

// Invoke treats the block's first byte as the entry of a native function
// taking a pointer to a runtime context and returning a machine word, calls
// it, and returns the word. The entrypoint may reenter the runtime through
// the context's handler table; nested invocations must each use their own
// context.
func Invoke(b *Block, ctx *rtctx.Context) (uintptr, error) {
	return InvokeArgs(b, ctx)
}

// InvokeArgs is Invoke with up to MaxInvokeArgs extra machine-word
// arguments passed by value after the context pointer, per the host C ABI.
func InvokeArgs(b *Block, ctx *rtctx.Context, args ...uintptr) (uintptr, error) {
	if b.freed {
		return 0, ErrFreed
	}
	if len(args) > MaxInvokeArgs {
		return 0, fmt.Errorf("invoke: at most %d extra arguments, got %d", MaxInvokeArgs, len(args))
	}
	callArgs := make([]uintptr, 0, 1+len(args))
	callArgs = append(callArgs, uintptr(unsafe.Pointer(ctx)))
	callArgs = append(callArgs, args...)

	r1, _, _ := purego.SyscallN(b.Base(), callArgs...)
	runtime.KeepAlive(ctx)
	runtime.KeepAlive(b)
	return r1, nil
}
