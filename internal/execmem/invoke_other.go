//go:build !((darwin || linux) && (amd64 || arm64))

package execmem

import "github.com/tinyforge/jit/internal/rtctx"

// MaxInvokeArgs bounds the extra machine-word arguments passed after the
// context pointer.
const MaxInvokeArgs = 3

// Invoke is unavailable on platforms without native call support.
func Invoke(b *Block, ctx *rtctx.Context) (uintptr, error) {
	return 0, ErrUnsupported
}

// InvokeArgs is unavailable on platforms without native call support.
func InvokeArgs(b *Block, ctx *rtctx.Context, args ...uintptr) (uintptr, error) {
	return 0, ErrUnsupported
}
