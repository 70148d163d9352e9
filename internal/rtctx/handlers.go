//go:build (darwin || freebsd || linux || windows) && (amd64 || arm64)

package rtctx

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	refOnce     sync.Once
	refHandlers [NumHandlers]Word
)

// ReferenceHandlers returns the C-callable addresses of the three reference
// handlers: handler 0 prints a greeting and returns 11, handler 1 prints
// its argument and returns 22, handler 2 returns the sum of its two
// arguments. The callbacks are materialized once and stay valid for the
// process lifetime.
func ReferenceHandlers() [NumHandlers]Word {
	refOnce.Do(func() {
		refHandlers[0] = purego.NewCallback(func() uintptr {
			fmt.Println("hello world!")
			return 11
		})
		refHandlers[1] = purego.NewCallback(func(x uintptr) uintptr {
			fmt.Printf("x = %d\n", int(x))
			return 22
		})
		refHandlers[2] = purego.NewCallback(func(x, y uintptr) uintptr {
			return x + y
		})
	})
	return refHandlers
}
