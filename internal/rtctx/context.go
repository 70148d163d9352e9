// Package rtctx defines the runtime context record handed to every emitted
// entrypoint, and the reference native handlers generated code may call
// back into.
package rtctx

// Word is the host machine word, the unit of the entrypoint ABI.
type Word = uintptr

// NumHandlers is the handler-table size agreed between the instruction
// encoder and this runtime.
const NumHandlers = 3

// Context is passed by address as the sole leading argument of every
// emitted entrypoint. Its wire layout is fixed: stack limit word, heap
// limit word, then the contiguous handler address table. The struct holds
// only word fields, so the Go layout matches the wire layout exactly.
//
// A Context must stay alive for the duration of each invocation; nested
// invocations need their own instance.
type Context struct {
	StackLimit Word
	HeapLimit  Word
	Handlers   [NumHandlers]Word
}

// New builds a context with the given allocation limits and the reference
// handler table.
func New(stackLimit, heapLimit Word) *Context {
	return &Context{
		StackLimit: stackLimit,
		HeapLimit:  heapLimit,
		Handlers:   ReferenceHandlers(),
	}
}
