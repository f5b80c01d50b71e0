package ijvm

import (
	"bufio"
	"io"
	"os"
)

// heapArray is one slot of the heap-array table. A nil *heapArray in the
// table (not a nil data slice) marks a freed slot.
type heapArray struct {
	data []Word
}

// VM is a single, strictly sequential instance of the engine. All state
// belongs exclusively to the instance — there is no shared or locked
// state, so concurrent access to one VM from multiple goroutines is not
// supported; run independent VMs in independent goroutines instead.
type VM struct {
	img Image
	pc  int

	operand []Word
	locals  []Word

	savedFrames [][]Word
	returnAddrs []int
	savedDepths []int

	heap   []*heapArray
	gcRefs []Word

	in     io.ByteReader
	out    io.ByteWriter
	errOut io.ByteWriter

	// Trap, if set, is called whenever a stack- or locals-underflow
	// precondition silently no-ops an opcode instead of panicking. It is
	// purely observational: returning from it never changes behavior.
	Trap func(op Bytecode, reason string)
}

// New builds a VM ready to execute img, with the operand stack, locals
// and heap empty and pc at the start of the text segment. Default byte
// streams are buffered stdin/stdout/stderr; override with SetInput,
// SetOutput and SetError before calling Run or Step.
func New(img Image) *VM {
	vm := &VM{img: img}
	vm.SetInput(bufio.NewReader(os.Stdin))
	vm.SetOutput(bufio.NewWriter(os.Stdout))
	vm.SetError(bufio.NewWriter(os.Stderr))
	return vm
}

// SetInput overrides the byte source consumed by the In opcode.
func (vm *VM) SetInput(r io.ByteReader) { vm.in = r }

// SetOutput overrides the byte sink written by the Out opcode.
func (vm *VM) SetOutput(w io.ByteWriter) { vm.out = w }

// SetError overrides the byte sink written by Err and by a failed
// array-bounds check.
func (vm *VM) SetError(w io.ByteWriter) { vm.errOut = w }

// Flush pushes any buffered output through to its underlying writer, for
// sinks (like bufio.Writer) that need it.
func (vm *VM) Flush() {
	type flusher interface{ Flush() error }
	if f, ok := vm.out.(flusher); ok {
		f.Flush()
	}
	if f, ok := vm.errOut.(flusher); ok {
		f.Flush()
	}
}

// Destroy releases every engine-owned slice so a long-lived host process
// doesn't hold a finished program's memory.
func (vm *VM) Destroy() {
	vm.heap = nil
	vm.gcRefs = nil
	vm.savedFrames = nil
	vm.returnAddrs = nil
	vm.savedDepths = nil
	vm.operand = nil
	vm.locals = nil
}

// Finished reports whether pc has run off the end of the text segment —
// the only termination condition the engine recognizes (reached on Halt,
// on an unrecoverable array-bounds error, or by simply running out of
// instructions).
func (vm *VM) Finished() bool { return vm.pc >= len(vm.img.Text) }

// ProgramCounter is the byte offset of the next instruction to execute.
func (vm *VM) ProgramCounter() int { return vm.pc }

// Instruction is the raw opcode byte at the current pc. Only valid when
// !Finished().
func (vm *VM) Instruction() Bytecode { return Bytecode(vm.img.Text[vm.pc]) }

// TOS returns the top of the operand stack without popping it.
func (vm *VM) TOS() Word { return vm.peek() }

// StackDepth is the current operand-stack size.
func (vm *VM) StackDepth() int { return vm.depth() }

// LocalVariable returns local slot i of the active frame.
func (vm *VM) LocalVariable(i int) Word { return vm.locals[i] }

// LocalCount is the number of local slots in the active frame.
func (vm *VM) LocalCount() int { return len(vm.locals) }

// Constant returns constant-pool entry i.
func (vm *VM) Constant(i int) Word { return vm.img.Constant(i) }

// Text exposes the raw text (code) segment of the loaded image.
func (vm *VM) Text() []byte { return vm.img.Text }

// TextSize is the length in bytes of the text segment.
func (vm *VM) TextSize() int { return len(vm.img.Text) }

// CallStackSize is the number of saved call depths minus one: -1 at the
// outermost frame, 0 inside one invocation. The number of active
// invocations is this value plus one.
func (vm *VM) CallStackSize() int { return len(vm.savedDepths) - 1 }

// IsHeapFreed reports whether the heap array ref points to has already
// been collected by GC.
func (vm *VM) IsHeapFreed(ref Word) bool {
	slot := int(ref - Indicator)
	return slot < 0 || slot >= len(vm.heap) || vm.heap[slot] == nil
}

func (vm *VM) push(v Word) { vm.operand = append(vm.operand, v) }

func (vm *VM) pop() Word {
	n := len(vm.operand) - 1
	v := vm.operand[n]
	vm.operand = vm.operand[:n]
	return v
}

func (vm *VM) peek() Word { return vm.operand[len(vm.operand)-1] }

func (vm *VM) depth() int { return len(vm.operand) }

func (vm *VM) ensureLocals(n int) {
	if n <= len(vm.locals) {
		return
	}
	grown := make([]Word, n)
	copy(grown, vm.locals)
	vm.locals = grown
}

func (vm *VM) trap(op Bytecode, reason string) {
	if vm.Trap != nil {
		vm.Trap(op, reason)
	}
}

func writeString(w io.ByteWriter, s string) {
	for i := 0; i < len(s); i++ {
		w.WriteByte(s[i])
	}
}
