package ijvm

// execInvokevirtual transfers control to the method named by the
// constant-pool entry at the 16-bit immediate: it saves the caller's
// locals and return address, then enters the method exactly as
// execTailcall does.
func (vm *VM) execInvokevirtual() {
	callSite := vm.pc
	idx := shortArg(vm.img.Text, callSite)
	target := int(vm.img.Constant(int(idx)))

	frame := make([]Word, len(vm.locals))
	copy(frame, vm.locals)
	vm.savedFrames = append(vm.savedFrames, frame)
	vm.returnAddrs = append(vm.returnAddrs, callSite+3)

	vm.enterMethod(target)

	vm.savedDepths = append(vm.savedDepths, vm.depth())
}

// execTailcall enters the called method without preserving the current
// frame: no return address or saved locals are pushed, so Ireturn inside
// the callee returns to whoever called the current method, not to here.
func (vm *VM) execTailcall() {
	target := int(vm.img.Constant(int(shortArg(vm.img.Text, vm.pc))))
	vm.enterMethod(target)
}

// enterMethod reads the two-field method header at target — a 16-bit
// arg count followed by a 16-bit local count — resizes locals to
// max(argCount, localCount), transfers the top argCount operand-stack
// words into locals[0:argCount] preserving order (oldest at index 0),
// and positions pc at the first instruction of the method body.
func (vm *VM) enterMethod(target int) {
	text := vm.img.Text
	argCount := be16(text, target)
	localCount := be16(text, target+2)

	size := argCount
	if localCount > size {
		size = localCount
	}

	newLocals := make([]Word, size)
	base := len(vm.operand) - argCount
	for i := 0; i < argCount; i++ {
		newLocals[i] = vm.operand[base+i]
	}
	vm.operand = vm.operand[:base]
	vm.locals = newLocals

	vm.pc = target + 4
}

// execIreturn pops the top of the operand stack as the return value,
// restores pc, locals and the caller's stack depth from the call
// stacks, then pushes the return value back on. An IRETURN with no
// active invocation (the call stacks are empty) is a no-op, matching
// the reference engine's guard against returning from the outermost
// frame.
func (vm *VM) execIreturn() {
	if len(vm.returnAddrs) == 0 {
		vm.trap(Ireturn, "no active invocation")
		return
	}

	n := len(vm.returnAddrs) - 1
	vm.pc = vm.returnAddrs[n]
	vm.returnAddrs = vm.returnAddrs[:n]

	rv := vm.peek()

	d := len(vm.savedDepths) - 1
	depth := vm.savedDepths[d]
	vm.savedDepths = vm.savedDepths[:d]
	vm.operand = append(vm.operand[:depth], rv)

	f := len(vm.savedFrames) - 1
	vm.locals = vm.savedFrames[f]
	vm.savedFrames = vm.savedFrames[:f]
}
