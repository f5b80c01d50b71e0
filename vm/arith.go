package ijvm

// execBipush pushes the sign-extended byte immediate. Always succeeds —
// pushing never has a precondition.
func (vm *VM) execBipush() {
	v := Word(int8(vm.img.Text[vm.pc+1]))
	vm.push(v)
	vm.pc += 2
}

// execLdcW pushes the constant-pool entry named by the 16-bit immediate.
func (vm *VM) execLdcW() {
	idx := shortArg(vm.img.Text, vm.pc)
	vm.push(vm.img.Constant(int(idx)))
	vm.pc += 3
}

func (vm *VM) execDup() {
	if vm.depth() >= 1 {
		vm.push(vm.peek())
	} else {
		vm.trap(Dup, "stack underflow")
	}
	vm.pc++
}

func (vm *VM) execPop() {
	if vm.depth() >= 1 {
		vm.pop()
	} else {
		vm.trap(Pop, "stack underflow")
	}
	vm.pc++
}

func (vm *VM) execSwap() {
	if vm.depth() >= 2 {
		n := len(vm.operand)
		vm.operand[n-1], vm.operand[n-2] = vm.operand[n-2], vm.operand[n-1]
	} else {
		vm.trap(Swap, "stack underflow")
	}
	vm.pc++
}

func (vm *VM) execIadd() {
	if vm.depth() >= 2 {
		b, a := vm.pop(), vm.pop()
		vm.push(a + b)
	} else {
		vm.trap(Iadd, "stack underflow")
	}
	vm.pc++
}

// execIsub computes second-from-top minus top, matching the engine's
// historical operand order.
func (vm *VM) execIsub() {
	if vm.depth() >= 2 {
		b, a := vm.pop(), vm.pop()
		vm.push(a - b)
	} else {
		vm.trap(Isub, "stack underflow")
	}
	vm.pc++
}

func (vm *VM) execIand() {
	if vm.depth() >= 2 {
		b, a := vm.pop(), vm.pop()
		vm.push(a & b)
	} else {
		vm.trap(Iand, "stack underflow")
	}
	vm.pc++
}

func (vm *VM) execIor() {
	if vm.depth() >= 2 {
		b, a := vm.pop(), vm.pop()
		vm.push(a | b)
	} else {
		vm.trap(Ior, "stack underflow")
	}
	vm.pc++
}

// execIload pushes local[index] if index is in range. pc always
// advances by 2 regardless, matching the engine's no-op-but-still-advance
// convention for every opcode except the conditional branches, the
// array opcodes and Ireturn.
func (vm *VM) execIload() {
	index := int(vm.img.Text[vm.pc+1])
	if index < len(vm.locals) {
		vm.push(vm.locals[index])
	} else {
		vm.trap(Iload, "local index out of range")
	}
	vm.pc += 2
}

func (vm *VM) execIstore() {
	index := int(vm.img.Text[vm.pc+1])
	if vm.depth() >= 1 {
		vm.ensureLocals(index + 1)
		vm.locals[index] = vm.pop()
	} else {
		vm.trap(Istore, "stack underflow")
	}
	vm.pc += 2
}

func (vm *VM) execIinc() {
	index := int(vm.img.Text[vm.pc+1])
	delta := Word(int8(vm.img.Text[vm.pc+2]))
	if index < len(vm.locals) {
		vm.locals[index] += delta
	} else {
		vm.trap(Iinc, "local index out of range")
	}
	vm.pc += 3
}

// execWide decodes the two-byte-index variant of Iload, Istore or Iinc
// that follows the Wide prefix. An unrecognized sub-opcode consumes only
// the Wide byte itself.
func (vm *VM) execWide() {
	text := vm.img.Text
	switch Bytecode(text[vm.pc+1]) {
	case Iload:
		index := be16(text, vm.pc+2)
		if index < len(vm.locals) {
			vm.push(vm.locals[index])
		} else {
			vm.trap(Iload, "local index out of range")
		}
		vm.pc += 4
	case Istore:
		index := be16(text, vm.pc+2)
		if vm.depth() >= 1 {
			vm.ensureLocals(index + 1)
			vm.locals[index] = vm.pop()
		} else {
			vm.trap(Istore, "stack underflow")
		}
		vm.pc += 4
	case Iinc:
		index := be16(text, vm.pc+2)
		delta := Word(int8(text[vm.pc+4]))
		if index < len(vm.locals) {
			vm.locals[index] += delta
		} else {
			vm.trap(Iinc, "local index out of range")
		}
		vm.pc += 5
	default:
		vm.pc++
	}
}
