package ijvm

// be16 reads the big-endian 16-bit field starting at text[at] and
// returns it zero-extended. Used for the WIDE index and for a method
// header's arg/local counts.
func be16(text []byte, at int) int {
	return int(text[at])<<8 | int(text[at+1])
}

// shortArg reads the big-endian, sign-extended 16-bit immediate that
// follows the opcode byte at pc (i.e. text[pc+1:pc+3]).
func shortArg(text []byte, pc int) Word {
	v := int16(uint16(text[pc+1])<<8 | uint16(text[pc+2]))
	return Word(v)
}

// Step executes exactly one instruction. A no-op if the engine has
// already finished.
func (vm *VM) Step() {
	if vm.Finished() {
		return
	}

	switch Bytecode(vm.img.Text[vm.pc]) {
	case Nop:
		vm.pc++
	case Bipush:
		vm.execBipush()
	case LdcW:
		vm.execLdcW()
	case Dup:
		vm.execDup()
	case Pop:
		vm.execPop()
	case Swap:
		vm.execSwap()
	case Iadd:
		vm.execIadd()
	case Isub:
		vm.execIsub()
	case Iand:
		vm.execIand()
	case Ior:
		vm.execIor()
	case Iload:
		vm.execIload()
	case Istore:
		vm.execIstore()
	case Iinc:
		vm.execIinc()
	case Wide:
		vm.execWide()
	case Goto:
		vm.execGoto()
	case Ifeq:
		vm.execIfeq()
	case Iflt:
		vm.execIflt()
	case IfIcmpeq:
		vm.execIfIcmpeq()
	case Invokevirtual:
		vm.execInvokevirtual()
	case Ireturn:
		vm.execIreturn()
	case Tailcall:
		vm.execTailcall()
	case Newarray:
		vm.execNewarray()
	case Iaload:
		vm.execIaload()
	case Iastore:
		vm.execIastore()
	case GC:
		vm.execGC()
	case In:
		vm.execIn()
	case Out:
		vm.execOut()
	case Err:
		vm.execErr()
	case Halt:
		vm.pc = len(vm.img.Text)
	default:
		// Not part of the instruction set: skip it like Nop rather than
		// spin forever on the same pc.
		vm.pc++
	}
}

// Run steps the engine until it finishes.
func (vm *VM) Run() {
	for !vm.Finished() {
		vm.Step()
	}
}
