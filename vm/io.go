package ijvm

// execIn reads one byte from the input stream and pushes it zero-
// extended. At end of stream (or any read error) it pushes 0 rather
// than failing — In always succeeds, there is no precondition.
func (vm *VM) execIn() {
	b, err := vm.in.ReadByte()
	if err != nil {
		vm.push(0)
	} else {
		vm.push(Word(b))
	}
	vm.pc++
}

// execOut pops the top of the stack and writes its low 8 bits to the
// output stream.
func (vm *VM) execOut() {
	if vm.depth() >= 1 {
		v := vm.pop()
		vm.out.WriteByte(byte(v))
	} else {
		vm.trap(Out, "stack underflow")
	}
	vm.pc++
}

// execErr writes "ERROR\n" to the error stream and halts the engine
// unconditionally — unlike the array-bounds error path, it has no
// precondition to check first.
func (vm *VM) execErr() {
	writeString(vm.errOut, "ERROR\n")
	vm.pc = len(vm.img.Text)
}
