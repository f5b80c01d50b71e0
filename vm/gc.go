package ijvm

// execGC runs one reachability sweep over the heap-array table. Roots
// are the operand stack, the active locals and every saved frame on the
// call stack. A reference reachable only through another live array
// (including itself — a self-referencing array is its own holder) is
// kept alive and the holder recorded as an edge; afterward any pair of
// distinct arrays that hold exactly a mutual reference to each other —
// a pure two-cycle with no external root — is freed together. Longer
// cycles, and one-way chains through a rooted array, are left alone:
// this is a conservative, single-pass collector, not a full mark-sweep.
func (vm *VM) execGC() {
	n := len(vm.heap)
	edges := make([][]bool, n)
	for i := range edges {
		edges[i] = make([]bool, n)
	}
	live := make([]bool, n)

	for _, ref := range vm.gcRefs {
		slot := int(ref - Indicator)
		if slot < 0 || slot >= n || vm.heap[slot] == nil {
			continue
		}

		reachable := containsWord(vm.operand, ref) ||
			containsWord(vm.locals, ref) ||
			vm.reachableFromFrames(ref)

		if !reachable {
			for j, other := range vm.heap {
				if other == nil {
					continue
				}
				if containsWord(other.data, ref) {
					edges[j][slot] = true
					reachable = true
				}
			}
		}

		if reachable {
			live[slot] = true
		} else {
			vm.heap[slot] = nil
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if live[i] && live[j] && edges[i][j] && edges[j][i] {
				vm.heap[i] = nil
				vm.heap[j] = nil
			}
		}
	}

	vm.pc++
}

func (vm *VM) reachableFromFrames(ref Word) bool {
	for _, frame := range vm.savedFrames {
		if containsWord(frame, ref) {
			return true
		}
	}
	return false
}

func containsWord(words []Word, ref Word) bool {
	for _, w := range words {
		if w == ref {
			return true
		}
	}
	return false
}
