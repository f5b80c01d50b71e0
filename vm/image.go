package ijvm

// Indicator is added to a heap slot index to produce the reference word
// pushed by Newarray. Its value is an external ABI contract inherited
// unchanged from the reference engine this one is compatible with — a
// program that hardcodes it to recognize a heap reference must keep
// working.
const Indicator Word = 22_400_000

// Image is the immutable, pre-parsed program the engine executes: a
// header word, a constant pool and a text segment. It is built once by
// the loader (package image) or the assembler and handed to New; the
// engine never mutates it.
type Image struct {
	Header    Word
	ConstPool []Word
	Text      []byte
}

// Constant returns the word at constant-pool index i.
func (img Image) Constant(i int) Word {
	return img.ConstPool[i]
}
