package ijvm

import (
	"bytes"
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func assembleAndCheck(t *testing.T, source string) Image {
	t.Helper()
	img, err := Assemble(source)
	assert(t, err == nil, "failed to assemble: %v", err)
	return img
}

// runToHalt runs a freshly-assembled program to completion against the
// given input bytes and returns everything it wrote to its output and
// error streams, which share one buffer.
func runToHalt(t *testing.T, source string, input []byte) (*VM, string) {
	t.Helper()
	img := assembleAndCheck(t, source)
	m := New(img)

	in := bytes.NewReader(input)
	var out bytes.Buffer
	m.SetInput(byteReader{in})
	m.SetOutput(&out)
	m.SetError(&out)

	m.Run()
	return m, out.String()
}

// byteReader adapts a *bytes.Reader (which already has ReadByte) through
// the io.ByteReader interface explicitly, for clarity at call sites.
type byteReader struct{ r *bytes.Reader }

func (b byteReader) ReadByte() (byte, error) { return b.r.ReadByte() }

func TestArithmeticAndStack(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   Word
	}{
		{"add", "bipush 40\nbipush 2\niadd\nout\nhalt\n", 42},
		{"sub", "bipush 10\nbipush 3\nisub\nout\nhalt\n", 7},
		{"and", "bipush 12\nbipush 10\niand\nout\nhalt\n", 8},
		{"or", "bipush 12\nbipush 3\nior\nout\nhalt\n", 15},
		{"dup", "bipush 5\ndup\niadd\nout\nhalt\n", 10},
		{"swap", "bipush 1\nbipush 2\nswap\npop\nout\nhalt\n", 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, out := runToHalt(t, c.source, nil)
			assert(t, len(out) == 1 && Word(out[0]) == c.want, "got %q, want byte %d", out, c.want)
		})
	}
}

func TestLocalsAndIinc(t *testing.T) {
	src := `
		bipush 5
		istore 0
		iinc 0 10
		iload 0
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{15}), "got %v", []byte(out))
}

func TestWideLocals(t *testing.T) {
	src := `
		bipush 9
		wide istore 300
		wide iload 300
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{9}), "got %v", []byte(out))
}

func TestControlFlowIfeq(t *testing.T) {
	src := `
		bipush 1
		out
	start:
		bipush 0
		ifeq skip
		bipush 9
		out
	skip:
		bipush 2
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{1, 2}), "got %v", []byte(out))
}

func TestLoopWithIfIcmpeq(t *testing.T) {
	// counts 0..2 to stdout then halts
	src := `
		bipush 0
		istore 0
	loop:
		iload 0
		out
		iload 0
		bipush 1
		iadd
		istore 0
		iload 0
		bipush 3
		if_icmpeq done
		goto loop
	done:
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{0, 1, 2}), "got %v", []byte(out))
}

func TestInvokevirtualAndIreturn(t *testing.T) {
	src := `
		bipush 3
		bipush 4
		invokevirtual add
		out
		halt

	.method add 2 2
		iload 0
		iload 1
		iadd
		ireturn
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{7}), "got %v", []byte(out))
}

func TestTailcallDoesNotGrowCallStack(t *testing.T) {
	src := `
		bipush 5
		invokevirtual enter
		halt

	.method enter 1 1
		iload 0
		tailcall double

	.method double 1 1
		iload 0
		iload 0
		iadd
		ireturn
	`
	m, out := runToHalt(t, src, nil)
	_ = out
	assert(t, m.Finished(), "program did not halt")
	assert(t, m.CallStackSize() == -1, "call stack size = %d, want -1 after the single ireturn", m.CallStackSize())
	assert(t, m.TOS() == 10, "TOS = %d, want 10", m.TOS())
}

func TestNewarrayLoadStore(t *testing.T) {
	src := `
		bipush 3
		newarray
		istore 0

		bipush 42
		bipush 0
		iload 0
		iastore

		bipush 0
		iload 0
		iaload
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{42}), "got %v", []byte(out))
}

func TestArrayOutOfBoundsHalts(t *testing.T) {
	src := `
		bipush 1
		newarray
		istore 0

		bipush 5
		iload 0
		iaload
		out
		halt
	`
	m, out := runToHalt(t, src, nil)
	assert(t, out == "ERROR\n", "got %q", out)
	assert(t, m.Finished(), "engine did not halt on array error")
}

func TestGCFreesUnreachableArray(t *testing.T) {
	src := `
		bipush 1
		newarray
		pop
		gc
		halt
	`
	img := assembleAndCheck(t, src)
	m := New(img)
	m.SetOutput(bytes.NewBuffer(nil))
	m.SetError(bytes.NewBuffer(nil))
	m.Run()

	assert(t, len(m.heap) == 1, "expected one allocated slot, got %d", len(m.heap))
	assert(t, m.heap[0] == nil, "expected the unreachable array to be freed")
}

func TestGCKeepsRootedArray(t *testing.T) {
	src := `
		bipush 1
		newarray
		istore 0
		gc
		iload 0
		pop
		halt
	`
	img := assembleAndCheck(t, src)
	m := New(img)
	m.SetOutput(bytes.NewBuffer(nil))
	m.SetError(bytes.NewBuffer(nil))
	m.Run()

	assert(t, m.heap[0] != nil, "expected a locals-rooted array to survive GC")
}

func TestGCFreesMutualTwoCycle(t *testing.T) {
	src := `
		bipush 1
		newarray
		istore 0
		bipush 1
		newarray
		istore 1

		iload 1
		bipush 0
		iload 0
		iastore

		iload 0
		bipush 0
		iload 1
		iastore

		bipush 0
		istore 0
		bipush 0
		istore 1

		gc
		halt
	`
	img := assembleAndCheck(t, src)
	m := New(img)
	m.SetOutput(bytes.NewBuffer(nil))
	m.SetError(bytes.NewBuffer(nil))
	m.Run()

	assert(t, m.heap[0] == nil && m.heap[1] == nil, "expected the mutual 2-cycle to be collected")
}

func TestGCIsIdempotent(t *testing.T) {
	src := `
		bipush 1
		newarray
		pop
		gc
		gc
		halt
	`
	img := assembleAndCheck(t, src)
	m := New(img)
	m.SetOutput(bytes.NewBuffer(nil))
	m.SetError(bytes.NewBuffer(nil))
	m.Run()
	assert(t, m.heap[0] == nil, "expected the array to stay freed across a second GC")
}

func TestInPushesZeroAtEOF(t *testing.T) {
	src := `
		in
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, out == string([]byte{0}), "got %v", []byte(out))
}

func TestInEchoesInputByte(t *testing.T) {
	src := `
		in
		out
		halt
	`
	_, out := runToHalt(t, src, []byte{65})
	assert(t, out == "A", "got %q", out)
}

func TestErrWritesErrorAndHalts(t *testing.T) {
	src := `
		err
		bipush 1
		out
		halt
	`
	m, out := runToHalt(t, src, nil)
	assert(t, out == "ERROR\n", "got %q", out)
	assert(t, m.Finished(), "engine did not halt on err")
}

func TestLdcW(t *testing.T) {
	src := `
		ldc_w 1234
		out
		halt
	`
	_, out := runToHalt(t, src, nil)
	assert(t, len(out) == 1 && Word(out[0]) == 1234&0xff, "got %v", []byte(out))
}
