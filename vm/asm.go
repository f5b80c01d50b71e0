package ijvm

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var asmComment = regexp.MustCompile(`//.*`)

type asmInstr struct {
	mnemonic string
	args     []string
	pc       int
	wide     bool
}

// Assemble turns a small line-oriented mnemonic source into an Image.
// One instruction (optionally prefixed with `wide`) per line; blank
// lines and `//` comments are ignored. A `label:` line marks the
// current address as a branch target for goto/ifeq/iflt/if_icmpeq.
// `.method name argc localc` emits a method's header (two 16-bit fields)
// and binds
// name to its address so invokevirtual/tailcall can reference it — the
// constant-pool slot that holds the address is assigned automatically,
// the first time the name is used.
//
// This exists for tests and the `ijvm asm` subcommand; a compiled image
// is otherwise expected to arrive pre-built (see package image).
func Assemble(source string) (Image, error) {
	scanner := bufio.NewScanner(strings.NewReader(source))
	var raw []string
	for scanner.Scan() {
		raw = append(raw, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Image{}, fmt.Errorf("asm: %w", err)
	}

	labels := map[string]int{}
	var instrs []asmInstr
	pc := 0

	for lineNo, line := range raw {
		line = asmComment.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSuffix(line, ":")
			labels[name] = pc
			continue
		}

		fields := strings.Fields(line)
		mnemonic := fields[0]
		args := fields[1:]

		if mnemonic == ".method" {
			if len(args) != 3 {
				return Image{}, fmt.Errorf("asm:%d: .method wants name argc localc", lineNo+1)
			}
			labels[args[0]] = pc
			instrs = append(instrs, asmInstr{mnemonic: ".method", args: args, pc: pc})
			pc += 4
			continue
		}

		wide := false
		if mnemonic == "wide" {
			if len(args) == 0 {
				return Image{}, fmt.Errorf("asm:%d: wide with no instruction", lineNo+1)
			}
			wide = true
			mnemonic = args[0]
			args = args[1:]
		}

		code, ok := LookupBytecode(mnemonic)
		if !ok {
			return Image{}, fmt.Errorf("asm:%d: unknown instruction %q", lineNo+1, mnemonic)
		}

		width := code.Width()
		if wide {
			width += 2
		}

		instrs = append(instrs, asmInstr{mnemonic: mnemonic, args: args, pc: pc, wide: wide})
		pc += width
	}

	var text []byte
	var pool []Word
	methodConst := map[string]int{}

	emit := func(b byte) { text = append(text, b) }
	emitBE16 := func(v int) { emit(byte(v >> 8)); emit(byte(v)) }
	emitSigned16 := func(v int) {
		s := int16(v)
		emit(byte(uint16(s) >> 8))
		emit(byte(uint16(s)))
	}

	resolveMethodConst := func(name string) (int, error) {
		if idx, ok := methodConst[name]; ok {
			return idx, nil
		}
		addr, ok := labels[name]
		if !ok {
			return 0, fmt.Errorf("asm: undefined method label %q", name)
		}
		idx := len(pool)
		pool = append(pool, Word(addr))
		methodConst[name] = idx
		return idx, nil
	}

	for _, in := range instrs {
		if in.mnemonic == ".method" {
			argc, err := strconv.Atoi(in.args[1])
			if err != nil {
				return Image{}, fmt.Errorf("asm: %s: %w", in.args[0], err)
			}
			localc, err := strconv.Atoi(in.args[2])
			if err != nil {
				return Image{}, fmt.Errorf("asm: %s: %w", in.args[0], err)
			}
			emitBE16(argc)
			emitBE16(localc)
			continue
		}

		code, _ := LookupBytecode(in.mnemonic)

		if in.wide {
			emit(byte(Wide))
			emit(byte(code))
			idx, err := strconv.Atoi(in.args[0])
			if err != nil {
				return Image{}, fmt.Errorf("asm: wide %s: %w", in.mnemonic, err)
			}
			emitBE16(idx)
			if code == Iinc {
				delta, err := strconv.Atoi(in.args[1])
				if err != nil {
					return Image{}, fmt.Errorf("asm: wide iinc: %w", err)
				}
				emit(byte(int8(delta)))
			}
			continue
		}

		emit(byte(code))
		switch code {
		case Bipush:
			v, err := strconv.Atoi(in.args[0])
			if err != nil {
				return Image{}, fmt.Errorf("asm: bipush: %w", err)
			}
			emit(byte(int8(v)))
		case Iload, Istore:
			idx, err := strconv.Atoi(in.args[0])
			if err != nil {
				return Image{}, fmt.Errorf("asm: %s: %w", in.mnemonic, err)
			}
			emit(byte(idx))
		case Iinc:
			idx, err := strconv.Atoi(in.args[0])
			if err != nil {
				return Image{}, fmt.Errorf("asm: iinc: %w", err)
			}
			delta, err := strconv.Atoi(in.args[1])
			if err != nil {
				return Image{}, fmt.Errorf("asm: iinc: %w", err)
			}
			emit(byte(idx))
			emit(byte(int8(delta)))
		case LdcW:
			v, err := strconv.Atoi(in.args[0])
			if err != nil {
				return Image{}, fmt.Errorf("asm: ldc_w: %w", err)
			}
			idx := len(pool)
			pool = append(pool, Word(v))
			emitBE16(idx)
		case Goto, Ifeq, Iflt, IfIcmpeq:
			target, ok := labels[in.args[0]]
			if !ok {
				return Image{}, fmt.Errorf("asm: undefined label %q", in.args[0])
			}
			emitSigned16(target - in.pc)
		case Invokevirtual, Tailcall:
			idx, err := resolveMethodConst(in.args[0])
			if err != nil {
				return Image{}, err
			}
			emitBE16(idx)
		}
	}

	return Image{Header: 0, ConstPool: pool, Text: text}, nil
}
