package main

import (
	"os"

	"golang.org/x/term"
)

// makeStdinRaw puts stdin into raw mode when it is an interactive
// terminal, so the In opcode receives keystrokes one at a time instead
// of waiting on a line buffer. It returns a restore func that is always
// safe to call, including when stdin was never a terminal.
func makeStdinRaw() func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}

	return func() {
		_ = term.Restore(fd, old)
	}
}
