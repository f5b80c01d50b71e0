package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	vm "ijvm/vm"
)

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file.ijvm>",
		Short: "Single-step a binary image with a break/next/run REPL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadVM(args[0])
			if err != nil {
				return err
			}
			defer m.Destroy()

			m.Trap = func(op vm.Bytecode, reason string) {
				fmt.Printf("  trap> %s: %s\n", op, reason)
			}

			runDebugLoop(m)
			m.Flush()
			return nil
		},
	}
}

func printDebugState(m *vm.VM) {
	if !m.Finished() {
		fmt.Printf("  next instruction> %d: %s\n", m.ProgramCounter(), m.Instruction())
	}
	fmt.Println("  stack depth>", m.StackDepth(), " call depth>", m.CallStackSize())
}

// runDebugLoop mirrors the engine's own single-step model: the REPL
// calls Step exactly once per "n", or free-runs until the next
// breakpoint is hit.
func runDebugLoop(m *vm.VM) {
	fmt.Println("Commands:")
	fmt.Println("\tn or next: execute next instruction")
	fmt.Println("\tr or run: run until a breakpoint or halt")
	fmt.Println("\tb or break <pc>: toggle a breakpoint at a program counter")

	printDebugState(m)

	reader := bufio.NewReader(os.Stdin)
	breakpoints := make(map[int]bool)
	waitForInput := true

	for !m.Finished() {
		if waitForInput {
			fmt.Print("\n-> ")
			line, _ := reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "n", "next":
				m.Step()
				printDebugState(m)
			case "r", "run":
				waitForInput = false
			case "b", "break":
				if len(fields) < 2 {
					fmt.Println("usage: break <pc>")
					continue
				}
				pc, err := strconv.Atoi(fields[1])
				if err != nil {
					fmt.Println("not a program counter:", fields[1])
					continue
				}
				breakpoints[pc] = !breakpoints[pc]
			default:
				fmt.Println("unknown command:", fields[0])
			}
			continue
		}

		m.Step()
		if !m.Finished() && breakpoints[m.ProgramCounter()] {
			fmt.Println("breakpoint hit")
			printDebugState(m)
			waitForInput = true
		}
	}

	fmt.Println("halted at", m.ProgramCounter())
}
