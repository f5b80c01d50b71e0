// Command ijvm runs and single-steps compiled IJVM binary images.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ijvm/image"
	vm "ijvm/vm"
)

func main() {
	root := &cobra.Command{
		Use:           "ijvm",
		Short:         "Execute IJVM binary images against the stack-machine engine",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newDebugCmd())
	root.AddCommand(newAsmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadVM(path string) (*vm.VM, error) {
	img, err := image.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return vm.New(img), nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.ijvm>",
		Short: "Run a binary image to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadVM(args[0])
			if err != nil {
				return err
			}
			defer m.Destroy()

			restore := makeStdinRaw()
			defer restore()

			m.Run()
			m.Flush()
			return nil
		},
	}
}
