package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	vm "ijvm/vm"
)

func newAsmCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "asm <source.ijasm>",
		Short: "Assemble a mnemonic source file into a binary IJVM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			img, err := vm.Assemble(string(src))
			if err != nil {
				return err
			}

			if out == "" {
				out = args[0] + ".bin"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			return writeImage(f, img)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default: <source>.bin)")
	return cmd
}

func writeImage(f *os.File, img vm.Image) error {
	w := bufio.NewWriter(f)
	defer w.Flush()

	write := func(v uint32) error { return binary.Write(w, binary.BigEndian, v) }

	if err := write(uint32(img.Header)); err != nil {
		return err
	}
	if err := write(0); err != nil { // constant pool origin, unused by the loader
		return err
	}
	if err := write(uint32(len(img.ConstPool) * 4)); err != nil {
		return err
	}
	for _, c := range img.ConstPool {
		if err := write(uint32(c)); err != nil {
			return err
		}
	}
	if err := write(0); err != nil { // text origin, unused by the loader
		return err
	}
	if err := write(uint32(len(img.Text))); err != nil {
		return err
	}
	if _, err := w.Write(img.Text); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %d bytes of text, %d constants\n", len(img.Text), len(img.ConstPool))
	return nil
}
