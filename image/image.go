// Package image parses the on-disk IJVM binary format into a vm.Image
// the engine can execute. It decodes the big-endian header words and
// constant-pool words; the text segment is handed on as raw bytes.
package image

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	vm "ijvm/vm"
)

// Load reads a binary IJVM program: a 32-bit header, a 32-bit constant-
// pool origin and size followed by that many bytes of big-endian 32-bit
// words, then a 32-bit text origin and size followed by that many raw
// text-segment bytes. The origin fields are accepted for compatibility
// with the format but are not otherwise interpreted — the constant pool
// and text segment are always read as back-to-back blocks.
func Load(r io.Reader) (vm.Image, error) {
	readWord := func(what string) (uint32, error) {
		var v uint32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return 0, fmt.Errorf("ijvm: reading %s: %w", what, err)
		}
		return v, nil
	}

	header, err := readWord("header")
	if err != nil {
		return vm.Image{}, err
	}
	if _, err := readWord("constant pool origin"); err != nil {
		return vm.Image{}, err
	}
	poolSize, err := readWord("constant pool size")
	if err != nil {
		return vm.Image{}, err
	}

	poolBytes := make([]byte, poolSize)
	if _, err := io.ReadFull(r, poolBytes); err != nil {
		return vm.Image{}, fmt.Errorf("ijvm: reading constant pool: %w", err)
	}

	if _, err := readWord("text origin"); err != nil {
		return vm.Image{}, err
	}
	textSize, err := readWord("text size")
	if err != nil {
		return vm.Image{}, err
	}

	text := make([]byte, textSize)
	if _, err := io.ReadFull(r, text); err != nil {
		return vm.Image{}, fmt.Errorf("ijvm: reading text segment: %w", err)
	}

	if poolSize%4 != 0 {
		return vm.Image{}, fmt.Errorf("ijvm: constant pool size %d is not a multiple of 4", poolSize)
	}
	pool := make([]vm.Word, poolSize/4)
	for i := range pool {
		pool[i] = vm.Word(binary.BigEndian.Uint32(poolBytes[i*4:]))
	}

	return vm.Image{
		Header:    vm.Word(header),
		ConstPool: pool,
		Text:      text,
	}, nil
}

// LoadFile opens path and parses it as a binary IJVM image.
func LoadFile(path string) (vm.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return vm.Image{}, fmt.Errorf("ijvm: %w", err)
	}
	defer f.Close()
	return Load(f)
}
