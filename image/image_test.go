package image

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildImage(t *testing.T, header uint32, pool []int32, text []byte) []byte {
	t.Helper()
	var buf bytes.Buffer

	poolBytes := make([]byte, len(pool)*4)
	for i, w := range pool {
		binary.BigEndian.PutUint32(poolBytes[i*4:], uint32(w))
	}

	write := func(v uint32) {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatalf("writing word: %v", err)
		}
	}

	write(header)
	write(0) // constant pool origin, unused
	write(uint32(len(poolBytes)))
	buf.Write(poolBytes)
	write(0) // text origin, unused
	write(uint32(len(text)))
	buf.Write(text)

	return buf.Bytes()
}

func TestLoadRoundTrip(t *testing.T) {
	raw := buildImage(t, 0x1234, []int32{10, -20, 30}, []byte{0xFF})

	img, err := Load(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if img.Header != 0x1234 {
		t.Fatalf("header = %d, want 0x1234", img.Header)
	}
	if len(img.ConstPool) != 3 || img.ConstPool[1] != -20 {
		t.Fatalf("const pool = %v", img.ConstPool)
	}
	if len(img.Text) != 1 || img.Text[0] != 0xFF {
		t.Fatalf("text = %v", img.Text)
	}
}

func TestLoadTruncatedInput(t *testing.T) {
	raw := buildImage(t, 0, nil, []byte{0x00, 0x01})
	raw = raw[:len(raw)-1]

	if _, err := Load(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected an error for truncated input")
	}
}

func TestLoadMisalignedConstantPool(t *testing.T) {
	var buf bytes.Buffer
	write := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }

	write(0)          // header
	write(0)          // constant pool origin
	write(3)          // constant pool size: not a multiple of 4
	buf.Write([]byte{1, 2, 3})
	write(0) // text origin
	write(0) // text size

	if _, err := Load(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected an error for a misaligned constant pool size")
	}
}
