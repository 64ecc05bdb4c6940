package credential

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestPublicOutputEncode_Layout(t *testing.T) {
	var hash [HashSize]byte
	for i := range hash {
		hash[i] = byte(0xa0 + i)
	}
	out := Assemble(mustSubject(t, "0x1234567890123456789012345678901234567890"), 2, hash, 0x0102030405060708, 0x1112131415161718)

	b := out.Encode()
	if len(b) != 72 {
		t.Fatalf("encoded length %d, want 72", len(b))
	}
	if !bytes.Equal(b[0:20], out.Subject[:]) {
		t.Fatalf("subject not at [0:20]")
	}
	if !bytes.Equal(b[20:24], []byte{2, 0, 0, 0}) {
		t.Fatalf("credential type must be little-endian at [20:24], got %x", b[20:24])
	}
	if !bytes.Equal(b[24:56], hash[:]) {
		t.Fatalf("hash not at [24:56]")
	}
	if got := binary.LittleEndian.Uint64(b[56:64]); got != out.IssuedAt {
		t.Fatalf("issued_at mismatch: %x", b[56:64])
	}
	if b[56] != 0x08 || b[71] != 0x11 {
		t.Fatalf("timestamps must be little-endian: %x", b[56:72])
	}
}

func TestDecodePublicOutput_Inverse(t *testing.T) {
	in := sampleInput(t)
	out, err := Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	decoded, err := DecodePublicOutput(out.Encode())
	if err != nil {
		t.Fatalf("DecodePublicOutput: %v", err)
	}
	if decoded != out {
		t.Fatalf("decode(encode(x)) != x: %+v vs %+v", decoded, out)
	}

	var viaIface PublicOutput
	b, _ := out.MarshalBinary()
	if err := viaIface.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if viaIface != out {
		t.Fatalf("UnmarshalBinary mismatch")
	}
}

func TestDecodePublicOutput_StrictLength(t *testing.T) {
	for _, n := range []int{0, 71, 73, 144} {
		_, err := DecodePublicOutput(make([]byte, n))
		requireCode(t, err, CodeMalformedOutput)
		if !IsKind(err, KindEncoding) {
			t.Fatalf("len %d: expected KindEncoding", n)
		}
	}
}
