package codec

import (
	"errors"
	"testing"
)

func TestLimitCodecRejectsOversize(t *testing.T) {
	lc := LimitCodec[string]{Inner: String{}, Max: 4}

	if _, err := lc.Encode("ok"); err != nil {
		t.Fatalf("encode under limit: %v", err)
	}

	_, err := lc.Encode("too large")
	var tooBig *ErrTooLarge
	if !errors.As(err, &tooBig) {
		t.Fatalf("encode over limit: got %v, want ErrTooLarge", err)
	}
	if tooBig.Size != len("too large") || tooBig.Max != 4 {
		t.Fatalf("ErrTooLarge fields: %+v", tooBig)
	}

	if _, err := lc.Decode([]byte("123456")); err == nil {
		t.Fatal("decode over limit: want error")
	}
	got, err := lc.Decode([]byte("abc"))
	if err != nil || got != "abc" {
		t.Fatalf("decode under limit: got %q, %v", got, err)
	}
}

func TestLimitCodecZeroMaxDisablesCheck(t *testing.T) {
	lc := LimitCodec[string]{Inner: String{}}
	b, err := lc.Encode("anything goes when max is zero")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := lc.Decode(b); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	src := []byte("shared buffer")
	got, err := Bytes{}.Decode(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	src[0] = 'X'
	if string(got) != "shared buffer" {
		t.Fatalf("decoded slice aliases input: %q", got)
	}
}
